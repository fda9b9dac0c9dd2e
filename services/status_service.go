package services

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.pilab.hu/mcportal/domain"
	"go.pilab.hu/mcportal/internal/mcstatus"
	"go.pilab.hu/mcportal/internal/metrics"
	"go.pilab.hu/mcportal/tracing"
)

// StatusPinger queries a game server. *mcstatus.Pinger implements it.
type StatusPinger interface {
	Ping(ctx context.Context, addr string) (*mcstatus.Response, error)
}

// StatusService polls the game server on demand. Results are not cached.
type StatusService struct {
	pinger     StatusPinger
	addr       string
	serverLogs domain.ServerLogRepository
	metrics    *metrics.Collector
	now        func() time.Time
}

// NewStatusService creates a StatusService for the server at addr.
// serverLogs may be nil, in which case live samples are not stored.
func NewStatusService(pinger StatusPinger, addr string, serverLogs domain.ServerLogRepository, collector *metrics.Collector) *StatusService {
	return &StatusService{
		pinger:     pinger,
		addr:       addr,
		serverLogs: serverLogs,
		metrics:    collector,
		now:        time.Now,
	}
}

// Poll queries the game server. It never fails: an unreachable server yields
// the fallback record tagged with StatusSourceFallback.
func (s *StatusService) Poll(ctx context.Context) domain.ServerStatus {
	ctx, span := tracing.Tracer.Start(ctx, "StatusService.Poll",
		trace.WithAttributes(attribute.String("mc.server_addr", s.addr)))
	defer span.End()

	now := s.now().UTC()

	resp, err := s.pinger.Ping(ctx, s.addr)
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.String("mc.status_source", string(domain.StatusSourceFallback)))
		log.Ctx(ctx).Warn().Err(err).Str("addr", s.addr).Msg("Game server status poll failed")
		s.metrics.StatusPolled(metrics.PollFallback, 0)
		return domain.FallbackServerStatus(now)
	}

	status := domain.ServerStatus{
		PlayersOnline: resp.PlayersOnline,
		MaxPlayers:    resp.MaxPlayers,
		ServerVersion: resp.Version,
		MOTD:          resp.MOTD,
		Latency:       float64(resp.Latency.Microseconds()) / 1000,
		LastUpdated:   now,
		Online:        true,
		Source:        domain.StatusSourceLive,
	}
	s.metrics.StatusPolled(metrics.PollLive, status.PlayersOnline)
	span.SetAttributes(
		attribute.String("mc.status_source", string(domain.StatusSourceLive)),
		attribute.Int("mc.players_online", status.PlayersOnline),
	)

	if s.serverLogs != nil {
		if err := s.serverLogs.AppendServerLog(ctx, &domain.ServerLog{
			PlayersOnline: status.PlayersOnline,
			MaxPlayers:    status.MaxPlayers,
			ServerVersion: status.ServerVersion,
			MOTD:          status.MOTD,
			LatencyMs:     status.Latency,
			RecordedAt:    now,
		}); err != nil {
			log.Ctx(ctx).Warn().Err(err).Msg("Failed to store server log sample")
		}
	}

	return status
}
