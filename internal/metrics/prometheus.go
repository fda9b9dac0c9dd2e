package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
)

// Poll results used as the "source" label of StatusPollsTotal.
const (
	PollLive     = "live"
	PollFallback = "fallback"
)

// Collector holds the application metrics. A nil *Collector is valid and
// records nothing, which keeps tests free of registry setup.
type Collector struct {
	LoginSuccessTotal   prometheus.Counter
	LoginFailureTotal   prometheus.Counter
	UserRegisteredTotal prometheus.Counter
	StatusPollsTotal    *prometheus.CounterVec
	PlayersOnlineGauge  prometheus.Gauge
	PurchasesTotal      prometheus.Counter
	AdminCommandsTotal  prometheus.Counter
}

// NewCollector creates the application metrics and registers them with reg.
// It should be called once at application startup.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		LoginSuccessTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mcportal_logins_success_total",
			Help: "Total number of successful logins.",
		}),
		LoginFailureTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mcportal_logins_failure_total",
			Help: "Total number of failed logins.",
		}),
		UserRegisteredTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mcportal_users_registered_total",
			Help: "Total number of users created on first login.",
		}),
		StatusPollsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mcportal_status_polls_total",
			Help: "Total number of game server status polls by result source.",
		}, []string{"source"}),
		PlayersOnlineGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mcportal_players_online",
			Help: "Players online reported by the last successful poll.",
		}),
		PurchasesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mcportal_purchases_total",
			Help: "Total number of purchases created.",
		}),
		AdminCommandsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mcportal_admin_commands_total",
			Help: "Total number of admin commands logged.",
		}),
	}

	if reg == nil {
		log.Error().Msg("Prometheus registry is nil, cannot register custom metrics.")
		return c
	}

	for name, m := range map[string]prometheus.Collector{
		"LoginSuccessTotal":   c.LoginSuccessTotal,
		"LoginFailureTotal":   c.LoginFailureTotal,
		"UserRegisteredTotal": c.UserRegisteredTotal,
		"StatusPollsTotal":    c.StatusPollsTotal,
		"PlayersOnlineGauge":  c.PlayersOnlineGauge,
		"PurchasesTotal":      c.PurchasesTotal,
		"AdminCommandsTotal":  c.AdminCommandsTotal,
	} {
		if err := reg.Register(m); err != nil {
			log.Warn().Err(err).Msgf("Failed to register %s metric", name)
		}
	}
	log.Info().Msg("Custom Prometheus metrics registered.")
	return c
}

// NewRegistry returns a registry with the Go runtime and process collectors
// already registered.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func (c *Collector) LoginSucceeded(firstLogin bool) {
	if c == nil {
		return
	}
	c.LoginSuccessTotal.Inc()
	if firstLogin {
		c.UserRegisteredTotal.Inc()
	}
}

func (c *Collector) LoginFailed() {
	if c == nil {
		return
	}
	c.LoginFailureTotal.Inc()
}

// StatusPolled records a poll result. playersOnline is only used for live
// results.
func (c *Collector) StatusPolled(source string, playersOnline int) {
	if c == nil {
		return
	}
	c.StatusPollsTotal.WithLabelValues(source).Inc()
	if source == PollLive {
		c.PlayersOnlineGauge.Set(float64(playersOnline))
	}
}

func (c *Collector) PurchaseCreated() {
	if c == nil {
		return
	}
	c.PurchasesTotal.Inc()
}

func (c *Collector) AdminCommandLogged() {
	if c == nil {
		return
	}
	c.AdminCommandsTotal.Inc()
}
