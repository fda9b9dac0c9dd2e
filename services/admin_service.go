package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"go.pilab.hu/mcportal/domain"
	"go.pilab.hu/mcportal/internal/audit"
	"go.pilab.hu/mcportal/internal/metrics"
)

const (
	recentLoginsLimit   = 10
	activityLimit       = 50
	serverLogsLimit     = 100
	commandHistoryLimit = 50
	maxCommandLength    = 256
)

// Stats is the admin dashboard summary.
type Stats struct {
	TotalUsers     int64               `json:"total_users"`
	AdminUsers     int64               `json:"admin_users"`
	TotalItems     int64               `json:"total_items"`
	TotalPurchases int64               `json:"total_purchases"`
	TotalRevenue   float64             `json:"total_revenue"`
	ServerStatus   domain.ServerStatus `json:"server_status"`
	RecentLogins   []*domain.User      `json:"recent_logins"`
}

// Activity is the login activity report.
type Activity struct {
	RecentLogins []*domain.LoginLog       `json:"recent_logins"`
	LoginCounts  []*domain.UserLoginCount `json:"login_counts"`
}

// ServerHistory is the recent server samples with aggregates.
type ServerHistory struct {
	Logs    []*domain.ServerLog      `json:"logs"`
	Summary *domain.ServerLogSummary `json:"summary"`
}

// AdminService backs the admin dashboard.
type AdminService struct {
	users      domain.UserRepository
	items      domain.ShopItemRepository
	purchases  domain.PurchaseRepository
	loginLogs  domain.LoginLogRepository
	serverLogs domain.ServerLogRepository
	commands   domain.CommandRepository
	status     *StatusService
	metrics    *metrics.Collector
	audit      *audit.Logger
	now        func() time.Time
}

// AdminServiceDeps groups the dependencies of AdminService.
type AdminServiceDeps struct {
	Users      domain.UserRepository
	Items      domain.ShopItemRepository
	Purchases  domain.PurchaseRepository
	LoginLogs  domain.LoginLogRepository
	ServerLogs domain.ServerLogRepository
	Commands   domain.CommandRepository
	Status     *StatusService
	Metrics    *metrics.Collector
	Audit      *audit.Logger
}

// NewAdminService creates a new AdminService.
func NewAdminService(deps AdminServiceDeps) *AdminService {
	return &AdminService{
		users:      deps.Users,
		items:      deps.Items,
		purchases:  deps.Purchases,
		loginLogs:  deps.LoginLogs,
		serverLogs: deps.ServerLogs,
		commands:   deps.Commands,
		status:     deps.Status,
		metrics:    deps.Metrics,
		audit:      deps.Audit,
		now:        time.Now,
	}
}

// Stats collects the dashboard counters and polls the game server.
func (s *AdminService) Stats(ctx context.Context) (*Stats, error) {
	total, admins, err := s.users.CountUsers(ctx)
	if err != nil {
		return nil, err
	}
	items, err := s.items.CountItems(ctx)
	if err != nil {
		return nil, err
	}
	totals, err := s.purchases.Totals(ctx)
	if err != nil {
		return nil, err
	}
	recent, err := s.users.RecentLogins(ctx, recentLoginsLimit)
	if err != nil {
		return nil, err
	}

	return &Stats{
		TotalUsers:     total,
		AdminUsers:     admins,
		TotalItems:     items,
		TotalPurchases: totals.Count,
		TotalRevenue:   totals.Revenue,
		ServerStatus:   s.status.Poll(ctx),
		RecentLogins:   recent,
	}, nil
}

// Activity returns the latest login log entries and per-user login counts.
func (s *AdminService) Activity(ctx context.Context) (*Activity, error) {
	logs, err := s.loginLogs.RecentLoginLogs(ctx, activityLimit)
	if err != nil {
		return nil, err
	}
	counts, err := s.loginLogs.LoginCountsByUser(ctx, activityLimit)
	if err != nil {
		return nil, err
	}
	return &Activity{RecentLogins: logs, LoginCounts: counts}, nil
}

// ServerLogs returns the latest status samples with aggregates over all
// samples.
func (s *AdminService) ServerLogs(ctx context.Context) (*ServerHistory, error) {
	logs, err := s.serverLogs.RecentServerLogs(ctx, serverLogsLimit)
	if err != nil {
		return nil, err
	}
	summary, err := s.serverLogs.Summary(ctx)
	if err != nil {
		return nil, err
	}
	return &ServerHistory{Logs: logs, Summary: summary}, nil
}

// LogCommand stores a command submitted by caller. Nothing is executed.
func (s *AdminService) LogCommand(ctx context.Context, caller *domain.User, command string) (*domain.AdminCommand, error) {
	command = strings.TrimSpace(command)
	if command == "" {
		return nil, fmt.Errorf("%w: command is required", domain.ErrInvalidInput)
	}
	if len(command) > maxCommandLength {
		return nil, fmt.Errorf("%w: command is longer than %d characters", domain.ErrInvalidInput, maxCommandLength)
	}

	cmd := &domain.AdminCommand{
		Command:    command,
		ExecutedBy: caller.MinecraftUsername,
		ExecutedAt: s.now().UTC(),
	}
	err := s.commands.AppendCommand(ctx, cmd)
	s.audit.Record(audit.ActionLogCommand, caller.MinecraftUsername, cmd.ID, command, err)
	if err != nil {
		return nil, err
	}

	s.metrics.AdminCommandLogged()
	log.Ctx(ctx).Info().Str("command", command).Str("by", caller.MinecraftUsername).Msg("Admin command logged")
	return cmd, nil
}

// CommandHistory returns the latest logged commands, newest first.
func (s *AdminService) CommandHistory(ctx context.Context) ([]*domain.AdminCommand, error) {
	return s.commands.RecentCommands(ctx, commandHistoryLimit)
}
