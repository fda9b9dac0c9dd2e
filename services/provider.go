package services

import (
	"go.pilab.hu/mcportal/domain"
	"go.pilab.hu/mcportal/internal/audit"
	"go.pilab.hu/mcportal/internal/auth"
	"go.pilab.hu/mcportal/internal/federation"
	"go.pilab.hu/mcportal/internal/metrics"
)

// RepositoryProvider gives access to every repository of one storage
// backend. Both the MongoDB and the in-memory backends implement it.
type RepositoryProvider interface {
	UserRepository() domain.UserRepository
	ShopItemRepository() domain.ShopItemRepository
	PurchaseRepository() domain.PurchaseRepository
	LoginLogRepository() domain.LoginLogRepository
	ServerLogRepository() domain.ServerLogRepository
	CommandRepository() domain.CommandRepository
}

// Dependencies are the non-repository collaborators of the services.
type Dependencies struct {
	Identity   federation.IdentityProvider
	Sessions   *auth.SessionIssuer
	Pinger     StatusPinger
	ServerAddr string
	Metrics    *metrics.Collector
	Audit      *audit.Logger
}

// Services holds one instance of every service.
type Services struct {
	Auth   *AuthService
	Users  *UserService
	Shop   *ShopService
	Status *StatusService
	Admin  *AdminService
}

// NewServices wires every service on top of repos.
func NewServices(repos RepositoryProvider, deps Dependencies) *Services {
	status := NewStatusService(deps.Pinger, deps.ServerAddr, repos.ServerLogRepository(), deps.Metrics)

	return &Services{
		Auth: NewAuthService(
			repos.UserRepository(),
			repos.LoginLogRepository(),
			deps.Identity,
			deps.Sessions,
			deps.Metrics,
			deps.Audit,
		),
		Users: NewUserService(repos.UserRepository(), deps.Audit),
		Shop: NewShopService(
			repos.ShopItemRepository(),
			repos.PurchaseRepository(),
			deps.Metrics,
			deps.Audit,
		),
		Status: status,
		Admin: NewAdminService(AdminServiceDeps{
			Users:      repos.UserRepository(),
			Items:      repos.ShopItemRepository(),
			Purchases:  repos.PurchaseRepository(),
			LoginLogs:  repos.LoginLogRepository(),
			ServerLogs: repos.ServerLogRepository(),
			Commands:   repos.CommandRepository(),
			Status:     status,
			Metrics:    deps.Metrics,
			Audit:      deps.Audit,
		}),
	}
}
