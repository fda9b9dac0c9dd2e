package domain

import (
	"context"
	"time"
)

// UserRepository defines persistence for users.
type UserRepository interface {
	// CreateUser inserts a new user. It returns ErrDuplicate when the id or
	// username is already taken.
	CreateUser(ctx context.Context, user *User) error
	GetUserByID(ctx context.Context, id string) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	// RecordLogin increments login_count, sets last_login and returns the
	// updated document.
	RecordLogin(ctx context.Context, id string, at time.Time) (*User, error)
	TouchLastSeen(ctx context.Context, id string, at time.Time) error
	SetAdmin(ctx context.Context, id string, isAdmin bool) error
	DeleteUser(ctx context.Context, id string) error
	ListUsers(ctx context.Context) ([]*User, error)
	// CountUsers returns the total number of users and the number of admins.
	CountUsers(ctx context.Context) (total int64, admins int64, err error)
	// RecentLogins returns users ordered by last_login, newest first.
	RecentLogins(ctx context.Context, limit int) ([]*User, error)
	// AnyAdmin reports whether at least one admin exists.
	AnyAdmin(ctx context.Context) (bool, error)
}

// ShopItemRepository defines persistence for the shop catalog.
type ShopItemRepository interface {
	CreateItem(ctx context.Context, item *ShopItem) error
	GetItem(ctx context.Context, id string) (*ShopItem, error)
	UpdateItem(ctx context.Context, item *ShopItem) error
	DeleteItem(ctx context.Context, id string) error
	ListItems(ctx context.Context, inStockOnly bool) ([]*ShopItem, error)
	CountItems(ctx context.Context) (int64, error)
}

// PurchaseRepository defines persistence for purchases.
type PurchaseRepository interface {
	CreatePurchase(ctx context.Context, purchase *Purchase) error
	ListPurchasesByUser(ctx context.Context, userID string) ([]*Purchase, error)
	ListPurchases(ctx context.Context) ([]*Purchase, error)
	Totals(ctx context.Context) (*PurchaseTotals, error)
}

// LoginLogRepository defines the append-only login audit trail.
type LoginLogRepository interface {
	AppendLoginLog(ctx context.Context, entry *LoginLog) error
	RecentLoginLogs(ctx context.Context, limit int) ([]*LoginLog, error)
	LoginCountsByUser(ctx context.Context, limit int) ([]*UserLoginCount, error)
}

// ServerLogRepository defines the append-only server status samples.
type ServerLogRepository interface {
	AppendServerLog(ctx context.Context, entry *ServerLog) error
	RecentServerLogs(ctx context.Context, limit int) ([]*ServerLog, error)
	Summary(ctx context.Context) (*ServerLogSummary, error)
}

// CommandRepository defines the append-only admin command log.
type CommandRepository interface {
	AppendCommand(ctx context.Context, cmd *AdminCommand) error
	RecentCommands(ctx context.Context, limit int) ([]*AdminCommand, error)
}
