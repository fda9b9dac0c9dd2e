package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.pilab.hu/mcportal/domain"
)

// Repositories bundles every repository backed by one database.
type Repositories struct {
	users      *UserRepository
	shopItems  *ShopItemRepository
	purchases  *PurchaseRepository
	loginLogs  *LoginLogRepository
	serverLogs *ServerLogRepository
	commands   *CommandRepository
}

// NewRepositories creates all repositories and ensures their indexes.
func NewRepositories(ctx context.Context, db *mongo.Database) (*Repositories, error) {
	users, err := NewUserRepository(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("user repository: %w", err)
	}
	items, err := NewShopItemRepository(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("shop item repository: %w", err)
	}
	purchases, err := NewPurchaseRepository(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("purchase repository: %w", err)
	}
	loginLogs, err := NewLoginLogRepository(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("login log repository: %w", err)
	}
	serverLogs, err := NewServerLogRepository(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("server log repository: %w", err)
	}
	commands, err := NewCommandRepository(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("command repository: %w", err)
	}

	return &Repositories{
		users:      users,
		shopItems:  items,
		purchases:  purchases,
		loginLogs:  loginLogs,
		serverLogs: serverLogs,
		commands:   commands,
	}, nil
}

func (r *Repositories) UserRepository() domain.UserRepository           { return r.users }
func (r *Repositories) ShopItemRepository() domain.ShopItemRepository   { return r.shopItems }
func (r *Repositories) PurchaseRepository() domain.PurchaseRepository   { return r.purchases }
func (r *Repositories) LoginLogRepository() domain.LoginLogRepository   { return r.loginLogs }
func (r *Repositories) ServerLogRepository() domain.ServerLogRepository { return r.serverLogs }
func (r *Repositories) CommandRepository() domain.CommandRepository     { return r.commands }
