// Package memstore is an in-process implementation of the domain
// repositories. It follows the MongoDB repositories' semantics (generated
// ids, unique usernames, newest-first listings) and is used for local runs
// without a database and in tests.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.pilab.hu/mcportal/domain"
)

// Store holds every collection behind a single lock.
type Store struct {
	mu         sync.RWMutex
	users      map[string]*domain.User
	items      map[string]*domain.ShopItem
	purchases  []*domain.Purchase
	loginLogs  []*domain.LoginLog
	serverLogs []*domain.ServerLog
	commands   []*domain.AdminCommand
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		users: make(map[string]*domain.User),
		items: make(map[string]*domain.ShopItem),
	}
}

func newID() string { return uuid.NewString() }

func copyUser(u *domain.User) *domain.User {
	c := *u
	return &c
}

func copyItem(i *domain.ShopItem) *domain.ShopItem {
	c := *i
	return &c
}

// UserRepository returns the store as a domain.UserRepository.
func (s *Store) UserRepository() domain.UserRepository { return (*userRepo)(s) }

// ShopItemRepository returns the store as a domain.ShopItemRepository.
func (s *Store) ShopItemRepository() domain.ShopItemRepository { return (*itemRepo)(s) }

// PurchaseRepository returns the store as a domain.PurchaseRepository.
func (s *Store) PurchaseRepository() domain.PurchaseRepository { return (*purchaseRepo)(s) }

// LoginLogRepository returns the store as a domain.LoginLogRepository.
func (s *Store) LoginLogRepository() domain.LoginLogRepository { return (*loginLogRepo)(s) }

// ServerLogRepository returns the store as a domain.ServerLogRepository.
func (s *Store) ServerLogRepository() domain.ServerLogRepository { return (*serverLogRepo)(s) }

// CommandRepository returns the store as a domain.CommandRepository.
func (s *Store) CommandRepository() domain.CommandRepository { return (*commandRepo)(s) }

type userRepo Store

func (r *userRepo) CreateUser(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user.ID == "" {
		user.ID = newID()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	if _, ok := r.users[user.ID]; ok {
		return domain.ErrDuplicate
	}
	for _, u := range r.users {
		if u.MinecraftUsername == user.MinecraftUsername {
			return domain.ErrDuplicate
		}
	}
	r.users[user.ID] = copyUser(user)
	return nil
}

func (r *userRepo) GetUserByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return copyUser(u), nil
}

func (r *userRepo) GetUserByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.MinecraftUsername == username {
			return copyUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *userRepo) RecordLogin(_ context.Context, id string, at time.Time) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u.LoginCount++
	u.LastLogin = &at
	return copyUser(u), nil
}

func (r *userRepo) TouchLastSeen(_ context.Context, id string, at time.Time) error {
	return r.update(id, func(u *domain.User) { u.LastSeen = &at })
}

func (r *userRepo) SetAdmin(_ context.Context, id string, isAdmin bool) error {
	return r.update(id, func(u *domain.User) { u.IsAdmin = isAdmin })
}

func (r *userRepo) update(id string, fn func(*domain.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	fn(u)
	return nil
}

func (r *userRepo) DeleteUser(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *userRepo) sorted(less func(a, b *domain.User) bool, keep func(*domain.User) bool) []*domain.User {
	out := []*domain.User{}
	for _, u := range r.users {
		if keep == nil || keep(u) {
			out = append(out, copyUser(u))
		}
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func (r *userRepo) ListUsers(_ context.Context) ([]*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.sorted(func(a, b *domain.User) bool { return a.CreatedAt.After(b.CreatedAt) }, nil), nil
}

func (r *userRepo) CountUsers(_ context.Context) (int64, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var admins int64
	for _, u := range r.users {
		if u.IsAdmin {
			admins++
		}
	}
	return int64(len(r.users)), admins, nil
}

func (r *userRepo) RecentLogins(_ context.Context, limit int) ([]*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := r.sorted(
		func(a, b *domain.User) bool { return a.LastLogin.After(*b.LastLogin) },
		func(u *domain.User) bool { return u.LastLogin != nil },
	)
	return head(out, limit), nil
}

func (r *userRepo) AnyAdmin(_ context.Context) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.IsAdmin {
			return true, nil
		}
	}
	return false, nil
}

type itemRepo Store

func (r *itemRepo) CreateItem(_ context.Context, item *domain.ShopItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if item.ID == "" {
		item.ID = newID()
	}
	if _, ok := r.items[item.ID]; ok {
		return domain.ErrDuplicate
	}
	r.items[item.ID] = copyItem(item)
	return nil
}

func (r *itemRepo) GetItem(_ context.Context, id string) (*domain.ShopItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.items[id]
	if !ok {
		return nil, domain.ErrItemNotFound
	}
	return copyItem(i), nil
}

func (r *itemRepo) UpdateItem(_ context.Context, item *domain.ShopItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.items[item.ID]
	if !ok {
		return domain.ErrItemNotFound
	}
	updated := copyItem(item)
	updated.CreatedAt = existing.CreatedAt
	r.items[item.ID] = updated
	return nil
}

func (r *itemRepo) DeleteItem(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return domain.ErrItemNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *itemRepo) ListItems(_ context.Context, inStockOnly bool) ([]*domain.ShopItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*domain.ShopItem{}
	for _, i := range r.items {
		if inStockOnly && !i.InStock {
			continue
		}
		out = append(out, copyItem(i))
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].Category != out[b].Category {
			return out[a].Category < out[b].Category
		}
		return strings.Compare(out[a].Name, out[b].Name) < 0
	})
	return out, nil
}

func (r *itemRepo) CountItems(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return int64(len(r.items)), nil
}

type purchaseRepo Store

func (r *purchaseRepo) CreatePurchase(_ context.Context, p *domain.Purchase) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p.ID == "" {
		p.ID = newID()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	c := *p
	r.purchases = append(r.purchases, &c)
	return nil
}

func (r *purchaseRepo) list(keep func(*domain.Purchase) bool) []*domain.Purchase {
	out := []*domain.Purchase{}
	for i := len(r.purchases) - 1; i >= 0; i-- {
		if keep(r.purchases[i]) {
			c := *r.purchases[i]
			out = append(out, &c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *purchaseRepo) ListPurchasesByUser(_ context.Context, userID string) ([]*domain.Purchase, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.list(func(p *domain.Purchase) bool { return p.UserID == userID }), nil
}

func (r *purchaseRepo) ListPurchases(_ context.Context) ([]*domain.Purchase, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.list(func(*domain.Purchase) bool { return true }), nil
}

func (r *purchaseRepo) Totals(_ context.Context) (*domain.PurchaseTotals, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	totals := &domain.PurchaseTotals{Count: int64(len(r.purchases))}
	for _, p := range r.purchases {
		if p.Status != domain.PurchaseStatusCancelled {
			totals.Revenue += p.Price
		}
	}
	return totals, nil
}

type loginLogRepo Store

func (r *loginLogRepo) AppendLoginLog(_ context.Context, entry *domain.LoginLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entry.ID == "" {
		entry.ID = newID()
	}
	if entry.LoggedInAt.IsZero() {
		entry.LoggedInAt = time.Now().UTC()
	}
	c := *entry
	r.loginLogs = append(r.loginLogs, &c)
	return nil
}

func (r *loginLogRepo) RecentLoginLogs(_ context.Context, limit int) ([]*domain.LoginLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.LoginLog, 0, len(r.loginLogs))
	for i := len(r.loginLogs) - 1; i >= 0; i-- {
		c := *r.loginLogs[i]
		out = append(out, &c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].LoggedInAt.After(out[j].LoggedInAt) })
	return head(out, limit), nil
}

func (r *loginLogRepo) LoginCountsByUser(_ context.Context, limit int) ([]*domain.UserLoginCount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	byUser := map[string]*domain.UserLoginCount{}
	for _, l := range r.loginLogs {
		c, ok := byUser[l.UserID]
		if !ok {
			c = &domain.UserLoginCount{UserID: l.UserID}
			byUser[l.UserID] = c
		}
		c.Username = l.Username
		c.Count++
		if l.LoggedInAt.After(c.LastLogin) {
			c.LastLogin = l.LoggedInAt
		}
	}

	out := make([]*domain.UserLoginCount, 0, len(byUser))
	for _, c := range byUser {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].LastLogin.After(out[j].LastLogin)
	})
	return head(out, limit), nil
}

type serverLogRepo Store

func (r *serverLogRepo) AppendServerLog(_ context.Context, entry *domain.ServerLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entry.ID == "" {
		entry.ID = newID()
	}
	if entry.RecordedAt.IsZero() {
		entry.RecordedAt = time.Now().UTC()
	}
	c := *entry
	r.serverLogs = append(r.serverLogs, &c)
	return nil
}

func (r *serverLogRepo) RecentServerLogs(_ context.Context, limit int) ([]*domain.ServerLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.ServerLog, 0, len(r.serverLogs))
	for i := len(r.serverLogs) - 1; i >= 0; i-- {
		c := *r.serverLogs[i]
		out = append(out, &c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].RecordedAt.After(out[j].RecordedAt) })
	return head(out, limit), nil
}

func (r *serverLogRepo) Summary(_ context.Context) (*domain.ServerLogSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	summary := &domain.ServerLogSummary{Samples: int64(len(r.serverLogs))}
	if summary.Samples == 0 {
		return summary, nil
	}
	var players, latency float64
	for _, l := range r.serverLogs {
		players += float64(l.PlayersOnline)
		latency += l.LatencyMs
		if l.PlayersOnline > summary.MaxPlayersOnline {
			summary.MaxPlayersOnline = l.PlayersOnline
		}
	}
	summary.AvgPlayersOnline = players / float64(summary.Samples)
	summary.AvgLatencyMs = latency / float64(summary.Samples)
	return summary, nil
}

type commandRepo Store

func (r *commandRepo) AppendCommand(_ context.Context, cmd *domain.AdminCommand) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cmd.ID == "" {
		cmd.ID = newID()
	}
	if cmd.ExecutedAt.IsZero() {
		cmd.ExecutedAt = time.Now().UTC()
	}
	c := *cmd
	r.commands = append(r.commands, &c)
	return nil
}

func (r *commandRepo) RecentCommands(_ context.Context, limit int) ([]*domain.AdminCommand, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.AdminCommand, 0, len(r.commands))
	for i := len(r.commands) - 1; i >= 0; i-- {
		c := *r.commands[i]
		out = append(out, &c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ExecutedAt.After(out[j].ExecutedAt) })
	return head(out, limit), nil
}

func head[T any](s []T, limit int) []T {
	if limit > 0 && len(s) > limit {
		return s[:limit]
	}
	return s
}

var (
	_ domain.UserRepository      = (*userRepo)(nil)
	_ domain.ShopItemRepository  = (*itemRepo)(nil)
	_ domain.PurchaseRepository  = (*purchaseRepo)(nil)
	_ domain.LoginLogRepository  = (*loginLogRepo)(nil)
	_ domain.ServerLogRepository = (*serverLogRepo)(nil)
	_ domain.CommandRepository   = (*commandRepo)(nil)
)
