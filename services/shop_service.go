package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"go.pilab.hu/mcportal/domain"
	"go.pilab.hu/mcportal/internal/audit"
	"go.pilab.hu/mcportal/internal/metrics"
)

// ShopItemInput carries the writable fields of a shop item.
type ShopItemInput struct {
	Name        string
	Description string
	Price       float64
	Category    string
	InStock     bool
}

func (in *ShopItemInput) validate() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.TrimSpace(in.Category)
	if in.Name == "" {
		return fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}
	if in.Price < 0 || math.IsNaN(in.Price) || math.IsInf(in.Price, 0) {
		return fmt.Errorf("%w: price must be a non-negative number", domain.ErrInvalidInput)
	}
	return nil
}

// ShopService manages the catalog and purchases.
type ShopService struct {
	items     domain.ShopItemRepository
	purchases domain.PurchaseRepository
	metrics   *metrics.Collector
	audit     *audit.Logger
	now       func() time.Time
}

// NewShopService creates a new ShopService.
func NewShopService(
	items domain.ShopItemRepository,
	purchases domain.PurchaseRepository,
	collector *metrics.Collector,
	auditLog *audit.Logger,
) *ShopService {
	return &ShopService{
		items:     items,
		purchases: purchases,
		metrics:   collector,
		audit:     auditLog,
		now:       time.Now,
	}
}

// ListItems returns the catalog. Players only see items in stock.
func (s *ShopService) ListItems(ctx context.Context, includeOutOfStock bool) ([]*domain.ShopItem, error) {
	return s.items.ListItems(ctx, !includeOutOfStock)
}

func (s *ShopService) GetItem(ctx context.Context, id string) (*domain.ShopItem, error) {
	return s.items.GetItem(ctx, id)
}

func (s *ShopService) CreateItem(ctx context.Context, caller *domain.User, in ShopItemInput) (*domain.ShopItem, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	item := &domain.ShopItem{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Category:    in.Category,
		InStock:     in.InStock,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err := s.items.CreateItem(ctx, item)
	s.audit.Record(audit.ActionCreateItem, caller.MinecraftUsername, item.ID, item.Name, err)
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (s *ShopService) UpdateItem(ctx context.Context, caller *domain.User, id string, in ShopItemInput) (*domain.ShopItem, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	item, err := s.items.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	item.Name = in.Name
	item.Description = in.Description
	item.Price = in.Price
	item.Category = in.Category
	item.InStock = in.InStock
	item.UpdatedAt = s.now().UTC()

	err = s.items.UpdateItem(ctx, item)
	s.audit.Record(audit.ActionUpdateItem, caller.MinecraftUsername, id, item.Name, err)
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (s *ShopService) DeleteItem(ctx context.Context, caller *domain.User, id string) error {
	err := s.items.DeleteItem(ctx, id)
	s.audit.Record(audit.ActionDeleteItem, caller.MinecraftUsername, id, "", err)
	return err
}

// Purchase records a pending purchase of itemID for buyer. The item's name
// and price are copied into the purchase.
func (s *ShopService) Purchase(ctx context.Context, buyer *domain.User, itemID string) (*domain.Purchase, error) {
	item, err := s.items.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if !item.InStock {
		return nil, domain.ErrItemOutOfStock
	}

	purchase := &domain.Purchase{
		UserID:    buyer.ID,
		Username:  buyer.MinecraftUsername,
		ItemID:    item.ID,
		ItemName:  item.Name,
		Price:     item.Price,
		Status:    domain.PurchaseStatusPending,
		CreatedAt: s.now().UTC(),
	}
	if err := s.purchases.CreatePurchase(ctx, purchase); err != nil {
		return nil, fmt.Errorf("create purchase: %w", err)
	}

	s.metrics.PurchaseCreated()
	log.Ctx(ctx).Info().
		Str("purchaseID", purchase.ID).
		Str("userID", buyer.ID).
		Str("itemID", item.ID).
		Msg("Purchase created")
	return purchase, nil
}

// UserPurchases returns the purchases of userID, newest first.
func (s *ShopService) UserPurchases(ctx context.Context, userID string) ([]*domain.Purchase, error) {
	return s.purchases.ListPurchasesByUser(ctx, userID)
}

// AllPurchases returns every purchase, newest first.
func (s *ShopService) AllPurchases(ctx context.Context) ([]*domain.Purchase, error) {
	return s.purchases.ListPurchases(ctx)
}
