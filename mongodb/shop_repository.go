package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.pilab.hu/mcportal/domain"
)

// ShopItemRepository implements domain.ShopItemRepository.
type ShopItemRepository struct {
	items *mongo.Collection
}

// NewShopItemRepository creates a new ShopItemRepository.
func NewShopItemRepository(ctx context.Context, db *mongo.Database) (*ShopItemRepository, error) {
	repo := &ShopItemRepository{items: db.Collection(ShopItemsCollection)}

	_, err := repo.items.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "in_stock", Value: 1}, {Key: "category", Value: 1}},
	})
	if err != nil {
		log.Warn().Err(err).Msg("Issue creating indexes for shop_items collection")
	}

	return repo, nil
}

// CreateItem inserts a new catalog item.
func (r *ShopItemRepository) CreateItem(ctx context.Context, item *domain.ShopItem) error {
	now := time.Now().UTC()
	if item.ID == "" {
		item.ID = NewID()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now

	if _, err := r.items.InsertOne(ctx, item); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("shop item %q: %w", item.ID, domain.ErrDuplicate)
		}
		log.Error().Err(err).Str("itemID", item.ID).Msg("Error creating shop item")
		return err
	}
	return nil
}

// GetItem retrieves an item by ID.
func (r *ShopItemRepository) GetItem(ctx context.Context, id string) (*domain.ShopItem, error) {
	var item domain.ShopItem
	if err := r.items.FindOne(ctx, bson.M{"_id": id}).Decode(&item); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrItemNotFound
		}
		log.Error().Err(err).Str("itemID", id).Msg("Error getting shop item")
		return nil, err
	}
	return &item, nil
}

// UpdateItem replaces the stored item, keeping its creation time.
func (r *ShopItemRepository) UpdateItem(ctx context.Context, item *domain.ShopItem) error {
	item.UpdatedAt = time.Now().UTC()

	update := bson.M{"$set": bson.M{
		"name":        item.Name,
		"description": item.Description,
		"price":       item.Price,
		"category":    item.Category,
		"in_stock":    item.InStock,
		"updated_at":  item.UpdatedAt,
	}}

	result, err := r.items.UpdateOne(ctx, bson.M{"_id": item.ID}, update)
	if err != nil {
		log.Error().Err(err).Str("itemID", item.ID).Msg("Error updating shop item")
		return err
	}
	if result.MatchedCount == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

// DeleteItem removes an item.
func (r *ShopItemRepository) DeleteItem(ctx context.Context, id string) error {
	result, err := r.items.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		log.Error().Err(err).Str("itemID", id).Msg("Error deleting shop item")
		return err
	}
	if result.DeletedCount == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

// ListItems returns catalog items ordered by category and name.
func (r *ShopItemRepository) ListItems(ctx context.Context, inStockOnly bool) ([]*domain.ShopItem, error) {
	filter := bson.M{}
	if inStockOnly {
		filter["in_stock"] = true
	}
	opts := options.Find().SetSort(bson.D{{Key: "category", Value: 1}, {Key: "name", Value: 1}})

	cursor, err := r.items.Find(ctx, filter, opts)
	if err != nil {
		log.Error().Err(err).Msg("Error listing shop items")
		return nil, err
	}
	defer cursor.Close(ctx)

	items := []*domain.ShopItem{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// CountItems returns the number of catalog items.
func (r *ShopItemRepository) CountItems(ctx context.Context) (int64, error) {
	return r.items.CountDocuments(ctx, bson.M{})
}

var _ domain.ShopItemRepository = (*ShopItemRepository)(nil)
