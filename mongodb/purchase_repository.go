package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.pilab.hu/mcportal/domain"
)

// PurchaseRepository implements domain.PurchaseRepository.
type PurchaseRepository struct {
	purchases *mongo.Collection
}

// NewPurchaseRepository creates a new PurchaseRepository.
func NewPurchaseRepository(ctx context.Context, db *mongo.Database) (*PurchaseRepository, error) {
	repo := &PurchaseRepository{purchases: db.Collection(PurchasesCollection)}

	_, err := repo.purchases.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
	})
	if err != nil {
		log.Warn().Err(err).Msg("Issue creating indexes for purchases collection")
	}

	return repo, nil
}

// CreatePurchase inserts a purchase.
func (r *PurchaseRepository) CreatePurchase(ctx context.Context, purchase *domain.Purchase) error {
	if purchase.ID == "" {
		purchase.ID = NewID()
	}
	if purchase.CreatedAt.IsZero() {
		purchase.CreatedAt = time.Now().UTC()
	}

	if _, err := r.purchases.InsertOne(ctx, purchase); err != nil {
		log.Error().Err(err).Str("userID", purchase.UserID).Str("itemID", purchase.ItemID).
			Msg("Error creating purchase")
		return err
	}
	return nil
}

// ListPurchasesByUser returns the user's purchases, newest first.
func (r *PurchaseRepository) ListPurchasesByUser(ctx context.Context, userID string) ([]*domain.Purchase, error) {
	return r.find(ctx, bson.M{"user_id": userID})
}

// ListPurchases returns all purchases, newest first.
func (r *PurchaseRepository) ListPurchases(ctx context.Context) ([]*domain.Purchase, error) {
	return r.find(ctx, bson.M{})
}

func (r *PurchaseRepository) find(ctx context.Context, filter bson.M) ([]*domain.Purchase, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.purchases.Find(ctx, filter, opts)
	if err != nil {
		log.Error().Err(err).Msg("Error listing purchases")
		return nil, err
	}
	defer cursor.Close(ctx)

	purchases := []*domain.Purchase{}
	if err := cursor.All(ctx, &purchases); err != nil {
		return nil, err
	}
	return purchases, nil
}

// Totals counts all purchases and sums the price of those not cancelled.
func (r *PurchaseRepository) Totals(ctx context.Context) (*domain.PurchaseTotals, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "revenue", Value: bson.D{{Key: "$sum", Value: bson.D{
				{Key: "$cond", Value: bson.A{
					bson.D{{Key: "$eq", Value: bson.A{"$status", string(domain.PurchaseStatusCancelled)}}},
					0,
					"$price",
				}},
			}}}},
		}}},
	}

	cursor, err := r.purchases.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate purchase totals: %w", err)
	}
	defer cursor.Close(ctx)

	totals := &domain.PurchaseTotals{}
	if cursor.Next(ctx) {
		if err := cursor.Decode(totals); err != nil {
			return nil, fmt.Errorf("decode purchase totals: %w", err)
		}
	}
	return totals, cursor.Err()
}

var _ domain.PurchaseRepository = (*PurchaseRepository)(nil)
