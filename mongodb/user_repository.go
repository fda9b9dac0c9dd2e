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

// UserRepository implements domain.UserRepository
type UserRepository struct {
	users *mongo.Collection
}

// NewUserRepository creates a new UserRepository and ensures its indexes.
func NewUserRepository(ctx context.Context, db *mongo.Database) (*UserRepository, error) {
	repo := &UserRepository{
		users: db.Collection(UsersCollection),
	}
	if err := repo.createIndexes(ctx); err != nil {
		// Existing compatible indexes make this fail on some deployments; the
		// application can still serve requests.
		log.Warn().Err(err).Msg("Failed to create user indexes")
	}
	return repo, nil
}

func (r *UserRepository) createIndexes(ctx context.Context) error {
	indexModels := []mongo.IndexModel{
		{
			// The unique username index turns concurrent first logins into a
			// duplicate key error instead of two user records.
			Keys:    bson.D{{Key: "minecraft_username", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "last_login", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "is_admin", Value: 1}},
		},
	}

	if _, err := r.users.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create indexes for users collection: %w", err)
	}
	log.Info().Msg("Indexes for users collection ensured.")
	return nil
}

// CreateUser inserts a new user.
func (r *UserRepository) CreateUser(ctx context.Context, user *domain.User) error {
	if user.ID == "" {
		user.ID = NewID()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	_, err := r.users.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("user %q: %w", user.MinecraftUsername, domain.ErrDuplicate)
		}
		log.Error().Err(err).Str("username", user.MinecraftUsername).Msg("Error creating user in MongoDB")
		return err
	}
	return nil
}

// GetUserByID retrieves a user by their ID.
func (r *UserRepository) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// GetUserByUsername retrieves a user by their Minecraft username.
func (r *UserRepository) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"minecraft_username": username})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var user domain.User
	err := r.users.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		log.Error().Err(err).Interface("filter", filter).Msg("Error getting user from MongoDB")
		return nil, err
	}
	return &user, nil
}

// RecordLogin bumps the login counter and last_login in a single update and
// returns the document after the update.
func (r *UserRepository) RecordLogin(ctx context.Context, id string, at time.Time) (*domain.User, error) {
	update := bson.M{
		"$inc": bson.M{"login_count": 1},
		"$set": bson.M{"last_login": at},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var user domain.User
	err := r.users.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		log.Error().Err(err).Str("userID", id).Msg("Error recording login in MongoDB")
		return nil, err
	}
	return &user, nil
}

// TouchLastSeen sets last_seen for the user.
func (r *UserRepository) TouchLastSeen(ctx context.Context, id string, at time.Time) error {
	return r.updateFields(ctx, id, bson.M{"last_seen": at})
}

// SetAdmin sets the admin flag.
func (r *UserRepository) SetAdmin(ctx context.Context, id string, isAdmin bool) error {
	return r.updateFields(ctx, id, bson.M{"is_admin": isAdmin})
}

func (r *UserRepository) updateFields(ctx context.Context, id string, fields bson.M) error {
	result, err := r.users.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		log.Error().Err(err).Str("userID", id).Msg("Error updating user in MongoDB")
		return err
	}
	if result.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// DeleteUser removes a user by their ID.
func (r *UserRepository) DeleteUser(ctx context.Context, id string) error {
	result, err := r.users.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		log.Error().Err(err).Str("id", id).Msg("Error deleting user from MongoDB")
		return err
	}
	if result.DeletedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// ListUsers returns all users, newest first.
func (r *UserRepository) ListUsers(ctx context.Context) ([]*domain.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return r.find(ctx, bson.M{}, opts)
}

// CountUsers returns the total number of users and the number of admins.
func (r *UserRepository) CountUsers(ctx context.Context) (int64, int64, error) {
	total, err := r.users.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, 0, fmt.Errorf("count users: %w", err)
	}
	admins, err := r.users.CountDocuments(ctx, bson.M{"is_admin": true})
	if err != nil {
		return 0, 0, fmt.Errorf("count admins: %w", err)
	}
	return total, admins, nil
}

// RecentLogins returns the users who logged in most recently.
func (r *UserRepository) RecentLogins(ctx context.Context, limit int) ([]*domain.User, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "last_login", Value: -1}}).
		SetLimit(int64(limit))
	return r.find(ctx, bson.M{"last_login": bson.M{"$ne": nil}}, opts)
}

// AnyAdmin reports whether at least one admin exists.
func (r *UserRepository) AnyAdmin(ctx context.Context) (bool, error) {
	n, err := r.users.CountDocuments(ctx, bson.M{"is_admin": true}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *UserRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*domain.User, error) {
	cursor, err := r.users.Find(ctx, filter, opts)
	if err != nil {
		log.Error().Err(err).Msg("Error listing users from MongoDB")
		return nil, err
	}
	defer cursor.Close(ctx)

	users := []*domain.User{}
	if err = cursor.All(ctx, &users); err != nil {
		log.Error().Err(err).Msg("Error decoding listed users from MongoDB")
		return nil, err
	}
	return users, nil
}

// Ensure interface compliance
var _ domain.UserRepository = (*UserRepository)(nil)
