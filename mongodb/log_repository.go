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

// LoginLogRepository implements domain.LoginLogRepository. Entries are never
// updated or deleted.
type LoginLogRepository struct {
	logs *mongo.Collection
}

// NewLoginLogRepository creates a new LoginLogRepository.
func NewLoginLogRepository(ctx context.Context, db *mongo.Database) (*LoginLogRepository, error) {
	repo := &LoginLogRepository{logs: db.Collection(LoginLogsCollection)}
	ensureIndex(ctx, repo.logs, bson.D{{Key: "logged_in_at", Value: -1}})
	ensureIndex(ctx, repo.logs, bson.D{{Key: "user_id", Value: 1}})
	return repo, nil
}

// AppendLoginLog inserts a login record.
func (r *LoginLogRepository) AppendLoginLog(ctx context.Context, entry *domain.LoginLog) error {
	if entry.ID == "" {
		entry.ID = NewID()
	}
	if entry.LoggedInAt.IsZero() {
		entry.LoggedInAt = time.Now().UTC()
	}
	if _, err := r.logs.InsertOne(ctx, entry); err != nil {
		log.Error().Err(err).Str("userID", entry.UserID).Msg("Error appending login log")
		return err
	}
	return nil
}

// RecentLoginLogs returns the latest login records.
func (r *LoginLogRepository) RecentLoginLogs(ctx context.Context, limit int) ([]*domain.LoginLog, error) {
	entries := []*domain.LoginLog{}
	err := findRecent(ctx, r.logs, "logged_in_at", limit, &entries)
	return entries, err
}

// LoginCountsByUser groups login records per user, most active first.
func (r *LoginLogRepository) LoginCountsByUser(ctx context.Context, limit int) ([]*domain.UserLoginCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$user_id"},
			{Key: "username", Value: bson.D{{Key: "$last", Value: "$username"}}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "last_login", Value: bson.D{{Key: "$max", Value: "$logged_in_at"}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "last_login", Value: -1}}}},
		{{Key: "$limit", Value: limit}},
	}

	cursor, err := r.logs.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate login counts: %w", err)
	}
	defer cursor.Close(ctx)

	counts := []*domain.UserLoginCount{}
	if err := cursor.All(ctx, &counts); err != nil {
		return nil, fmt.Errorf("decode login counts: %w", err)
	}
	return counts, nil
}

// ServerLogRepository implements domain.ServerLogRepository.
type ServerLogRepository struct {
	logs *mongo.Collection
}

// NewServerLogRepository creates a new ServerLogRepository.
func NewServerLogRepository(ctx context.Context, db *mongo.Database) (*ServerLogRepository, error) {
	repo := &ServerLogRepository{logs: db.Collection(ServerLogsCollection)}
	ensureIndex(ctx, repo.logs, bson.D{{Key: "recorded_at", Value: -1}})
	return repo, nil
}

// AppendServerLog inserts a status sample.
func (r *ServerLogRepository) AppendServerLog(ctx context.Context, entry *domain.ServerLog) error {
	if entry.ID == "" {
		entry.ID = NewID()
	}
	if entry.RecordedAt.IsZero() {
		entry.RecordedAt = time.Now().UTC()
	}
	if _, err := r.logs.InsertOne(ctx, entry); err != nil {
		log.Error().Err(err).Msg("Error appending server log")
		return err
	}
	return nil
}

// RecentServerLogs returns the latest status samples.
func (r *ServerLogRepository) RecentServerLogs(ctx context.Context, limit int) ([]*domain.ServerLog, error) {
	entries := []*domain.ServerLog{}
	err := findRecent(ctx, r.logs, "recorded_at", limit, &entries)
	return entries, err
}

// Summary computes averages over every stored sample.
func (r *ServerLogRepository) Summary(ctx context.Context) (*domain.ServerLogSummary, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "samples", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "avg_players_online", Value: bson.D{{Key: "$avg", Value: "$players_online"}}},
			{Key: "max_players_online", Value: bson.D{{Key: "$max", Value: "$players_online"}}},
			{Key: "avg_latency_ms", Value: bson.D{{Key: "$avg", Value: "$latency_ms"}}},
		}}},
	}

	cursor, err := r.logs.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate server log summary: %w", err)
	}
	defer cursor.Close(ctx)

	summary := &domain.ServerLogSummary{}
	if cursor.Next(ctx) {
		if err := cursor.Decode(summary); err != nil {
			return nil, fmt.Errorf("decode server log summary: %w", err)
		}
	}
	return summary, cursor.Err()
}

// CommandRepository implements domain.CommandRepository.
type CommandRepository struct {
	commands *mongo.Collection
}

// NewCommandRepository creates a new CommandRepository.
func NewCommandRepository(ctx context.Context, db *mongo.Database) (*CommandRepository, error) {
	repo := &CommandRepository{commands: db.Collection(AdminCommandsCollection)}
	ensureIndex(ctx, repo.commands, bson.D{{Key: "executed_at", Value: -1}})
	return repo, nil
}

// AppendCommand inserts a command record.
func (r *CommandRepository) AppendCommand(ctx context.Context, cmd *domain.AdminCommand) error {
	if cmd.ID == "" {
		cmd.ID = NewID()
	}
	if cmd.ExecutedAt.IsZero() {
		cmd.ExecutedAt = time.Now().UTC()
	}
	if _, err := r.commands.InsertOne(ctx, cmd); err != nil {
		log.Error().Err(err).Str("executedBy", cmd.ExecutedBy).Msg("Error appending admin command")
		return err
	}
	return nil
}

// RecentCommands returns the latest commands.
func (r *CommandRepository) RecentCommands(ctx context.Context, limit int) ([]*domain.AdminCommand, error) {
	cmds := []*domain.AdminCommand{}
	err := findRecent(ctx, r.commands, "executed_at", limit, &cmds)
	return cmds, err
}

func ensureIndex(ctx context.Context, coll *mongo.Collection, keys bson.D) {
	if _, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: keys}); err != nil {
		log.Warn().Err(err).Str("collection", coll.Name()).Msg("Issue creating index")
	}
}

func findRecent(ctx context.Context, coll *mongo.Collection, sortField string, limit int, out interface{}) error {
	opts := options.Find().
		SetSort(bson.D{{Key: sortField, Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		log.Error().Err(err).Str("collection", coll.Name()).Msg("Error listing recent documents")
		return err
	}
	defer cursor.Close(ctx)

	return cursor.All(ctx, out)
}

var (
	_ domain.LoginLogRepository  = (*LoginLogRepository)(nil)
	_ domain.ServerLogRepository = (*ServerLogRepository)(nil)
	_ domain.CommandRepository   = (*CommandRepository)(nil)
)
