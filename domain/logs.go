package domain

import "time"

// LoginLog is an append-only record of a successful login.
type LoginLog struct {
	ID         string    `bson:"_id" json:"id"`
	UserID     string    `bson:"user_id" json:"user_id"`
	Username   string    `bson:"username" json:"minecraft_username"`
	FirstLogin bool      `bson:"first_login" json:"first_login"`
	LoggedInAt time.Time `bson:"logged_in_at" json:"logged_in_at"`
}

// ServerLog is an append-only sample of a successful live status poll.
type ServerLog struct {
	ID            string    `bson:"_id" json:"id"`
	PlayersOnline int       `bson:"players_online" json:"players_online"`
	MaxPlayers    int       `bson:"max_players" json:"max_players"`
	ServerVersion string    `bson:"server_version" json:"server_version"`
	MOTD          string    `bson:"motd" json:"motd"`
	LatencyMs     float64   `bson:"latency_ms" json:"latency"`
	RecordedAt    time.Time `bson:"recorded_at" json:"recorded_at"`
}

// ServerLogSummary holds averages over all stored server samples.
type ServerLogSummary struct {
	Samples          int64   `bson:"samples" json:"samples"`
	AvgPlayersOnline float64 `bson:"avg_players_online" json:"avg_players_online"`
	MaxPlayersOnline int     `bson:"max_players_online" json:"peak_players_online"`
	AvgLatencyMs     float64 `bson:"avg_latency_ms" json:"avg_latency"`
}

// AdminCommand is an append-only record of a command submitted by an admin.
// Commands are logged only; nothing is executed on the game server.
type AdminCommand struct {
	ID         string    `bson:"_id" json:"id"`
	Command    string    `bson:"command" json:"command"`
	ExecutedBy string    `bson:"executed_by" json:"executed_by"`
	ExecutedAt time.Time `bson:"executed_at" json:"executed_at"`
}
