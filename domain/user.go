package domain

import "time"

// User represents a player account. It is created on the first successful
// login and keyed for lookups by MinecraftUsername.
type User struct {
	ID                string     `bson:"_id" json:"id"`
	UUID              string     `bson:"uuid" json:"uuid"` // Mojang profile id
	MinecraftUsername string     `bson:"minecraft_username" json:"minecraft_username"`
	IsAdmin           bool       `bson:"is_admin" json:"is_admin"`
	LoginCount        int64      `bson:"login_count" json:"login_count"`
	CreatedAt         time.Time  `bson:"created_at" json:"created_at"`
	LastLogin         *time.Time `bson:"last_login,omitempty" json:"last_login,omitempty"`
	LastSeen          *time.Time `bson:"last_seen,omitempty" json:"last_seen,omitempty"`
	SkinURL           string     `bson:"skin_url,omitempty" json:"skin_url,omitempty"`
}

// UserLoginCount aggregates login log entries per user.
type UserLoginCount struct {
	UserID    string    `bson:"_id" json:"user_id"`
	Username  string    `bson:"username" json:"minecraft_username"`
	Count     int64     `bson:"count" json:"login_count"`
	LastLogin time.Time `bson:"last_login" json:"last_login"`
}
