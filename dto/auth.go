package dto

import (
	"time"

	"go.pilab.hu/mcportal/domain"
)

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	MinecraftUsername string `json:"minecraft_username"`
}

// LoginResponse is returned by a successful login.
type LoginResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresAt   time.Time    `json:"expires_at"`
	User        *domain.User `json:"user"`
}

// MessageResponse carries a human readable confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}

// ToggleAdminResponse is returned by PUT /api/users/{id}/admin.
type ToggleAdminResponse struct {
	Message string `json:"message"`
	IsAdmin bool   `json:"is_admin"`
}

// PlayersResponse is the short status returned by GET /api/server/players.
type PlayersResponse struct {
	PlayersOnline int  `json:"players_online"`
	MaxPlayers    int  `json:"max_players"`
	Online        bool `json:"online"`
}

// CommandRequest is the body of POST /api/admin/commands.
type CommandRequest struct {
	Command string `json:"command"`
}

// CommandResponse acknowledges a logged command.
type CommandResponse struct {
	Message string               `json:"message"`
	Command *domain.AdminCommand `json:"command"`
}
