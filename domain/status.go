package domain

import "time"

// StatusSource tags where a ServerStatus came from.
type StatusSource string

const (
	StatusSourceLive     StatusSource = "live"
	StatusSourceFallback StatusSource = "fallback"
)

// ServerStatus is the result of a status poll. It is never persisted as-is;
// live results are sampled into ServerLog.
type ServerStatus struct {
	PlayersOnline int          `json:"players_online"`
	MaxPlayers    int          `json:"max_players"`
	ServerVersion string       `json:"server_version"`
	MOTD          string       `json:"motd"`
	Latency       float64      `json:"latency"` // milliseconds
	LastUpdated   time.Time    `json:"last_updated"`
	Online        bool         `json:"online"`
	Source        StatusSource `json:"source"`
}

// FallbackServerStatus returns the record reported when the game server
// cannot be reached.
func FallbackServerStatus(now time.Time) ServerStatus {
	return ServerStatus{
		PlayersOnline: 0,
		MaxPlayers:    20,
		ServerVersion: "Unknown",
		MOTD:          "Server offline",
		Latency:       0,
		LastUpdated:   now,
		Online:        false,
		Source:        StatusSourceFallback,
	}
}

// IsFallback reports whether s is the degraded default rather than live data.
func (s ServerStatus) IsFallback() bool {
	return s.Source == StatusSourceFallback
}
