// Package federation resolves player names against the external identity
// provider (Mojang) and decodes the cosmetic skin payload it returns.
package federation

import (
	"context"
	"regexp"
	"strings"
)

// Profile is the stable external identity of a player.
type Profile struct {
	ID   string `json:"id"`   // Mojang UUID without dashes
	Name string `json:"name"` // canonical capitalization
}

// IdentityProvider resolves display names to external identities.
type IdentityProvider interface {
	// LookupProfile resolves a display name. Unknown names and provider
	// failures both yield an error wrapping ErrProfileNotFound.
	LookupProfile(ctx context.Context, name string) (*Profile, error)

	// LookupSkin resolves the skin texture URL for a profile id. A profile
	// without a skin returns "" and no error.
	LookupSkin(ctx context.Context, profileID string) (string, error)
}

var playerNamePattern = regexp.MustCompile(`^[A-Za-z0-9_]{1,25}$`)

// NormalizeName trims the name and checks that it can be a player name.
func NormalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if !playerNamePattern.MatchString(name) {
		return "", ErrInvalidName
	}
	return name, nil
}
