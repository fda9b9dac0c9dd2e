package federation

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	DefaultMojangProfileURL = "https://api.mojang.com"
	DefaultMojangSessionURL = "https://sessionserver.mojang.com"
)

// MojangConfig configures the Mojang provider.
type MojangConfig struct {
	ProfileURL string
	SessionURL string
	Timeout    time.Duration
}

// MojangProvider implements IdentityProvider against the public Mojang APIs.
type MojangProvider struct {
	httpClient *http.Client
	profileURL string
	sessionURL string
}

// NewMojangProvider creates a MojangProvider. Empty URLs fall back to the
// public Mojang endpoints.
func NewMojangProvider(cfg MojangConfig) *MojangProvider {
	if cfg.ProfileURL == "" {
		cfg.ProfileURL = DefaultMojangProfileURL
	}
	if cfg.SessionURL == "" {
		cfg.SessionURL = DefaultMojangSessionURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	return &MojangProvider{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		profileURL: cfg.ProfileURL,
		sessionURL: cfg.SessionURL,
	}
}

// LookupProfile resolves a player name through the profile API.
func (m *MojangProvider) LookupProfile(ctx context.Context, name string) (*Profile, error) {
	name, err := NormalizeName(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProfileNotFound, err)
	}

	endpoint := m.profileURL + "/users/profiles/minecraft/" + url.PathEscape(name)

	var profile Profile
	if err := m.getJSON(ctx, endpoint, &profile); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("name", name).Msg("mojang: profile lookup failed")
		return nil, fmt.Errorf("%w: %s: %w", ErrProfileNotFound, name, err)
	}
	if profile.ID == "" {
		return nil, fmt.Errorf("%w: %s: empty id", ErrProfileNotFound, name)
	}

	return &profile, nil
}

type sessionProfile struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Properties []struct {
		Name  string `json:"name"`
		Value string `json:"value"`
	} `json:"properties"`
}

type texturesPayload struct {
	Textures struct {
		Skin struct {
			URL string `json:"url"`
		} `json:"SKIN"`
	} `json:"textures"`
}

// LookupSkin fetches the session profile and decodes the base64 "textures"
// property to find the skin URL.
func (m *MojangProvider) LookupSkin(ctx context.Context, profileID string) (string, error) {
	if profileID == "" {
		return "", ErrProfileNotFound
	}

	endpoint := m.sessionURL + "/session/minecraft/profile/" + url.PathEscape(profileID)

	var sp sessionProfile
	if err := m.getJSON(ctx, endpoint, &sp); err != nil {
		return "", fmt.Errorf("mojang: session profile %s: %w", profileID, err)
	}

	for _, prop := range sp.Properties {
		if prop.Name != "textures" {
			continue
		}
		return decodeSkinURL(prop.Value)
	}

	return "", nil
}

func decodeSkinURL(value string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return "", fmt.Errorf("mojang: decode textures: %w", err)
	}

	var payload texturesPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", fmt.Errorf("mojang: unmarshal textures: %w", err)
	}

	return payload.Textures.Skin.URL, nil
}

func (m *MojangProvider) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("unmarshal body: %w", err)
	}
	return nil
}

// Ensure MojangProvider implements IdentityProvider.
var _ IdentityProvider = (*MojangProvider)(nil)
