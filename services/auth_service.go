package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.pilab.hu/mcportal/domain"
	"go.pilab.hu/mcportal/internal/audit"
	"go.pilab.hu/mcportal/internal/auth"
	"go.pilab.hu/mcportal/internal/federation"
	"go.pilab.hu/mcportal/internal/metrics"
	"go.pilab.hu/mcportal/tracing"
)

// LoginResult is returned by a successful login.
type LoginResult struct {
	AccessToken string
	ExpiresAt   time.Time
	User        *domain.User
	FirstLogin  bool
}

// AuthService resolves Minecraft identities, keeps user records in sync on
// login and validates session tokens.
type AuthService struct {
	users     domain.UserRepository
	loginLogs domain.LoginLogRepository
	identity  federation.IdentityProvider
	sessions  *auth.SessionIssuer
	metrics   *metrics.Collector
	audit     *audit.Logger
	now       func() time.Time
}

// NewAuthService creates a new AuthService. metrics and audit may be nil.
func NewAuthService(
	users domain.UserRepository,
	loginLogs domain.LoginLogRepository,
	identity federation.IdentityProvider,
	sessions *auth.SessionIssuer,
	collector *metrics.Collector,
	auditLog *audit.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		loginLogs: loginLogs,
		identity:  identity,
		sessions:  sessions,
		metrics:   collector,
		audit:     auditLog,
		now:       time.Now,
	}
}

// Login resolves name with the identity provider, creates the user on first
// login or bumps its login counter, appends a login log entry and issues a
// session token.
func (s *AuthService) Login(ctx context.Context, name string) (*LoginResult, error) {
	ctx, span := tracing.Tracer.Start(ctx, "AuthService.Login")
	defer span.End()

	normalized, err := federation.NormalizeName(name)
	if err != nil {
		s.metrics.LoginFailed()
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidUsername, err)
	}

	profile, err := s.identity.LookupProfile(ctx, normalized)
	if err != nil {
		s.metrics.LoginFailed()
		log.Ctx(ctx).Info().Err(err).Str("username", normalized).Msg("Identity lookup failed")
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidUsername, err)
	}

	now := s.now().UTC()
	user, firstLogin, err := s.upsertUser(ctx, profile, now)
	if err != nil {
		s.metrics.LoginFailed()
		return nil, err
	}

	// Login logs are best effort; a failed append does not fail the login.
	if err := s.loginLogs.AppendLoginLog(ctx, &domain.LoginLog{
		UserID:     user.ID,
		Username:   user.MinecraftUsername,
		FirstLogin: firstLogin,
		LoggedInAt: now,
	}); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("userID", user.ID).Msg("Failed to append login log")
	}

	token, expiresAt, err := s.sessions.Issue(user)
	if err != nil {
		s.metrics.LoginFailed()
		return nil, err
	}

	s.metrics.LoginSucceeded(firstLogin)
	log.Ctx(ctx).Info().
		Str("userID", user.ID).
		Str("username", user.MinecraftUsername).
		Bool("firstLogin", firstLogin).
		Msg("User logged in")

	return &LoginResult{
		AccessToken: token,
		ExpiresAt:   expiresAt,
		User:        user,
		FirstLogin:  firstLogin,
	}, nil
}

// upsertUser returns the stored user for profile, creating it when missing.
// A concurrent first login for the same name loses on the unique username
// index and continues as a returning login.
func (s *AuthService) upsertUser(ctx context.Context, profile *federation.Profile, now time.Time) (*domain.User, bool, error) {
	existing, err := s.users.GetUserByUsername(ctx, profile.Name)
	switch {
	case err == nil:
		user, err := s.users.RecordLogin(ctx, existing.ID, now)
		if err != nil {
			return nil, false, fmt.Errorf("record login: %w", err)
		}
		return user, false, nil
	case !errors.Is(err, domain.ErrUserNotFound):
		return nil, false, fmt.Errorf("get user: %w", err)
	}

	user := &domain.User{
		UUID:              profile.ID,
		MinecraftUsername: profile.Name,
		SkinURL:           s.lookupSkin(ctx, profile.ID),
		LoginCount:        1,
		CreatedAt:         now,
		LastLogin:         &now,
	}

	err = s.users.CreateUser(ctx, user)
	if errors.Is(err, domain.ErrDuplicate) {
		log.Ctx(ctx).Info().Str("username", profile.Name).Msg("Concurrent first login, continuing as returning login")
		winner, err := s.users.GetUserByUsername(ctx, profile.Name)
		if err != nil {
			return nil, false, fmt.Errorf("re-read user after duplicate: %w", err)
		}
		user, err := s.users.RecordLogin(ctx, winner.ID, now)
		if err != nil {
			return nil, false, fmt.Errorf("record login: %w", err)
		}
		return user, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("create user: %w", err)
	}
	return user, true, nil
}

// lookupSkin never fails the caller; the skin is cosmetic.
func (s *AuthService) lookupSkin(ctx context.Context, profileID string) string {
	skin, err := s.identity.LookupSkin(ctx, profileID)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("profileID", profileID).Msg("Skin lookup failed")
		return ""
	}
	return skin
}

// Authenticate validates a raw session token and returns the current user
// record. It refreshes the user's last_seen timestamp.
func (s *AuthService) Authenticate(ctx context.Context, raw string) (*domain.User, error) {
	claims, err := s.sessions.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrUnauthorized, err)
	}

	user, err := s.users.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: %w", domain.ErrUnauthorized, err)
		}
		return nil, err
	}

	now := s.now().UTC()
	if err := s.users.TouchLastSeen(ctx, user.ID, now); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("userID", user.ID).Msg("Failed to update last_seen")
	} else {
		user.LastSeen = &now
	}

	return user, nil
}

// EnsureBootstrapAdmin creates name as an admin when the store has no admin
// yet. An existing user with that name is promoted instead. It is a no-op
// when name is empty or an admin already exists.
func (s *AuthService) EnsureBootstrapAdmin(ctx context.Context, name string) error {
	if name == "" {
		return nil
	}

	hasAdmin, err := s.users.AnyAdmin(ctx)
	if err != nil {
		return fmt.Errorf("check admins: %w", err)
	}
	if hasAdmin {
		return nil
	}

	normalized, err := federation.NormalizeName(name)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidUsername, err)
	}
	profile, err := s.identity.LookupProfile(ctx, normalized)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidUsername, err)
	}

	existing, err := s.users.GetUserByUsername(ctx, profile.Name)
	switch {
	case err == nil:
		err = s.users.SetAdmin(ctx, existing.ID, true)
		s.audit.Record(audit.ActionBootstrap, "system", existing.ID, "promoted existing user", err)
		return err
	case !errors.Is(err, domain.ErrUserNotFound):
		return fmt.Errorf("get user: %w", err)
	}

	user := &domain.User{
		UUID:              profile.ID,
		MinecraftUsername: profile.Name,
		IsAdmin:           true,
		SkinURL:           s.lookupSkin(ctx, profile.ID),
		CreatedAt:         s.now().UTC(),
	}
	err = s.users.CreateUser(ctx, user)
	s.audit.Record(audit.ActionBootstrap, "system", profile.Name, "created admin", err)
	if err != nil {
		return fmt.Errorf("create bootstrap admin: %w", err)
	}

	log.Info().Str("username", user.MinecraftUsername).Msg("Bootstrap admin created")
	return nil
}
