package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.pilab.hu/mcportal/domain"
)

const testSecret = "test-secret-with-enough-length"

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newTestIssuer(t *testing.T, now time.Time) *SessionIssuer {
	t.Helper()
	iss, err := NewSessionIssuer(testSecret)
	require.NoError(t, err)
	return iss.WithClock(fixedClock(now))
}

func testUser() *domain.User {
	return &domain.User{ID: "user-1", MinecraftUsername: "Notch", IsAdmin: true}
}

func TestNewSessionIssuer_ShortSecret(t *testing.T) {
	_, err := NewSessionIssuer("short")
	assert.Error(t, err)
}

func TestSessionIssuer_IssueAndParse(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	iss := newTestIssuer(t, now)

	raw, expiresAt, err := iss.Issue(testUser())
	require.NoError(t, err)
	assert.Equal(t, now.Add(24*time.Hour), expiresAt)

	claims, err := iss.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "Notch", claims.Username)
	assert.True(t, claims.IsAdmin)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, SessionTTL, claims.ExpiresAt.Sub(claims.IssuedAt.Time))
}

func TestSessionIssuer_Expired(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	iss := newTestIssuer(t, now)

	raw, _, err := iss.Issue(testUser())
	require.NoError(t, err)

	// Still valid just before expiry.
	_, err = iss.WithClock(fixedClock(now.Add(SessionTTL - time.Minute))).Parse(raw)
	require.NoError(t, err)

	_, err = iss.WithClock(fixedClock(now.Add(SessionTTL + time.Second))).Parse(raw)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestSessionIssuer_TamperedSignature(t *testing.T) {
	iss := newTestIssuer(t, time.Now())

	raw, _, err := iss.Issue(testUser())
	require.NoError(t, err)

	parts := strings.Split(raw, ".")
	require.Len(t, parts, 3)
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	_, err = iss.Parse(tampered)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestSessionIssuer_WrongSecret(t *testing.T) {
	now := time.Now()
	iss := newTestIssuer(t, now)
	raw, _, err := iss.Issue(testUser())
	require.NoError(t, err)

	other, err := NewSessionIssuer("another-secret-of-enough-length")
	require.NoError(t, err)

	_, err = other.WithClock(fixedClock(now)).Parse(raw)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestSessionIssuer_Malformed(t *testing.T) {
	iss := newTestIssuer(t, time.Now())

	_, err := iss.Parse("not-a-jwt")
	assert.ErrorIs(t, err, ErrMalformedToken)

	_, err = iss.Parse("")
	assert.ErrorIs(t, err, ErrMalformedToken)
}

func TestSessionIssuer_RejectsOtherAlgorithms(t *testing.T) {
	now := time.Now()
	iss := newTestIssuer(t, now)

	claims := Claims{
		UserID: "user-1",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = iss.Parse(raw)
	assert.Error(t, err)
}
