// AngelaMos | 2026
// jwt_test.go

package auth

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clergo/steago/internal/config"
	"github.com/clergo/steago/internal/core"
)

type revokedSet map[string]bool

func (s revokedSet) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	return s[tokenID], nil
}

func testJWTConfig(t *testing.T) config.JWTConfig {
	t.Helper()

	dir := t.TempDir()
	cfg := config.JWTConfig{
		PrivateKeyPath:    filepath.Join(dir, "private.pem"),
		PublicKeyPath:     filepath.Join(dir, "public.pem"),
		AccessTokenExpire: 87600 * time.Hour,
		Issuer:            "steago",
		Audience:          "steago-api",
	}
	require.NoError(t, GenerateKeyPair(cfg.PrivateKeyPath, cfg.PublicKeyPath))
	return cfg
}

func TestJWTManager_SubjectRoundTrip(t *testing.T) {
	m, err := NewJWTManager(testJWTConfig(t), nil)
	require.NoError(t, err)

	subject := uuid.New()
	issued, err := m.CreateAccessToken(subject)
	require.NoError(t, err)
	assert.NotEmpty(t, issued.TokenID)
	assert.True(t, issued.ExpiresAt.After(time.Now().Add(24*365*9*time.Hour)))

	claims, err := m.VerifyAccessToken(context.Background(), issued.Token)
	require.NoError(t, err)
	assert.Equal(t, subject.String(), claims.Subject)
	assert.Equal(t, issued.TokenID, claims.TokenID)
	assert.NotEmpty(t, m.GetKeyID())
}

func TestJWTManager_RejectsNilSubject(t *testing.T) {
	m, err := NewJWTManager(testJWTConfig(t), nil)
	require.NoError(t, err)

	_, err = m.CreateAccessToken(uuid.Nil)
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestJWTManager_Revoked(t *testing.T) {
	revoked := revokedSet{}
	m, err := NewJWTManager(testJWTConfig(t), revoked)
	require.NoError(t, err)

	issued, err := m.CreateAccessToken(uuid.New())
	require.NoError(t, err)

	revoked[issued.TokenID] = true

	_, err = m.VerifyAccessToken(context.Background(), issued.Token)
	assert.ErrorIs(t, err, core.ErrTokenRevoked)
}

func TestJWTManager_RejectsForeignTokens(t *testing.T) {
	cfg := testJWTConfig(t)
	m, err := NewJWTManager(cfg, nil)
	require.NoError(t, err)

	other := cfg
	other.Audience = "someone-else"
	foreign, err := NewJWTManager(other, nil)
	require.NoError(t, err)

	issued, err := foreign.CreateAccessToken(uuid.New())
	require.NoError(t, err)

	_, err = m.VerifyAccessToken(context.Background(), issued.Token)
	assert.ErrorIs(t, err, core.ErrTokenInvalid)

	_, err = m.VerifyAccessToken(context.Background(), "not.a.jwt")
	assert.ErrorIs(t, err, core.ErrTokenInvalid)
}

func TestJWTManager_Expired(t *testing.T) {
	cfg := testJWTConfig(t)
	cfg.AccessTokenExpire = -time.Hour
	m, err := NewJWTManager(cfg, nil)
	require.NoError(t, err)

	issued, err := m.CreateAccessToken(uuid.New())
	require.NoError(t, err)

	_, err = m.VerifyAccessToken(context.Background(), issued.Token)
	assert.ErrorIs(t, err, core.ErrTokenExpired)
}
