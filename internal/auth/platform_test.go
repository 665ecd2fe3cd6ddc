// AngelaMos | 2026
// platform_test.go

package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clergo/steago/internal/auth"
	"github.com/clergo/steago/internal/config"
	"github.com/clergo/steago/internal/core"
	"github.com/clergo/steago/internal/middleware"
	"github.com/clergo/steago/internal/testutil"
	"github.com/clergo/steago/internal/unified"
	"github.com/clergo/steago/internal/user"
)

const platformKey = "platform-test-key"

type memoryBlocklist struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func (b *memoryBlocklist) Revoke(_ context.Context, tokenID string, expiresAt time.Time) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.revoked[tokenID] = expiresAt
	return nil
}

func (b *memoryBlocklist) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.revoked[tokenID]
	return ok, nil
}

type stack struct {
	router     chi.Router
	users      *testutil.UserModel
	workspaces *testutil.WorkspaceModel
}

func newStack(t *testing.T) *stack {
	t.Helper()

	dir := t.TempDir()
	jwtCfg := config.JWTConfig{
		PrivateKeyPath:    filepath.Join(dir, "private.pem"),
		PublicKeyPath:     filepath.Join(dir, "public.pem"),
		AccessTokenExpire: 87600 * time.Hour,
		Issuer:            "steago",
		Audience:          "steago-api",
	}
	require.NoError(t, auth.GenerateKeyPair(jwtCfg.PrivateKeyPath, jwtCfg.PublicKeyPath))

	blocklist := &memoryBlocklist{revoked: map[string]time.Time{}}
	jwtManager, err := auth.NewJWTManager(jwtCfg, blocklist)
	require.NoError(t, err)

	reg, users, workspaces := testutil.NewRegistry()
	platform := config.PlatformConfig{APIKey: platformKey, SuperAdminEmails: []string{"root@steago.dev"}}

	svc := auth.NewService(reg, jwtManager, blocklist, platform.IsSuperAdminEmail)
	authHandler := auth.NewHandler(svc)
	userHandler := user.NewHandler(reg)

	authenticator := middleware.Authenticator(jwtManager, auth.NewResolver(reg))
	requireActive := middleware.RequireActive(reg)
	guard := func(next http.Handler) http.Handler {
		return authenticator(requireActive(next))
	}

	r := chi.NewRouter()
	r.Route("/v1", func(r chi.Router) {
		authHandler.RegisterPlatformRoutes(r, middleware.RequirePlatformKey(platformKey))
		authHandler.RegisterRoutes(r, authenticator, middleware.OptionalAuth(jwtManager, auth.NewResolver(reg)))
		userHandler.RegisterRoutes(r, guard)
	})

	return &stack{router: r, users: users, workspaces: workspaces}
}

func (s *stack) call(
	t *testing.T,
	method, path, body string,
	headers map[string]string,
) (*httptest.ResponseRecorder, core.Response) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var resp core.Response
	if rec.Code != http.StatusNoContent {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec, resp
}

func decodeData[T any](t *testing.T, resp core.Response) T {
	t.Helper()
	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var out T
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func platformHeaders() map[string]string {
	return map[string]string{middleware.PlatformKeyHeader: platformKey}
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func TestPlatform_SignInEndToEnd(t *testing.T) {
	s := newStack(t)

	rec, resp := s.call(t, http.MethodPost, "/v1/platform/auth/user",
		`{"name":"Ann","email":"ann@acme.io"}`, platformHeaders())
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeData[auth.PlatformUserResponse](t, resp)
	assert.Equal(t, "success", created.Status)
	assert.True(t, created.Created)

	rec, resp = s.call(t, http.MethodPost, "/v1/platform/auth/user",
		`{"name":"Ann","email":"ann@acme.io"}`, platformHeaders())
	require.Equal(t, http.StatusOK, rec.Code)
	again := decodeData[auth.PlatformUserResponse](t, resp)
	assert.False(t, again.Created)
	assert.Equal(t, created.UUID, again.UUID)

	rec, resp = s.call(t, http.MethodPost, "/v1/platform/auth/token",
		`{"email":"ann@acme.io"}`, platformHeaders())
	require.Equal(t, http.StatusOK, rec.Code)
	token := decodeData[auth.TokenResponse](t, resp)
	assert.Equal(t, "Bearer", token.TokenType)

	rec, resp = s.call(t, http.MethodGet, "/v1/users/me", "", bearer(token.AccessToken))
	require.Equal(t, http.StatusOK, rec.Code)
	me := decodeData[user.MeResponse](t, resp)
	assert.Equal(t, created.UUID, me.UUID)
	assert.Equal(t, "ann@acme.io", me.Username)
	assert.Equal(t, "Ann", me.WorkspaceName)
	assert.Equal(t, unified.UserTypeHubUser, me.Type)

	rec, _ = s.call(t, http.MethodPost, "/v1/auth/logout", "", bearer(token.AccessToken))
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec, resp = s.call(t, http.MethodGet, "/v1/users/me", "", bearer(token.AccessToken))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "TOKEN_REVOKED", resp.Error.Code)
}

func TestAuth_SessionIsOptional(t *testing.T) {
	s := newStack(t)

	rec, resp := s.call(t, http.MethodGet, "/v1/auth/session", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	anon := decodeData[auth.SessionResponse](t, resp)
	assert.False(t, anon.Authenticated)
	assert.Nil(t, anon.User)

	rec, resp = s.call(t, http.MethodGet, "/v1/auth/session", "", bearer("not-a-token"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decodeData[auth.SessionResponse](t, resp).Authenticated)

	_, resp = s.call(t, http.MethodPost, "/v1/platform/auth/user",
		`{"name":"Ann","email":"ann@acme.io"}`, platformHeaders())
	created := decodeData[auth.PlatformUserResponse](t, resp)

	_, resp = s.call(t, http.MethodPost, "/v1/platform/auth/token",
		`{"email":"ann@acme.io"}`, platformHeaders())
	token := decodeData[auth.TokenResponse](t, resp)

	rec, resp = s.call(t, http.MethodGet, "/v1/auth/session", "", bearer(token.AccessToken))
	require.Equal(t, http.StatusOK, rec.Code)
	session := decodeData[auth.SessionResponse](t, resp)
	assert.True(t, session.Authenticated)
	require.NotNil(t, session.User)
	assert.Equal(t, created.UUID, session.User.UUID)
	assert.Equal(t, "ann@acme.io", session.User.Email)
	require.NotNil(t, session.ExpiresAt)
	assert.WithinDuration(t, token.ExpiresAt, *session.ExpiresAt, time.Second)

	rec, _ = s.call(t, http.MethodPost, "/v1/auth/logout", "", bearer(token.AccessToken))
	require.Equal(t, http.StatusNoContent, rec.Code)

	_, resp = s.call(t, http.MethodGet, "/v1/auth/session", "", bearer(token.AccessToken))
	assert.False(t, decodeData[auth.SessionResponse](t, resp).Authenticated)
}

func TestPlatform_SuperAdminFromFlagOrConfig(t *testing.T) {
	s := newStack(t)

	_, resp := s.call(t, http.MethodPost, "/v1/platform/auth/user",
		`{"name":"Flagged","email":"flag@acme.io","is_super_admin":true}`, platformHeaders())
	flagged := decodeData[auth.PlatformUserResponse](t, resp)

	_, resp = s.call(t, http.MethodPost, "/v1/platform/auth/user",
		`{"name":"Root","email":"ROOT@steago.dev"}`, platformHeaders())
	configured := decodeData[auth.PlatformUserResponse](t, resp)

	for _, id := range []string{flagged.UUID.String(), configured.UUID.String()} {
		u, err := s.users.GetByUUID(t.Context(), mustUUID(t, id))
		require.NoError(t, err)
		assert.Equal(t, unified.UserTypeSuperAdmin, u.GetType())
	}
}

func TestPlatform_TokenRefusedForInactive(t *testing.T) {
	s := newStack(t)

	acme := &testutil.Workspace{Name: "Acme", Status: unified.WorkspaceStatusActive}
	frozen := &testutil.Workspace{Name: "Frozen", Status: unified.WorkspaceStatusSuspended}
	s.workspaces.Put(acme)
	s.workspaces.Put(frozen)
	s.users.Put(&testutil.User{Email: "bob@acme.io", Status: unified.UserStatusSuspended, WorkspaceID: acme.ID})
	s.users.Put(&testutil.User{Email: "cy@frozen.io", Status: unified.UserStatusActive, WorkspaceID: frozen.ID})

	for _, email := range []string{"bob@acme.io", "cy@frozen.io"} {
		rec, resp := s.call(t, http.MethodPost, "/v1/platform/auth/token",
			`{"email":"`+email+`"}`, platformHeaders())
		assert.Equal(t, http.StatusForbidden, rec.Code, email)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "FORBIDDEN", resp.Error.Code)
	}

	rec, _ := s.call(t, http.MethodPost, "/v1/platform/auth/token",
		`{"email":"nobody@acme.io"}`, platformHeaders())
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPlatform_RequiresKey(t *testing.T) {
	s := newStack(t)

	rec, _ := s.call(t, http.MethodPost, "/v1/platform/auth/user",
		`{"name":"Eve","email":"eve@evil.io"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	_, err := s.users.GetByEmail(t.Context(), "eve@evil.io")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestPlatform_UserCreateFailureDiscardsWorkspace(t *testing.T) {
	s := newStack(t)
	s.users.CreateErr = core.ErrInvalidInput

	rec, _ := s.call(t, http.MethodPost, "/v1/platform/auth/user",
		`{"name":"Ann","email":"ann@acme.io"}`, platformHeaders())
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	ws, err := s.workspaces.GetByID(t.Context(), 1)
	require.NoError(t, err)
	assert.Equal(t, unified.WorkspaceStatusDeleted, ws.GetStatus())
}

func mustUUID(t *testing.T, s string) uuid.UUID {
	t.Helper()
	id, err := uuid.Parse(s)
	require.NoError(t, err)
	return id
}
