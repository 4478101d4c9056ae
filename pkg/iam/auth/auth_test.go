package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/Abraxas-365/talentdesk/pkg/errx"
	"github.com/Abraxas-365/talentdesk/pkg/fiberx"
	"github.com/Abraxas-365/talentdesk/pkg/iam/user"
	"github.com/Abraxas-365/talentdesk/pkg/iam/user/userinfra"
	"github.com/Abraxas-365/talentdesk/pkg/kernel"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasScope(t *testing.T) {
	tests := []struct {
		name     string
		granted  []string
		required string
		want     bool
	}{
		{"exact", []string{ScopeCandidatesRead}, ScopeCandidatesRead, true},
		{"wildcard resource", []string{ScopeCandidatesAll}, ScopeCandidatesDelete, true},
		{"wildcard other resource", []string{ScopeCandidatesAll}, ScopeClientsRead, false},
		{"all", []string{ScopeAll}, ScopeClientsInvite, true},
		{"missing", []string{ScopeClientsRead}, ScopeClientsWrite, false},
		{"prefix is not a wildcard", []string{"client:*"}, ScopeClientsRead, false},
		{"none", nil, ScopeStatsView, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasScope(tt.granted, tt.required))
		})
	}
}

func TestJWTService(t *testing.T) {
	svc := NewJWTService(Config{JWTSecret: "secret", AccessTokenTTL: time.Hour})
	u := &user.User{ID: "u1", Username: "ana", Role: user.RoleViewer, TenantID: "t1"}

	token, claims, err := svc.GenerateAccessToken(u)
	require.NoError(t, err)
	assert.NotEmpty(t, claims.ID)

	got, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", got.Subject)
	assert.Equal(t, "t1", got.TenantID)
	assert.True(t, HasScope(got.Scopes, ScopeCandidatesRead))
	assert.False(t, HasScope(got.Scopes, ScopeCandidatesWrite))

	t.Run("wrong secret", func(t *testing.T) {
		other := NewJWTService(Config{JWTSecret: "other"})
		_, err := other.ValidateAccessToken(token)
		assert.True(t, errx.IsCode(err, CodeInvalidToken))
	})

	t.Run("expired", func(t *testing.T) {
		later := NewJWTService(Config{JWTSecret: "secret"})
		later.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err := later.ValidateAccessToken(token)
		assert.True(t, errx.IsCode(err, CodeInvalidToken))
	})
}

func TestMemoryRevocationStore(t *testing.T) {
	store := NewMemoryRevocationStore()
	ctx := context.Background()

	require.NoError(t, store.Revoke(ctx, "tok", time.Now().Add(time.Minute)))
	revoked, err := store.IsRevoked(ctx, "tok")
	require.NoError(t, err)
	assert.True(t, revoked)

	store.now = func() time.Time { return time.Now().Add(time.Hour) }
	revoked, _ = store.IsRevoked(ctx, "tok")
	assert.False(t, revoked)
}

func newTestApp(t *testing.T) (*fiber.App, *AuthService) {
	t.Helper()

	users := userinfra.NewMemoryUserRepository()
	tokens := NewJWTService(Config{JWTSecret: "secret"})
	revocations := NewMemoryRevocationStore()
	svc := NewAuthService(users, tokens, revocations)
	mw := NewAuthMiddleware(tokens, revocations)

	_, err := svc.EnsureUser(context.Background(), SeedUser{
		Username: "admin",
		Password: "s3cret",
		Email:    kernel.Email("Admin@Example.com"),
		Role:     user.RoleAdmin,
	})
	require.NoError(t, err)

	app := fiber.New(fiber.Config{ErrorHandler: fiberx.ErrorHandler})
	RegisterRoutes(app, NewAuthHandlers(svc), mw)
	app.Get("/stream", mw.AuthenticateStream(), func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/clients", mw.Authenticate(), mw.RequireScope(ScopeClientsRead), func(c *fiber.Ctx) error { return c.SendString("ok") })
	return app, svc
}

func login(t *testing.T, app *fiber.App, username, password string) (*http.Response, map[string]any) {
	t.Helper()
	form := url.Values{"username": {username}, "password": {password}}
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := app.Test(req)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp, body
}

func TestLoginMeLogout(t *testing.T) {
	app, _ := newTestApp(t)

	resp, body := login(t, app, "admin", "s3cret")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token, _ := body["access_token"].(string)
	require.NotEmpty(t, token)

	me := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	me.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(me)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var u map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&u))
	assert.Equal(t, "admin@example.com", u["email"])
	assert.NotContains(t, u, "passwordHash")

	out := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	out.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(out)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	me = httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	me.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(me)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	app, _ := newTestApp(t)

	tests := []struct {
		name     string
		username string
		password string
	}{
		{"wrong password", "admin", "nope"},
		{"unknown user", "ghost", "s3cret"},
		{"blank", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := login(t, app, tt.username, tt.password)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			assert.Equal(t, CodeInvalidCredentials, body["code"])
		})
	}
}

func TestStreamAcceptsQueryToken(t *testing.T) {
	app, _ := newTestApp(t)
	_, body := login(t, app, "admin", "s3cret")
	token := body["access_token"].(string)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/stream?token="+token, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/clients?token="+token, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRequireScope(t *testing.T) {
	app, svc := newTestApp(t)
	_, err := svc.EnsureUser(context.Background(), SeedUser{Username: "nobody", Password: "pw", Role: user.Role("viewer")})
	require.NoError(t, err)

	resp, err := svc.Login(context.Background(), "nobody", "pw")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/clients", nil)
	req.Header.Set("Authorization", "Bearer "+resp.AccessToken)
	httpResp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, httpResp.StatusCode)
}
