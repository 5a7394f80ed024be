package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

func testUser() *domain.User {
	return &domain.User{ID: 42, Username: "officer1", Role: domain.RoleOfficer, DepartmentID: 3}
}

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", "helpdesk", 15)
	session, err := tm.GenerateToken(testUser())
	require.NoError(t, err)
	assert.NotEmpty(t, session.TokenID)

	claims, err := tm.ParseToken(session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.TokenID, claims.ID)

	actor, err := claims.Actor()
	require.NoError(t, err)
	assert.Equal(t, domain.Actor{ID: 42, Role: domain.RoleOfficer, DepartmentID: 3}, actor)
}

func TestParseTokenRejects(t *testing.T) {
	tm := NewTokenManager("secret", "helpdesk", 15)
	session, err := tm.GenerateToken(testUser())
	require.NoError(t, err)

	_, err = NewTokenManager("other", "helpdesk", 15).ParseToken(session.Token)
	assert.Error(t, err, "wrong secret")

	_, err = NewTokenManager("secret", "someone-else", 15).ParseToken(session.Token)
	assert.Error(t, err, "wrong issuer")

	expired := NewTokenManager("secret", "helpdesk", 1)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, err := expired.GenerateToken(testUser())
	require.NoError(t, err)
	_, err = tm.ParseToken(old.Token)
	assert.Error(t, err, "expired")

	_, err = tm.ParseToken("not-a-jwt")
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("admin123", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NoError(t, ComparePassword(hash, "admin123"))
	assert.Error(t, ComparePassword(hash, "admin124"))
}

func TestMemoryRevocationList(t *testing.T) {
	ctx := context.Background()
	list := NewMemoryRevocationList()

	require.NoError(t, list.Revoke(ctx, "live", time.Now().Add(time.Hour)))
	require.NoError(t, list.Revoke(ctx, "stale", time.Now().Add(-time.Minute)))

	revoked, err := list.IsRevoked(ctx, "live")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = list.IsRevoked(ctx, "stale")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestRedisRevocationList(t *testing.T) {
	ctx := context.Background()
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	list := NewRedisRevocationList(client)
	require.NoError(t, list.Revoke(ctx, "abc", time.Now().Add(time.Minute)))
	assert.True(t, server.Exists(revokedKeyPrefix+"abc"))

	revoked, err := list.IsRevoked(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, revoked)

	server.FastForward(2 * time.Minute)
	revoked, err = list.IsRevoked(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func newAuthApp(tm *TokenManager, revoked RevocationList) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			domainErr := apperrors.ToDomainError(err)
			return c.Status(domainErr.HTTPStatus).SendString(domainErr.Message)
		},
	})
	mw := NewAuthMiddleware(tm, revoked, zap.NewNop())
	app.Get("/me", mw.Handle, func(c *fiber.Ctx) error {
		principal, err := MustPrincipal(c)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"id": principal.Actor.ID, "role": principal.Actor.Role})
	})
	app.Get("/admin", mw.Handle, RequireAdmin(), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusNoContent)
	})
	return app
}

func TestAuthMiddleware(t *testing.T) {
	tm := NewTokenManager("secret", "helpdesk", 15)
	revoked := NewMemoryRevocationList()
	app := newAuthApp(tm, revoked)
	session, err := tm.GenerateToken(testUser())
	require.NoError(t, err)

	call := func(path, header string) int {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		return resp.StatusCode
	}

	assert.Equal(t, http.StatusUnauthorized, call("/me", ""))
	assert.Equal(t, http.StatusUnauthorized, call("/me", "Basic abc"))
	assert.Equal(t, http.StatusUnauthorized, call("/me", "Bearer garbage"))
	assert.Equal(t, http.StatusOK, call("/me", "Bearer "+session.Token))
	assert.Equal(t, http.StatusForbidden, call("/admin", "Bearer "+session.Token))

	require.NoError(t, revoked.Revoke(context.Background(), session.TokenID, session.ExpiresAt))
	assert.Equal(t, http.StatusUnauthorized, call("/me", "Bearer "+session.Token))
}

func TestAuthMiddlewareRejectsWhenRevocationStoreIsDown(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })

	tm := NewTokenManager("secret", "helpdesk", 15)
	app := newAuthApp(tm, NewRedisRevocationList(client))
	session, err := tm.GenerateToken(testUser())
	require.NoError(t, err)

	server.Close()

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+session.Token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
