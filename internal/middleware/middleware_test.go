package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/fastshift/internal/config"
	"github.com/iliyamo/fastshift/internal/identity"
)

type stubVerifier struct {
	p   identity.Principal
	err error
}

func (s stubVerifier) Verify(context.Context, string) (identity.Principal, error) {
	return s.p, s.err
}

type stubRoles map[string]string

func (s stubRoles) HasRole(_ context.Context, email, role string) (bool, error) {
	r, ok := s[email]
	return ok && r == role, nil
}

func serve(t *testing.T, mw echo.MiddlewareFunc) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	e := echo.New()
	reached := false
	e.GET("/x", func(c echo.Context) error {
		reached = true
		return c.NoContent(http.StatusOK)
	}, mw)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	return rec, reached
}

func TestGuarded_Unauthenticated(t *testing.T) {
	rec, reached := serve(t, Guarded(Authenticate(stubVerifier{err: identity.ErrUnauthenticated})))
	assert.False(t, reached)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Unauthorized access")
}

func TestGuarded_InvalidToken(t *testing.T) {
	rec, reached := serve(t, Guarded(Authenticate(stubVerifier{err: identity.ErrForbidden})))
	assert.False(t, reached)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "Forbidden access")
}

func TestGuarded_RoleChecks(t *testing.T) {
	roles := stubRoles{"admin@x.com": "admin", "user@x.com": "user"}
	cases := []struct {
		email  string
		code   int
		passes bool
	}{
		{"admin@x.com", http.StatusOK, true},
		{"user@x.com", http.StatusForbidden, false},
		{"ghost@x.com", http.StatusForbidden, false},
	}
	for _, tc := range cases {
		t.Run(tc.email, func(t *testing.T) {
			v := stubVerifier{p: identity.Principal{Email: tc.email}}
			rec, reached := serve(t, Guarded(Authenticate(v), RequireRole(roles, "admin")))
			assert.Equal(t, tc.code, rec.Code)
			assert.Equal(t, tc.passes, reached)
		})
	}
}

func TestGuarded_ShortCircuits(t *testing.T) {
	calls := 0
	second := func(echo.Context) error { calls++; return nil }
	_, reached := serve(t, Guarded(Authenticate(stubVerifier{err: identity.ErrUnauthenticated}), second))
	assert.False(t, reached)
	assert.Zero(t, calls)
}

func TestRequireRole_WithoutPrincipal(t *testing.T) {
	rec, reached := serve(t, Guarded(RequireRole(stubRoles{}, "admin")))
	assert.False(t, reached)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

type failingRoles struct{}

func (failingRoles) HasRole(context.Context, string, string) (bool, error) {
	return false, errors.New("db down")
}

func TestRequireRole_LookupFailure(t *testing.T) {
	v := stubVerifier{p: identity.Principal{Email: "a@x.com"}}
	rec, reached := serve(t, Guarded(Authenticate(v), RequireRole(failingRoles{}, "admin")))
	assert.False(t, reached)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestBuildRateKey(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/parcels/rider-tasks", nil)
	req.Header.Set(echo.HeaderXRealIP, "10.0.0.1")
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/parcels/rider-tasks")

	cfg := config.RateLimitConfig{Prefix: "rl", KeyStrategy: "ip_principal_route"}
	assert.Equal(t, "rl:ip:10.0.0.1:principal:anon:route:GET /parcels/rider-tasks", buildRateKey(cfg, c))

	c.Set(principalKey, identity.Principal{Email: "r@x.com"})
	cfg.KeyStrategy = "principal"
	assert.Equal(t, "rl:principal:r@x.com", buildRateKey(cfg, c))
}

func TestNewTokenBucket_DisabledPassesThrough(t *testing.T) {
	_, reached := serve(t, NewTokenBucket(config.RateLimitConfig{Enabled: false}, nil))
	require.True(t, reached)
}
