package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "identity-secret"

func signIdentity(t *testing.T, secret, sub, role string) string {
	t.Helper()
	claims := jwt.MapClaims{"sub": sub, "role": role}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return raw
}

func runIdentity(t *testing.T, authHeader string) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	require.NoError(t, Identity(testSecret)(next)(c))
	return rec, c
}

func TestIdentityAcceptsValidToken(t *testing.T) {
	raw := signIdentity(t, testSecret, "vendor-42", RoleVendor)
	rec, c := runIdentity(t, "Bearer "+raw)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "vendor-42", c.Get("actor_id"))
	assert.Equal(t, RoleVendor, c.Get("role"))
}

func TestIdentityRejectsBadTokens(t *testing.T) {
	cases := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"not bearer", "Basic abc"},
		{"garbage token", "Bearer not-a-jwt"},
		{"wrong secret", "Bearer " + signIdentity(t, "other-secret", "vendor-42", RoleVendor)},
		{"empty subject", "Bearer " + signIdentity(t, testSecret, "", RoleVendor)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, c := runIdentity(t, tc.header)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Nil(t, c.Get("actor_id"))
		})
	}
}

func TestRequireRole(t *testing.T) {
	e := echo.New()
	next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	guard := RequireRole(RoleEmployee)(next)

	run := func(role any) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if role != nil {
			c.Set("role", role)
		}
		require.NoError(t, guard(c))
		return rec
	}

	assert.Equal(t, http.StatusOK, run(RoleEmployee).Code)
	assert.Equal(t, http.StatusForbidden, run(RoleVendor).Code)
	assert.Equal(t, http.StatusForbidden, run(nil).Code)
}
