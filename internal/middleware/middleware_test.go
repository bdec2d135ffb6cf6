package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, username, role string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":      float64(7),
		"username": username,
		"role":     role,
		"exp":      time.Now().Add(time.Hour).Unix(),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	raw, err := tok.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return raw
}

func okHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

func request(e *echo.Echo, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuth(t *testing.T) {
	e := echo.New()
	e.GET("/p", okHandler, JWTAuth(testSecret))

	assert.Equal(t, http.StatusUnauthorized, request(e, "/p", "").Code)
	assert.Equal(t, http.StatusUnauthorized, request(e, "/p", "garbage").Code)

	other := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": 1.0})
	wrongKey, err := other.SignedString([]byte("another-secret"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, request(e, "/p", wrongKey).Code)

	assert.Equal(t, http.StatusOK, request(e, "/p", signToken(t, "alice", "engineer")).Code)
}

func TestJWTAuthPopulatesContext(t *testing.T) {
	e := echo.New()
	e.GET("/p", func(c echo.Context) error {
		assert.Equal(t, uint64(7), c.Get(CtxUserID))
		assert.Equal(t, "alice", c.Get(CtxUsername))
		assert.Equal(t, "engineer", c.Get(CtxRole))
		return c.NoContent(http.StatusOK)
	}, JWTAuth(testSecret))

	assert.Equal(t, http.StatusOK, request(e, "/p", signToken(t, "alice", "engineer")).Code)
}

func TestRequireRole(t *testing.T) {
	e := echo.New()
	e.GET("/admin", okHandler, JWTAuth(testSecret), RequireRole("admin"))

	assert.Equal(t, http.StatusForbidden, request(e, "/admin", signToken(t, "alice", "engineer")).Code)
	assert.Equal(t, http.StatusOK, request(e, "/admin", signToken(t, "root", "admin")).Code)
}

func TestRequireOwnerOrAdmin(t *testing.T) {
	e := echo.New()
	e.GET("/u/:user_id", okHandler, JWTAuth(testSecret), RequireOwnerOrAdmin("user_id"))

	// Owner reaches their own resource, nobody else's.
	assert.Equal(t, http.StatusOK, request(e, "/u/alice", signToken(t, "alice", "engineer")).Code)
	assert.Equal(t, http.StatusForbidden, request(e, "/u/bob", signToken(t, "alice", "engineer")).Code)
	// Admin reaches everything.
	assert.Equal(t, http.StatusOK, request(e, "/u/bob", signToken(t, "root", "admin")).Code)
}
