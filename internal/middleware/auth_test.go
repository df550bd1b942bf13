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

func signToken(t *testing.T, role string, secret string) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "admin-1",
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func runAdminAuth(t *testing.T, authHeader string) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := AdminAuth(testSecret)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestAdminAuth_ValidAdminToken(t *testing.T) {
	rec := runAdminAuth(t, "Bearer "+signToken(t, "admin", testSecret))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminAuth_MissingToken(t *testing.T) {
	rec := runAdminAuth(t, "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminAuth_WrongSecret(t *testing.T) {
	rec := runAdminAuth(t, "Bearer "+signToken(t, "admin", "other-secret"))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminAuth_NonAdminRole(t *testing.T) {
	rec := runAdminAuth(t, "Bearer "+signToken(t, "customer", testSecret))

	assert.Equal(t, http.StatusForbidden, rec.Code)
}
