package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"app/internal/config"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func testCfg() config.Config {
	return config.Config{JWTSecret: "test-secret"}
}

func signWith(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString([]byte(secret))
	assert.NoError(t, err)
	return signed
}

func runAuthJWT(t *testing.T, authz string) (*httptest.ResponseRecorder, echo.Context, bool) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authz != "" {
		req.Header.Set(echo.HeaderAuthorization, authz)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	reached := false
	h := AuthJWT(testCfg())(func(c echo.Context) error {
		reached = true
		return c.NoContent(http.StatusOK)
	})
	assert.NoError(t, h(c))
	return rec, c, reached
}

func TestAuthJWT_ValidToken(t *testing.T) {
	token := signWith(t, "test-secret", jwt.MapClaims{
		"sub":  "7",
		"role": "USER",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	rec, c, reached := runAuthJWT(t, "Bearer "+token)

	assert.True(t, reached)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(7), c.Get(CtxUserIDKey))
	assert.Equal(t, "USER", c.Get(CtxUserRoleKey))
}

func TestAuthJWT_MissingHeader(t *testing.T) {
	rec, _, reached := runAuthJWT(t, "")

	assert.False(t, reached)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthJWT_NotBearer(t *testing.T) {
	rec, _, reached := runAuthJWT(t, "Basic abc")

	assert.False(t, reached)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// 別シークレットで署名したtokenは弾く
func TestAuthJWT_WrongSecret(t *testing.T) {
	token := signWith(t, "other-secret", jwt.MapClaims{
		"sub":  "7",
		"role": "USER",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	rec, _, reached := runAuthJWT(t, "Bearer "+token)

	assert.False(t, reached)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthJWT_ExpiredToken(t *testing.T) {
	token := signWith(t, "test-secret", jwt.MapClaims{
		"sub":  "7",
		"role": "USER",
		"exp":  time.Now().Add(-time.Hour).Unix(),
	})

	rec, _, reached := runAuthJWT(t, "Bearer "+token)

	assert.False(t, reached)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// subは数値claimでもstringでも通す
func TestAuthJWT_NumericSub(t *testing.T) {
	token := signWith(t, "test-secret", jwt.MapClaims{
		"sub":  float64(7),
		"role": "ADMIN",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	_, c, reached := runAuthJWT(t, "Bearer "+token)

	assert.True(t, reached)
	assert.Equal(t, int64(7), c.Get(CtxUserIDKey))
	assert.Equal(t, "ADMIN", c.Get(CtxUserRoleKey))
}

func TestAuthJWT_MissingRole(t *testing.T) {
	token := signWith(t, "test-secret", jwt.MapClaims{
		"sub": "7",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	rec, _, reached := runAuthJWT(t, "Bearer "+token)

	assert.False(t, reached)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
