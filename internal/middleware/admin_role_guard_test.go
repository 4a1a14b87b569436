package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func runAdminGuard(t *testing.T, role interface{}) (*httptest.ResponseRecorder, bool) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if role != nil {
		c.Set(CtxUserRoleKey, role)
	}

	reached := false
	h := AdminRoleGuard()(func(c echo.Context) error {
		reached = true
		return c.NoContent(http.StatusOK)
	})
	assert.NoError(t, h(c))
	return rec, reached
}

func TestAdminRoleGuard_AdminPasses(t *testing.T) {
	rec, reached := runAdminGuard(t, "ADMIN")

	assert.True(t, reached)
	assert.Equal(t, http.StatusOK, rec.Code)
}

// 一般ユーザーは403。認証済みでも権限は別。
func TestAdminRoleGuard_UserForbidden(t *testing.T) {
	rec, reached := runAdminGuard(t, "USER")

	assert.False(t, reached)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdminRoleGuard_NoRoleIsUnauthorized(t *testing.T) {
	rec, reached := runAdminGuard(t, nil)

	assert.False(t, reached)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
