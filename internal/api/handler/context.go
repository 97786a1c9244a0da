package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/sirpyerre/storefront-api/internal/core/domain"
)

// Context keys set by the Auth middleware.
const (
	CtxUserID   = "user_id"
	CtxUsername = "username"
	CtxRole     = "role"
)

// ctxUserID returns the authenticated user id, or "" when auth is disabled.
func ctxUserID(c echo.Context) string {
	id, _ := c.Get(CtxUserID).(string)
	return id
}

// ctxRole returns the authenticated role, or "" when auth is disabled.
func ctxRole(c echo.Context) domain.Role {
	role, _ := c.Get(CtxRole).(string)
	return domain.Role(role)
}

// ownerScope reports the user id a non-administrator is confined to. It
// returns false when auth is disabled or the caller is an administrator.
func ownerScope(c echo.Context) (string, bool) {
	role := ctxRole(c)
	if role == "" || role == domain.RoleAdministrator {
		return "", false
	}
	return ctxUserID(c), true
}
