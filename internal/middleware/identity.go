package middleware

import (
	"fmt"

	"github.com/labstack/echo/v4"
)

// Context keys set by JWTAuth.
const (
	ctxUserID = "user_id"
	ctxRole   = "role"
)

// UserID returns the authenticated user's id. ok is false on routes not
// behind JWTAuth.
func UserID(c echo.Context) (id uint64, ok bool) {
	id, ok = c.Get(ctxUserID).(uint64)
	return id, ok && id != 0
}

// Role returns the authenticated user's role, or "" when anonymous.
func Role(c echo.Context) string {
	r, _ := c.Get(ctxRole).(string)
	return r
}

// identity renders the caller for rate-limit keys: the user id, or "anon".
func identity(c echo.Context) string {
	if id, ok := UserID(c); ok {
		return fmt.Sprint(id)
	}
	return "anon"
}
