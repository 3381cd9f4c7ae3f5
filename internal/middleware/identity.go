package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/blood-donation-tracker/internal/model"
)

// Context keys written by the middleware in this package.
const (
	KeyUserID    = "user_id"
	KeyRole      = "role"
	KeyPrincipal = "principal"
	KeyRequestID = "request_id"
)

// UserID returns the authenticated user id stored by JWTAuth.
func UserID(c echo.Context) (uint64, bool) {
	id, ok := c.Get(KeyUserID).(uint64)
	return id, ok && id != 0
}

// Role returns the role claim stored by JWTAuth.
func Role(c echo.Context) (model.Role, bool) {
	r, ok := c.Get(KeyRole).(model.Role)
	return r, ok
}

// CurrentPrincipal returns the principal resolved by LoadPrincipal.
func CurrentPrincipal(c echo.Context) (model.Principal, bool) {
	p, ok := c.Get(KeyPrincipal).(model.Principal)
	return p, ok && p != nil
}

// RequestIDFrom returns the id assigned by the RequestID middleware.
func RequestIDFrom(c echo.Context) string {
	s, _ := c.Get(KeyRequestID).(string)
	return s
}

// identityKey is the caller identity used in rate limit keys: the user id
// when authenticated and "anon" otherwise.
func identityKey(c echo.Context) string {
	if id, ok := UserID(c); ok {
		return strconv.FormatUint(id, 10)
	}
	return "anon"
}
