package middleware

// identity.go provides the user identification helper shared by the
// rate limiter. It reads the subject that JWTAuth stored in the
// context; unauthenticated requests are bucketed as "anon".

import (
	"github.com/labstack/echo/v4"
)

// currentUserID extracts the authenticated user's identifier from the
// Echo context, or "anon" when no user is authenticated.
func currentUserID(c echo.Context) string {
	if v := c.Get("user_id"); v != nil {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return "anon"
}
