package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// CORS attaches the permissive cross-origin headers the web client
// expects on every response, including error responses, and
// short-circuits preflight requests.
func CORS() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()
			h.Set("Access-Control-Allow-Headers", "*")
			h.Set("Access-Control-Allow-Origin", "*")
			h.Set("Access-Control-Allow-Methods", "OPTIONS,POST,GET,PUT,DELETE")
			if c.Request().Method == http.MethodOptions {
				return c.NoContent(http.StatusNoContent)
			}
			return next(c)
		}
	}
}
