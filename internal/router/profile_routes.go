package router

import (
	"github.com/labstack/echo/v4"

	"github.com/magehall/mission-tracker/internal/handler"
)

// RegisterProfileRoutes wires the user profile and reward endpoints.
func RegisterProfileRoutes(e *echo.Echo, ph *handler.ProfileHandler, mws ...echo.MiddlewareFunc) {
	g := e.Group("/v1/profile", mws...)

	g.GET("/:id_user", ph.GetProfile)
	g.PUT("/:id_user", ph.UpdateProfile)
	g.GET("/:id_user/reward", ph.GetReward)
}

// RegisterUserRoutes wires the user existence check endpoint.
func RegisterUserRoutes(e *echo.Echo, uh *handler.UserHandler, mws ...echo.MiddlewareFunc) {
	g := e.Group("/v1/users", mws...)

	g.POST("/exists", uh.Exists)
}
