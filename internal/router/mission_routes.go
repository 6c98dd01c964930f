package router

import (
	"github.com/labstack/echo/v4"

	"github.com/magehall/mission-tracker/internal/handler"
)

// RegisterMissionRoutes wires the mission endpoints under /v1/missions.
// browseMW is applied only to the read endpoints so cached responses
// never serve a state-changing request; extra middleware (such as JWT
// verification) applies to the whole group.
func RegisterMissionRoutes(e *echo.Echo, mh *handler.MissionHandler, ch *handler.CompletionHandler, browseMW echo.MiddlewareFunc, mws ...echo.MiddlewareFunc) {
	g := e.Group("/v1/missions", mws...)

	g.POST("", mh.CreateMission)
	g.POST("/search", mh.SearchMissions)
	g.POST("/complete", ch.CompleteMission)
	g.POST("/cancel", mh.CancelMission)
	g.POST("/sweep", mh.SweepMissions)

	if browseMW != nil {
		g.GET("", mh.ListMissions, browseMW)
		g.GET("/:id", mh.GetMission, browseMW)
	} else {
		g.GET("", mh.ListMissions)
		g.GET("/:id", mh.GetMission)
	}
}
