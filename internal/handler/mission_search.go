package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/magehall/mission-tracker/internal/repository"
)

type searchMissionsReq struct {
	UserID      string `json:"id_user" validate:"required,uuid"`
	SearchQuery string `json:"search_query"`
	OrderBy     string `json:"order_by" validate:"required,oneof=creation_date due_date id_mission"`
	Order       string `json:"order" validate:"required,oneof=ASC DESC asc desc"`
	Status      string `json:"status" validate:"required,oneof=pending completed cancelled in_progress"`
	Page        int    `json:"page" validate:"omitempty,gt=0"`
}

// SearchMissions handles POST /v1/missions/search. Results are
// paginated with a fixed page size; the response carries the page of
// missions plus the total match count so clients can render pagers.
// The order_by/order values are re-checked against the repository
// allow-list even though validation already constrains them; those
// two are the only values that ever reach SQL by interpolation.
func (h *MissionHandler) SearchMissions(c echo.Context) error {
	var req searchMissionsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request body"})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": firstViolation(err)})
	}
	if req.Page == 0 {
		req.Page = 1
	}

	ctx := c.Request().Context()
	ok, err := h.Users.Exists(ctx, req.UserID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "database error"})
	}
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "user not found"})
	}

	missions, total, err := h.Missions.Search(ctx, repository.MissionSearchQuery{
		UserID:   req.UserID,
		Query:    req.SearchQuery,
		Status:   req.Status,
		OrderBy:  req.OrderBy,
		Order:    req.Order,
		Page:     req.Page,
		PageSize: h.PageSize,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "search failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"missions": missions,
		"total":    total,
	})
}
