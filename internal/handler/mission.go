package handler

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/magehall/mission-tracker/internal/mage"
	"github.com/magehall/mission-tracker/internal/model"
	"github.com/magehall/mission-tracker/internal/repository"
)

// MissionHandler groups the dependencies for the mission CRUD
// endpoints: create, list, get, cancel, search and the manual
// expiration sweep. The completion flow lives in CompletionHandler
// because it pulls in the ledger and reward machinery.
type MissionHandler struct {
	Missions *repository.MissionRepo
	Users    *repository.UserRepo
	Mage     *mage.Client
	PageSize int

	validate *validator.Validate
}

// NewMissionHandler constructs a MissionHandler. The mage client may
// be disabled; creation then falls back to the original description.
func NewMissionHandler(missions *repository.MissionRepo, users *repository.UserRepo, mageClient *mage.Client, pageSize int) *MissionHandler {
	if missions == nil || users == nil {
		panic("nil repository passed to NewMissionHandler")
	}
	return &MissionHandler{
		Missions: missions,
		Users:    users,
		Mage:     mageClient,
		PageSize: pageSize,
		validate: newValidator(),
	}
}

type createMissionReq struct {
	UserID              string  `json:"id_user" validate:"required,uuid"`
	OriginalDescription string  `json:"original_description" validate:"required"`
	CreationDate        string  `json:"creation_date" validate:"required,datetime=2006-01-02"`
	DueDate             *string `json:"due_date" validate:"required,datetime=2006-01-02"`
	Status              string  `json:"status" validate:"required,oneof=pending completed cancelled in_progress"`
}

// CreateMission handles POST /v1/missions. The payload is validated
// field by field; the first violation comes back as a 400 naming the
// field. The fantasy description is asked from the mage; if the mage
// is disabled or fails, the original description is stored verbatim
// rather than failing the insert.
func (h *MissionHandler) CreateMission(c echo.Context) error {
	var req createMissionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request body"})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": firstViolation(err)})
	}

	ctx := c.Request().Context()
	ok, err := h.Users.Exists(ctx, req.UserID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "database error"})
	}
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "user not found"})
	}

	fantasy := req.OriginalDescription
	if h.Mage != nil {
		mageCtx, cancel := context.WithTimeout(ctx, 25*time.Second)
		if out, err := h.Mage.Transform(mageCtx, req.OriginalDescription); err == nil {
			fantasy = out
		} else if !errors.Is(err, mage.ErrDisabled) {
			log.Printf("mission-create: mage transform failed, using original: %v", err)
		}
		cancel()
	}

	m := model.Mission{
		UserID:              req.UserID,
		OriginalDescription: req.OriginalDescription,
		FantasyDescription:  fantasy,
		Status:              req.Status,
		CreationDate:        req.CreationDate,
		DueDate:             req.DueDate,
	}
	if err := h.Missions.Insert(ctx, &m); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "failed to insert mission"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Mission inserted successfully",
		"mission": m,
	})
}

// ListMissions handles GET /v1/missions. The optional ?status= query
// filters by lifecycle state; an unknown status is a 400. An empty
// result is a 200 with an empty list.
func (h *MissionHandler) ListMissions(c echo.Context) error {
	status := c.QueryParam("status")
	if status != "" && !model.IsValidStatus(status) && status != model.StatusFailed {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "status is invalid"})
	}
	missions, err := h.Missions.GetAll(c.Request().Context(), status)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"missions": missions})
}

// GetMission handles GET /v1/missions/:id.
func (h *MissionHandler) GetMission(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "id_mission must be a positive integer"})
	}
	m, err := h.Missions.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "mission not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "database error"})
	}
	return c.JSON(http.StatusOK, m)
}

type cancelMissionReq struct {
	MissionID int64  `json:"id_mission" validate:"required,gt=0"`
	UserID    string `json:"id_user" validate:"required,uuid"`
}

// CancelMission handles POST /v1/missions/cancel. The transition is
// scoped to the owner: a mission that does not exist and a mission
// owned by someone else both answer 404, so callers cannot probe
// other users' missions. A mission already out of the pending state
// answers 409.
func (h *MissionHandler) CancelMission(c echo.Context) error {
	var req cancelMissionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request body"})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": firstViolation(err)})
	}

	err := h.Missions.TransitionFromPending(c.Request().Context(), req.MissionID, req.UserID, model.StatusCancelled)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, echo.Map{"message": "Mission has been banished by the Gods"})
	case errors.Is(err, sql.ErrNoRows):
		return c.JSON(http.StatusNotFound, echo.Map{"message": "mission not found"})
	case errors.Is(err, repository.ErrNotPending):
		return c.JSON(http.StatusConflict, echo.Map{"message": "mission is not pending"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "failed to cancel mission"})
	}
}

// SweepMissions handles POST /v1/missions/sweep, the manual trigger
// for the expiration sweep that also runs on a schedule.
func (h *MissionHandler) SweepMissions(c echo.Context) error {
	n, err := h.Missions.SweepExpired(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "expiration sweep failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Missions' expiration checking done",
		"failed":  n,
	})
}
