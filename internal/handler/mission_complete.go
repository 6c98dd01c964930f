package handler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/magehall/mission-tracker/internal/queue"
	"github.com/magehall/mission-tracker/internal/repository"
	"github.com/magehall/mission-tracker/internal/service"
)

// CompletionHandler settles mission completions. It orchestrates the
// XP ledger (one transaction: mission status + experience), then the
// best-effort follow-ups that must never unwind a committed level-up:
// the reward tier advance and the progress event publication.
type CompletionHandler struct {
	Ledger   *service.XPLedger
	Assigner *service.RewardAssigner

	// publish is swappable in tests; defaults to the RabbitMQ publisher.
	publish func(ctx context.Context, ev queue.MissionCompletedEvent) error

	validate *validator.Validate
}

// NewCompletionHandler constructs a CompletionHandler.
func NewCompletionHandler(ledger *service.XPLedger, assigner *service.RewardAssigner) *CompletionHandler {
	if ledger == nil || assigner == nil {
		panic("nil dependency passed to NewCompletionHandler")
	}
	return &CompletionHandler{
		Ledger:   ledger,
		Assigner: assigner,
		publish:  service.PublishMissionCompleted,
		validate: newValidator(),
	}
}

type completeMissionReq struct {
	MissionID int64  `json:"id_mission" validate:"required,gt=0"`
	UserID    string `json:"id_user" validate:"required,uuid"`
}

// CompleteMission handles POST /v1/missions/complete.
//
// Status mapping: 400 for malformed payloads, 404 when the user or
// the (owned) mission cannot be found, 409 when the mission is no
// longer pending or the user's experience is already at its limit,
// 500 for dependency failures. On success the response reports the
// updated progression and whether the reward tier moved.
func (h *CompletionHandler) CompleteMission(c echo.Context) error {
	var req completeMissionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request body"})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": firstViolation(err)})
	}

	ctx := c.Request().Context()
	res, err := h.Ledger.CompleteMission(ctx, req.MissionID, req.UserID)
	switch {
	case err == nil:
	case errors.Is(err, sql.ErrNoRows):
		return c.JSON(http.StatusNotFound, echo.Map{"message": "mission or user not found"})
	case errors.Is(err, repository.ErrXPAtLimit):
		return c.JSON(http.StatusConflict, echo.Map{"message": "experience already at limit"})
	case errors.Is(err, repository.ErrNotPending):
		return c.JSON(http.StatusConflict, echo.Map{"message": "mission is not pending"})
	default:
		log.Printf("mission-complete: ledger failed for mission %d: %v", req.MissionID, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "an error occurred while completing the mission"})
	}

	// The level-up is committed; everything below is best-effort.
	rewardUpdated := false
	if res.LevelUp {
		rewardUpdated = h.Assigner.AdvanceTierBestEffort(ctx, res.UserID, res.Level)
	}

	_ = h.publish(ctx, queue.MissionCompletedEvent{
		MissionID:     res.MissionID,
		UserID:        res.UserID,
		XP:            res.Delta,
		Level:         res.Level,
		CurrentXP:     res.CurrentXP,
		XPLimit:       res.XPLimit,
		LevelUp:       res.LevelUp,
		RewardUpdated: rewardUpdated,
		CompletedAt:   time.Now().UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusOK, echo.Map{
		"message":        fmt.Sprintf("Mission %d completed successfully", res.MissionID),
		"id_user":        res.UserID,
		"level":          res.Level,
		"current_xp":     res.CurrentXP,
		"xp_limit":       res.XPLimit,
		"level_up":       res.LevelUp,
		"xp":             res.Delta,
		"reward_updated": rewardUpdated,
	})
}
