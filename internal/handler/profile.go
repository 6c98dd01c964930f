package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/magehall/mission-tracker/internal/repository"
)

// ProfileHandler serves the thin profile endpoints: read, update of
// the descriptive attributes, and the currently held reward tier. The
// progression columns are read-only here; only the ledger writes them.
type ProfileHandler struct {
	Users   *repository.UserRepo
	Rewards *repository.RewardRepo

	validate *validator.Validate
}

// NewProfileHandler constructs a ProfileHandler.
func NewProfileHandler(users *repository.UserRepo, rewards *repository.RewardRepo) *ProfileHandler {
	if users == nil || rewards == nil {
		panic("nil repository passed to NewProfileHandler")
	}
	return &ProfileHandler{Users: users, Rewards: rewards, validate: newValidator()}
}

// pathUserID validates the :id_user path parameter as a UUID.
func pathUserID(c echo.Context) (string, bool) {
	id := c.Param("id_user")
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return id, true
}

// GetProfile handles GET /v1/profile/:id_user.
func (h *ProfileHandler) GetProfile(c echo.Context) error {
	id, ok := pathUserID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "id_user must be a UUID"})
	}
	u, err := h.Users.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"id_user":    u.ID,
		"username":   u.Username,
		"email":      u.Email,
		"gender":     u.Gender,
		"level":      u.Level,
		"current_xp": u.CurrentXP,
		"xp_limit":   u.XPLimit,
	})
}

type updateProfileReq struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Gender   string `json:"gender" validate:"required"`
}

// UpdateProfile handles PUT /v1/profile/:id_user. Only the
// descriptive attributes can be changed here.
func (h *ProfileHandler) UpdateProfile(c echo.Context) error {
	id, ok := pathUserID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "id_user must be a UUID"})
	}
	var req updateProfileReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request body"})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": firstViolation(err)})
	}

	err := h.Users.UpdateProfile(c.Request().Context(), id, req.Username, req.Email, req.Gender)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "failed to update profile"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Profile updated successfully"})
}

// GetReward handles GET /v1/profile/:id_user/reward, returning the
// cosmetic payload of the tier the user currently holds.
func (h *ProfileHandler) GetReward(c echo.Context) error {
	id, ok := pathUserID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "id_user must be a UUID"})
	}
	rw, err := h.Rewards.GetUserRewardDetail(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "no reward assigned"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "database error"})
	}
	return c.JSON(http.StatusOK, rw)
}
