package handler

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/magehall/mission-tracker/internal/repository"
)

// UserHandler serves the user existence check used by clients before
// they fire mission operations for an id.
type UserHandler struct {
	Users *repository.UserRepo

	validate *validator.Validate
}

// NewUserHandler constructs a UserHandler.
func NewUserHandler(users *repository.UserRepo) *UserHandler {
	if users == nil {
		panic("nil repository passed to NewUserHandler")
	}
	return &UserHandler{Users: users, validate: newValidator()}
}

type existsReq struct {
	UserID string `json:"id_user" validate:"required,uuid"`
}

// Exists handles POST /v1/users/exists. Unknown users are not an
// error: the answer is {"exists": false} with a 200.
func (h *UserHandler) Exists(c echo.Context) error {
	var req existsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request body"})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": firstViolation(err)})
	}
	ok, err := h.Users.Exists(c.Request().Context(), req.UserID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"exists": ok})
}
