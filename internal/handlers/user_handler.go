package handlers

import (
	"net/http"

	"github.com/anonto42/bharat-link/backend/internal/repositories"
	"github.com/anonto42/bharat-link/backend/internal/services"
	apperrors "github.com/anonto42/bharat-link/backend/pkg/errors"
	"github.com/labstack/echo/v4"
)

// UserHandler serves the caller's own profile and per-user activity.
type UserHandler struct {
	users    repositories.UserRepository
	activity *services.ActivityService
}

func NewUserHandler(users repositories.UserRepository, activity *services.ActivityService) *UserHandler {
	return &UserHandler{users: users, activity: activity}
}

// RegisterUserRoutes registers user routes on an authenticated group.
func (h *UserHandler) RegisterUserRoutes(g *echo.Group) {
	g.GET("/users/me", h.GetMe)
	g.GET("/users/:id/activity", h.GetActivity)
}

// GetMe returns the local user row of the caller.
func (h *UserHandler) GetMe(c echo.Context) error {
	p, err := caller(c)
	if err != nil {
		return err
	}
	user, err := h.users.GetUserByID(c.Request().Context(), p.ID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrNotFound) {
			return apperrors.ErrUserNotFound
		}
		return apperrors.ErrStorage(err)
	}
	return respond(c, http.StatusOK, user)
}

func (h *UserHandler) GetActivity(c echo.Context) error {
	limit, err := queryLimit(c)
	if err != nil {
		return err
	}
	items, err := h.activity.GetUserActivity(c.Request().Context(), c.Param("id"), limit)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, items)
}
