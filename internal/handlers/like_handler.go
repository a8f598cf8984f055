package handlers

import (
	"net/http"

	"github.com/anonto42/bharat-link/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// LikeHandler handles like toggling
type LikeHandler struct {
	feed *services.FeedService
}

func NewLikeHandler(feed *services.FeedService) *LikeHandler {
	return &LikeHandler{feed: feed}
}

func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group, requireAuth echo.MiddlewareFunc) {
	g.POST("/posts/:id/like", h.ToggleLike, requireAuth)
}

// ToggleLike likes the post, or unlikes it when the caller already does.
func (h *LikeHandler) ToggleLike(c echo.Context) error {
	p, err := caller(c)
	if err != nil {
		return err
	}
	result, err := h.feed.ToggleLike(c.Request().Context(), c.Param("id"), p.ID, p.Name)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, result)
}
