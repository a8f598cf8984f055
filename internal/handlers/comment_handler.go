package handlers

import (
	"net/http"

	"github.com/anonto42/bharat-link/backend/internal/models"
	"github.com/anonto42/bharat-link/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	feed *services.FeedService
}

func NewCommentHandler(feed *services.FeedService) *CommentHandler {
	return &CommentHandler{feed: feed}
}

func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group, requireAuth echo.MiddlewareFunc) {
	g.GET("/posts/:id/comments", h.GetComments)
	g.POST("/posts/:id/comments", h.AddComment, requireAuth)
}

func (h *CommentHandler) AddComment(c echo.Context) error {
	p, err := caller(c)
	if err != nil {
		return err
	}
	var req models.CreateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	comment, err := h.feed.AddComment(c.Request().Context(), c.Param("id"), p.ID, p.Name, req.Content)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, comment)
}

func (h *CommentHandler) GetComments(c echo.Context) error {
	comments, err := h.feed.GetComments(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, comments)
}
