package handlers

import (
	"net/http"

	"github.com/anonto42/bharat-link/backend/internal/middleware"
	"github.com/anonto42/bharat-link/backend/internal/models"
	"github.com/anonto42/bharat-link/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	feed *services.FeedService
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(feed *services.FeedService) *PostHandler {
	return &PostHandler{feed: feed}
}

// RegisterPostRoutes registers post routes. Reads are public; the single post
// view resolves isLiked when the caller is known.
func (h *PostHandler) RegisterPostRoutes(g *echo.Group, requireAuth, optionalAuth echo.MiddlewareFunc) {
	g.GET("/posts", h.GetPosts)
	g.GET("/posts/:id", h.GetPost, optionalAuth)
	g.POST("/posts", h.CreatePost, requireAuth)
	g.PUT("/posts/:id", h.UpdatePost, requireAuth)
	g.DELETE("/posts/:id", h.DeletePost, requireAuth)
}

func (h *PostHandler) CreatePost(c echo.Context) error {
	p, err := caller(c)
	if err != nil {
		return err
	}
	var req models.CreatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	post, err := h.feed.CreatePost(c.Request().Context(), p.ID, req)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, post)
}

// GetPosts returns one page of the feed, optionally for a single author.
func (h *PostHandler) GetPosts(c echo.Context) error {
	limit, err := queryLimit(c)
	if err != nil {
		return err
	}
	page, err := h.feed.GetPosts(c.Request().Context(), services.PostQuery{
		Cursor: c.QueryParam("cursor"),
		Limit:  limit,
		UserID: c.QueryParam("userId"),
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, page)
}

func (h *PostHandler) GetPost(c echo.Context) error {
	viewerID := ""
	if p, ok := middleware.PrincipalFrom(c); ok {
		viewerID = p.ID
	}
	post, err := h.feed.GetPostByID(c.Request().Context(), c.Param("id"), viewerID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, post)
}

func (h *PostHandler) UpdatePost(c echo.Context) error {
	p, err := caller(c)
	if err != nil {
		return err
	}
	var req models.UpdatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	post, err := h.feed.UpdatePost(c.Request().Context(), c.Param("id"), p.ID, req)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, post)
}

func (h *PostHandler) DeletePost(c echo.Context) error {
	p, err := caller(c)
	if err != nil {
		return err
	}
	if err := h.feed.DeletePost(c.Request().Context(), c.Param("id"), p.ID); err != nil {
		return err
	}
	return respondMessage(c, http.StatusOK, "Post deleted successfully")
}
