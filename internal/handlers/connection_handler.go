package handlers

import (
	"net/http"

	"github.com/anonto42/bharat-link/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// ConnectionHandler exposes the follow graph
type ConnectionHandler struct {
	graph *services.SocialGraphService
}

func NewConnectionHandler(graph *services.SocialGraphService) *ConnectionHandler {
	return &ConnectionHandler{graph: graph}
}

// RegisterConnectionRoutes registers follow routes on an authenticated group.
func (h *ConnectionHandler) RegisterConnectionRoutes(g *echo.Group) {
	g.POST("/users/:id/follow", h.FollowUser)
	g.DELETE("/users/:id/follow", h.UnfollowUser)
	g.GET("/users/:id/connection-status", h.GetConnectionStatus)
	g.GET("/users/:id/followers", h.GetFollowers)
	g.GET("/users/:id/following", h.GetFollowing)
	g.GET("/users/:id/follow-counts", h.GetFollowCounts)
}

func (h *ConnectionHandler) FollowUser(c echo.Context) error {
	p, err := caller(c)
	if err != nil {
		return err
	}
	conn, err := h.graph.FollowUser(c.Request().Context(), p.ID, c.Param("id"), p.Name)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, conn)
}

func (h *ConnectionHandler) UnfollowUser(c echo.Context) error {
	p, err := caller(c)
	if err != nil {
		return err
	}
	if err := h.graph.UnfollowUser(c.Request().Context(), p.ID, c.Param("id")); err != nil {
		return err
	}
	return respondMessage(c, http.StatusOK, "Unfollowed successfully")
}

// GetConnectionStatus reports whether the caller follows :id.
func (h *ConnectionHandler) GetConnectionStatus(c echo.Context) error {
	p, err := caller(c)
	if err != nil {
		return err
	}
	status, err := h.graph.GetConnectionStatus(c.Request().Context(), p.ID, c.Param("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, status)
}

func (h *ConnectionHandler) GetFollowers(c echo.Context) error {
	users, err := h.graph.GetFollowers(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, users)
}

func (h *ConnectionHandler) GetFollowing(c echo.Context) error {
	users, err := h.graph.GetFollowing(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, users)
}

func (h *ConnectionHandler) GetFollowCounts(c echo.Context) error {
	counts, err := h.graph.GetFollowCounts(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, counts)
}
