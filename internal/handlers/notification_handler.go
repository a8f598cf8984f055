package handlers

import (
	"net/http"

	"github.com/anonto42/bharat-link/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	notifications *services.NotificationService
}

func NewNotificationHandler(notifications *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// RegisterNotificationRoutes registers notification routes on an
// authenticated group.
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.GetNotifications)
	g.GET("/notifications/unread-count", h.GetUnreadCount)
	g.PUT("/notifications/mark-all-read", h.MarkAllAsRead)
	g.PUT("/notifications/:id/read", h.MarkAsRead)
}

func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	p, err := caller(c)
	if err != nil {
		return err
	}
	limit, err := queryLimit(c)
	if err != nil {
		return err
	}
	page, err := h.notifications.GetNotifications(c.Request().Context(), p.ID, c.QueryParam("cursor"), limit)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, page)
}

func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	p, err := caller(c)
	if err != nil {
		return err
	}
	count, err := h.notifications.GetUnreadCount(c.Request().Context(), p.ID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, echo.Map{"count": count})
}

func (h *NotificationHandler) MarkAsRead(c echo.Context) error {
	p, err := caller(c)
	if err != nil {
		return err
	}
	n, err := h.notifications.MarkAsRead(c.Request().Context(), c.Param("id"), p.ID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, n)
}

func (h *NotificationHandler) MarkAllAsRead(c echo.Context) error {
	p, err := caller(c)
	if err != nil {
		return err
	}
	updated, err := h.notifications.MarkAllAsRead(c.Request().Context(), p.ID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, echo.Map{"updated": updated})
}
