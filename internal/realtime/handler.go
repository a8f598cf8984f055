package realtime

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// RegisterRoutes mounts the WebSocket endpoint.
func (h *Hub) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws", h.ServeWS)
}

// ServeWS upgrades the request and runs the client until it disconnects.
func (h *Hub) ServeWS(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		h.log.Debug("websocket upgrade failed", zap.Error(err))
		return nil
	}

	client := newClient(h, conn)
	h.register(client)
	go client.writePump()
	client.readPump()
	return nil
}
