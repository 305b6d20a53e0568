// README: Websocket attach endpoint for driver notification sessions.
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"ridebooking/internal/modules/driver"
	"ridebooking/internal/notify"
	"ridebooking/internal/types"
)

type WSHandler struct {
	registry *driver.Registry
	sessions *notify.WSRegistry
	upgrader websocket.Upgrader
	log      *slog.Logger
}

func NewWSHandler(registry *driver.Registry, sessions *notify.WSRegistry, log *slog.Logger) *WSHandler {
	return &WSHandler{
		registry: registry,
		sessions: sessions,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		log: log,
	}
}

// Attach upgrades the connection and holds it open as the driver's push
// channel until the peer disconnects.
func (h *WSHandler) Attach(c *gin.Context) {
	driverID := c.Param("driverId")
	if !isValidID(driverID) {
		writeError(c, http.StatusBadRequest, "invalid driver id")
		return
	}
	id := types.ID(driverID)
	if _, err := h.registry.Get(c.Request.Context(), id); err != nil {
		writeServiceError(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "driver_id", id, "err", err)
		return
	}
	h.sessions.Add(id, conn)
	h.log.Info("driver session attached", "driver_id", id)

	defer func() {
		h.sessions.Remove(id)
		_ = conn.Close()
		h.log.Info("driver session detached", "driver_id", id)
	}()

	// drain until the peer closes; inbound frames are ignored
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
