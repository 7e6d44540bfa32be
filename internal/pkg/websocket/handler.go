package websocket

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Handler for WebSocket connections
type Handler struct {
	hub    *Hub
	logger zerolog.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, logger zerolog.Logger) *Handler {
	return &Handler{
		hub:    hub,
		logger: logger,
	}
}

// ServeNotices godoc
// @Summary Subscribe to live notices
// @Description Upgrades to a WebSocket that receives notices as they are published. Without campusId every notice is delivered; with it, that campus's notices plus global ones.
// @Tags notices
// @Param campusId query int false "Campus ID"
// @Param audience query string false "Audience filter (STUDENTS or STAFF)"
// @Success 101 {string} string "Switching Protocols"
// @Failure 400 {object} dto.ErrorResponse "Invalid campus ID"
// @Router /notices/live [get]
func (h *Handler) ServeNotices(c *gin.Context) {
	var campusID int64
	if raw := c.Query("campusId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid campus ID"})
			return
		}
		campusID = id
	}
	audience := strings.ToUpper(strings.TrimSpace(c.Query("audience")))

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error().Err(err).Int64("campusID", campusID).Msg("Failed to upgrade connection to WebSocket")
		return
	}

	client := &Client{
		hub:      h.hub,
		conn:     conn,
		send:     make(chan []byte, 32),
		campusID: campusID,
		audience: audience,
		logger:   h.logger,
	}
	select {
	case h.hub.register <- client:
	case <-h.hub.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}
