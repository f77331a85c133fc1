package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/playmatatu/tablesim/internal/ws"
)

// HandleTableWebSocket streams frames to watchers and accepts control messages
func HandleTableWebSocket(h *ws.Handler) gin.HandlerFunc {
	return h.HandleWebSocket
}
