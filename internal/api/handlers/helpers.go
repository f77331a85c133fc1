package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/tablesim/internal/game"
	"github.com/playmatatu/tablesim/internal/session"
)

// respondTableError maps table errors to HTTP responses.
func respondTableError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, session.ErrTableNotFound), errors.Is(err, session.ErrRunnerStopped):
		c.JSON(http.StatusNotFound, gin.H{"error": "Table not found"})
	case errors.Is(err, session.ErrTableLimit):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Too many tables running, try again later"})
	case errors.Is(err, game.ErrUnknownPreset):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown preset", "presets": game.PresetNames()})
	case errors.Is(err, game.ErrInvalidBounds):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Width and height must be positive"})
	case errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Table busy"})
	default:
		log.Printf("[ERROR] %s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
	}
}
