package handlers

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/tablesim/internal/auth"
	"github.com/playmatatu/tablesim/internal/config"
	"github.com/playmatatu/tablesim/internal/game"
	"github.com/playmatatu/tablesim/internal/session"
)

// FrameCache serves the last known frame of tables owned by another process.
type FrameCache interface {
	CachedFrame(ctx context.Context, token string) (*game.Frame, error)
}

const commandTimeout = 2 * time.Second

// CreateTable racks a new table and returns its public token plus a control
// token for the creator
func CreateTable(tables *session.Manager, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Preset string `json:"preset"`
		}
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}

		runner, err := tables.Create(req.Preset)
		if err != nil {
			respondTableError(c, err)
			return
		}

		ttl := time.Duration(cfg.ControlTokenTTLMinutes) * time.Minute
		controlToken, expiresAt, err := auth.IssueControlToken([]byte(cfg.JWTSecret), runner.Token, ttl)
		if err != nil {
			log.Printf("[ERROR] CreateTable - issue control token for %s: %v", runner.Token, err)
			tables.Close(runner.Token)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create table"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"table_token":        runner.Token,
			"control_token":      controlToken,
			"control_expires_at": expiresAt.Format(time.RFC3339),
			"preset":             runner.Preset,
			"ws_path":            "/api/v1/tables/" + runner.Token + "/ws",
			"frame":              runner.Latest(),
		})
	}
}

// GetTable returns the latest frame. Tables running elsewhere are served
// from the frame cache when one is configured.
func GetTable(tables *session.Manager, cache FrameCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Param("token")

		if runner, err := tables.Get(token); err == nil {
			c.JSON(http.StatusOK, gin.H{"table": runner.Info(), "frame": runner.Latest(), "source": "live"})
			return
		}

		if cache == nil {
			respondTableError(c, session.ErrTableNotFound)
			return
		}
		frame, err := cache.CachedFrame(c.Request.Context(), token)
		if err != nil {
			respondTableError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"frame": frame, "source": "cache"})
	}
}

// RackTable replaces the table's balls with a fresh rack
func RackTable(tables *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		runner, err := tables.Get(c.Param("token"))
		if err != nil {
			respondTableError(c, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), commandTimeout)
		defer cancel()
		if err := runner.Rack(ctx); err != nil {
			respondTableError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"frame": runner.Latest()})
	}
}

// ResizeTable changes the table bounds without moving any ball
func ResizeTable(tables *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Width  float64 `json:"width" binding:"required"`
			Height float64 `json:"height" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Width and height required"})
			return
		}

		runner, err := tables.Get(c.Param("token"))
		if err != nil {
			respondTableError(c, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), commandTimeout)
		defer cancel()
		if err := runner.Resize(ctx, req.Width, req.Height); err != nil {
			respondTableError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"frame": runner.Latest()})
	}
}

// ListPresets returns the table variants accepted by CreateTable
func ListPresets(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"presets": game.PresetNames(),
			"default": cfg.TablePreset,
		})
	}
}
