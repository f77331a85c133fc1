package api

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/tablesim/internal/api/handlers"
	"github.com/playmatatu/tablesim/internal/config"
	"github.com/playmatatu/tablesim/internal/middleware"
	"github.com/playmatatu/tablesim/internal/session"
	"github.com/playmatatu/tablesim/internal/ws"
)

// SetupRoutes configures all API routes. cache may be nil when Redis is not
// configured.
func SetupRoutes(router *gin.Engine, tables *session.Manager, wsHandler *ws.Handler, cache handlers.FrameCache, cfg *config.Config) {
	router.Use(middleware.CORSMiddleware(cfg))

	if cfg.Environment != "production" {
		router.Use(func(c *gin.Context) {
			c.Header("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
			c.Header("Pragma", "no-cache")
			c.Header("Expires", "0")
			c.Next()
		})
		log.Println("[DEV MODE] no-cache headers enabled for all routes")
	}

	// API v1 group
	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", handlers.HealthCheck(tables))
		v1.GET("/presets", handlers.ListPresets(cfg))

		t := v1.Group("/tables")
		{
			t.POST("", handlers.CreateTable(tables, cfg))
			t.GET("/:token", handlers.GetTable(tables, cache))
			t.GET("/:token/ws", middleware.WebSocketCORSCheck(cfg), handlers.HandleTableWebSocket(wsHandler))

			control := t.Group("/:token", handlers.ControlMiddleware(cfg))
			control.POST("/rack", handlers.RackTable(tables))
			control.PUT("/bounds", handlers.ResizeTable(tables))
		}

		adm := v1.Group("/admin", handlers.AdminTokenMiddleware(cfg))
		{
			adm.GET("/tables", handlers.GetAdminTables(tables))
			adm.DELETE("/tables/:token", handlers.AdminCloseTable(tables))
		}
	}
}
