package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/tablesim/internal/admin"
	"github.com/playmatatu/tablesim/internal/config"
	"github.com/playmatatu/tablesim/internal/session"
)

const adminTokenHeader = "X-Admin-Token"

// AdminTokenMiddleware checks the X-Admin-Token header against ADMIN_TOKEN_HASH
func AdminTokenMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.AdminTokenHash == "" {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Admin API disabled"})
			c.Abort()
			return
		}

		token := c.GetHeader(adminTokenHeader)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			c.Abort()
			return
		}

		if !admin.VerifyAdminToken(cfg.AdminTokenHash, token) {
			log.Printf("[ADMIN] rejected admin token from %s", c.ClientIP())
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid admin token"})
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetAdminTables lists every running table
func GetAdminTables(tables *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		list := tables.List()
		c.JSON(http.StatusOK, gin.H{
			"tables": list,
			"count":  len(list),
		})
	}
}

// AdminCloseTable stops a table and disconnects its watchers
func AdminCloseTable(tables *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Param("token")
		if err := tables.Close(token); err != nil {
			respondTableError(c, err)
			return
		}
		log.Printf("[ADMIN] closed table %s from %s", token, c.ClientIP())
		c.JSON(http.StatusOK, gin.H{"closed": token})
	}
}
