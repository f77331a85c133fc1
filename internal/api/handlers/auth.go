package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/tablesim/internal/auth"
	"github.com/playmatatu/tablesim/internal/config"
)

// ControlMiddleware validates the bearer control token against the :token
// path parameter and sets table_token in context
func ControlMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing control token"})
			return
		}
		signed := strings.TrimPrefix(header, "Bearer ")

		table := c.Param("token")
		if err := auth.VerifyControlToken([]byte(cfg.JWTSecret), signed, table); err != nil {
			log.Printf("ControlMiddleware: rejected token for %s: %v", table, err)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "invalid control token"})
			return
		}

		c.Set("table_token", table)
		c.Next()
	}
}
