package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edgard/profilebot/internal/status"
)

// RegisterRoutes mounts the health and composition endpoints on r.
func RegisterRoutes(r *gin.Engine, composer FieldComposer, clock status.Clock, db Pinger) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "alive"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if db != nil {
			if err := db.Ping(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	v1 := r.Group("/v1")
	v1.GET("/fields", func(c *gin.Context) {
		c.JSON(http.StatusOK, composer.Compose(c.Request.Context(), clock()))
	})
}
