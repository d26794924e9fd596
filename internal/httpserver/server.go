package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"attendance-api/internal/auth"
	"attendance-api/internal/config"
	"attendance-api/internal/handlers"
	"attendance-api/internal/store"
)

// NewRouter wires all endpoints under the /api prefix.
// Public: /api/health, /api/ready
// Device-authenticated: /api/attendance, /api/attendance/:device_id,
// /api/last_event/:device_id
func NewRouter(cfg config.Config, st store.AttendanceStore) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestID())

	api := r.Group("/api")

	// Liveness: always healthy, no dependencies.
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	// Readiness: confirms the store dependency is reachable.
	api.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer cancel()

		if err := st.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	// Everything device-scoped goes through the key guard.
	protected := api.Group("/")
	protected.Use(auth.DeviceKeyMiddleware(cfg.DeviceKeys))

	handlers.RegisterAttendanceRoutes(protected, st)

	return r
}

// requestID echoes the caller's X-Request-ID or assigns one, so device
// check-ins can be correlated across logs.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		c.Writer.Header().Set("X-Request-ID", id)
		c.Next()
	}
}
