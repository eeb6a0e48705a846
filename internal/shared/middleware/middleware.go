package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"stagepass/pkg/logger"
)

// RequestLogger logs every request through the shared slog wrapper.
func RequestLogger() gin.HandlerFunc {
	appLogger := logger.GetDefault()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		appLogger.LogHTTPRequest(c, time.Since(start))
	}
}

// CORS returns the CORS policy for the API surface.
func CORS() gin.HandlerFunc {
	cfg := cors.DefaultConfig()
	cfg.AllowAllOrigins = true
	cfg.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	cfg.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	return cors.New(cfg)
}
