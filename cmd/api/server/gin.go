package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"menu-service/internal/adapter/gin/middleware"
	ginrouter "menu-service/internal/adapter/gin/router"
)

// SetupGinServer creates and configures the Gin REST API server
func SetupGinServer(
	handlers ginrouter.Handlers,
	rateLimiter *middleware.RateLimiter,
	corsOrigins []string,
	ginAddr string,
	l *zap.Logger,
) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	// Setup Gin router with all middleware and routes
	router := ginrouter.SetupRouter(handlers, rateLimiter, corsOrigins, l)

	l.Info("Gin REST API configured", zap.String("address", ginAddr))

	return &http.Server{
		Addr:              ginAddr,
		Handler:           router,
		ReadHeaderTimeout: 2 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
