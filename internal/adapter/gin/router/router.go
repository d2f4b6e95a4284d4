package router

import (
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"menu-service/internal/adapter/gin/handler"
	"menu-service/internal/adapter/gin/middleware"
	"menu-service/pkg/logger"
)

// Handlers groups the HTTP handlers mounted by SetupRouter.
type Handlers struct {
	User   *handler.UserHandler
	Dish   *handler.DishHandler
	Health *handler.HealthHandler
}

// SetupRouter configures and returns a Gin router with all routes and middleware.
// A nil rateLimiter disables rate limiting.
func SetupRouter(h Handlers, rateLimiter *middleware.RateLimiter, corsOrigins []string, log *zap.Logger) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(logger.RequestID())
	router.Use(middleware.Recovery(log))
	router.Use(middleware.Logger(log))
	router.Use(cors.New(corsConfig(corsOrigins)))
	router.Use(rateLimiter.Middleware())

	router.GET("/health", h.Health.Health)

	usuarios := router.Group("/usuarios")
	{
		usuarios.GET("", h.User.ListUsers)
		usuarios.GET("/:id", h.User.GetUser)
		usuarios.POST("", h.User.CreateUser)
		usuarios.POST("/login", h.User.Login)
		usuarios.DELETE("/:id", h.User.DeleteUser)
	}

	platos := router.Group("/platos")
	{
		platos.GET("", h.Dish.ListDishes)
		platos.GET("/:id", h.Dish.GetDish)
		platos.POST("", h.Dish.CreateDish)
		platos.PUT("/:id", h.Dish.UpdateDish)
		platos.DELETE("/:id", h.Dish.DeleteDish)
	}

	return router
}

func corsConfig(origins []string) cors.Config {
	config := cors.DefaultConfig()
	if len(origins) == 0 || slices.Contains(origins, "*") {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = origins
	}
	config.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", logger.RequestIDHeader}
	config.ExposeHeaders = []string{logger.RequestIDHeader}
	config.MaxAge = 12 * time.Hour
	return config
}
