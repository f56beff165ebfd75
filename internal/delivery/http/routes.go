package http

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/medirec/backend/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler, logger *zap.Logger) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()

	router.Use(RecoveryMiddleware())
	router.Use(RequestLogger(logger))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	router.GET("/health", handler.HealthCheck)
	router.GET("/recommend", handler.Recommend)
	router.GET("/products", handler.Products)
	router.GET("/categories", handler.Categories)

	// Cache administration (single-writer assumption: one refresh at a time)
	cache := router.Group("/cache")
	{
		cache.GET("", handler.CacheInfo)
		cache.POST("/refresh", handler.RefreshCache)
		cache.DELETE("", handler.ClearCache)
	}

	return router
}
