package http

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cruz1171975/amazonenrichment/config"
	"github.com/cruz1171975/amazonenrichment/internal/logging"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler, logger *zap.Logger) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	logger = logging.OrNop(logger)

	router := gin.New()

	// Global middleware
	router.Use(RequestIDMiddleware())
	router.Use(RecoveryMiddleware(logger))
	router.Use(LoggerMiddleware(logger))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		compliance := v1.Group("/compliance")
		{
			compliance.POST("/scan", handler.ScanCompliance)
		}

		keywords := v1.Group("/keywords")
		{
			keywords.POST("/filter", handler.FilterKeywords)
			keywords.POST("/suggest", handler.SuggestKeywords)
		}

		facts := v1.Group("/facts")
		{
			facts.POST("/validate", handler.ValidateFacts)
		}

		listings := v1.Group("/listings")
		{
			listings.POST("/generate", handler.GenerateListing)
			listings.POST("/batch", handler.GenerateBatch)
			listings.POST("/render", handler.RenderListing)
		}

		export := v1.Group("/export")
		{
			export.POST("/flatfile", handler.ExportFlatFile)
			export.POST("/patch", handler.ExportPatch)
		}
	}

	return router
}
