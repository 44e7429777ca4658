package router

import (
	"github.com/gin-gonic/gin"

	"docex/internal/handler"
	"docex/internal/middleware"
	"docex/internal/service"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	authSvc service.AuthService,
	extractionH *handler.ExtractionHandler,
	healthH *handler.HealthHandler,
	allowedOrigins []string,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(allowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	// Protected routes - require a valid service token
	v1 := r.Group("/api/v1")
	v1.Use(middleware.AuthMiddleware(authSvc))

	v1.POST("/extract", extractionH.Extract)

	extractions := v1.Group("/extractions")
	extractions.POST("", extractionH.Submit)
	extractions.GET("", extractionH.List)
	extractions.GET("/export", extractionH.Export)
	extractions.GET("/:id", extractionH.Get)
	extractions.GET("/:id/download", extractionH.Download)
	extractions.DELETE("/:id", extractionH.Delete)

	return r
}
