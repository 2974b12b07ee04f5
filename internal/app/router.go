package app

import (
	"github.com/gin-gonic/gin"
	"property-import-backend/internal/handlers"
	"property-import-backend/internal/middleware"
)

// Router builds the HTTP API. /health is public, everything under /api/v1
// needs a bearer token.
func (a *App) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	imports := handlers.NewImportsHandler(a.Scraping, a.Sources)
	properties := handlers.NewPropertiesHandler(a.Store)
	media := handlers.NewMediaHandler(a.Media)

	router.GET("/health", handlers.HealthHandler)

	api := router.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(a.Config))

	api.GET("/imports/sources", imports.ListSources)
	api.POST("/imports/scrape", imports.Scrape)
	api.POST("/imports/properties", imports.ImportProperties)
	api.POST("/imports/run", imports.Run)
	api.GET("/imports/jobs", imports.ListJobs)
	api.GET("/imports/jobs/:job_id", imports.GetJob)
	api.GET("/imports/jobs/:job_id/snapshot", imports.GetSnapshot)
	api.POST("/imports/jobs/:job_id/commit", imports.Commit)

	api.GET("/properties", properties.ListProperties)
	api.GET("/properties/:id", properties.GetProperty)

	api.POST("/media/upload", media.Upload)
	api.GET("/media/sizes/*public_id", media.Sizes)
	api.DELETE("/media/:resource_type/*public_id", media.Delete)

	return router
}
