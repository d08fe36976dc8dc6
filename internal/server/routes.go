package server

import (
	"github.com/verseprint/backend/internal/server/middleware"
	"github.com/verseprint/backend/internal/server/routes"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})

	apiRoutes := e.Group("/api", middleware.AuthMiddleware)

	// Author routes
	apiRoutes.GET("/authors/:author_id", routes.GetAuthorHandler, middleware.RequireAnyPermission("author.view", "author.view:all"))
	apiRoutes.GET("/authors/:author_id/fingerprint", routes.GetFingerprintHandler, middleware.RequireAnyPermission("author.view", "author.view:all"))
	apiRoutes.POST("/authors/:author_id/ingest", routes.IngestAuthorHandler, middleware.RequirePermission("author.ingest"))
	apiRoutes.DELETE("/authors/:author_id", routes.DeleteAuthorHandler, middleware.RequirePermission("author.delete"))

	// Retrieval and generation routes
	apiRoutes.POST("/authors/:author_id/facets", routes.GetFacetsHandler, middleware.RequireAnyPermission("author.view", "author.view:all"))
	apiRoutes.POST("/authors/:author_id/generate", routes.GenerateHandler, middleware.RequirePermission("author.generate"))
}
