package server

import (
	"github.com/labstack/echo/v4"

	"github.com/rasadhq/rasad/internal/server/routes"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})

	apiRoutes := e.Group("/api")

	// Analysis routes
	apiRoutes.POST("/analyses", routes.CreateAnalysisHandler)
	apiRoutes.GET("/analyses", routes.ListAnalysesHandler)
	apiRoutes.GET("/analyses/stats", routes.GetAnalysisStatsHandler)
	apiRoutes.GET("/analyses/pending", routes.ListPendingAnalysesHandler)
	apiRoutes.GET("/analyses/:id", routes.GetAnalysisHandler)
	apiRoutes.DELETE("/analyses/:id", routes.DeleteAnalysisHandler)
	apiRoutes.POST("/analyses/:id/start", routes.StartAnalysisHandler)
	apiRoutes.POST("/analyses/:id/cancel", routes.CancelAnalysisHandler)
	apiRoutes.GET("/analyses/:id/progress", routes.GetAnalysisProgressHandler)
	apiRoutes.GET("/analyses/:id/results", routes.GetAnalysisResultsHandler)
	apiRoutes.GET("/analyses/:id/summary", routes.GetAnalysisSummaryHandler)

	// Post routes
	apiRoutes.POST("/posts", routes.IngestPostHandler)
	apiRoutes.GET("/posts", routes.ListPostsHandler)
	apiRoutes.GET("/posts/stats", routes.GetPostStatsHandler)
	apiRoutes.GET("/posts/:id", routes.GetPostHandler)

	// Graph routes
	apiRoutes.GET("/graph/nodes", routes.ListGraphNodesHandler)
	apiRoutes.GET("/graph/edges", routes.ListGraphEdgesHandler)
	apiRoutes.GET("/graph/stats", routes.GetGraphStatsHandler)
	apiRoutes.POST("/graph/build", routes.BuildGraphHandler)
	apiRoutes.DELETE("/graph", routes.ClearGraphHandler)

	// Trend routes
	apiRoutes.GET("/trends", routes.ListTrendsHandler)
	apiRoutes.GET("/trends/top", routes.GetTopTrendsHandler)
	apiRoutes.GET("/trends/stats", routes.GetTrendStatsHandler)
	apiRoutes.POST("/trends/detect", routes.DetectTrendsHandler)

	// Author routes
	apiRoutes.POST("/authors", routes.CreateAuthorHandler)
	apiRoutes.GET("/authors", routes.ListAuthorsHandler)
	apiRoutes.GET("/authors/:id", routes.GetAuthorHandler)
	apiRoutes.DELETE("/authors/:id", routes.DeleteAuthorHandler)

	// Data source routes
	apiRoutes.POST("/data-sources", routes.CreateDataSourceHandler)
	apiRoutes.GET("/data-sources", routes.ListDataSourcesHandler)
	apiRoutes.GET("/data-sources/:id", routes.GetDataSourceHandler)
	apiRoutes.PATCH("/data-sources/:id", routes.UpdateDataSourceHandler)
	apiRoutes.DELETE("/data-sources/:id", routes.DeleteDataSourceHandler)

	// Dashboard routes
	apiRoutes.POST("/dashboards", routes.CreateDashboardHandler)
	apiRoutes.GET("/dashboards", routes.ListDashboardsHandler)
	apiRoutes.GET("/dashboards/:id", routes.GetDashboardHandler)
	apiRoutes.PATCH("/dashboards/:id", routes.UpdateDashboardHandler)
	apiRoutes.DELETE("/dashboards/:id", routes.DeleteDashboardHandler)

	// User routes
	apiRoutes.POST("/users", routes.CreateUserHandler)
	apiRoutes.GET("/users", routes.ListUsersHandler)
	apiRoutes.GET("/users/:id", routes.GetUserHandler)

	// Analyzer status
	apiRoutes.GET("/brain/health", routes.GetAnalyzerHealthHandler)
}
