package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rasadhq/rasad/internal/server/middleware"
	"github.com/rasadhq/rasad/pkg/brain"
)

// GetAnalyzerHealthHandler reports the text analyzer's health. An unreachable
// analyzer is a degraded 200, not an error.
func GetAnalyzerHealthHandler(c echo.Context) error {
	type analyzerHealthResponse struct {
		Message  string              `json:"message"`
		Analyzer *brain.HealthStatus `json:"analyzer,omitempty"`
	}

	cc := c.(*middleware.AppContext)
	status, err := cc.App.Brain.Health(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, analyzerHealthResponse{
		Message:  "Analyzer status retrieved",
		Analyzer: status,
	})
}
