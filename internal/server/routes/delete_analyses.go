package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rasadhq/rasad/internal/server/middleware"
)

// DeleteAnalysisHandler removes an analysis and its results. Jobs that are
// currently processing must be cancelled first.
func DeleteAnalysisHandler(c echo.Context) error {
	type deleteAnalysisParams struct {
		ID int64 `param:"id" validate:"required,numeric"`
	}

	params := new(deleteAnalysisParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{
			Message: "Invalid request body",
		})
	}

	cc := c.(*middleware.AppContext)
	if err := cc.App.Orchestrator.Delete(c.Request().Context(), params.ID); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, messageResponse{
		Message: "Analysis deleted successfully",
	})
}
