package routes

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rasadhq/rasad/internal/server/middleware"
	"github.com/rasadhq/rasad/pkg/analysis"
	"github.com/rasadhq/rasad/pkg/common"
)

// CreateAnalysisHandler creates a new analysis job in pending status.
func CreateAnalysisHandler(c echo.Context) error {
	type createAnalysisBody struct {
		Name         string          `json:"name" validate:"required"`
		Description  string          `json:"description"`
		AnalysisType string          `json:"analysis_type" validate:"required"`
		Config       json.RawMessage `json:"config"`
		QueryFilters json.RawMessage `json:"query_filters"`
		PostCount    int             `json:"post_count"`
	}

	type createAnalysisResponse struct {
		Message  string           `json:"message"`
		Analysis *common.Analysis `json:"analysis,omitempty"`
	}

	data := new(createAnalysisBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, createAnalysisResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, createAnalysisResponse{
			Message: "Invalid request body",
		})
	}

	cc := c.(*middleware.AppContext)
	created, err := cc.App.Orchestrator.Create(c.Request().Context(), analysis.CreateParams{
		Name:         data.Name,
		Description:  data.Description,
		AnalysisType: common.AnalysisType(data.AnalysisType),
		Config:       data.Config,
		QueryFilters: data.QueryFilters,
		PostCount:    data.PostCount,
		UserID:       cc.UserID,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, createAnalysisResponse{
		Message:  "Analysis created successfully",
		Analysis: created,
	})
}

// StartAnalysisHandler queues a pending or failed job for processing.
func StartAnalysisHandler(c echo.Context) error {
	type startAnalysisParams struct {
		ID int64 `param:"id" validate:"required,numeric"`
	}

	type startAnalysisResponse struct {
		Message  string           `json:"message"`
		Analysis *common.Analysis `json:"analysis,omitempty"`
	}

	params := new(startAnalysisParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, startAnalysisResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, startAnalysisResponse{
			Message: "Invalid request body",
		})
	}

	cc := c.(*middleware.AppContext)
	started, err := cc.App.Orchestrator.Start(c.Request().Context(), params.ID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, startAnalysisResponse{
		Message:  "Analysis queued successfully",
		Analysis: started,
	})
}

// CancelAnalysisHandler stops a non-terminal job.
func CancelAnalysisHandler(c echo.Context) error {
	type cancelAnalysisParams struct {
		ID int64 `param:"id" validate:"required,numeric"`
	}

	type cancelAnalysisResponse struct {
		Message  string           `json:"message"`
		Analysis *common.Analysis `json:"analysis,omitempty"`
	}

	params := new(cancelAnalysisParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, cancelAnalysisResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, cancelAnalysisResponse{
			Message: "Invalid request body",
		})
	}

	cc := c.(*middleware.AppContext)
	cancelled, err := cc.App.Orchestrator.Cancel(c.Request().Context(), params.ID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, cancelAnalysisResponse{
		Message:  "Analysis cancelled",
		Analysis: cancelled,
	})
}
