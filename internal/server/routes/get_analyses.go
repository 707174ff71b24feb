package routes

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rasadhq/rasad/internal/server/middleware"
	"github.com/rasadhq/rasad/pkg/analysis"
	"github.com/rasadhq/rasad/pkg/common"
	"github.com/rasadhq/rasad/pkg/store"
)

// ListAnalysesHandler lists analyses with optional status, type, and user
// filters.
func ListAnalysesHandler(c echo.Context) error {
	type listAnalysesQuery struct {
		Status string `query:"status"`
		Type   string `query:"analysis_type"`
		UserID int64  `query:"user_id"`
		Skip   int    `query:"skip"`
		Limit  int    `query:"limit"`
	}

	type listAnalysesResponse struct {
		Message  string            `json:"message"`
		Analyses []common.Analysis `json:"analyses,omitempty"`
	}

	q := new(listAnalysesQuery)
	if err := c.Bind(q); err != nil {
		return c.JSON(http.StatusBadRequest, listAnalysesResponse{
			Message: "Invalid query parameters",
		})
	}

	cc := c.(*middleware.AppContext)
	analyses, err := cc.App.Analyses.List(c.Request().Context(), store.AnalysisFilter{
		Status: common.AnalysisStatus(q.Status),
		Type:   common.AnalysisType(q.Type),
		UserID: q.UserID,
	}, q.Skip, q.Limit)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, listAnalysesResponse{
		Message:  "Analyses retrieved successfully",
		Analyses: analyses,
	})
}

// ListPendingAnalysesHandler returns the oldest jobs still waiting for a
// worker, for operator dashboards.
func ListPendingAnalysesHandler(c echo.Context) error {
	type listPendingQuery struct {
		Limit int `query:"limit"`
	}

	type listPendingResponse struct {
		Message  string            `json:"message"`
		Analyses []common.Analysis `json:"analyses,omitempty"`
	}

	q := new(listPendingQuery)
	if err := c.Bind(q); err != nil {
		return c.JSON(http.StatusBadRequest, listPendingResponse{
			Message: "Invalid query parameters",
		})
	}
	if q.Limit <= 0 || q.Limit > 100 {
		q.Limit = 20
	}

	cc := c.(*middleware.AppContext)
	analyses, err := cc.App.Analyses.GetPending(c.Request().Context(), q.Limit)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, listPendingResponse{
		Message:  "Analyses retrieved successfully",
		Analyses: analyses,
	})
}

// GetAnalysisHandler returns one analysis by id.
func GetAnalysisHandler(c echo.Context) error {
	type getAnalysisParams struct {
		ID int64 `param:"id" validate:"required,numeric"`
	}

	type getAnalysisResponse struct {
		Message  string           `json:"message"`
		Analysis *common.Analysis `json:"analysis,omitempty"`
	}

	params := new(getAnalysisParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, getAnalysisResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, getAnalysisResponse{
			Message: "Invalid request body",
		})
	}

	cc := c.(*middleware.AppContext)
	a, err := cc.App.Analyses.Get(c.Request().Context(), params.ID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, getAnalysisResponse{
		Message:  "Analysis retrieved successfully",
		Analysis: a,
	})
}

// GetAnalysisProgressHandler returns the live progress of a job, served from
// the cache when warm.
func GetAnalysisProgressHandler(c echo.Context) error {
	type getProgressParams struct {
		ID int64 `param:"id" validate:"required,numeric"`
	}

	type getProgressResponse struct {
		Message  string                `json:"message"`
		Progress float64               `json:"progress"`
		Status   common.AnalysisStatus `json:"status,omitempty"`
	}

	params := new(getProgressParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, getProgressResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, getProgressResponse{
			Message: "Invalid request body",
		})
	}

	cc := c.(*middleware.AppContext)
	p, err := cc.App.Orchestrator.Progress(c.Request().Context(), params.ID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, getProgressResponse{
		Message:  "Progress retrieved successfully",
		Progress: p.Progress,
		Status:   p.Status,
	})
}

// GetAnalysisResultsHandler pages through the per-post results of a job.
func GetAnalysisResultsHandler(c echo.Context) error {
	type getResultsParams struct {
		ID    int64 `param:"id" validate:"required,numeric"`
		Skip  int   `query:"skip"`
		Limit int   `query:"limit"`
	}

	type getResultsResponse struct {
		Message string                  `json:"message"`
		Total   int                     `json:"total"`
		Results []common.AnalysisResult `json:"results,omitempty"`
	}

	params := new(getResultsParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, getResultsResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, getResultsResponse{
			Message: "Invalid request body",
		})
	}

	cc := c.(*middleware.AppContext)
	ctx := c.Request().Context()

	if _, err := cc.App.Analyses.Get(ctx, params.ID); err != nil {
		return writeError(c, err)
	}

	total, err := cc.App.Results.CountByAnalysis(ctx, params.ID)
	if err != nil {
		return writeError(c, err)
	}

	results, err := cc.App.Results.ListByAnalysis(ctx, params.ID, params.Skip, params.Limit)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, getResultsResponse{
		Message: "Results retrieved successfully",
		Total:   total,
		Results: results,
	})
}

// GetAnalysisSummaryHandler returns the aggregate summary of a completed job.
func GetAnalysisSummaryHandler(c echo.Context) error {
	type getSummaryParams struct {
		ID int64 `param:"id" validate:"required,numeric"`
	}

	type getSummaryResponse struct {
		Message string          `json:"message"`
		Summary json.RawMessage `json:"summary,omitempty"`
	}

	params := new(getSummaryParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, getSummaryResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, getSummaryResponse{
			Message: "Invalid request body",
		})
	}

	cc := c.(*middleware.AppContext)
	summary, err := cc.App.Orchestrator.GetSummary(c.Request().Context(), params.ID)
	if err != nil {
		if errors.Is(err, analysis.ErrNoSummary) {
			return c.JSON(http.StatusNotFound, getSummaryResponse{
				Message: "Summary not available yet",
			})
		}
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, getSummaryResponse{
		Message: "Summary retrieved successfully",
		Summary: summary,
	})
}

// GetAnalysisStatsHandler aggregates job counts by status and type.
func GetAnalysisStatsHandler(c echo.Context) error {
	type getStatsResponse struct {
		Message string               `json:"message"`
		Stats   *store.AnalysisStats `json:"stats,omitempty"`
	}

	cc := c.(*middleware.AppContext)
	stats, err := cc.App.Analyses.Stats(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, getStatsResponse{
		Message: "Stats retrieved successfully",
		Stats:   stats,
	})
}
