package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rasadhq/rasad/internal/server/middleware"
	"github.com/rasadhq/rasad/pkg/common"
	"github.com/rasadhq/rasad/pkg/store"
)

// ListTrendsHandler lists trends, optionally filtered by status.
func ListTrendsHandler(c echo.Context) error {
	type listTrendsQuery struct {
		Status string `query:"status" validate:"omitempty,oneof=active declining ended"`
		Skip   int    `query:"skip"`
		Limit  int    `query:"limit"`
	}

	type listTrendsResponse struct {
		Message string         `json:"message"`
		Trends  []common.Trend `json:"trends,omitempty"`
	}

	q := new(listTrendsQuery)
	if err := c.Bind(q); err != nil {
		return c.JSON(http.StatusBadRequest, listTrendsResponse{
			Message: "Invalid query parameters",
		})
	}
	if err := c.Validate(q); err != nil {
		return c.JSON(http.StatusBadRequest, listTrendsResponse{
			Message: "Invalid query parameters",
		})
	}

	cc := c.(*middleware.AppContext)
	trends, err := cc.App.Trends.List(c.Request().Context(), common.TrendStatus(q.Status), q.Skip, q.Limit)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, listTrendsResponse{
		Message: "Trends retrieved successfully",
		Trends:  trends,
	})
}

// GetTopTrendsHandler returns the leading trends ranked by volume or growth.
func GetTopTrendsHandler(c echo.Context) error {
	type topTrendsQuery struct {
		By    string `query:"by" validate:"omitempty,oneof=volume growth"`
		Limit int    `query:"limit" validate:"omitempty,min=1,max=100"`
	}

	type topTrendsResponse struct {
		Message string         `json:"message"`
		Trends  []common.Trend `json:"trends,omitempty"`
	}

	q := new(topTrendsQuery)
	if err := c.Bind(q); err != nil {
		return c.JSON(http.StatusBadRequest, topTrendsResponse{
			Message: "Invalid query parameters",
		})
	}
	if err := c.Validate(q); err != nil {
		return c.JSON(http.StatusBadRequest, topTrendsResponse{
			Message: "Invalid query parameters",
		})
	}
	if q.Limit == 0 {
		q.Limit = 10
	}

	cc := c.(*middleware.AppContext)
	ctx := c.Request().Context()

	var (
		trends []common.Trend
		err    error
	)
	if q.By == "growth" {
		trends, err = cc.App.Trends.TopByGrowth(ctx, q.Limit)
	} else {
		trends, err = cc.App.Trends.TopByVolume(ctx, q.Limit)
	}
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, topTrendsResponse{
		Message: "Trends retrieved successfully",
		Trends:  trends,
	})
}

// GetTrendStatsHandler aggregates trend counts by status.
func GetTrendStatsHandler(c echo.Context) error {
	type getStatsResponse struct {
		Message string            `json:"message"`
		Stats   *store.TrendStats `json:"stats,omitempty"`
	}

	cc := c.(*middleware.AppContext)
	stats, err := cc.App.Trends.Stats(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, getStatsResponse{
		Message: "Stats retrieved successfully",
		Stats:   stats,
	})
}
