package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rasadhq/rasad/internal/server/middleware"
	"github.com/rasadhq/rasad/pkg/common"
	"github.com/rasadhq/rasad/pkg/store"
)

// ListDashboardsHandler lists the calling user's dashboards plus public ones.
func ListDashboardsHandler(c echo.Context) error {
	type listDashboardsQuery struct {
		Skip  int `query:"skip"`
		Limit int `query:"limit"`
	}

	type listDashboardsResponse struct {
		Message    string             `json:"message"`
		Dashboards []common.Dashboard `json:"dashboards,omitempty"`
	}

	q := new(listDashboardsQuery)
	if err := c.Bind(q); err != nil {
		return c.JSON(http.StatusBadRequest, listDashboardsResponse{
			Message: "Invalid query parameters",
		})
	}

	cc := c.(*middleware.AppContext)
	dashboards, err := cc.App.Dashboards.ListByUser(c.Request().Context(), cc.UserID, q.Skip, q.Limit)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, listDashboardsResponse{
		Message:    "Dashboards retrieved successfully",
		Dashboards: dashboards,
	})
}

// GetDashboardHandler returns one dashboard. Private dashboards are only
// visible to their owner.
func GetDashboardHandler(c echo.Context) error {
	type getDashboardParams struct {
		ID int64 `param:"id" validate:"required,numeric"`
	}

	type getDashboardResponse struct {
		Message   string            `json:"message"`
		Dashboard *common.Dashboard `json:"dashboard,omitempty"`
	}

	params := new(getDashboardParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, getDashboardResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, getDashboardResponse{
			Message: "Invalid request body",
		})
	}

	cc := c.(*middleware.AppContext)
	d, err := cc.App.Dashboards.Get(c.Request().Context(), params.ID)
	if err != nil {
		return writeError(c, err)
	}
	if !d.IsPublic && d.UserID != cc.UserID {
		return writeError(c, store.ErrNotFound)
	}

	return c.JSON(http.StatusOK, getDashboardResponse{
		Message:   "Dashboard retrieved successfully",
		Dashboard: d,
	})
}
