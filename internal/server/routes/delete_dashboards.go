package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rasadhq/rasad/internal/server/middleware"
	"github.com/rasadhq/rasad/pkg/store"
)

// DeleteDashboardHandler removes an owned dashboard.
func DeleteDashboardHandler(c echo.Context) error {
	type deleteDashboardParams struct {
		ID int64 `param:"id" validate:"required,numeric"`
	}

	params := new(deleteDashboardParams)
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
	ctx := c.Request().Context()

	d, err := cc.App.Dashboards.Get(ctx, params.ID)
	if err != nil {
		return writeError(c, err)
	}
	if d.UserID != cc.UserID {
		return writeError(c, store.ErrNotFound)
	}

	if err := cc.App.Dashboards.Delete(ctx, params.ID); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, messageResponse{
		Message: "Dashboard deleted successfully",
	})
}
