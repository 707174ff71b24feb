package routes

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rasadhq/rasad/internal/server/middleware"
	"github.com/rasadhq/rasad/pkg/common"
	"github.com/rasadhq/rasad/pkg/store"
)

// UpdateDashboardHandler applies a partial update to an owned dashboard.
func UpdateDashboardHandler(c echo.Context) error {
	type updateDashboardBody struct {
		ID              int64           `param:"id" validate:"required,numeric"`
		Name            *string         `json:"name"`
		Description     *string         `json:"description"`
		Layout          json.RawMessage `json:"layout"`
		Widgets         json.RawMessage `json:"widgets"`
		Filters         json.RawMessage `json:"filters"`
		RefreshInterval *int            `json:"refresh_interval"`
		IsDefault       *bool           `json:"is_default"`
		IsPublic        *bool           `json:"is_public"`
	}

	type updateDashboardResponse struct {
		Message   string            `json:"message"`
		Dashboard *common.Dashboard `json:"dashboard,omitempty"`
	}

	data := new(updateDashboardBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, updateDashboardResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, updateDashboardResponse{
			Message: "Invalid request body",
		})
	}

	cc := c.(*middleware.AppContext)
	ctx := c.Request().Context()

	d, err := cc.App.Dashboards.Get(ctx, data.ID)
	if err != nil {
		return writeError(c, err)
	}
	if d.UserID != cc.UserID {
		return writeError(c, store.ErrNotFound)
	}

	if data.Name != nil {
		d.Name = *data.Name
	}
	if data.Description != nil {
		d.Description = *data.Description
	}
	if data.Layout != nil {
		d.Layout = data.Layout
	}
	if data.Widgets != nil {
		d.Widgets = data.Widgets
	}
	if data.Filters != nil {
		d.Filters = data.Filters
	}
	if data.RefreshInterval != nil {
		d.RefreshInterval = *data.RefreshInterval
	}
	if data.IsDefault != nil {
		d.IsDefault = *data.IsDefault
	}
	if data.IsPublic != nil {
		d.IsPublic = *data.IsPublic
	}

	updated, err := cc.App.Dashboards.Update(ctx, d)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, updateDashboardResponse{
		Message:   "Dashboard updated successfully",
		Dashboard: updated,
	})
}
