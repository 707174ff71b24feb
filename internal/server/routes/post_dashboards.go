package routes

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rasadhq/rasad/internal/server/middleware"
	"github.com/rasadhq/rasad/pkg/common"
)

// CreateDashboardHandler saves a dashboard for the calling user.
func CreateDashboardHandler(c echo.Context) error {
	type createDashboardBody struct {
		Name            string          `json:"name" validate:"required"`
		Description     string          `json:"description"`
		Layout          json.RawMessage `json:"layout"`
		Widgets         json.RawMessage `json:"widgets"`
		Filters         json.RawMessage `json:"filters"`
		RefreshInterval int             `json:"refresh_interval" validate:"omitempty,min=0"`
		IsDefault       bool            `json:"is_default"`
		IsPublic        bool            `json:"is_public"`
	}

	type createDashboardResponse struct {
		Message   string            `json:"message"`
		Dashboard *common.Dashboard `json:"dashboard,omitempty"`
	}

	data := new(createDashboardBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, createDashboardResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, createDashboardResponse{
			Message: "Invalid request body",
		})
	}

	cc := c.(*middleware.AppContext)
	created, err := cc.App.Dashboards.Create(c.Request().Context(), &common.Dashboard{
		Name:            data.Name,
		Description:     data.Description,
		Layout:          data.Layout,
		Widgets:         data.Widgets,
		Filters:         data.Filters,
		RefreshInterval: data.RefreshInterval,
		IsDefault:       data.IsDefault,
		IsPublic:        data.IsPublic,
		UserID:          cc.UserID,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, createDashboardResponse{
		Message:   "Dashboard created successfully",
		Dashboard: created,
	})
}
