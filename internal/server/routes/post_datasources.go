package routes

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rasadhq/rasad/internal/server/middleware"
	"github.com/rasadhq/rasad/pkg/common"
)

// CreateDataSourceHandler registers a collection source. Credentials are
// stored but never echoed back.
func CreateDataSourceHandler(c echo.Context) error {
	type createDataSourceBody struct {
		Name             string          `json:"name" validate:"required"`
		Platform         string          `json:"platform" validate:"required"`
		APIEndpoint      string          `json:"api_endpoint"`
		Credentials      json.RawMessage `json:"credentials"`
		CollectionConfig json.RawMessage `json:"collection_config"`
		Description      string          `json:"description"`
		IsActive         *bool           `json:"is_active"`
	}

	type createDataSourceResponse struct {
		Message    string             `json:"message"`
		DataSource *common.DataSource `json:"data_source,omitempty"`
	}

	data := new(createDataSourceBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, createDataSourceResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, createDataSourceResponse{
			Message: "Invalid request body",
		})
	}

	active := true
	if data.IsActive != nil {
		active = *data.IsActive
	}

	cc := c.(*middleware.AppContext)
	created, err := cc.App.DataSources.Create(c.Request().Context(), &common.DataSource{
		Name:             data.Name,
		Platform:         data.Platform,
		APIEndpoint:      data.APIEndpoint,
		Credentials:      data.Credentials,
		CollectionConfig: data.CollectionConfig,
		Description:      data.Description,
		IsActive:         active,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, createDataSourceResponse{
		Message:    "Data source created successfully",
		DataSource: created,
	})
}
