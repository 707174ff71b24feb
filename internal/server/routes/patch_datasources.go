package routes

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/rasadhq/rasad/internal/server/middleware"
	"github.com/rasadhq/rasad/pkg/common"
)

// UpdateDataSourceHandler applies a partial update to a data source. Only
// fields present in the body change.
func UpdateDataSourceHandler(c echo.Context) error {
	type updateDataSourceBody struct {
		ID               int64           `param:"id" validate:"required,numeric"`
		Name             *string         `json:"name"`
		Platform         *string         `json:"platform"`
		APIEndpoint      *string         `json:"api_endpoint"`
		Credentials      json.RawMessage `json:"credentials"`
		CollectionConfig json.RawMessage `json:"collection_config"`
		Description      *string         `json:"description"`
		IsActive         *bool           `json:"is_active"`
		LastSyncAt       *time.Time      `json:"last_sync_at"`
	}

	type updateDataSourceResponse struct {
		Message    string             `json:"message"`
		DataSource *common.DataSource `json:"data_source,omitempty"`
	}

	data := new(updateDataSourceBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, updateDataSourceResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, updateDataSourceResponse{
			Message: "Invalid request body",
		})
	}

	cc := c.(*middleware.AppContext)
	ctx := c.Request().Context()

	ds, err := cc.App.DataSources.Get(ctx, data.ID)
	if err != nil {
		return writeError(c, err)
	}

	if data.Name != nil {
		ds.Name = *data.Name
	}
	if data.Platform != nil {
		ds.Platform = *data.Platform
	}
	if data.APIEndpoint != nil {
		ds.APIEndpoint = *data.APIEndpoint
	}
	if data.Credentials != nil {
		ds.Credentials = data.Credentials
	}
	if data.CollectionConfig != nil {
		ds.CollectionConfig = data.CollectionConfig
	}
	if data.Description != nil {
		ds.Description = *data.Description
	}
	if data.IsActive != nil {
		ds.IsActive = *data.IsActive
	}
	if data.LastSyncAt != nil {
		ds.LastSyncAt = data.LastSyncAt
	}

	updated, err := cc.App.DataSources.Update(ctx, ds)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, updateDataSourceResponse{
		Message:    "Data source updated successfully",
		DataSource: updated,
	})
}
