package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rasadhq/rasad/internal/server/middleware"
	"github.com/rasadhq/rasad/pkg/common"
)

// ListDataSourcesHandler lists configured collection sources.
func ListDataSourcesHandler(c echo.Context) error {
	type listDataSourcesQuery struct {
		Skip  int `query:"skip"`
		Limit int `query:"limit"`
	}

	type listDataSourcesResponse struct {
		Message     string              `json:"message"`
		DataSources []common.DataSource `json:"data_sources,omitempty"`
	}

	q := new(listDataSourcesQuery)
	if err := c.Bind(q); err != nil {
		return c.JSON(http.StatusBadRequest, listDataSourcesResponse{
			Message: "Invalid query parameters",
		})
	}

	cc := c.(*middleware.AppContext)
	sources, err := cc.App.DataSources.List(c.Request().Context(), q.Skip, q.Limit)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, listDataSourcesResponse{
		Message:     "Data sources retrieved successfully",
		DataSources: sources,
	})
}

// GetDataSourceHandler returns one data source by id.
func GetDataSourceHandler(c echo.Context) error {
	type getDataSourceParams struct {
		ID int64 `param:"id" validate:"required,numeric"`
	}

	type getDataSourceResponse struct {
		Message    string             `json:"message"`
		DataSource *common.DataSource `json:"data_source,omitempty"`
	}

	params := new(getDataSourceParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, getDataSourceResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, getDataSourceResponse{
			Message: "Invalid request body",
		})
	}

	cc := c.(*middleware.AppContext)
	ds, err := cc.App.DataSources.Get(c.Request().Context(), params.ID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, getDataSourceResponse{
		Message:    "Data source retrieved successfully",
		DataSource: ds,
	})
}
