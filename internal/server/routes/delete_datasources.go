package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rasadhq/rasad/internal/server/middleware"
)

// DeleteDataSourceHandler removes one data source. Posts collected through it
// keep their rows with the source reference nulled.
func DeleteDataSourceHandler(c echo.Context) error {
	type deleteDataSourceParams struct {
		ID int64 `param:"id" validate:"required,numeric"`
	}

	params := new(deleteDataSourceParams)
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
	if err := cc.App.DataSources.Delete(c.Request().Context(), params.ID); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, messageResponse{
		Message: "Data source deleted successfully",
	})
}
