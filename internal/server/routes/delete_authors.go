package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rasadhq/rasad/internal/server/middleware"
)

// DeleteAuthorHandler removes one author. Posts keep their rows; the author
// reference is nulled by the database.
func DeleteAuthorHandler(c echo.Context) error {
	type deleteAuthorParams struct {
		ID int64 `param:"id" validate:"required,numeric"`
	}

	params := new(deleteAuthorParams)
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
	if err := cc.App.Authors.Delete(c.Request().Context(), params.ID); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, messageResponse{
		Message: "Author deleted successfully",
	})
}
