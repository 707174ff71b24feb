package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rasadhq/rasad/internal/server/middleware"
)

// ClearGraphHandler drops every node and edge. The next build starts from an
// empty network.
func ClearGraphHandler(c echo.Context) error {
	cc := c.(*middleware.AppContext)
	if err := cc.App.Graph.Clear(c.Request().Context()); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, messageResponse{
		Message: "Graph cleared",
	})
}
