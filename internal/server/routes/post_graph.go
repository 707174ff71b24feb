package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rasadhq/rasad/internal/queue"
	"github.com/rasadhq/rasad/internal/server/middleware"
)

// BuildGraphHandler queues a network rebuild. The worker holds a lease per
// graph type, so repeated requests while a build runs wait instead of
// interleaving.
func BuildGraphHandler(c echo.Context) error {
	type buildGraphBody struct {
		GraphType string `json:"graph_type" validate:"omitempty,oneof=hashtag mention all"`
		Hours     int    `json:"hours" validate:"omitempty,min=1,max=720"`
	}

	data := new(buildGraphBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{
			Message: "Invalid request body",
		})
	}
	if data.GraphType == "" {
		data.GraphType = "hashtag"
	}
	if data.Hours == 0 {
		data.Hours = 24
	}

	cc := c.(*middleware.AppContext)
	err := cc.App.Publisher.EnqueueGraphBuild(c.Request().Context(), queue.BuildGraphMsg{
		GraphType: data.GraphType,
		Hours:     data.Hours,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusAccepted, messageResponse{
		Message: "Graph build queued",
	})
}
