package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rasadhq/rasad/internal/queue"
	"github.com/rasadhq/rasad/internal/server/middleware"
)

// DetectTrendsHandler queues a trend detection pass over the recent window.
func DetectTrendsHandler(c echo.Context) error {
	type detectTrendsBody struct {
		Hours    int `json:"hours" validate:"omitempty,min=1,max=720"`
		MinCount int `json:"min_count" validate:"omitempty,min=1"`
	}

	data := new(detectTrendsBody)
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
	if data.Hours == 0 {
		data.Hours = 1
	}

	cc := c.(*middleware.AppContext)
	err := cc.App.Publisher.EnqueueTrendDetection(c.Request().Context(), queue.DetectTrendsMsg{
		Hours:    data.Hours,
		MinCount: data.MinCount,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusAccepted, messageResponse{
		Message: "Trend detection queued",
	})
}
