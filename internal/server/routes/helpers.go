package routes

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rasadhq/rasad/pkg/analysis"
	"github.com/rasadhq/rasad/pkg/logger"
	"github.com/rasadhq/rasad/pkg/store"
)

type messageResponse struct {
	Message string `json:"message"`
}

// writeError maps service errors onto HTTP statuses: missing rows to 404,
// rejected input to 400, disallowed lifecycle transitions to 409.
func writeError(c echo.Context, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return c.JSON(http.StatusNotFound, messageResponse{Message: "Not found"})
	}

	var valErr *analysis.ValidationError
	if errors.As(err, &valErr) {
		return c.JSON(http.StatusBadRequest, messageResponse{Message: valErr.Error()})
	}

	var stateErr *analysis.InvalidStateError
	if errors.As(err, &stateErr) {
		return c.JSON(http.StatusConflict, messageResponse{Message: stateErr.Error()})
	}

	logger.Error("Request failed", "path", c.Path(), "err", err)
	return c.JSON(http.StatusInternalServerError, messageResponse{Message: "Internal server error"})
}
