package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rasadhq/rasad/internal/server/middleware"
	"github.com/rasadhq/rasad/pkg/common"
)

// ListAuthorsHandler lists authors, optionally filtered by platform.
func ListAuthorsHandler(c echo.Context) error {
	type listAuthorsQuery struct {
		Platform string `query:"platform"`
		Skip     int    `query:"skip"`
		Limit    int    `query:"limit"`
	}

	type listAuthorsResponse struct {
		Message string          `json:"message"`
		Authors []common.Author `json:"authors,omitempty"`
	}

	q := new(listAuthorsQuery)
	if err := c.Bind(q); err != nil {
		return c.JSON(http.StatusBadRequest, listAuthorsResponse{
			Message: "Invalid query parameters",
		})
	}

	cc := c.(*middleware.AppContext)
	authors, err := cc.App.Authors.List(c.Request().Context(), q.Platform, q.Skip, q.Limit)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, listAuthorsResponse{
		Message: "Authors retrieved successfully",
		Authors: authors,
	})
}

// GetAuthorHandler returns one author by id.
func GetAuthorHandler(c echo.Context) error {
	type getAuthorParams struct {
		ID int64 `param:"id" validate:"required,numeric"`
	}

	type getAuthorResponse struct {
		Message string         `json:"message"`
		Author  *common.Author `json:"author,omitempty"`
	}

	params := new(getAuthorParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, getAuthorResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, getAuthorResponse{
			Message: "Invalid request body",
		})
	}

	cc := c.(*middleware.AppContext)
	author, err := cc.App.Authors.Get(c.Request().Context(), params.ID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, getAuthorResponse{
		Message: "Author retrieved successfully",
		Author:  author,
	})
}
