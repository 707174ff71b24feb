package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rasadhq/rasad/internal/server/middleware"
	"github.com/rasadhq/rasad/pkg/common"
)

// ListUsersHandler lists registered users.
func ListUsersHandler(c echo.Context) error {
	type listUsersQuery struct {
		Skip  int `query:"skip"`
		Limit int `query:"limit"`
	}

	type listUsersResponse struct {
		Message string        `json:"message"`
		Users   []common.User `json:"users,omitempty"`
	}

	q := new(listUsersQuery)
	if err := c.Bind(q); err != nil {
		return c.JSON(http.StatusBadRequest, listUsersResponse{
			Message: "Invalid query parameters",
		})
	}

	cc := c.(*middleware.AppContext)
	users, err := cc.App.Users.List(c.Request().Context(), q.Skip, q.Limit)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, listUsersResponse{
		Message: "Users retrieved successfully",
		Users:   users,
	})
}

// GetUserHandler returns one user by id.
func GetUserHandler(c echo.Context) error {
	type getUserParams struct {
		ID int64 `param:"id" validate:"required,numeric"`
	}

	type getUserResponse struct {
		Message string       `json:"message"`
		User    *common.User `json:"user,omitempty"`
	}

	params := new(getUserParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, getUserResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, getUserResponse{
			Message: "Invalid request body",
		})
	}

	cc := c.(*middleware.AppContext)
	user, err := cc.App.Users.Get(c.Request().Context(), params.ID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, getUserResponse{
		Message: "User retrieved successfully",
		User:    user,
	})
}
