package routes

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rasadhq/rasad/internal/server/middleware"
	"github.com/rasadhq/rasad/pkg/common"
	"github.com/rasadhq/rasad/pkg/store"
)

// CreateUserHandler registers a user record for ownership tracking.
// Usernames are unique; a duplicate returns 409.
func CreateUserHandler(c echo.Context) error {
	type createUserBody struct {
		Email    string `json:"email" validate:"required,email"`
		Username string `json:"username" validate:"required,min=3,max=64"`
		FullName string `json:"full_name"`
	}

	type createUserResponse struct {
		Message string       `json:"message"`
		User    *common.User `json:"user,omitempty"`
	}

	data := new(createUserBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, createUserResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, createUserResponse{
			Message: "Invalid request body",
		})
	}

	cc := c.(*middleware.AppContext)
	ctx := c.Request().Context()

	if _, err := cc.App.Users.GetByUsername(ctx, data.Username); err == nil {
		return c.JSON(http.StatusConflict, createUserResponse{
			Message: "Username already taken",
		})
	} else if !errors.Is(err, store.ErrNotFound) {
		return writeError(c, err)
	}

	created, err := cc.App.Users.Create(ctx, &common.User{
		Email:    data.Email,
		Username: data.Username,
		FullName: data.FullName,
		IsActive: true,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, createUserResponse{
		Message: "User created successfully",
		User:    created,
	})
}
