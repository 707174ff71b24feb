package routes

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rasadhq/rasad/internal/server/middleware"
	"github.com/rasadhq/rasad/pkg/common"
	"github.com/rasadhq/rasad/pkg/store"
)

// CreateAuthorHandler stores one author. Idempotent on (platform,
// platform_id): a known author is returned untouched.
func CreateAuthorHandler(c echo.Context) error {
	type createAuthorBody struct {
		PlatformID     string          `json:"platform_id" validate:"required"`
		Platform       string          `json:"platform" validate:"required"`
		Username       string          `json:"username"`
		DisplayName    string          `json:"display_name"`
		Bio            string          `json:"bio"`
		ProfileURL     string          `json:"profile_url"`
		AvatarURL      string          `json:"avatar_url"`
		FollowersCount int             `json:"followers_count"`
		FollowingCount int             `json:"following_count"`
		PostsCount     int             `json:"posts_count"`
		ExtraData      json.RawMessage `json:"extra_data"`
	}

	type createAuthorResponse struct {
		Message string         `json:"message"`
		Author  *common.Author `json:"author,omitempty"`
	}

	data := new(createAuthorBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, createAuthorResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, createAuthorResponse{
			Message: "Invalid request body",
		})
	}

	cc := c.(*middleware.AppContext)
	ctx := c.Request().Context()

	existing, err := cc.App.Authors.GetByPlatformID(ctx, data.Platform, data.PlatformID)
	if err == nil {
		return c.JSON(http.StatusOK, createAuthorResponse{
			Message: "Author already exists",
			Author:  existing,
		})
	}
	if !errors.Is(err, store.ErrNotFound) {
		return writeError(c, err)
	}

	created, err := cc.App.Authors.Create(ctx, &common.Author{
		PlatformID:     data.PlatformID,
		Platform:       data.Platform,
		Username:       data.Username,
		DisplayName:    data.DisplayName,
		Bio:            data.Bio,
		ProfileURL:     data.ProfileURL,
		AvatarURL:      data.AvatarURL,
		FollowersCount: data.FollowersCount,
		FollowingCount: data.FollowingCount,
		PostsCount:     data.PostsCount,
		ExtraData:      data.ExtraData,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, createAuthorResponse{
		Message: "Author created successfully",
		Author:  created,
	})
}
