package routes

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/rasadhq/rasad/internal/server/middleware"
	"github.com/rasadhq/rasad/pkg/common"
	"github.com/rasadhq/rasad/pkg/store"
)

// ListPostsHandler filters posts by platform, language, source, processing
// state, time window, hashtag, and free-text search.
func ListPostsHandler(c echo.Context) error {
	type listPostsQuery struct {
		Platform     string     `query:"platform"`
		Language     string     `query:"language"`
		DataSourceID *int64     `query:"data_source_id"`
		AuthorID     *int64     `query:"author_id"`
		IsProcessed  *bool      `query:"is_processed"`
		PostedAfter  *time.Time `query:"posted_after"`
		PostedBefore *time.Time `query:"posted_before"`
		Search       string     `query:"search"`
		Hashtag      string     `query:"hashtag"`
		Skip         int        `query:"skip"`
		Limit        int        `query:"limit"`
	}

	type listPostsResponse struct {
		Message string        `json:"message"`
		Posts   []common.Post `json:"posts,omitempty"`
	}

	q := new(listPostsQuery)
	if err := c.Bind(q); err != nil {
		return c.JSON(http.StatusBadRequest, listPostsResponse{
			Message: "Invalid query parameters",
		})
	}

	cc := c.(*middleware.AppContext)
	posts, err := cc.App.Posts.Filter(c.Request().Context(), store.PostFilter{
		Platform:     q.Platform,
		Language:     q.Language,
		DataSourceID: q.DataSourceID,
		AuthorID:     q.AuthorID,
		IsProcessed:  q.IsProcessed,
		PostedAfter:  q.PostedAfter,
		PostedBefore: q.PostedBefore,
		Search:       q.Search,
		Hashtag:      q.Hashtag,
	}, q.Skip, q.Limit)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, listPostsResponse{
		Message: "Posts retrieved successfully",
		Posts:   posts,
	})
}

// GetPostHandler returns one post by id.
func GetPostHandler(c echo.Context) error {
	type getPostParams struct {
		ID int64 `param:"id" validate:"required,numeric"`
	}

	type getPostResponse struct {
		Message string       `json:"message"`
		Post    *common.Post `json:"post,omitempty"`
	}

	params := new(getPostParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, getPostResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, getPostResponse{
			Message: "Invalid request body",
		})
	}

	cc := c.(*middleware.AppContext)
	post, err := cc.App.Posts.Get(c.Request().Context(), params.ID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, getPostResponse{
		Message: "Post retrieved successfully",
		Post:    post,
	})
}

// GetPostStatsHandler aggregates post counts by platform and language.
func GetPostStatsHandler(c echo.Context) error {
	type getStatsResponse struct {
		Message string           `json:"message"`
		Stats   *store.PostStats `json:"stats,omitempty"`
	}

	cc := c.(*middleware.AppContext)
	stats, err := cc.App.Posts.Stats(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, getStatsResponse{
		Message: "Stats retrieved successfully",
		Stats:   stats,
	})
}
