package routes

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/rasadhq/rasad/internal/server/middleware"
	"github.com/rasadhq/rasad/internal/util"
	"github.com/rasadhq/rasad/pkg/common"
	"github.com/rasadhq/rasad/pkg/store"
)

// IngestPostHandler stores one collected post. Ingestion is idempotent on
// platform_id: resubmitting a known post returns the existing row untouched.
// Content is normalized and hashtags, mentions, links, and language are
// derived server-side when the collector did not supply them.
func IngestPostHandler(c echo.Context) error {
	type ingestPostBody struct {
		PlatformID    string     `json:"platform_id" validate:"required"`
		Platform      string     `json:"platform" validate:"required"`
		Content       string     `json:"content"`
		Language      string     `json:"language"`
		URL           string     `json:"url"`
		MediaURLs     []string   `json:"media_urls"`
		LikesCount    int        `json:"likes_count"`
		CommentsCount int        `json:"comments_count"`
		SharesCount   int        `json:"shares_count"`
		ViewsCount    int        `json:"views_count"`
		PostedAt      *time.Time `json:"posted_at"`
		Hashtags      []string   `json:"hashtags"`
		Mentions      []string   `json:"mentions"`
		DataSourceID  *int64     `json:"data_source_id"`
		AuthorID      *int64     `json:"author_id"`
	}

	type ingestPostResponse struct {
		Message string       `json:"message"`
		Post    *common.Post `json:"post,omitempty"`
	}

	data := new(ingestPostBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, ingestPostResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, ingestPostResponse{
			Message: "Invalid request body",
		})
	}

	cc := c.(*middleware.AppContext)
	ctx := c.Request().Context()

	existing, err := cc.App.Posts.GetByPlatformID(ctx, data.PlatformID)
	if err == nil {
		return c.JSON(http.StatusOK, ingestPostResponse{
			Message: "Post already exists",
			Post:    existing,
		})
	}
	if !errors.Is(err, store.ErrNotFound) {
		return writeError(c, err)
	}

	content := util.SanitizePostgresText(data.Content)
	post := &common.Post{
		PlatformID:        data.PlatformID,
		Platform:          data.Platform,
		Content:           content,
		ContentNormalized: util.NormalizeContent(content),
		Language:          data.Language,
		URL:               data.URL,
		MediaURLs:         data.MediaURLs,
		LikesCount:        data.LikesCount,
		CommentsCount:     data.CommentsCount,
		SharesCount:       data.SharesCount,
		ViewsCount:        data.ViewsCount,
		PostedAt:          data.PostedAt,
		Hashtags:          data.Hashtags,
		Mentions:          data.Mentions,
		DataSourceID:      data.DataSourceID,
		AuthorID:          data.AuthorID,
	}
	if len(post.Hashtags) == 0 {
		post.Hashtags = util.ExtractHashtags(content)
	}
	if len(post.Mentions) == 0 {
		post.Mentions = util.ExtractMentions(content)
	}
	if len(post.MediaURLs) == 0 {
		post.MediaURLs = util.ExtractURLs(content)
	}
	if post.Language == "" {
		post.Language = util.DetectLanguage(content)
	}

	created, err := cc.App.Posts.Create(ctx, post)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, ingestPostResponse{
		Message: "Post ingested successfully",
		Post:    created,
	})
}
