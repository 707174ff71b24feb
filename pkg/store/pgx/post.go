package pgx

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	pgxv5 "github.com/jackc/pgx/v5"

	"github.com/rasadhq/rasad/pkg/common"
	"github.com/rasadhq/rasad/pkg/store"
)

const postColumns = `id, platform_id, platform, COALESCE(content, ''), COALESCE(content_normalized, ''),
	COALESCE(language, ''), COALESCE(url, ''), media_urls, likes_count, comments_count,
	shares_count, views_count, posted_at, hashtags, mentions, is_processed,
	COALESCE(processing_error, ''), data_source_id, author_id, created_at, updated_at`

// PostStorage implements store.PostStore on PostgreSQL.
type PostStorage struct {
	conn pgxIConn
}

// NewPostStorageParams contains configuration for creating a PostStorage.
type NewPostStorageParams struct {
	Conn pgxIConn
}

func NewPostStorage(params NewPostStorageParams) *PostStorage {
	return &PostStorage{conn: params.Conn}
}

func scanPost(row pgxv5.Row) (*common.Post, error) {
	var p common.Post
	err := row.Scan(
		&p.ID, &p.PlatformID, &p.Platform, &p.Content, &p.ContentNormalized,
		&p.Language, &p.URL, &p.MediaURLs, &p.LikesCount, &p.CommentsCount,
		&p.SharesCount, &p.ViewsCount, &p.PostedAt, &p.Hashtags, &p.Mentions,
		&p.IsProcessed, &p.ProcessingError, &p.DataSourceID, &p.AuthorID,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgxv5.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (s *PostStorage) Create(ctx context.Context, p *common.Post) (*common.Post, error) {
	row := s.conn.QueryRow(ctx, `
		INSERT INTO posts (
			platform_id, platform, content, content_normalized, language, url, media_urls,
			likes_count, comments_count, shares_count, views_count, posted_at,
			hashtags, mentions, data_source_id, author_id
		)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5, NULLIF($6, ''), $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING `+postColumns,
		p.PlatformID, p.Platform, p.Content, p.ContentNormalized, p.Language, p.URL, p.MediaURLs,
		p.LikesCount, p.CommentsCount, p.SharesCount, p.ViewsCount, p.PostedAt,
		p.Hashtags, p.Mentions, p.DataSourceID, p.AuthorID,
	)
	return scanPost(row)
}

func (s *PostStorage) Get(ctx context.Context, id int64) (*common.Post, error) {
	return scanPost(s.conn.QueryRow(ctx, `SELECT `+postColumns+` FROM posts WHERE id = $1`, id))
}

func (s *PostStorage) GetByPlatformID(ctx context.Context, platformID string) (*common.Post, error) {
	return scanPost(s.conn.QueryRow(ctx, `SELECT `+postColumns+` FROM posts WHERE platform_id = $1`, platformID))
}

func (s *PostStorage) Filter(ctx context.Context, f store.PostFilter, skip, limit int) ([]common.Post, error) {
	skip, limit = normalizeRange(skip, limit)

	where := make([]string, 0, 8)
	args := make([]any, 0, 10)
	add := func(clause string, value any) {
		args = append(args, value)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}

	if f.Platform != "" {
		add("platform = $%d", f.Platform)
	}
	if f.Language != "" {
		add("language = $%d", f.Language)
	}
	if f.DataSourceID != nil {
		add("data_source_id = $%d", *f.DataSourceID)
	}
	if f.AuthorID != nil {
		add("author_id = $%d", *f.AuthorID)
	}
	if f.IsProcessed != nil {
		add("is_processed = $%d", *f.IsProcessed)
	}
	if f.PostedAfter != nil {
		add("posted_at >= $%d", *f.PostedAfter)
	}
	if f.PostedBefore != nil {
		add("posted_at <= $%d", *f.PostedBefore)
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		n := len(args)
		where = append(where, fmt.Sprintf("(content ILIKE $%d OR content_normalized ILIKE $%d)", n, n))
	}
	if f.Hashtag != "" {
		add("hashtags @> to_jsonb(ARRAY[$%d::text])", f.Hashtag)
	}

	query := `SELECT ` + postColumns + ` FROM posts`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	args = append(args, limit, skip)
	query += fmt.Sprintf(" ORDER BY posted_at DESC NULLS LAST, id DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := s.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectPosts(rows)
}

func collectPosts(rows pgxv5.Rows) ([]common.Post, error) {
	out := make([]common.Post, 0)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (s *PostStorage) MarkProcessed(ctx context.Context, id int64, processingError string) error {
	tag, err := s.conn.Exec(ctx, `
		UPDATE posts SET is_processed = TRUE, processing_error = NULLIF($1, ''), updated_at = now()
		WHERE id = $2`,
		processingError, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *PostStorage) ListSince(ctx context.Context, since time.Time, limit int) ([]common.Post, error) {
	_, limit = normalizeRange(0, limit)
	rows, err := s.conn.Query(ctx, `
		SELECT `+postColumns+` FROM posts
		WHERE posted_at >= $1 ORDER BY posted_at DESC LIMIT $2`,
		since, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectPosts(rows)
}

func (s *PostStorage) CountWithHashtagSince(ctx context.Context, tag string, since time.Time) (int, error) {
	var count int
	err := s.conn.QueryRow(ctx, `
		SELECT COUNT(*) FROM posts
		WHERE posted_at >= $1 AND hashtags @> to_jsonb(ARRAY[$2::text])`,
		since, tag,
	).Scan(&count)
	return count, err
}

func (s *PostStorage) Stats(ctx context.Context) (*store.PostStats, error) {
	stats := &store.PostStats{
		ByPlatform: make(map[string]int),
		ByLanguage: make(map[string]int),
	}

	err := s.conn.QueryRow(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE is_processed) FROM posts`,
	).Scan(&stats.Total, &stats.Processed)
	if err != nil {
		return nil, err
	}

	platformRows, err := s.conn.Query(ctx, `SELECT platform, COUNT(*) FROM posts GROUP BY platform`)
	if err != nil {
		return nil, err
	}
	defer platformRows.Close()
	for platformRows.Next() {
		var platform string
		var count int
		if err := platformRows.Scan(&platform, &count); err != nil {
			return nil, err
		}
		stats.ByPlatform[platform] = count
	}
	if err := platformRows.Err(); err != nil {
		return nil, err
	}

	langRows, err := s.conn.Query(ctx, `SELECT COALESCE(language, 'unknown'), COUNT(*) FROM posts GROUP BY language`)
	if err != nil {
		return nil, err
	}
	defer langRows.Close()
	for langRows.Next() {
		var lang string
		var count int
		if err := langRows.Scan(&lang, &count); err != nil {
			return nil, err
		}
		stats.ByLanguage[lang] = count
	}
	return stats, langRows.Err()
}

var _ store.PostStore = (*PostStorage)(nil)
