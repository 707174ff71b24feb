package pgx

import (
	"context"
	"errors"

	pgxv5 "github.com/jackc/pgx/v5"

	"github.com/rasadhq/rasad/pkg/common"
	"github.com/rasadhq/rasad/pkg/store"
)

const authorColumns = `id, platform_id, platform, COALESCE(username, ''), COALESCE(display_name, ''),
	COALESCE(bio, ''), COALESCE(profile_url, ''), COALESCE(avatar_url, ''),
	followers_count, following_count, posts_count, influence_score, pagerank_score,
	extra_data, created_at, updated_at`

// AuthorStorage implements store.AuthorStore on PostgreSQL.
type AuthorStorage struct {
	conn pgxIConn
}

// NewAuthorStorageParams contains configuration for creating an AuthorStorage.
type NewAuthorStorageParams struct {
	Conn pgxIConn
}

func NewAuthorStorage(params NewAuthorStorageParams) *AuthorStorage {
	return &AuthorStorage{conn: params.Conn}
}

func scanAuthor(row pgxv5.Row) (*common.Author, error) {
	var a common.Author
	err := row.Scan(
		&a.ID, &a.PlatformID, &a.Platform, &a.Username, &a.DisplayName,
		&a.Bio, &a.ProfileURL, &a.AvatarURL,
		&a.FollowersCount, &a.FollowingCount, &a.PostsCount,
		&a.InfluenceScore, &a.PagerankScore, &a.ExtraData,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgxv5.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (s *AuthorStorage) Create(ctx context.Context, a *common.Author) (*common.Author, error) {
	row := s.conn.QueryRow(ctx, `
		INSERT INTO authors (
			platform_id, platform, username, display_name, bio, profile_url, avatar_url,
			followers_count, following_count, posts_count, extra_data
		)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''), $8, $9, $10, $11)
		RETURNING `+authorColumns,
		a.PlatformID, a.Platform, a.Username, a.DisplayName, a.Bio, a.ProfileURL, a.AvatarURL,
		a.FollowersCount, a.FollowingCount, a.PostsCount, a.ExtraData,
	)
	return scanAuthor(row)
}

func (s *AuthorStorage) Get(ctx context.Context, id int64) (*common.Author, error) {
	return scanAuthor(s.conn.QueryRow(ctx, `SELECT `+authorColumns+` FROM authors WHERE id = $1`, id))
}

func (s *AuthorStorage) GetByPlatformID(ctx context.Context, platform, platformID string) (*common.Author, error) {
	return scanAuthor(s.conn.QueryRow(ctx, `
		SELECT `+authorColumns+` FROM authors WHERE platform = $1 AND platform_id = $2`,
		platform, platformID,
	))
}

func (s *AuthorStorage) List(ctx context.Context, platform string, skip, limit int) ([]common.Author, error) {
	skip, limit = normalizeRange(skip, limit)

	var rows pgxv5.Rows
	var err error
	if platform != "" {
		rows, err = s.conn.Query(ctx, `
			SELECT `+authorColumns+` FROM authors
			WHERE platform = $1 ORDER BY followers_count DESC, id ASC LIMIT $2 OFFSET $3`,
			platform, limit, skip,
		)
	} else {
		rows, err = s.conn.Query(ctx, `
			SELECT `+authorColumns+` FROM authors ORDER BY followers_count DESC, id ASC LIMIT $1 OFFSET $2`,
			limit, skip,
		)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]common.Author, 0)
	for rows.Next() {
		a, err := scanAuthor(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (s *AuthorStorage) Delete(ctx context.Context, id int64) error {
	tag, err := s.conn.Exec(ctx, `DELETE FROM authors WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

var _ store.AuthorStore = (*AuthorStorage)(nil)
