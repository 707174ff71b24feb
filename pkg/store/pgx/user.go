package pgx

import (
	"context"
	"errors"

	pgxv5 "github.com/jackc/pgx/v5"

	"github.com/rasadhq/rasad/pkg/common"
	"github.com/rasadhq/rasad/pkg/store"
)

const userColumns = `id, email, username, COALESCE(full_name, ''), is_active, created_at, updated_at`

// UserStorage implements store.UserStore on PostgreSQL.
type UserStorage struct {
	conn pgxIConn
}

// NewUserStorageParams contains configuration for creating a UserStorage.
type NewUserStorageParams struct {
	Conn pgxIConn
}

func NewUserStorage(params NewUserStorageParams) *UserStorage {
	return &UserStorage{conn: params.Conn}
}

func scanUser(row pgxv5.Row) (*common.User, error) {
	var u common.User
	err := row.Scan(&u.ID, &u.Email, &u.Username, &u.FullName, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgxv5.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (s *UserStorage) Create(ctx context.Context, u *common.User) (*common.User, error) {
	row := s.conn.QueryRow(ctx, `
		INSERT INTO users (email, username, full_name, is_active)
		VALUES ($1, $2, NULLIF($3, ''), $4)
		RETURNING `+userColumns,
		u.Email, u.Username, u.FullName, u.IsActive,
	)
	return scanUser(row)
}

func (s *UserStorage) Get(ctx context.Context, id int64) (*common.User, error) {
	return scanUser(s.conn.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (s *UserStorage) GetByUsername(ctx context.Context, username string) (*common.User, error) {
	return scanUser(s.conn.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username))
}

func (s *UserStorage) List(ctx context.Context, skip, limit int) ([]common.User, error) {
	skip, limit = normalizeRange(skip, limit)
	rows, err := s.conn.Query(ctx, `
		SELECT `+userColumns+` FROM users ORDER BY id ASC LIMIT $1 OFFSET $2`,
		limit, skip,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]common.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

var _ store.UserStore = (*UserStorage)(nil)
