package pgx

import (
	"context"
	"errors"

	pgxv5 "github.com/jackc/pgx/v5"

	"github.com/rasadhq/rasad/pkg/common"
	"github.com/rasadhq/rasad/pkg/store"
)

const dashboardColumns = `id, name, COALESCE(description, ''), layout, widgets, filters,
	refresh_interval, is_default, is_public, user_id, created_at, updated_at`

// DashboardStorage implements store.DashboardStore on PostgreSQL.
type DashboardStorage struct {
	conn pgxIConn
}

// NewDashboardStorageParams contains configuration for creating a DashboardStorage.
type NewDashboardStorageParams struct {
	Conn pgxIConn
}

func NewDashboardStorage(params NewDashboardStorageParams) *DashboardStorage {
	return &DashboardStorage{conn: params.Conn}
}

func scanDashboard(row pgxv5.Row) (*common.Dashboard, error) {
	var d common.Dashboard
	err := row.Scan(
		&d.ID, &d.Name, &d.Description, &d.Layout, &d.Widgets, &d.Filters,
		&d.RefreshInterval, &d.IsDefault, &d.IsPublic, &d.UserID,
		&d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgxv5.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (s *DashboardStorage) Create(ctx context.Context, d *common.Dashboard) (*common.Dashboard, error) {
	refresh := d.RefreshInterval
	if refresh <= 0 {
		refresh = 300
	}
	row := s.conn.QueryRow(ctx, `
		INSERT INTO dashboards (name, description, layout, widgets, filters, refresh_interval, is_default, is_public, user_id)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+dashboardColumns,
		d.Name, d.Description, d.Layout, d.Widgets, d.Filters, refresh, d.IsDefault, d.IsPublic, d.UserID,
	)
	return scanDashboard(row)
}

func (s *DashboardStorage) Get(ctx context.Context, id int64) (*common.Dashboard, error) {
	return scanDashboard(s.conn.QueryRow(ctx, `SELECT `+dashboardColumns+` FROM dashboards WHERE id = $1`, id))
}

func (s *DashboardStorage) ListByUser(ctx context.Context, userID int64, skip, limit int) ([]common.Dashboard, error) {
	skip, limit = normalizeRange(skip, limit)
	rows, err := s.conn.Query(ctx, `
		SELECT `+dashboardColumns+` FROM dashboards
		WHERE user_id = $1 OR is_public ORDER BY is_default DESC, id ASC LIMIT $2 OFFSET $3`,
		userID, limit, skip,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]common.Dashboard, 0)
	for rows.Next() {
		d, err := scanDashboard(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

func (s *DashboardStorage) Update(ctx context.Context, d *common.Dashboard) (*common.Dashboard, error) {
	row := s.conn.QueryRow(ctx, `
		UPDATE dashboards SET
			name = $1, description = NULLIF($2, ''), layout = $3, widgets = $4,
			filters = $5, refresh_interval = $6, is_default = $7, is_public = $8, updated_at = now()
		WHERE id = $9
		RETURNING `+dashboardColumns,
		d.Name, d.Description, d.Layout, d.Widgets, d.Filters,
		d.RefreshInterval, d.IsDefault, d.IsPublic, d.ID,
	)
	return scanDashboard(row)
}

func (s *DashboardStorage) Delete(ctx context.Context, id int64) error {
	tag, err := s.conn.Exec(ctx, `DELETE FROM dashboards WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

var _ store.DashboardStore = (*DashboardStorage)(nil)
