package pgx

import (
	"context"
	"errors"

	pgxv5 "github.com/jackc/pgx/v5"

	"github.com/rasadhq/rasad/pkg/common"
	"github.com/rasadhq/rasad/pkg/store"
)

const dataSourceColumns = `id, name, platform, COALESCE(api_endpoint, ''), credentials,
	collection_config, COALESCE(description, ''), is_active, last_sync_at, created_at, updated_at`

// DataSourceStorage implements store.DataSourceStore on PostgreSQL.
type DataSourceStorage struct {
	conn pgxIConn
}

// NewDataSourceStorageParams contains configuration for creating a DataSourceStorage.
type NewDataSourceStorageParams struct {
	Conn pgxIConn
}

func NewDataSourceStorage(params NewDataSourceStorageParams) *DataSourceStorage {
	return &DataSourceStorage{conn: params.Conn}
}

func scanDataSource(row pgxv5.Row) (*common.DataSource, error) {
	var ds common.DataSource
	err := row.Scan(
		&ds.ID, &ds.Name, &ds.Platform, &ds.APIEndpoint, &ds.Credentials,
		&ds.CollectionConfig, &ds.Description, &ds.IsActive, &ds.LastSyncAt,
		&ds.CreatedAt, &ds.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgxv5.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &ds, nil
}

func (s *DataSourceStorage) Create(ctx context.Context, ds *common.DataSource) (*common.DataSource, error) {
	row := s.conn.QueryRow(ctx, `
		INSERT INTO data_sources (name, platform, api_endpoint, credentials, collection_config, description, is_active)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, NULLIF($6, ''), $7)
		RETURNING `+dataSourceColumns,
		ds.Name, ds.Platform, ds.APIEndpoint, ds.Credentials, ds.CollectionConfig, ds.Description, ds.IsActive,
	)
	return scanDataSource(row)
}

func (s *DataSourceStorage) Get(ctx context.Context, id int64) (*common.DataSource, error) {
	return scanDataSource(s.conn.QueryRow(ctx, `SELECT `+dataSourceColumns+` FROM data_sources WHERE id = $1`, id))
}

func (s *DataSourceStorage) List(ctx context.Context, skip, limit int) ([]common.DataSource, error) {
	skip, limit = normalizeRange(skip, limit)
	rows, err := s.conn.Query(ctx, `
		SELECT `+dataSourceColumns+` FROM data_sources ORDER BY id ASC LIMIT $1 OFFSET $2`,
		limit, skip,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]common.DataSource, 0)
	for rows.Next() {
		ds, err := scanDataSource(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *ds)
	}
	return out, rows.Err()
}

func (s *DataSourceStorage) Update(ctx context.Context, ds *common.DataSource) (*common.DataSource, error) {
	row := s.conn.QueryRow(ctx, `
		UPDATE data_sources SET
			name = $1, platform = $2, api_endpoint = NULLIF($3, ''), credentials = $4,
			collection_config = $5, description = NULLIF($6, ''), is_active = $7,
			last_sync_at = $8, updated_at = now()
		WHERE id = $9
		RETURNING `+dataSourceColumns,
		ds.Name, ds.Platform, ds.APIEndpoint, ds.Credentials,
		ds.CollectionConfig, ds.Description, ds.IsActive, ds.LastSyncAt, ds.ID,
	)
	return scanDataSource(row)
}

func (s *DataSourceStorage) Delete(ctx context.Context, id int64) error {
	tag, err := s.conn.Exec(ctx, `DELETE FROM data_sources WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

var _ store.DataSourceStore = (*DataSourceStorage)(nil)
