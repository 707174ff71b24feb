package pgx

import (
	"context"
	"errors"

	pgxv5 "github.com/jackc/pgx/v5"

	"github.com/rasadhq/rasad/pkg/common"
	"github.com/rasadhq/rasad/pkg/store"
)

const trendColumns = `id, name, COALESCE(description, ''), volume, growth_rate, velocity, peak_time,
	keywords, hashtags, sentiment_distribution, time_series, status, analysis_id, created_at, updated_at`

// TrendStorage implements store.TrendStore on PostgreSQL.
type TrendStorage struct {
	conn pgxIConn
}

// NewTrendStorageParams contains configuration for creating a TrendStorage.
type NewTrendStorageParams struct {
	Conn pgxIConn
}

func NewTrendStorage(params NewTrendStorageParams) *TrendStorage {
	return &TrendStorage{conn: params.Conn}
}

func scanTrend(row pgxv5.Row) (*common.Trend, error) {
	var t common.Trend
	err := row.Scan(
		&t.ID, &t.Name, &t.Description, &t.Volume, &t.GrowthRate, &t.Velocity, &t.PeakTime,
		&t.Keywords, &t.Hashtags, &t.SentimentDistribution, &t.TimeSeries, &t.Status,
		&t.AnalysisID, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgxv5.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (s *TrendStorage) Create(ctx context.Context, t *common.Trend) (*common.Trend, error) {
	status := t.Status
	if status == "" {
		status = common.TrendActive
	}
	row := s.conn.QueryRow(ctx, `
		INSERT INTO trends (
			name, description, volume, growth_rate, velocity, peak_time,
			keywords, hashtags, sentiment_distribution, time_series, status, analysis_id
		)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING `+trendColumns,
		t.Name, t.Description, t.Volume, t.GrowthRate, t.Velocity, t.PeakTime,
		t.Keywords, t.Hashtags, t.SentimentDistribution, t.TimeSeries, status, t.AnalysisID,
	)
	return scanTrend(row)
}

func (s *TrendStorage) GetActiveByName(ctx context.Context, name string) (*common.Trend, error) {
	row := s.conn.QueryRow(ctx, `
		SELECT `+trendColumns+` FROM trends
		WHERE name = $1 AND status = $2
		ORDER BY created_at DESC LIMIT 1`,
		name, common.TrendActive,
	)
	return scanTrend(row)
}

func (s *TrendStorage) List(ctx context.Context, status common.TrendStatus, skip, limit int) ([]common.Trend, error) {
	skip, limit = normalizeRange(skip, limit)

	var rows pgxv5.Rows
	var err error
	if status != "" {
		rows, err = s.conn.Query(ctx, `
			SELECT `+trendColumns+` FROM trends
			WHERE status = $1 ORDER BY volume DESC, id DESC LIMIT $2 OFFSET $3`,
			status, limit, skip,
		)
	} else {
		rows, err = s.conn.Query(ctx, `
			SELECT `+trendColumns+` FROM trends ORDER BY volume DESC, id DESC LIMIT $1 OFFSET $2`,
			limit, skip,
		)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTrends(rows)
}

func (s *TrendStorage) ListActive(ctx context.Context) ([]common.Trend, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT `+trendColumns+` FROM trends WHERE status = $1 ORDER BY volume DESC`,
		common.TrendActive,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTrends(rows)
}

func collectTrends(rows pgxv5.Rows) ([]common.Trend, error) {
	out := make([]common.Trend, 0)
	for rows.Next() {
		t, err := scanTrend(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func (s *TrendStorage) UpdateVolume(ctx context.Context, id int64, volume int) error {
	tag, err := s.conn.Exec(ctx, `
		UPDATE trends SET volume = $1, updated_at = now() WHERE id = $2`,
		volume, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// UpdateStatus only allows the downward transitions active -> declining ->
// ended; anything else leaves the row unchanged.
func (s *TrendStorage) UpdateStatus(ctx context.Context, id int64, status common.TrendStatus) error {
	tag, err := s.conn.Exec(ctx, `
		UPDATE trends SET status = $1, updated_at = now()
		WHERE id = $2 AND (
			(status = $3 AND $1 IN ($4, $5)) OR
			(status = $4 AND $1 = $5)
		)`,
		status, id, common.TrendActive, common.TrendDeclining, common.TrendEnded,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *TrendStorage) TopByVolume(ctx context.Context, limit int) ([]common.Trend, error) {
	_, limit = normalizeRange(0, limit)
	rows, err := s.conn.Query(ctx, `
		SELECT `+trendColumns+` FROM trends
		WHERE status = $1 ORDER BY volume DESC LIMIT $2`,
		common.TrendActive, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTrends(rows)
}

func (s *TrendStorage) TopByGrowth(ctx context.Context, limit int) ([]common.Trend, error) {
	_, limit = normalizeRange(0, limit)
	rows, err := s.conn.Query(ctx, `
		SELECT `+trendColumns+` FROM trends
		WHERE status = $1 AND growth_rate IS NOT NULL
		ORDER BY growth_rate DESC LIMIT $2`,
		common.TrendActive, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTrends(rows)
}

func (s *TrendStorage) Stats(ctx context.Context) (*store.TrendStats, error) {
	stats := &store.TrendStats{ByStatus: make(map[string]int)}

	rows, err := s.conn.Query(ctx, `SELECT status, COUNT(*) FROM trends GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats.ByStatus[status] = count
		stats.Total += count
	}
	return stats, rows.Err()
}

var _ store.TrendStore = (*TrendStorage)(nil)
