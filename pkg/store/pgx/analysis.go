package pgx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	pgxv5 "github.com/jackc/pgx/v5"

	"github.com/rasadhq/rasad/pkg/common"
	"github.com/rasadhq/rasad/pkg/store"
)

const analysisColumns = `id, name, COALESCE(description, ''), analysis_type, config,
	query_filters, post_count, status, progress, summary,
	COALESCE(error_message, ''), started_at, completed_at, user_id, created_at, updated_at`

// AnalysisStorage implements store.AnalysisStore on PostgreSQL.
type AnalysisStorage struct {
	conn pgxIConn
}

// NewAnalysisStorageParams contains configuration for creating an AnalysisStorage.
type NewAnalysisStorageParams struct {
	Conn pgxIConn
}

func NewAnalysisStorage(params NewAnalysisStorageParams) *AnalysisStorage {
	return &AnalysisStorage{conn: params.Conn}
}

func scanAnalysis(row pgxv5.Row) (*common.Analysis, error) {
	var a common.Analysis
	err := row.Scan(
		&a.ID, &a.Name, &a.Description, &a.AnalysisType, &a.Config,
		&a.QueryFilters, &a.PostCount, &a.Status, &a.Progress, &a.Summary,
		&a.ErrorMessage, &a.StartedAt, &a.CompletedAt, &a.UserID, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgxv5.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (s *AnalysisStorage) Create(ctx context.Context, a *common.Analysis) (*common.Analysis, error) {
	row := s.conn.QueryRow(ctx, `
		INSERT INTO analyses (name, description, analysis_type, config, query_filters, post_count, status, progress, user_id)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+analysisColumns,
		a.Name, a.Description, a.AnalysisType, a.Config, a.QueryFilters,
		a.PostCount, common.StatusPending, 0.0, a.UserID,
	)
	return scanAnalysis(row)
}

func (s *AnalysisStorage) Get(ctx context.Context, id int64) (*common.Analysis, error) {
	row := s.conn.QueryRow(ctx, `SELECT `+analysisColumns+` FROM analyses WHERE id = $1`, id)
	return scanAnalysis(row)
}

func (s *AnalysisStorage) List(ctx context.Context, filter store.AnalysisFilter, skip, limit int) ([]common.Analysis, error) {
	skip, limit = normalizeRange(skip, limit)

	where := make([]string, 0, 3)
	args := make([]any, 0, 5)
	if filter.Status != "" {
		args = append(args, filter.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Type != "" {
		args = append(args, filter.Type)
		where = append(where, fmt.Sprintf("analysis_type = $%d", len(args)))
	}
	if filter.UserID != 0 {
		args = append(args, filter.UserID)
		where = append(where, fmt.Sprintf("user_id = $%d", len(args)))
	}

	query := `SELECT ` + analysisColumns + ` FROM analyses`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	args = append(args, limit, skip)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := s.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectAnalyses(rows)
}

func (s *AnalysisStorage) GetPending(ctx context.Context, limit int) ([]common.Analysis, error) {
	_, limit = normalizeRange(0, limit)
	rows, err := s.conn.Query(ctx, `
		SELECT `+analysisColumns+` FROM analyses
		WHERE status = $1 ORDER BY created_at ASC LIMIT $2`,
		common.StatusPending, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectAnalyses(rows)
}

func collectAnalyses(rows pgxv5.Rows) ([]common.Analysis, error) {
	out := make([]common.Analysis, 0)
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (s *AnalysisStorage) UpdateStatus(ctx context.Context, id int64, upd store.StatusUpdate) (*common.Analysis, error) {
	sets := []string{"status = $1", "updated_at = now()"}
	args := []any{upd.Status}
	if upd.Progress != nil {
		args = append(args, *upd.Progress)
		sets = append(sets, fmt.Sprintf("progress = $%d", len(args)))
	}
	if upd.ErrorMessage != nil {
		args = append(args, *upd.ErrorMessage)
		sets = append(sets, fmt.Sprintf("error_message = NULLIF($%d, '')", len(args)))
	}
	if upd.StartedAt != nil {
		args = append(args, *upd.StartedAt)
		sets = append(sets, fmt.Sprintf("started_at = $%d", len(args)))
	}
	if upd.CompletedAt != nil {
		args = append(args, *upd.CompletedAt)
		sets = append(sets, fmt.Sprintf("completed_at = $%d", len(args)))
	}

	args = append(args, id)
	query := fmt.Sprintf(
		"UPDATE analyses SET %s WHERE id = $%d RETURNING %s",
		strings.Join(sets, ", "), len(args), analysisColumns,
	)
	return scanAnalysis(s.conn.QueryRow(ctx, query, args...))
}

// Claim is the compare-and-swap guard against double processing: only one
// conditional update can win the pending/queued row.
func (s *AnalysisStorage) Claim(ctx context.Context, id int64) (*common.Analysis, error) {
	row := s.conn.QueryRow(ctx, `
		UPDATE analyses SET status = $1, updated_at = now()
		WHERE id = $2 AND status IN ($3, $4)
		RETURNING `+analysisColumns,
		common.StatusProcessing, id, common.StatusPending, common.StatusQueued,
	)
	a, err := scanAnalysis(row)
	if err == nil {
		return a, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	var exists bool
	if err := s.conn.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM analyses WHERE id = $1)`, id).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, store.ErrNotFound
	}
	return nil, store.ErrNotClaimable
}

func (s *AnalysisStorage) SetProgress(ctx context.Context, id int64, progress float64) error {
	tag, err := s.conn.Exec(ctx, `
		UPDATE analyses SET progress = GREATEST(progress, $1), updated_at = now() WHERE id = $2`,
		progress, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *AnalysisStorage) SetSummary(ctx context.Context, id int64, summary json.RawMessage) error {
	tag, err := s.conn.Exec(ctx, `
		UPDATE analyses SET summary = $1, updated_at = now() WHERE id = $2`,
		summary, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *AnalysisStorage) Delete(ctx context.Context, id int64) error {
	tag, err := s.conn.Exec(ctx, `DELETE FROM analyses WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *AnalysisStorage) Stats(ctx context.Context) (*store.AnalysisStats, error) {
	stats := &store.AnalysisStats{
		ByStatus: make(map[string]int),
		ByType:   make(map[string]int),
	}

	rows, err := s.conn.Query(ctx, `SELECT status, COUNT(*) FROM analyses GROUP BY status`)
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
	if err := rows.Err(); err != nil {
		return nil, err
	}

	typeRows, err := s.conn.Query(ctx, `SELECT analysis_type, COUNT(*) FROM analyses GROUP BY analysis_type`)
	if err != nil {
		return nil, err
	}
	defer typeRows.Close()
	for typeRows.Next() {
		var typ string
		var count int
		if err := typeRows.Scan(&typ, &count); err != nil {
			return nil, err
		}
		stats.ByType[typ] = count
	}
	return stats, typeRows.Err()
}

var _ store.AnalysisStore = (*AnalysisStorage)(nil)
