package pgx

import (
	"context"
	"time"

	pgxv5 "github.com/jackc/pgx/v5"

	"github.com/rasadhq/rasad/pkg/common"
	"github.com/rasadhq/rasad/pkg/store"
)

const resultColumns = `id, post_id, analysis_id, COALESCE(sentiment_label, ''), sentiment_score,
	sentiment_confidence, emotions, COALESCE(dominant_emotion, ''), COALESCE(summary, ''),
	keywords, topics, entities, node_degree, centrality_score, community_id, raw_results, created_at`

// ResultStorage implements store.ResultStore on PostgreSQL.
type ResultStorage struct {
	conn pgxIConn
}

// NewResultStorageParams contains configuration for creating a ResultStorage.
type NewResultStorageParams struct {
	Conn pgxIConn
}

func NewResultStorage(params NewResultStorageParams) *ResultStorage {
	return &ResultStorage{conn: params.Conn}
}

// Insert relies on the unique (post_id, analysis_id) index: a duplicate pair
// is a no-op, which is what makes re-running a job safe.
func (s *ResultStorage) Insert(ctx context.Context, r *common.AnalysisResult) (bool, error) {
	tag, err := s.conn.Exec(ctx, `
		INSERT INTO analysis_results (
			post_id, analysis_id, sentiment_label, sentiment_score, sentiment_confidence,
			emotions, dominant_emotion, summary, keywords, topics, entities,
			node_degree, centrality_score, community_id, raw_results
		)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, NULLIF($7, ''), NULLIF($8, ''), $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (post_id, analysis_id) DO NOTHING`,
		r.PostID, r.AnalysisID, r.SentimentLabel, r.SentimentScore, r.SentimentConfidence,
		r.Emotions, r.DominantEmotion, r.Summary, r.Keywords, r.Topics, r.Entities,
		r.NodeDegree, r.CentralityScore, r.CommunityID, r.RawResults,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *ResultStorage) ListByAnalysis(ctx context.Context, analysisID int64, skip, limit int) ([]common.AnalysisResult, error) {
	skip, limit = normalizeRange(skip, limit)
	rows, err := s.conn.Query(ctx, `
		SELECT `+resultColumns+` FROM analysis_results
		WHERE analysis_id = $1 ORDER BY id ASC LIMIT $2 OFFSET $3`,
		analysisID, limit, skip,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]common.AnalysisResult, 0)
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

func scanResult(row pgxv5.Row) (*common.AnalysisResult, error) {
	var r common.AnalysisResult
	err := row.Scan(
		&r.ID, &r.PostID, &r.AnalysisID, &r.SentimentLabel, &r.SentimentScore,
		&r.SentimentConfidence, &r.Emotions, &r.DominantEmotion, &r.Summary,
		&r.Keywords, &r.Topics, &r.Entities, &r.NodeDegree, &r.CentralityScore,
		&r.CommunityID, &r.RawResults, &r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *ResultStorage) CountByAnalysis(ctx context.Context, analysisID int64) (int, error) {
	var count int
	err := s.conn.QueryRow(ctx, `SELECT COUNT(*) FROM analysis_results WHERE analysis_id = $1`, analysisID).Scan(&count)
	return count, err
}

func (s *ResultStorage) DeleteByAnalysis(ctx context.Context, analysisID int64) error {
	_, err := s.conn.Exec(ctx, `DELETE FROM analysis_results WHERE analysis_id = $1`, analysisID)
	return err
}

func (s *ResultStorage) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.conn.Exec(ctx, `DELETE FROM analysis_results WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

var _ store.ResultStore = (*ResultStorage)(nil)
