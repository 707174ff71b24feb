package pgx

import (
	"context"
	"errors"

	pgxv5 "github.com/jackc/pgx/v5"

	"github.com/rasadhq/rasad/pkg/common"
	"github.com/rasadhq/rasad/pkg/store"
)

const nodeColumns = `id, node_id, node_type, COALESCE(label, ''), attributes,
	degree, in_degree, out_degree, pagerank, betweenness_centrality,
	closeness_centrality, eigenvector_centrality, community_id, created_at, updated_at`

const edgeColumns = `id, source_id, target_id, edge_type, weight, attributes,
	first_seen, last_seen, occurrence_count, created_at, updated_at`

// GraphStorage implements store.GraphStore on PostgreSQL.
type GraphStorage struct {
	conn pgxIConn
}

// NewGraphStorageParams contains configuration for creating a GraphStorage.
type NewGraphStorageParams struct {
	Conn pgxIConn
}

func NewGraphStorage(params NewGraphStorageParams) *GraphStorage {
	return &GraphStorage{conn: params.Conn}
}

func scanNode(row pgxv5.Row) (*common.GraphNode, error) {
	var n common.GraphNode
	err := row.Scan(
		&n.ID, &n.NodeID, &n.NodeType, &n.Label, &n.Attributes,
		&n.Degree, &n.InDegree, &n.OutDegree, &n.Pagerank, &n.BetweennessCentrality,
		&n.ClosenessCentrality, &n.EigenvectorCentrality, &n.CommunityID,
		&n.CreatedAt, &n.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgxv5.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &n, nil
}

func scanEdge(row pgxv5.Row) (*common.GraphEdge, error) {
	var e common.GraphEdge
	err := row.Scan(
		&e.ID, &e.SourceID, &e.TargetID, &e.EdgeType, &e.Weight, &e.Attributes,
		&e.FirstSeen, &e.LastSeen, &e.OccurrenceCount, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgxv5.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

func (s *GraphStorage) GetNodeByNodeID(ctx context.Context, nodeID string) (*common.GraphNode, error) {
	return scanNode(s.conn.QueryRow(ctx, `SELECT `+nodeColumns+` FROM graph_nodes WHERE node_id = $1`, nodeID))
}

// GetOrCreateNode never mutates an existing row. The no-op DO UPDATE on
// conflict only exists so RETURNING yields the existing row in one round trip.
func (s *GraphStorage) GetOrCreateNode(ctx context.Context, node *common.GraphNode) (*common.GraphNode, error) {
	row := s.conn.QueryRow(ctx, `
		INSERT INTO graph_nodes (node_id, node_type, label, attributes)
		VALUES ($1, $2, NULLIF($3, ''), $4)
		ON CONFLICT (node_id) DO UPDATE SET node_id = EXCLUDED.node_id
		RETURNING `+nodeColumns,
		node.NodeID, node.NodeType, node.Label, node.Attributes,
	)
	return scanNode(row)
}

func (s *GraphStorage) UpsertEdge(ctx context.Context, sourceID, targetID int64, edgeType string) (*common.GraphEdge, error) {
	row := s.conn.QueryRow(ctx, `
		INSERT INTO graph_edges (source_id, target_id, edge_type, weight, occurrence_count, first_seen, last_seen)
		VALUES ($1, $2, $3, 1.0, 1, now(), now())
		ON CONFLICT (source_id, target_id, edge_type) DO UPDATE SET
			occurrence_count = graph_edges.occurrence_count + 1,
			last_seen = now(),
			updated_at = now()
		RETURNING `+edgeColumns,
		sourceID, targetID, edgeType,
	)
	return scanEdge(row)
}

func (s *GraphStorage) ListNodes(ctx context.Context, nodeType string, skip, limit int) ([]common.GraphNode, error) {
	skip, limit = normalizeRange(skip, limit)

	var rows pgxv5.Rows
	var err error
	if nodeType != "" {
		rows, err = s.conn.Query(ctx, `
			SELECT `+nodeColumns+` FROM graph_nodes
			WHERE node_type = $1 ORDER BY id ASC LIMIT $2 OFFSET $3`,
			nodeType, limit, skip,
		)
	} else {
		rows, err = s.conn.Query(ctx, `
			SELECT `+nodeColumns+` FROM graph_nodes ORDER BY id ASC LIMIT $1 OFFSET $2`,
			limit, skip,
		)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]common.GraphNode, 0)
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *n)
	}
	return out, rows.Err()
}

func (s *GraphStorage) ListEdges(ctx context.Context, edgeType string, skip, limit int) ([]common.GraphEdge, error) {
	skip, limit = normalizeRange(skip, limit)

	var rows pgxv5.Rows
	var err error
	if edgeType != "" {
		rows, err = s.conn.Query(ctx, `
			SELECT `+edgeColumns+` FROM graph_edges
			WHERE edge_type = $1 ORDER BY id ASC LIMIT $2 OFFSET $3`,
			edgeType, limit, skip,
		)
	} else {
		rows, err = s.conn.Query(ctx, `
			SELECT `+edgeColumns+` FROM graph_edges ORDER BY id ASC LIMIT $1 OFFSET $2`,
			limit, skip,
		)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]common.GraphEdge, 0)
	for rows.Next() {
		e, err := scanEdge(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

func (s *GraphStorage) UpdateNodeRank(ctx context.Context, nodeID string, pagerank float64) error {
	tag, err := s.conn.Exec(ctx, `
		UPDATE graph_nodes SET pagerank = $1, updated_at = now() WHERE node_id = $2`,
		pagerank, nodeID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *GraphStorage) UpdateNodeCommunity(ctx context.Context, nodeID string, communityID int) error {
	tag, err := s.conn.Exec(ctx, `
		UPDATE graph_nodes SET community_id = $1, updated_at = now() WHERE node_id = $2`,
		communityID, nodeID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *GraphStorage) Stats(ctx context.Context) (*store.GraphStats, error) {
	stats := &store.GraphStats{
		ByNodeType: make(map[string]int),
		ByEdgeType: make(map[string]int),
	}

	nodeRows, err := s.conn.Query(ctx, `SELECT node_type, COUNT(*) FROM graph_nodes GROUP BY node_type`)
	if err != nil {
		return nil, err
	}
	defer nodeRows.Close()
	for nodeRows.Next() {
		var typ string
		var count int
		if err := nodeRows.Scan(&typ, &count); err != nil {
			return nil, err
		}
		stats.ByNodeType[typ] = count
		stats.Nodes += count
	}
	if err := nodeRows.Err(); err != nil {
		return nil, err
	}

	edgeRows, err := s.conn.Query(ctx, `SELECT edge_type, COUNT(*) FROM graph_edges GROUP BY edge_type`)
	if err != nil {
		return nil, err
	}
	defer edgeRows.Close()
	for edgeRows.Next() {
		var typ string
		var count int
		if err := edgeRows.Scan(&typ, &count); err != nil {
			return nil, err
		}
		stats.ByEdgeType[typ] = count
		stats.Edges += count
	}
	return stats, edgeRows.Err()
}

func (s *GraphStorage) Clear(ctx context.Context) error {
	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM graph_edges`); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM graph_nodes`); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

var _ store.GraphStore = (*GraphStorage)(nil)
