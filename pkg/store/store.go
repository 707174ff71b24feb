// Package store defines the persistence interfaces for the analytics domain.
// Implementations live in subpackages; pkg/store/pgx is the PostgreSQL one.
// Services depend on these interfaces so tests can substitute fakes.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rasadhq/rasad/pkg/common"
)

// ErrNotFound is returned by Get-style operations when no row matches.
var ErrNotFound = errors.New("store: not found")

// ErrNotClaimable is returned by AnalysisStore.Claim when the job is not in
// a claimable status, typically because another worker got there first.
var ErrNotClaimable = errors.New("store: analysis not claimable")

// AnalysisFilter narrows analysis listings. Zero values mean "any".
type AnalysisFilter struct {
	Status common.AnalysisStatus
	Type   common.AnalysisType
	UserID int64
}

// StatusUpdate is a partial update applied to an analysis row. Nil fields
// are left untouched.
type StatusUpdate struct {
	Status       common.AnalysisStatus
	Progress     *float64
	ErrorMessage *string
	StartedAt    *time.Time
	CompletedAt  *time.Time
}

// AnalysisStats aggregates job counts by status and type.
type AnalysisStats struct {
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"by_status"`
	ByType   map[string]int `json:"by_type"`
}

// AnalysisStore persists analysis jobs.
type AnalysisStore interface {
	Create(ctx context.Context, a *common.Analysis) (*common.Analysis, error)
	Get(ctx context.Context, id int64) (*common.Analysis, error)
	List(ctx context.Context, filter AnalysisFilter, skip, limit int) ([]common.Analysis, error)
	GetPending(ctx context.Context, limit int) ([]common.Analysis, error)

	// UpdateStatus applies upd and returns the updated row.
	UpdateStatus(ctx context.Context, id int64, upd StatusUpdate) (*common.Analysis, error)

	// Claim moves a pending or queued job to processing and returns it.
	// The transition is a single conditional update, so concurrent claims
	// of the same job resolve to exactly one winner; losers get
	// ErrNotClaimable.
	Claim(ctx context.Context, id int64) (*common.Analysis, error)

	SetProgress(ctx context.Context, id int64, progress float64) error
	SetSummary(ctx context.Context, id int64, summary json.RawMessage) error

	// Delete removes the job and cascades to its results.
	Delete(ctx context.Context, id int64) error

	Stats(ctx context.Context) (*AnalysisStats, error)
}

// ResultStore persists per-post analysis results.
type ResultStore interface {
	// Insert stores one result. A duplicate (post, analysis) pair is
	// skipped; the bool reports whether a row was actually written.
	Insert(ctx context.Context, r *common.AnalysisResult) (bool, error)

	ListByAnalysis(ctx context.Context, analysisID int64, skip, limit int) ([]common.AnalysisResult, error)
	CountByAnalysis(ctx context.Context, analysisID int64) (int, error)
	DeleteByAnalysis(ctx context.Context, analysisID int64) error

	// DeleteOlderThan removes results created before cutoff and returns
	// the number of deleted rows. Used by the periodic cleanup job.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// PostFilter narrows post queries. Zero values mean "any"; pointer fields
// distinguish "unset" from an explicit zero.
type PostFilter struct {
	Platform     string
	Language     string
	DataSourceID *int64
	AuthorID     *int64
	IsProcessed  *bool
	PostedAfter  *time.Time
	PostedBefore *time.Time
	Search       string
	Hashtag      string
}

// PostStats aggregates post counts.
type PostStats struct {
	Total      int            `json:"total"`
	Processed  int            `json:"processed"`
	ByPlatform map[string]int `json:"by_platform"`
	ByLanguage map[string]int `json:"by_language"`
}

// PostStore persists posts and answers the filter queries the orchestrator
// and the derivation services run.
type PostStore interface {
	Create(ctx context.Context, p *common.Post) (*common.Post, error)
	Get(ctx context.Context, id int64) (*common.Post, error)
	GetByPlatformID(ctx context.Context, platformID string) (*common.Post, error)
	Filter(ctx context.Context, f PostFilter, skip, limit int) ([]common.Post, error)
	MarkProcessed(ctx context.Context, id int64, processingError string) error
	ListSince(ctx context.Context, since time.Time, limit int) ([]common.Post, error)
	CountWithHashtagSince(ctx context.Context, tag string, since time.Time) (int, error)
	Stats(ctx context.Context) (*PostStats, error)
}

// GraphStats aggregates node and edge counts.
type GraphStats struct {
	Nodes      int            `json:"nodes"`
	Edges      int            `json:"edges"`
	ByNodeType map[string]int `json:"by_node_type"`
	ByEdgeType map[string]int `json:"by_edge_type"`
}

// GraphStore persists the derived interaction network.
type GraphStore interface {
	GetNodeByNodeID(ctx context.Context, nodeID string) (*common.GraphNode, error)

	// GetOrCreateNode returns the existing node for node.NodeID untouched,
	// or inserts node with zero metrics when absent.
	GetOrCreateNode(ctx context.Context, node *common.GraphNode) (*common.GraphNode, error)

	// UpsertEdge dedupes on (source, target, type): an existing edge gets
	// its occurrence count incremented and last_seen refreshed, a new edge
	// starts at weight 1.0 and occurrence 1. The weight of an existing
	// edge is never changed here.
	UpsertEdge(ctx context.Context, sourceID, targetID int64, edgeType string) (*common.GraphEdge, error)

	ListNodes(ctx context.Context, nodeType string, skip, limit int) ([]common.GraphNode, error)
	ListEdges(ctx context.Context, edgeType string, skip, limit int) ([]common.GraphEdge, error)

	UpdateNodeRank(ctx context.Context, nodeID string, pagerank float64) error
	UpdateNodeCommunity(ctx context.Context, nodeID string, communityID int) error

	Stats(ctx context.Context) (*GraphStats, error)
	Clear(ctx context.Context) error
}

// TrendStats aggregates trend counts by status.
type TrendStats struct {
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"by_status"`
}

// TrendStore persists detected trends.
type TrendStore interface {
	Create(ctx context.Context, t *common.Trend) (*common.Trend, error)
	GetActiveByName(ctx context.Context, name string) (*common.Trend, error)
	List(ctx context.Context, status common.TrendStatus, skip, limit int) ([]common.Trend, error)
	ListActive(ctx context.Context) ([]common.Trend, error)
	UpdateVolume(ctx context.Context, id int64, volume int) error
	UpdateStatus(ctx context.Context, id int64, status common.TrendStatus) error
	TopByVolume(ctx context.Context, limit int) ([]common.Trend, error)
	TopByGrowth(ctx context.Context, limit int) ([]common.Trend, error)
	Stats(ctx context.Context) (*TrendStats, error)
}

// AuthorStore persists post authors.
type AuthorStore interface {
	Create(ctx context.Context, a *common.Author) (*common.Author, error)
	Get(ctx context.Context, id int64) (*common.Author, error)
	GetByPlatformID(ctx context.Context, platform, platformID string) (*common.Author, error)
	List(ctx context.Context, platform string, skip, limit int) ([]common.Author, error)
	Delete(ctx context.Context, id int64) error
}

// DataSourceStore persists collection source configurations.
type DataSourceStore interface {
	Create(ctx context.Context, ds *common.DataSource) (*common.DataSource, error)
	Get(ctx context.Context, id int64) (*common.DataSource, error)
	List(ctx context.Context, skip, limit int) ([]common.DataSource, error)
	Update(ctx context.Context, ds *common.DataSource) (*common.DataSource, error)
	Delete(ctx context.Context, id int64) error
}

// DashboardStore persists saved dashboards.
type DashboardStore interface {
	Create(ctx context.Context, d *common.Dashboard) (*common.Dashboard, error)
	Get(ctx context.Context, id int64) (*common.Dashboard, error)
	ListByUser(ctx context.Context, userID int64, skip, limit int) ([]common.Dashboard, error)
	Update(ctx context.Context, d *common.Dashboard) (*common.Dashboard, error)
	Delete(ctx context.Context, id int64) error
}

// UserStore persists user records for ownership tracking.
type UserStore interface {
	Create(ctx context.Context, u *common.User) (*common.User, error)
	Get(ctx context.Context, id int64) (*common.User, error)
	GetByUsername(ctx context.Context, username string) (*common.User, error)
	List(ctx context.Context, skip, limit int) ([]common.User, error)
}
