// Package cache provides the low-latency progress mirror used while a job is
// processing. The store stays authoritative; every cache failure degrades to
// a miss and never errors the request path.
package cache

import (
	"context"
	"time"

	"github.com/rasadhq/rasad/pkg/common"
)

// DefaultTTL is how long cached progress and summary entries live.
const DefaultTTL = time.Hour

// Progress is the cached view of a running job.
type Progress struct {
	Progress float64               `json:"progress"`
	Status   common.AnalysisStatus `json:"status"`
}

// ProgressCache mirrors job progress and completed summaries. A miss is
// reported as ok=false with a nil error; implementations must not surface
// backend outages as errors on the read path.
type ProgressCache interface {
	SetProgress(ctx context.Context, analysisID int64, p Progress, ttl time.Duration)
	GetProgress(ctx context.Context, analysisID int64) (Progress, bool)

	CacheSummary(ctx context.Context, analysisID int64, summary []byte, ttl time.Duration)
	GetSummary(ctx context.Context, analysisID int64) ([]byte, bool)

	Invalidate(ctx context.Context, analysisID int64)
}

// Noop is the cache used when no Redis is configured: every read misses.
type Noop struct{}

func (Noop) SetProgress(context.Context, int64, Progress, time.Duration) {}

func (Noop) GetProgress(context.Context, int64) (Progress, bool) {
	return Progress{}, false
}

func (Noop) CacheSummary(context.Context, int64, []byte, time.Duration) {}

func (Noop) GetSummary(context.Context, int64) ([]byte, bool) {
	return nil, false
}

func (Noop) Invalidate(context.Context, int64) {}

var _ ProgressCache = Noop{}
