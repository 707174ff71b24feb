package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rasadhq/rasad/pkg/analysis"
	"github.com/rasadhq/rasad/pkg/graphbuild"
	"github.com/rasadhq/rasad/pkg/leaselock"
	"github.com/rasadhq/rasad/pkg/logger"
	"github.com/rasadhq/rasad/pkg/trends"
)

// ProcessAnalysisMessage runs one analysis job. The claim inside Process
// makes redelivered messages harmless.
func ProcessAnalysisMessage(ctx context.Context, orch *analysis.Orchestrator, msg string) error {
	data := new(ProcessAnalysisMsg)
	if err := json.Unmarshal([]byte(msg), data); err != nil {
		return err
	}
	if data.AnalysisID <= 0 {
		return fmt.Errorf("invalid analysis id %d", data.AnalysisID)
	}

	logger.Info("[Queue] Processing analysis", "analysis_id", data.AnalysisID)
	return orch.Process(ctx, data.AnalysisID)
}

// ProcessGraphMessage rebuilds the requested network slice. The lease keeps
// concurrent workers from interleaving edge upserts of the same build.
func ProcessGraphMessage(ctx context.Context, service *graphbuild.Service, conn *pgxpool.Pool, msg string) error {
	data := new(BuildGraphMsg)
	if err := json.Unmarshal([]byte(msg), data); err != nil {
		return err
	}
	if data.GraphType == "" {
		data.GraphType = "hashtag"
	}
	if data.Hours <= 0 {
		data.Hours = 24
	}
	since := time.Now().Add(-time.Duration(data.Hours) * time.Hour)

	lockClient := leaselock.New(conn)
	return lockClient.WithLease(ctx, "graph:"+data.GraphType, leaselock.Options{
		TTL:         10 * time.Minute,
		RenewEvery:  4 * time.Minute,
		Wait:        true,
		TokenPrefix: "graph-build/",
	}, func(ctx context.Context) error {
		logger.Info("[Queue] Building graph", "graph_type", data.GraphType, "hours", data.Hours)

		switch data.GraphType {
		case "mention":
			if _, err := service.BuildMentionNetwork(ctx, since); err != nil {
				return err
			}
		case "all":
			if _, err := service.BuildHashtagNetwork(ctx, since); err != nil {
				return err
			}
			if _, err := service.BuildMentionNetwork(ctx, since); err != nil {
				return err
			}
		default:
			if _, err := service.BuildHashtagNetwork(ctx, since); err != nil {
				return err
			}
		}
		return service.ComputeMetrics(ctx)
	})
}

// ProcessTrendMessage runs one trend detection pass followed by the status
// refresh over the already-active trends.
func ProcessTrendMessage(ctx context.Context, detector *trends.Detector, msg string) error {
	data := new(DetectTrendsMsg)
	if err := json.Unmarshal([]byte(msg), data); err != nil {
		return err
	}

	window := time.Duration(data.Hours) * time.Hour
	logger.Info("[Queue] Detecting trends", "hours", data.Hours, "min_count", data.MinCount)
	if _, err := detector.Detect(ctx, window, data.MinCount); err != nil {
		return err
	}
	return detector.UpdateStatuses(ctx)
}
