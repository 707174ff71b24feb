// Package trends detects topical spikes over recent posts and ages existing
// trends down as their volume fades.
package trends

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rasadhq/rasad/pkg/brain"
	"github.com/rasadhq/rasad/pkg/common"
	"github.com/rasadhq/rasad/pkg/logger"
	"github.com/rasadhq/rasad/pkg/store"
)

// BrainClient is the slice of the analyzer client trend detection needs.
type BrainClient interface {
	IsAvailable(ctx context.Context) bool
	DetectTrends(ctx context.Context, posts []brain.TrendPost, timeWindow string, minTrendSize int) ([]brain.TrendResult, error)
}

// Config tunes detection and the status lifecycle.
type Config struct {
	// Window is the lookback for detection. Default 1h.
	Window time.Duration
	// MinCount is the minimum volume for a new trend. Default 10.
	MinCount int
	// MaxTrends caps how many trends one detection pass yields. Default 20.
	MaxTrends int
	// MaxPosts caps the scanned post set. Default 5000.
	MaxPosts int

	// RecentWindow is the lookback for the status refresh. Default 1h.
	RecentWindow time.Duration
	// DecliningRatio and EndedRatio compare recent volume against the
	// trend's recorded volume. Defaults 0.3 and 0.1.
	DecliningRatio float64
	EndedRatio     float64
}

func (c Config) withDefaults() Config {
	if c.Window <= 0 {
		c.Window = time.Hour
	}
	if c.MinCount <= 0 {
		c.MinCount = 10
	}
	if c.MaxTrends <= 0 {
		c.MaxTrends = 20
	}
	if c.MaxPosts <= 0 {
		c.MaxPosts = 5000
	}
	if c.RecentWindow <= 0 {
		c.RecentWindow = time.Hour
	}
	if c.DecliningRatio <= 0 {
		c.DecliningRatio = 0.3
	}
	if c.EndedRatio <= 0 {
		c.EndedRatio = 0.1
	}
	return c
}

// Detector runs trend detection and the status lifecycle.
type Detector struct {
	trends store.TrendStore
	posts  store.PostStore
	brain  BrainClient
	cfg    Config
}

// DetectorParams contains configuration for creating a Detector.
type DetectorParams struct {
	Trends store.TrendStore
	Posts  store.PostStore
	Brain  BrainClient
	Config Config
}

func NewDetector(params DetectorParams) *Detector {
	return &Detector{
		trends: params.Trends,
		posts:  params.Posts,
		brain:  params.Brain,
		cfg:    params.Config.withDefaults(),
	}
}

// Detect scans recent posts for trends. The analyzer path is preferred; when
// it is unreachable, hashtag counting over the same window stands in. An
// already-active trend of the same name is refreshed instead of duplicated.
func (d *Detector) Detect(ctx context.Context, window time.Duration, minCount int) ([]common.Trend, error) {
	if window <= 0 {
		window = d.cfg.Window
	}
	if minCount <= 0 {
		minCount = d.cfg.MinCount
	}

	since := time.Now().Add(-window)
	posts, err := d.posts.ListSince(ctx, since, d.cfg.MaxPosts)
	if err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return nil, nil
	}

	var candidates []common.Trend
	if d.brain != nil && d.brain.IsAvailable(ctx) {
		candidates, err = d.detectWithAnalyzer(ctx, posts, window, minCount)
		if err != nil {
			logger.Warn("analyzer trend detection failed, falling back to hashtag counts", "error", err)
			candidates = d.detectFromHashtags(posts, minCount)
		}
	} else {
		candidates = d.detectFromHashtags(posts, minCount)
	}

	if len(candidates) > d.cfg.MaxTrends {
		candidates = candidates[:d.cfg.MaxTrends]
	}

	out := make([]common.Trend, 0, len(candidates))
	for i := range candidates {
		saved, err := d.upsert(ctx, &candidates[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *saved)
	}

	logger.Info("trend detection finished", "posts", len(posts), "trends", len(out))
	return out, nil
}

func (d *Detector) detectWithAnalyzer(ctx context.Context, posts []common.Post, window time.Duration, minCount int) ([]common.Trend, error) {
	view := make([]brain.TrendPost, 0, len(posts))
	for _, post := range posts {
		trendPost := brain.TrendPost{ID: post.ID, Content: post.Content, Hashtags: post.Hashtags}
		if post.PostedAt != nil {
			trendPost.PostedAt = post.PostedAt.Format(time.RFC3339)
		}
		view = append(view, trendPost)
	}

	results, err := d.brain.DetectTrends(ctx, view, window.String(), minCount)
	if err != nil {
		return nil, err
	}

	out := make([]common.Trend, 0, len(results))
	for _, result := range results {
		trend := common.Trend{
			Name:     result.Name,
			Volume:   result.Volume,
			Keywords: result.Keywords,
			Status:   common.TrendActive,
		}
		growth := result.GrowthRate
		velocity := result.Velocity
		trend.GrowthRate = &growth
		trend.Velocity = &velocity
		if result.Sentiment != nil {
			trend.SentimentDistribution = map[string]float64{result.Sentiment.Label: result.Sentiment.Score}
		}
		out = append(out, trend)
	}
	return out, nil
}

// detectFromHashtags is the degraded path: hashtags crossing the volume
// threshold become trends, highest volume first.
func (d *Detector) detectFromHashtags(posts []common.Post, minCount int) []common.Trend {
	counts := make(map[string]int)
	for _, post := range posts {
		seen := make(map[string]struct{}, len(post.Hashtags))
		for _, tag := range post.Hashtags {
			if tag == "" {
				continue
			}
			if _, dup := seen[tag]; dup {
				continue
			}
			seen[tag] = struct{}{}
			counts[tag]++
		}
	}

	var out []common.Trend
	for tag, count := range counts {
		if count < minCount {
			continue
		}
		out = append(out, common.Trend{
			Name:     tag,
			Volume:   count,
			Hashtags: []string{tag},
			Status:   common.TrendActive,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Volume != out[j].Volume {
			return out[i].Volume > out[j].Volume
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func (d *Detector) upsert(ctx context.Context, trend *common.Trend) (*common.Trend, error) {
	existing, err := d.trends.GetActiveByName(ctx, trend.Name)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		return d.trends.Create(ctx, trend)
	}

	if err := d.trends.UpdateVolume(ctx, existing.ID, trend.Volume); err != nil {
		return nil, err
	}
	existing.Volume = trend.Volume
	return existing, nil
}

// UpdateStatuses ages active trends: recent volume under EndedRatio of the
// recorded volume ends the trend, under DecliningRatio marks it declining.
// Transitions only run downward.
func (d *Detector) UpdateStatuses(ctx context.Context) error {
	active, err := d.trends.ListActive(ctx)
	if err != nil {
		return err
	}

	since := time.Now().Add(-d.cfg.RecentWindow)
	for _, trend := range active {
		if trend.Volume <= 0 {
			continue
		}
		recent, err := d.posts.CountWithHashtagSince(ctx, trendHashtag(trend), since)
		if err != nil {
			return err
		}

		ratio := float64(recent) / float64(trend.Volume)
		var next common.TrendStatus
		switch {
		case ratio < d.cfg.EndedRatio:
			next = common.TrendEnded
		case ratio < d.cfg.DecliningRatio:
			next = common.TrendDeclining
		default:
			continue
		}

		if err := d.trends.UpdateStatus(ctx, trend.ID, next); err != nil {
			return err
		}
		logger.Info("trend status updated", "trend", trend.Name, "status", next, "recent", recent, "volume", trend.Volume)
	}
	return nil
}

// trendHashtag resolves which hashtag stands for the trend when counting
// recent posts.
func trendHashtag(trend common.Trend) string {
	if len(trend.Hashtags) > 0 {
		return trend.Hashtags[0]
	}
	return strings.TrimPrefix(trend.Name, "#")
}

// runConfig is the JSON shape of a trend_detection job's config.
type runConfig struct {
	Hours    int `json:"hours"`
	MinCount int `json:"min_count"`
}

// Run executes a trend_detection job.
func (d *Detector) Run(ctx context.Context, a *common.Analysis) error {
	cfg := runConfig{}
	if len(a.Config) > 0 {
		if err := json.Unmarshal(a.Config, &cfg); err != nil {
			return fmt.Errorf("trend config: %w", err)
		}
	}
	window := time.Duration(cfg.Hours) * time.Hour
	_, err := d.Detect(ctx, window, cfg.MinCount)
	return err
}
