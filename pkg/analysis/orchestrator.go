// Package analysis orchestrates analysis jobs: creation, queueing, the
// processing pipeline against the analyzer service, and progress reporting.
package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/rasadhq/rasad/internal/util"
	"github.com/rasadhq/rasad/pkg/brain"
	"github.com/rasadhq/rasad/pkg/cache"
	"github.com/rasadhq/rasad/pkg/common"
	"github.com/rasadhq/rasad/pkg/logger"
	"github.com/rasadhq/rasad/pkg/store"
)

// ErrNoSummary is returned when a job has no summary yet.
var ErrNoSummary = errors.New("analysis: summary not available")

// BrainClient is the slice of the analyzer client the orchestrator needs.
type BrainClient interface {
	IsAvailable(ctx context.Context) bool
	SubmitBatch(ctx context.Context, analysisID int64, posts []brain.BatchPost, config map[string]any) (string, error)
	GetBatchStatus(ctx context.Context, taskID string) (*brain.BatchStatus, error)
	GetBatchResult(ctx context.Context, taskID string) (*brain.BatchResult, error)
}

// Enqueuer hands a job id to the message queue for a worker to pick up.
type Enqueuer interface {
	EnqueueAnalysis(ctx context.Context, analysisID int64) error
}

// Runner executes one non-batch job type end to end. The graph and trend
// services plug in through this so the orchestrator stays free of their
// packages.
type Runner interface {
	Run(ctx context.Context, a *common.Analysis) error
}

// Orchestrator drives the analysis job lifecycle.
type Orchestrator struct {
	analyses store.AnalysisStore
	results  store.ResultStore
	posts    store.PostStore
	brain    BrainClient
	cache    cache.ProgressCache
	enqueuer Enqueuer

	graphRunner Runner
	trendRunner Runner

	pollInterval time.Duration
	pollTimeout  time.Duration
	maxPosts     int
}

// OrchestratorParams contains configuration for creating an Orchestrator.
type OrchestratorParams struct {
	Analyses store.AnalysisStore
	Results  store.ResultStore
	Posts    store.PostStore
	Brain    BrainClient
	Cache    cache.ProgressCache
	Enqueuer Enqueuer

	// GraphRunner and TrendRunner handle the graph_analysis and
	// trend_detection job types. Either may be nil; those jobs then fail
	// with a clear message instead of hanging.
	GraphRunner Runner
	TrendRunner Runner

	// PollInterval is the pause between batch status polls. Default 2s.
	PollInterval time.Duration
	// PollTimeout bounds the whole polling phase. Default 10m.
	PollTimeout time.Duration
	// MaxPosts caps how many posts one job analyzes. Default 1000.
	MaxPosts int
}

func NewOrchestrator(params OrchestratorParams) *Orchestrator {
	pollInterval := params.PollInterval
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}
	pollTimeout := params.PollTimeout
	if pollTimeout <= 0 {
		pollTimeout = 10 * time.Minute
	}
	maxPosts := params.MaxPosts
	if maxPosts <= 0 {
		maxPosts = 1000
	}
	progressCache := params.Cache
	if progressCache == nil {
		progressCache = cache.Noop{}
	}

	return &Orchestrator{
		analyses:     params.Analyses,
		results:      params.Results,
		posts:        params.Posts,
		brain:        params.Brain,
		cache:        progressCache,
		enqueuer:     params.Enqueuer,
		graphRunner:  params.GraphRunner,
		trendRunner:  params.TrendRunner,
		pollInterval: pollInterval,
		pollTimeout:  pollTimeout,
		maxPosts:     maxPosts,
	}
}

// CreateParams describes a new analysis job.
type CreateParams struct {
	Name         string
	Description  string
	AnalysisType common.AnalysisType
	Config       json.RawMessage
	QueryFilters json.RawMessage
	PostCount    int
	UserID       int64
}

// Create validates and persists a new job in pending status.
func (o *Orchestrator) Create(ctx context.Context, params CreateParams) (*common.Analysis, error) {
	if params.Name == "" {
		return nil, &ValidationError{Field: "name", Message: "must not be empty"}
	}
	if !params.AnalysisType.Valid() {
		return nil, &ValidationError{Field: "analysis_type", Message: "unknown type " + string(params.AnalysisType)}
	}
	if params.PostCount < 0 {
		return nil, &ValidationError{Field: "post_count", Message: "must not be negative"}
	}

	return o.analyses.Create(ctx, &common.Analysis{
		Name:         params.Name,
		Description:  params.Description,
		AnalysisType: params.AnalysisType,
		Config:       params.Config,
		QueryFilters: params.QueryFilters,
		PostCount:    params.PostCount,
		UserID:       params.UserID,
	})
}

// Start queues a pending job for processing. A failed job may be started
// again; its error and progress are reset first.
func (o *Orchestrator) Start(ctx context.Context, id int64) (*common.Analysis, error) {
	a, err := o.analyses.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	switch a.Status {
	case common.StatusPending, common.StatusFailed:
	default:
		return nil, &InvalidStateError{ID: id, Status: a.Status, Op: "start"}
	}

	zero := 0.0
	empty := ""
	updated, err := o.analyses.UpdateStatus(ctx, id, store.StatusUpdate{
		Status:       common.StatusQueued,
		Progress:     &zero,
		ErrorMessage: &empty,
	})
	if err != nil {
		return nil, err
	}

	o.cache.SetProgress(ctx, id, cache.Progress{Status: common.StatusQueued}, 0)
	if o.enqueuer != nil {
		if err := o.enqueuer.EnqueueAnalysis(ctx, id); err != nil {
			return nil, err
		}
	}
	logger.Info("analysis queued", "analysis_id", id, "type", a.AnalysisType)
	return updated, nil
}

// Cancel stops a non-terminal job. A processing worker notices the status
// change at its next cancellation check and abandons the run.
func (o *Orchestrator) Cancel(ctx context.Context, id int64) (*common.Analysis, error) {
	a, err := o.analyses.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Status.Terminal() {
		return nil, &InvalidStateError{ID: id, Status: a.Status, Op: "cancel"}
	}

	now := time.Now()
	updated, err := o.analyses.UpdateStatus(ctx, id, store.StatusUpdate{
		Status:      common.StatusCancelled,
		CompletedAt: &now,
	})
	if err != nil {
		return nil, err
	}
	o.cache.SetProgress(ctx, id, cache.Progress{Progress: updated.Progress, Status: common.StatusCancelled}, 0)
	logger.Info("analysis cancelled", "analysis_id", id)
	return updated, nil
}

// Progress reads the job's progress, preferring the cache while a worker is
// writing to it and falling back to the store.
func (o *Orchestrator) Progress(ctx context.Context, id int64) (cache.Progress, error) {
	if p, ok := o.cache.GetProgress(ctx, id); ok {
		return p, nil
	}

	a, err := o.analyses.Get(ctx, id)
	if err != nil {
		return cache.Progress{}, err
	}
	p := cache.Progress{Progress: a.Progress, Status: a.Status}
	o.cache.SetProgress(ctx, id, p, 0)
	return p, nil
}

// GetSummary returns a completed job's summary document.
func (o *Orchestrator) GetSummary(ctx context.Context, id int64) (json.RawMessage, error) {
	if summary, ok := o.cache.GetSummary(ctx, id); ok {
		return summary, nil
	}

	a, err := o.analyses.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(a.Summary) == 0 {
		return nil, ErrNoSummary
	}
	o.cache.CacheSummary(ctx, id, a.Summary, 0)
	return a.Summary, nil
}

// Delete removes a job and its results. Processing jobs must be cancelled
// first.
func (o *Orchestrator) Delete(ctx context.Context, id int64) error {
	a, err := o.analyses.Get(ctx, id)
	if err != nil {
		return err
	}
	if a.Status == common.StatusProcessing {
		return &InvalidStateError{ID: id, Status: a.Status, Op: "delete"}
	}

	if err := o.results.DeleteByAnalysis(ctx, id); err != nil {
		return err
	}
	if err := o.analyses.Delete(ctx, id); err != nil {
		return err
	}
	o.cache.Invalidate(ctx, id)
	return nil
}

// Process runs one claimed job end to end. It is what the worker calls for
// each dequeued message; losing the claim race is not an error.
func (o *Orchestrator) Process(ctx context.Context, id int64) error {
	a, err := o.analyses.Claim(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotClaimable) {
			logger.Info("analysis already claimed, skipping", "analysis_id", id)
			return nil
		}
		return err
	}

	now := time.Now()
	if _, err := o.analyses.UpdateStatus(ctx, id, store.StatusUpdate{
		Status:    common.StatusProcessing,
		StartedAt: &now,
	}); err != nil {
		return err
	}
	o.cache.SetProgress(ctx, id, cache.Progress{Status: common.StatusProcessing}, 0)
	logger.Info("processing analysis", "analysis_id", id, "type", a.AnalysisType)

	switch a.AnalysisType {
	case common.TypeGraphAnalysis:
		return o.runSpecial(ctx, a, o.graphRunner, "graph analysis")
	case common.TypeTrendDetection:
		return o.runSpecial(ctx, a, o.trendRunner, "trend detection")
	default:
		return o.processBatch(ctx, a)
	}
}

func (o *Orchestrator) runSpecial(ctx context.Context, a *common.Analysis, runner Runner, name string) error {
	if runner == nil {
		return o.fail(ctx, a.ID, name+" is not configured on this worker")
	}
	if err := runner.Run(ctx, a); err != nil {
		return o.fail(ctx, a.ID, err.Error())
	}
	return o.complete(ctx, a.ID, nil)
}

func (o *Orchestrator) processBatch(ctx context.Context, a *common.Analysis) error {
	posts, err := o.resolvePosts(ctx, a)
	if err != nil {
		return o.fail(ctx, a.ID, "resolving posts: "+err.Error())
	}
	if len(posts) == 0 {
		return o.fail(ctx, a.ID, "no posts matched the analysis filters")
	}

	if !o.brain.IsAvailable(ctx) {
		return o.fail(ctx, a.ID, "analysis service is unavailable")
	}

	batchPosts := make([]brain.BatchPost, 0, len(posts))
	for _, post := range posts {
		content := post.ContentNormalized
		if content == "" {
			content = post.Content
		}
		batchPosts = append(batchPosts, brain.BatchPost{ID: post.ID, Content: content})
	}

	taskID, err := o.brain.SubmitBatch(ctx, a.ID, batchPosts, o.batchConfig(a))
	if err != nil {
		return o.fail(ctx, a.ID, "submitting batch: "+err.Error())
	}
	logger.Info("batch submitted", "analysis_id", a.ID, "task_id", taskID, "posts", len(batchPosts))

	result, err := o.awaitBatch(ctx, a.ID, taskID)
	if err != nil {
		var cancelled *cancelledError
		if errors.As(err, &cancelled) {
			logger.Info("analysis cancelled during processing", "analysis_id", a.ID)
			return nil
		}
		return o.fail(ctx, a.ID, err.Error())
	}

	results, err := o.storeResults(ctx, a, posts, result.Results)
	if err != nil {
		var cancelled *cancelledError
		if errors.As(err, &cancelled) {
			logger.Info("analysis cancelled during processing", "analysis_id", a.ID)
			return nil
		}
		return o.fail(ctx, a.ID, "storing results: "+err.Error())
	}

	summary := Summarize(results, len(posts))
	payload, err := json.Marshal(summary)
	if err != nil {
		return o.fail(ctx, a.ID, "encoding summary: "+err.Error())
	}
	if err := o.analyses.SetSummary(ctx, a.ID, payload); err != nil {
		return o.fail(ctx, a.ID, "saving summary: "+err.Error())
	}
	o.cache.CacheSummary(ctx, a.ID, payload, 0)

	return o.complete(ctx, a.ID, summary)
}

// queryFilters is the JSON shape of Analysis.QueryFilters.
type queryFilters struct {
	Platform     string     `json:"platform,omitempty"`
	Language     string     `json:"language,omitempty"`
	Hashtag      string     `json:"hashtag,omitempty"`
	Search       string     `json:"search,omitempty"`
	DataSourceID *int64     `json:"data_source_id,omitempty"`
	AuthorID     *int64     `json:"author_id,omitempty"`
	PostedAfter  *time.Time `json:"posted_after,omitempty"`
	PostedBefore *time.Time `json:"posted_before,omitempty"`
}

func (o *Orchestrator) resolvePosts(ctx context.Context, a *common.Analysis) ([]common.Post, error) {
	var filters queryFilters
	if len(a.QueryFilters) > 0 {
		if err := json.Unmarshal(a.QueryFilters, &filters); err != nil {
			return nil, err
		}
	}

	limit := a.PostCount
	if limit <= 0 || limit > o.maxPosts {
		limit = o.maxPosts
	}

	return o.posts.Filter(ctx, store.PostFilter{
		Platform:     filters.Platform,
		Language:     filters.Language,
		Hashtag:      filters.Hashtag,
		Search:       filters.Search,
		DataSourceID: filters.DataSourceID,
		AuthorID:     filters.AuthorID,
		PostedAfter:  filters.PostedAfter,
		PostedBefore: filters.PostedBefore,
	}, 0, limit)
}

// analysisTypesFor maps a job type to the analyzer's per-post signal names.
func analysisTypesFor(t common.AnalysisType) []string {
	switch t {
	case common.TypeSentiment:
		return []string{"sentiment"}
	case common.TypeEmotion:
		return []string{"emotion"}
	case common.TypeSummarization:
		return []string{"summary"}
	case common.TypeTopicModeling:
		return []string{"topics"}
	case common.TypeKeywordExtraction:
		return []string{"keywords"}
	case common.TypeEntityRecognition:
		return []string{"entities"}
	case common.TypeFull:
		return []string{"sentiment", "emotion", "keywords", "entities", "topics", "summary"}
	}
	return []string{"sentiment"}
}

func (o *Orchestrator) batchConfig(a *common.Analysis) map[string]any {
	config := make(map[string]any)
	if len(a.Config) > 0 {
		// Best effort; an unreadable config falls back to the defaults.
		_ = json.Unmarshal(a.Config, &config)
	}
	types := analysisTypesFor(a.AnalysisType)
	anyTypes := make([]any, len(types))
	for i, typ := range types {
		anyTypes[i] = typ
	}
	config["analysis_types"] = anyTypes
	return config
}

// cancelledError aborts the poll loop when the job was cancelled externally.
type cancelledError struct{}

func (*cancelledError) Error() string { return "analysis cancelled" }

func (o *Orchestrator) awaitBatch(ctx context.Context, analysisID int64, taskID string) (*brain.BatchResult, error) {
	deadline := time.Now().Add(o.pollTimeout)
	ticker := time.NewTicker(o.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
		if time.Now().After(deadline) {
			return nil, errors.New("analyzer batch timed out")
		}

		current, err := o.analyses.Get(ctx, analysisID)
		if err != nil {
			return nil, err
		}
		if current.Status == common.StatusCancelled {
			return nil, &cancelledError{}
		}

		status, err := o.brain.GetBatchStatus(ctx, taskID)
		if err != nil {
			var brainErr *brain.Error
			if errors.As(err, &brainErr) && brainErr.Kind == brain.KindTimeout {
				continue
			}
			return nil, err
		}

		progress := util.SubmissionProgress(status.Progress)
		if err := o.analyses.SetProgress(ctx, analysisID, progress); err != nil {
			return nil, err
		}
		o.cache.SetProgress(ctx, analysisID, cache.Progress{Progress: progress, Status: common.StatusProcessing}, 0)

		switch status.Status {
		case brain.BatchCompleted:
			return o.brain.GetBatchResult(ctx, taskID)
		case brain.BatchFailed:
			return nil, errors.New("analyzer reported batch failure")
		}
	}
}

// cancelCheckEvery is how many rows get written between looks at the job's
// status, so a cancel lands mid-batch without a per-item read.
const cancelCheckEvery = 50

// storeResults persists the analyzer output and returns the mapped rows.
// Storage is best-effort per item: a row that fails to persist is logged
// and skipped, one bad item never fails the batch. Duplicate (post,
// analysis) pairs from a re-run are skipped by the store. A cancellation
// observed mid-loop abandons the remaining writes.
func (o *Orchestrator) storeResults(ctx context.Context, a *common.Analysis, posts []common.Post, results []brain.TextResult) ([]common.AnalysisResult, error) {
	total := len(results)
	stored := make([]common.AnalysisResult, 0, total)

	for i, textResult := range results {
		if i%cancelCheckEvery == 0 {
			current, err := o.analyses.Get(ctx, a.ID)
			if err == nil && current.Status == common.StatusCancelled {
				return nil, &cancelledError{}
			}
		}

		postID, err := strconv.ParseInt(textResult.TextID, 10, 64)
		if err != nil {
			logger.Warn("skipping result with invalid post id", "analysis_id", a.ID, "text_id", textResult.TextID)
			continue
		}

		result := mapResult(a.ID, postID, textResult)
		if _, err := o.results.Insert(ctx, &result); err != nil {
			logger.Warn("skipping result that failed to store", "analysis_id", a.ID, "post_id", postID, "error", err)
			continue
		}
		if err := o.posts.MarkProcessed(ctx, postID, ""); err != nil && !errors.Is(err, store.ErrNotFound) {
			logger.Warn("could not mark post processed", "analysis_id", a.ID, "post_id", postID, "error", err)
		}
		stored = append(stored, result)

		progress := util.StorageProgress(i+1, total)
		if err := o.analyses.SetProgress(ctx, a.ID, progress); err != nil {
			return nil, err
		}
		o.cache.SetProgress(ctx, a.ID, cache.Progress{Progress: progress, Status: common.StatusProcessing}, 0)
	}
	return stored, nil
}

// mapResult converts one analyzer payload into the stored row shape.
func mapResult(analysisID, postID int64, r brain.TextResult) common.AnalysisResult {
	result := common.AnalysisResult{
		PostID:          postID,
		AnalysisID:      analysisID,
		Emotions:        r.Emotions,
		DominantEmotion: r.DominantEmotion,
		Summary:         r.Summary,
		Keywords:        r.Keywords,
		RawResults:      r.Raw(),
	}
	if r.Sentiment != nil {
		score := r.Sentiment.Score
		confidence := r.Sentiment.Confidence
		result.SentimentLabel = r.Sentiment.Label
		result.SentimentScore = &score
		result.SentimentConfidence = &confidence
	}
	for _, topic := range r.Topics {
		result.Topics = append(result.Topics, common.Topic{Topic: topic.Topic, Score: topic.Score})
	}
	for _, entity := range r.Entities {
		result.Entities = append(result.Entities, common.Entity{
			Text: entity.Text, Type: entity.Type, Start: entity.Start, End: entity.End,
		})
	}
	return result
}

func (o *Orchestrator) fail(ctx context.Context, id int64, message string) error {
	now := time.Now()
	message = util.TruncateText(message, 500)
	if _, err := o.analyses.UpdateStatus(ctx, id, store.StatusUpdate{
		Status:       common.StatusFailed,
		ErrorMessage: &message,
		CompletedAt:  &now,
	}); err != nil {
		return err
	}
	o.cache.SetProgress(ctx, id, cache.Progress{Status: common.StatusFailed}, 0)
	logger.Error("analysis failed", "analysis_id", id, "error", message)
	return nil
}

func (o *Orchestrator) complete(ctx context.Context, id int64, summary *common.AnalysisSummary) error {
	now := time.Now()
	done := util.ProgressDone
	if _, err := o.analyses.UpdateStatus(ctx, id, store.StatusUpdate{
		Status:      common.StatusCompleted,
		Progress:    &done,
		CompletedAt: &now,
	}); err != nil {
		return err
	}
	o.cache.SetProgress(ctx, id, cache.Progress{Progress: util.ProgressDone, Status: common.StatusCompleted}, 0)

	processed := 0
	if summary != nil {
		processed = summary.ProcessedPosts
	}
	logger.Info("analysis completed", "analysis_id", id, "results", processed)
	return nil
}
