package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/rasadhq/rasad/pkg/brain"
	"github.com/rasadhq/rasad/pkg/cache"
	"github.com/rasadhq/rasad/pkg/common"
	"github.com/rasadhq/rasad/pkg/store"
)

type fakeAnalysisStore struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]*common.Analysis
}

func newFakeAnalysisStore() *fakeAnalysisStore {
	return &fakeAnalysisStore{rows: make(map[int64]*common.Analysis)}
}

func (f *fakeAnalysisStore) Create(_ context.Context, a *common.Analysis) (*common.Analysis, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	clone := *a
	clone.ID = f.nextID
	clone.Status = common.StatusPending
	f.rows[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (f *fakeAnalysisStore) Get(_ context.Context, id int64) (*common.Analysis, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.rows[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := *a
	return &out, nil
}

func (f *fakeAnalysisStore) List(context.Context, store.AnalysisFilter, int, int) ([]common.Analysis, error) {
	return nil, nil
}

func (f *fakeAnalysisStore) GetPending(context.Context, int) ([]common.Analysis, error) {
	return nil, nil
}

func (f *fakeAnalysisStore) UpdateStatus(_ context.Context, id int64, upd store.StatusUpdate) (*common.Analysis, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.rows[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	a.Status = upd.Status
	if upd.Progress != nil {
		a.Progress = *upd.Progress
	}
	if upd.ErrorMessage != nil {
		a.ErrorMessage = *upd.ErrorMessage
	}
	if upd.StartedAt != nil {
		a.StartedAt = upd.StartedAt
	}
	if upd.CompletedAt != nil {
		a.CompletedAt = upd.CompletedAt
	}
	out := *a
	return &out, nil
}

func (f *fakeAnalysisStore) Claim(_ context.Context, id int64) (*common.Analysis, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.rows[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if a.Status != common.StatusPending && a.Status != common.StatusQueued {
		return nil, store.ErrNotClaimable
	}
	a.Status = common.StatusProcessing
	out := *a
	return &out, nil
}

func (f *fakeAnalysisStore) SetProgress(_ context.Context, id int64, progress float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.rows[id]
	if !ok {
		return store.ErrNotFound
	}
	if progress > a.Progress {
		a.Progress = progress
	}
	return nil
}

func (f *fakeAnalysisStore) SetSummary(_ context.Context, id int64, summary json.RawMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.rows[id]
	if !ok {
		return store.ErrNotFound
	}
	a.Summary = summary
	return nil
}

func (f *fakeAnalysisStore) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeAnalysisStore) Stats(context.Context) (*store.AnalysisStats, error) {
	return &store.AnalysisStats{}, nil
}

type fakeResultStore struct {
	mu         sync.Mutex
	rows       []common.AnalysisResult
	insertErrs map[int64]error
	onInsert   func(stored int)
}

func (f *fakeResultStore) Insert(_ context.Context, r *common.AnalysisResult) (bool, error) {
	f.mu.Lock()
	if err, ok := f.insertErrs[r.PostID]; ok {
		f.mu.Unlock()
		return false, err
	}
	for _, existing := range f.rows {
		if existing.PostID == r.PostID && existing.AnalysisID == r.AnalysisID {
			f.mu.Unlock()
			return false, nil
		}
	}
	f.rows = append(f.rows, *r)
	stored := len(f.rows)
	f.mu.Unlock()
	if f.onInsert != nil {
		f.onInsert(stored)
	}
	return true, nil
}

func (f *fakeResultStore) ListByAnalysis(_ context.Context, analysisID int64, _, _ int) ([]common.AnalysisResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []common.AnalysisResult
	for _, r := range f.rows {
		if r.AnalysisID == analysisID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeResultStore) CountByAnalysis(_ context.Context, analysisID int64) (int, error) {
	rows, _ := f.ListByAnalysis(context.Background(), analysisID, 0, 0)
	return len(rows), nil
}

func (f *fakeResultStore) DeleteByAnalysis(_ context.Context, analysisID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.rows[:0]
	for _, r := range f.rows {
		if r.AnalysisID != analysisID {
			kept = append(kept, r)
		}
	}
	f.rows = kept
	return nil
}

func (f *fakeResultStore) DeleteOlderThan(context.Context, time.Time) (int64, error) {
	return 0, nil
}

type fakePostStore struct {
	mu        sync.Mutex
	posts     []common.Post
	processed map[int64]bool
}

func (f *fakePostStore) Create(_ context.Context, p *common.Post) (*common.Post, error) {
	return p, nil
}

func (f *fakePostStore) Get(context.Context, int64) (*common.Post, error) {
	return nil, store.ErrNotFound
}

func (f *fakePostStore) GetByPlatformID(context.Context, string) (*common.Post, error) {
	return nil, store.ErrNotFound
}

func (f *fakePostStore) Filter(_ context.Context, _ store.PostFilter, _, limit int) ([]common.Post, error) {
	if limit > 0 && len(f.posts) > limit {
		return f.posts[:limit], nil
	}
	return f.posts, nil
}

func (f *fakePostStore) MarkProcessed(_ context.Context, id int64, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.processed == nil {
		f.processed = make(map[int64]bool)
	}
	f.processed[id] = true
	return nil
}

func (f *fakePostStore) ListSince(context.Context, time.Time, int) ([]common.Post, error) {
	return nil, nil
}

func (f *fakePostStore) CountWithHashtagSince(context.Context, string, time.Time) (int, error) {
	return 0, nil
}

func (f *fakePostStore) Stats(context.Context) (*store.PostStats, error) {
	return &store.PostStats{}, nil
}

type fakeBrain struct {
	available bool
	results   []brain.TextResult
	failBatch bool
	onPoll    func(polls int)

	mu        sync.Mutex
	submitted int
	polls     int
}

func (f *fakeBrain) IsAvailable(context.Context) bool { return f.available }

func (f *fakeBrain) SubmitBatch(_ context.Context, _ int64, _ []brain.BatchPost, _ map[string]any) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitted++
	return "task-1", nil
}

func (f *fakeBrain) GetBatchStatus(_ context.Context, taskID string) (*brain.BatchStatus, error) {
	f.mu.Lock()
	f.polls++
	polls := f.polls
	f.mu.Unlock()

	if f.onPoll != nil {
		f.onPoll(polls)
	}

	status := brain.BatchCompleted
	if f.failBatch {
		status = brain.BatchFailed
	}
	if polls < 2 {
		return &brain.BatchStatus{TaskID: taskID, Status: brain.BatchProcessing, Progress: 50}, nil
	}
	return &brain.BatchStatus{TaskID: taskID, Status: status, Progress: 100}, nil
}

func (f *fakeBrain) GetBatchResult(_ context.Context, taskID string) (*brain.BatchResult, error) {
	return &brain.BatchResult{TaskID: taskID, Status: brain.BatchCompleted, Results: f.results}, nil
}

type fakeEnqueuer struct {
	mu  sync.Mutex
	ids []int64
}

func (f *fakeEnqueuer) EnqueueAnalysis(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ids = append(f.ids, id)
	return nil
}

type fixture struct {
	analyses *fakeAnalysisStore
	results  *fakeResultStore
	posts    *fakePostStore
	brain    *fakeBrain
	enqueuer *fakeEnqueuer
	orch     *Orchestrator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		analyses: newFakeAnalysisStore(),
		results:  &fakeResultStore{},
		posts:    &fakePostStore{},
		brain:    &fakeBrain{available: true},
		enqueuer: &fakeEnqueuer{},
	}
	f.orch = NewOrchestrator(OrchestratorParams{
		Analyses:     f.analyses,
		Results:      f.results,
		Posts:        f.posts,
		Brain:        f.brain,
		Cache:        cache.Noop{},
		Enqueuer:     f.enqueuer,
		PollInterval: time.Millisecond,
		PollTimeout:  time.Second,
	})
	return f
}

func score(v float64) *brain.Sentiment {
	return &brain.Sentiment{Label: "positive", Score: v, Confidence: 0.9}
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		params CreateParams
		field  string
	}{
		{name: "empty name", params: CreateParams{AnalysisType: common.TypeSentiment}, field: "name"},
		{name: "bad type", params: CreateParams{Name: "x", AnalysisType: "bogus"}, field: "analysis_type"},
		{name: "negative count", params: CreateParams{Name: "x", AnalysisType: common.TypeSentiment, PostCount: -1}, field: "post_count"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.orch.Create(ctx, tt.params)
			var valErr *ValidationError
			if !errors.As(err, &valErr) || valErr.Field != tt.field {
				t.Fatalf("error = %v, want validation error on %s", err, tt.field)
			}
		})
	}
}

func TestStartQueuesJob(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, err := f.orch.Create(ctx, CreateParams{Name: "run", AnalysisType: common.TypeSentiment, UserID: 1})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	started, err := f.orch.Start(ctx, a.ID)
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if started.Status != common.StatusQueued {
		t.Errorf("status = %s, want queued", started.Status)
	}
	if len(f.enqueuer.ids) != 1 || f.enqueuer.ids[0] != a.ID {
		t.Errorf("enqueued = %v, want [%d]", f.enqueuer.ids, a.ID)
	}
}

func TestStartRejectsRunningJob(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, _ := f.orch.Create(ctx, CreateParams{Name: "run", AnalysisType: common.TypeSentiment})
	f.analyses.UpdateStatus(ctx, a.ID, store.StatusUpdate{Status: common.StatusProcessing})

	_, err := f.orch.Start(ctx, a.ID)
	var stateErr *InvalidStateError
	if !errors.As(err, &stateErr) {
		t.Fatalf("error = %v, want InvalidStateError", err)
	}
}

func TestStartResetsFailedJob(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, _ := f.orch.Create(ctx, CreateParams{Name: "run", AnalysisType: common.TypeSentiment})
	message := "boom"
	progress := 30.0
	f.analyses.UpdateStatus(ctx, a.ID, store.StatusUpdate{
		Status: common.StatusFailed, ErrorMessage: &message, Progress: &progress,
	})

	started, err := f.orch.Start(ctx, a.ID)
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if started.ErrorMessage != "" || started.Progress != 0 {
		t.Errorf("retry did not reset: error=%q progress=%v", started.ErrorMessage, started.Progress)
	}
}

func TestCancelTerminalJob(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, _ := f.orch.Create(ctx, CreateParams{Name: "run", AnalysisType: common.TypeSentiment})
	f.analyses.UpdateStatus(ctx, a.ID, store.StatusUpdate{Status: common.StatusCompleted})

	_, err := f.orch.Cancel(ctx, a.ID)
	var stateErr *InvalidStateError
	if !errors.As(err, &stateErr) {
		t.Fatalf("error = %v, want InvalidStateError", err)
	}
}

func TestProcessHappyPath(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.posts.posts = []common.Post{
		{ID: 1, Content: "متن اول"},
		{ID: 2, Content: "متن دوم"},
	}
	f.brain.results = []brain.TextResult{
		{TextID: "1", Sentiment: score(0.8), Keywords: []string{"اقتصاد"}},
		{TextID: "2", Sentiment: score(0.4), Keywords: []string{"اقتصاد", "بورس"}},
	}

	a, _ := f.orch.Create(ctx, CreateParams{Name: "run", AnalysisType: common.TypeSentiment})
	f.orch.Start(ctx, a.ID)

	if err := f.orch.Process(ctx, a.ID); err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	final, _ := f.analyses.Get(ctx, a.ID)
	if final.Status != common.StatusCompleted {
		t.Fatalf("status = %s (%s), want completed", final.Status, final.ErrorMessage)
	}
	if final.Progress != 100 {
		t.Errorf("progress = %v, want 100", final.Progress)
	}
	if final.CompletedAt == nil || final.StartedAt == nil {
		t.Error("timestamps not set")
	}

	if len(f.results.rows) != 2 {
		t.Fatalf("stored %d results, want 2", len(f.results.rows))
	}
	if !f.posts.processed[1] || !f.posts.processed[2] {
		t.Errorf("posts not marked processed: %v", f.posts.processed)
	}

	var summary common.AnalysisSummary
	if err := json.Unmarshal(final.Summary, &summary); err != nil {
		t.Fatalf("summary unmarshal: %v", err)
	}
	if summary.ProcessedPosts != 2 || summary.SentimentDistribution["positive"] != 2 {
		t.Errorf("summary = %+v", summary)
	}
	if summary.TopKeywords[0].Keyword != "اقتصاد" || summary.TopKeywords[0].Count != 2 {
		t.Errorf("top keywords = %+v", summary.TopKeywords)
	}
}

func TestProcessNoMatchingPosts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, _ := f.orch.Create(ctx, CreateParams{Name: "run", AnalysisType: common.TypeSentiment})
	f.orch.Start(ctx, a.ID)

	if err := f.orch.Process(ctx, a.ID); err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	final, _ := f.analyses.Get(ctx, a.ID)
	if final.Status != common.StatusFailed {
		t.Fatalf("status = %s, want failed", final.Status)
	}
	if final.ErrorMessage == "" {
		t.Error("missing error message")
	}
}

func TestProcessAnalyzerUnavailable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.posts.posts = []common.Post{{ID: 1, Content: "متن"}}
	f.brain.available = false

	a, _ := f.orch.Create(ctx, CreateParams{Name: "run", AnalysisType: common.TypeSentiment})
	f.orch.Start(ctx, a.ID)

	if err := f.orch.Process(ctx, a.ID); err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	final, _ := f.analyses.Get(ctx, a.ID)
	if final.Status != common.StatusFailed {
		t.Errorf("status = %s, want failed", final.Status)
	}
	if f.brain.submitted != 0 {
		t.Errorf("submitted %d batches to an unavailable analyzer", f.brain.submitted)
	}
}

func TestProcessBatchFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.posts.posts = []common.Post{{ID: 1, Content: "متن"}}
	f.brain.failBatch = true

	a, _ := f.orch.Create(ctx, CreateParams{Name: "run", AnalysisType: common.TypeSentiment})
	f.orch.Start(ctx, a.ID)

	if err := f.orch.Process(ctx, a.ID); err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	final, _ := f.analyses.Get(ctx, a.ID)
	if final.Status != common.StatusFailed {
		t.Errorf("status = %s, want failed", final.Status)
	}
}

func TestProcessLosesClaimRace(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, _ := f.orch.Create(ctx, CreateParams{Name: "run", AnalysisType: common.TypeSentiment})
	f.analyses.UpdateStatus(ctx, a.ID, store.StatusUpdate{Status: common.StatusProcessing})

	if err := f.orch.Process(ctx, a.ID); err != nil {
		t.Fatalf("Process() error = %v, want nil for lost claim", err)
	}
	if f.brain.submitted != 0 {
		t.Error("lost claim still submitted a batch")
	}
}

func TestProcessReRunSkipsExistingResults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.posts.posts = []common.Post{{ID: 1, Content: "متن"}}
	f.brain.results = []brain.TextResult{{TextID: "1", Sentiment: score(0.5)}}
	f.results.rows = []common.AnalysisResult{{PostID: 1, AnalysisID: 1, SentimentLabel: "negative"}}

	a, _ := f.orch.Create(ctx, CreateParams{Name: "run", AnalysisType: common.TypeSentiment})
	f.orch.Start(ctx, a.ID)

	if err := f.orch.Process(ctx, a.ID); err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if len(f.results.rows) != 1 {
		t.Fatalf("stored %d results, want 1 (duplicate skipped)", len(f.results.rows))
	}
	if f.results.rows[0].SentimentLabel != "negative" {
		t.Error("existing result was overwritten")
	}
}

func TestProcessSkipsFailedResultWrites(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.posts.posts = []common.Post{
		{ID: 1, Content: "متن اول"},
		{ID: 2, Content: "متن دوم"},
		{ID: 3, Content: "متن سوم"},
	}
	f.brain.results = []brain.TextResult{
		{TextID: "1", Sentiment: score(0.8)},
		{TextID: "2", Sentiment: score(0.4)},
		{TextID: "3", Sentiment: score(0.1)},
	}
	f.results.insertErrs = map[int64]error{2: errors.New("value too long for column summary")}

	a, _ := f.orch.Create(ctx, CreateParams{Name: "run", AnalysisType: common.TypeSentiment})
	f.orch.Start(ctx, a.ID)

	if err := f.orch.Process(ctx, a.ID); err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	final, _ := f.analyses.Get(ctx, a.ID)
	if final.Status != common.StatusCompleted {
		t.Fatalf("status = %s (%s), want completed with the bad row skipped", final.Status, final.ErrorMessage)
	}
	if len(f.results.rows) != 2 {
		t.Fatalf("stored %d results, want 2", len(f.results.rows))
	}
	if f.posts.processed[2] {
		t.Error("post whose result failed to store was marked processed")
	}

	var summary common.AnalysisSummary
	if err := json.Unmarshal(final.Summary, &summary); err != nil {
		t.Fatalf("summary unmarshal: %v", err)
	}
	if summary.ProcessedPosts != 2 || summary.TotalPosts != 3 {
		t.Errorf("summary counts = %d/%d, want 2/3", summary.ProcessedPosts, summary.TotalPosts)
	}
}

func TestProcessCancelledDuringPolling(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.posts.posts = []common.Post{{ID: 1, Content: "متن"}}
	f.brain.results = []brain.TextResult{{TextID: "1", Sentiment: score(0.5)}}

	a, _ := f.orch.Create(ctx, CreateParams{Name: "run", AnalysisType: common.TypeSentiment})
	f.orch.Start(ctx, a.ID)

	f.brain.onPoll = func(polls int) {
		if polls == 1 {
			f.analyses.UpdateStatus(ctx, a.ID, store.StatusUpdate{Status: common.StatusCancelled})
		}
	}

	if err := f.orch.Process(ctx, a.ID); err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	final, _ := f.analyses.Get(ctx, a.ID)
	if final.Status != common.StatusCancelled {
		t.Fatalf("status = %s, want cancelled to stick", final.Status)
	}
	if len(f.results.rows) != 0 {
		t.Errorf("stored %d results after cancellation, want 0", len(f.results.rows))
	}
}

func TestProcessCancelledBeforeStoringResults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.posts.posts = []common.Post{{ID: 1, Content: "متن"}}
	f.brain.results = []brain.TextResult{{TextID: "1", Sentiment: score(0.5)}}

	a, _ := f.orch.Create(ctx, CreateParams{Name: "run", AnalysisType: common.TypeSentiment})
	f.orch.Start(ctx, a.ID)

	// Cancel lands on the poll that reports the batch completed, after the
	// poll loop's own status check has passed.
	f.brain.onPoll = func(polls int) {
		if polls == 2 {
			f.analyses.UpdateStatus(ctx, a.ID, store.StatusUpdate{Status: common.StatusCancelled})
		}
	}

	if err := f.orch.Process(ctx, a.ID); err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	final, _ := f.analyses.Get(ctx, a.ID)
	if final.Status != common.StatusCancelled {
		t.Fatalf("status = %s, want cancelled to stick", final.Status)
	}
	if len(f.results.rows) != 0 {
		t.Errorf("stored %d results after cancellation, want 0", len(f.results.rows))
	}
}

func TestProcessCancelMidStorageAbandonsRemainingWrites(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var posts []common.Post
	var results []brain.TextResult
	for i := int64(1); i <= cancelCheckEvery+1; i++ {
		posts = append(posts, common.Post{ID: i, Content: "متن"})
		results = append(results, brain.TextResult{TextID: strconv.FormatInt(i, 10), Sentiment: score(0.5)})
	}
	f.posts.posts = posts
	f.brain.results = results

	a, _ := f.orch.Create(ctx, CreateParams{Name: "run", AnalysisType: common.TypeSentiment})
	f.orch.Start(ctx, a.ID)

	f.results.onInsert = func(stored int) {
		if stored == 10 {
			f.analyses.UpdateStatus(ctx, a.ID, store.StatusUpdate{Status: common.StatusCancelled})
		}
	}

	if err := f.orch.Process(ctx, a.ID); err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	final, _ := f.analyses.Get(ctx, a.ID)
	if final.Status != common.StatusCancelled {
		t.Fatalf("status = %s, want cancelled to stick", final.Status)
	}
	if len(f.results.rows) != cancelCheckEvery {
		t.Errorf("stored %d results, want writing to stop at the %d-row status check", len(f.results.rows), cancelCheckEvery)
	}
	if final.Summary != nil {
		t.Error("summary written for a cancelled job")
	}
}

func TestProgressFallsBackToStore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, _ := f.orch.Create(ctx, CreateParams{Name: "run", AnalysisType: common.TypeSentiment})
	progress := 42.0
	f.analyses.UpdateStatus(ctx, a.ID, store.StatusUpdate{Status: common.StatusProcessing, Progress: &progress})

	p, err := f.orch.Progress(ctx, a.ID)
	if err != nil {
		t.Fatalf("Progress() error = %v", err)
	}
	if p.Progress != 42 || p.Status != common.StatusProcessing {
		t.Errorf("progress = %+v", p)
	}
}

func TestGetSummaryNotReady(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, _ := f.orch.Create(ctx, CreateParams{Name: "run", AnalysisType: common.TypeSentiment})
	_, err := f.orch.GetSummary(ctx, a.ID)
	if !errors.Is(err, ErrNoSummary) {
		t.Fatalf("error = %v, want ErrNoSummary", err)
	}
}

func TestDeleteProcessingJob(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, _ := f.orch.Create(ctx, CreateParams{Name: "run", AnalysisType: common.TypeSentiment})
	f.analyses.UpdateStatus(ctx, a.ID, store.StatusUpdate{Status: common.StatusProcessing})

	err := f.orch.Delete(ctx, a.ID)
	var stateErr *InvalidStateError
	if !errors.As(err, &stateErr) {
		t.Fatalf("error = %v, want InvalidStateError", err)
	}
}
