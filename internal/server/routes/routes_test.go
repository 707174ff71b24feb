package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"

	"github.com/rasadhq/rasad/internal/server/middleware"
	"github.com/rasadhq/rasad/pkg/analysis"
	"github.com/rasadhq/rasad/pkg/common"
	"github.com/rasadhq/rasad/pkg/store"
)

type testValidator struct {
	validator *validator.Validate
}

func (v *testValidator) Validate(i any) error {
	return v.validator.Struct(i)
}

type fakeAnalysisStore struct {
	nextID int64
	rows   map[int64]*common.Analysis
}

func newFakeAnalysisStore() *fakeAnalysisStore {
	return &fakeAnalysisStore{rows: make(map[int64]*common.Analysis)}
}

func (s *fakeAnalysisStore) Create(_ context.Context, a *common.Analysis) (*common.Analysis, error) {
	s.nextID++
	row := *a
	row.ID = s.nextID
	row.Status = common.StatusPending
	row.CreatedAt = time.Now()
	row.UpdatedAt = row.CreatedAt
	s.rows[row.ID] = &row
	out := row
	return &out, nil
}

func (s *fakeAnalysisStore) Get(_ context.Context, id int64) (*common.Analysis, error) {
	row, ok := s.rows[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := *row
	return &out, nil
}

func (s *fakeAnalysisStore) List(_ context.Context, filter store.AnalysisFilter, _, _ int) ([]common.Analysis, error) {
	out := make([]common.Analysis, 0)
	for _, row := range s.rows {
		if filter.Status != "" && row.Status != filter.Status {
			continue
		}
		out = append(out, *row)
	}
	return out, nil
}

func (s *fakeAnalysisStore) GetPending(_ context.Context, _ int) ([]common.Analysis, error) {
	return nil, nil
}

func (s *fakeAnalysisStore) UpdateStatus(_ context.Context, id int64, upd store.StatusUpdate) (*common.Analysis, error) {
	row, ok := s.rows[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	row.Status = upd.Status
	if upd.Progress != nil {
		row.Progress = *upd.Progress
	}
	if upd.ErrorMessage != nil {
		row.ErrorMessage = *upd.ErrorMessage
	}
	if upd.StartedAt != nil {
		row.StartedAt = upd.StartedAt
	}
	if upd.CompletedAt != nil {
		row.CompletedAt = upd.CompletedAt
	}
	out := *row
	return &out, nil
}

func (s *fakeAnalysisStore) Claim(_ context.Context, id int64) (*common.Analysis, error) {
	return nil, store.ErrNotClaimable
}

func (s *fakeAnalysisStore) SetProgress(_ context.Context, id int64, progress float64) error {
	row, ok := s.rows[id]
	if !ok {
		return store.ErrNotFound
	}
	if progress > row.Progress {
		row.Progress = progress
	}
	return nil
}

func (s *fakeAnalysisStore) SetSummary(_ context.Context, id int64, summary json.RawMessage) error {
	row, ok := s.rows[id]
	if !ok {
		return store.ErrNotFound
	}
	row.Summary = summary
	return nil
}

func (s *fakeAnalysisStore) Delete(_ context.Context, id int64) error {
	if _, ok := s.rows[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.rows, id)
	return nil
}

func (s *fakeAnalysisStore) Stats(_ context.Context) (*store.AnalysisStats, error) {
	stats := &store.AnalysisStats{
		ByStatus: make(map[string]int),
		ByType:   make(map[string]int),
	}
	for _, row := range s.rows {
		stats.Total++
		stats.ByStatus[string(row.Status)]++
		stats.ByType[string(row.AnalysisType)]++
	}
	return stats, nil
}

type fakeResultStore struct{}

func (fakeResultStore) Insert(_ context.Context, _ *common.AnalysisResult) (bool, error) {
	return true, nil
}

func (fakeResultStore) ListByAnalysis(_ context.Context, _ int64, _, _ int) ([]common.AnalysisResult, error) {
	return []common.AnalysisResult{}, nil
}

func (fakeResultStore) CountByAnalysis(_ context.Context, _ int64) (int, error) { return 0, nil }

func (fakeResultStore) DeleteByAnalysis(_ context.Context, _ int64) error { return nil }

func (fakeResultStore) DeleteOlderThan(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

type fakePostStore struct {
	nextID int64
	rows   map[string]*common.Post
}

func newFakePostStore() *fakePostStore {
	return &fakePostStore{rows: make(map[string]*common.Post)}
}

func (s *fakePostStore) Create(_ context.Context, p *common.Post) (*common.Post, error) {
	s.nextID++
	row := *p
	row.ID = s.nextID
	s.rows[row.PlatformID] = &row
	out := row
	return &out, nil
}

func (s *fakePostStore) Get(_ context.Context, id int64) (*common.Post, error) {
	for _, row := range s.rows {
		if row.ID == id {
			out := *row
			return &out, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *fakePostStore) GetByPlatformID(_ context.Context, platformID string) (*common.Post, error) {
	row, ok := s.rows[platformID]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := *row
	return &out, nil
}

func (s *fakePostStore) Filter(_ context.Context, _ store.PostFilter, _, _ int) ([]common.Post, error) {
	out := make([]common.Post, 0, len(s.rows))
	for _, row := range s.rows {
		out = append(out, *row)
	}
	return out, nil
}

func (s *fakePostStore) MarkProcessed(_ context.Context, _ int64, _ string) error { return nil }

func (s *fakePostStore) ListSince(_ context.Context, _ time.Time, _ int) ([]common.Post, error) {
	return nil, nil
}

func (s *fakePostStore) CountWithHashtagSince(_ context.Context, _ string, _ time.Time) (int, error) {
	return 0, nil
}

func (s *fakePostStore) Stats(_ context.Context) (*store.PostStats, error) {
	return &store.PostStats{
		Total:      len(s.rows),
		ByPlatform: map[string]int{},
		ByLanguage: map[string]int{},
	}, nil
}

type fakeDashboardStore struct {
	rows map[int64]*common.Dashboard
}

func (s *fakeDashboardStore) Create(_ context.Context, d *common.Dashboard) (*common.Dashboard, error) {
	out := *d
	return &out, nil
}

func (s *fakeDashboardStore) Get(_ context.Context, id int64) (*common.Dashboard, error) {
	row, ok := s.rows[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := *row
	return &out, nil
}

func (s *fakeDashboardStore) ListByUser(_ context.Context, _ int64, _, _ int) ([]common.Dashboard, error) {
	return nil, nil
}

func (s *fakeDashboardStore) Update(_ context.Context, d *common.Dashboard) (*common.Dashboard, error) {
	out := *d
	return &out, nil
}

func (s *fakeDashboardStore) Delete(_ context.Context, _ int64) error { return nil }

type fakeEnqueuer struct {
	queued []int64
}

func (f *fakeEnqueuer) EnqueueAnalysis(_ context.Context, analysisID int64) error {
	f.queued = append(f.queued, analysisID)
	return nil
}

type fixture struct {
	e        *echo.Echo
	app      *middleware.App
	analyses *fakeAnalysisStore
	posts    *fakePostStore
	enqueuer *fakeEnqueuer
}

func newFixture() *fixture {
	e := echo.New()
	e.Validator = &testValidator{validator: validator.New()}

	analyses := newFakeAnalysisStore()
	posts := newFakePostStore()
	enqueuer := &fakeEnqueuer{}

	orch := analysis.NewOrchestrator(analysis.OrchestratorParams{
		Analyses: analyses,
		Results:  fakeResultStore{},
		Posts:    posts,
		Enqueuer: enqueuer,
	})

	app := &middleware.App{
		Analyses:     analyses,
		Results:      fakeResultStore{},
		Posts:        posts,
		Dashboards:   &fakeDashboardStore{rows: make(map[int64]*common.Dashboard)},
		Orchestrator: orch,
	}

	return &fixture{e: e, app: app, analyses: analyses, posts: posts, enqueuer: enqueuer}
}

func (f *fixture) request(method, target, body string, userID int64) (*httptest.ResponseRecorder, echo.Context) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := f.e.NewContext(req, rec)
	cc := &middleware.AppContext{Context: c, App: f.app, UserID: userID}
	return rec, cc
}

func TestCreateAnalysisHandler(t *testing.T) {
	f := newFixture()
	rec, c := f.request(http.MethodPost, "/api/analyses", `{"name":"sentiment run","analysis_type":"sentiment"}`, 7)

	if err := CreateAnalysisHandler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusCreated)
	}

	var resp struct {
		Analysis *common.Analysis `json:"analysis"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Analysis == nil || resp.Analysis.ID == 0 {
		t.Fatal("expected created analysis with id")
	}
	if resp.Analysis.Status != common.StatusPending {
		t.Errorf("status = %q, want pending", resp.Analysis.Status)
	}
	if resp.Analysis.UserID != 7 {
		t.Errorf("user id = %d, want 7", resp.Analysis.UserID)
	}
}

func TestCreateAnalysisHandlerRejectsUnknownType(t *testing.T) {
	f := newFixture()
	rec, c := f.request(http.MethodPost, "/api/analyses", `{"name":"x","analysis_type":"astrology"}`, 0)

	if err := CreateAnalysisHandler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestStartAnalysisHandlerQueuesJob(t *testing.T) {
	f := newFixture()
	created, _ := f.analyses.Create(context.Background(), &common.Analysis{
		Name: "run", AnalysisType: common.TypeSentiment,
	})

	rec, c := f.request(http.MethodPost, "/api/analyses/1/start", "", 0)
	c.SetParamNames("id")
	c.SetParamValues("1")

	if err := StartAnalysisHandler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if len(f.enqueuer.queued) != 1 || f.enqueuer.queued[0] != created.ID {
		t.Fatalf("queued = %v, want [%d]", f.enqueuer.queued, created.ID)
	}
}

func TestStartAnalysisHandlerConflictOnRunningJob(t *testing.T) {
	f := newFixture()
	created, _ := f.analyses.Create(context.Background(), &common.Analysis{
		Name: "run", AnalysisType: common.TypeSentiment,
	})
	f.analyses.rows[created.ID].Status = common.StatusProcessing

	rec, c := f.request(http.MethodPost, "/api/analyses/1/start", "", 0)
	c.SetParamNames("id")
	c.SetParamValues("1")

	if err := StartAnalysisHandler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusConflict)
	}
}

func TestGetAnalysisHandlerNotFound(t *testing.T) {
	f := newFixture()
	rec, c := f.request(http.MethodGet, "/api/analyses/99", "", 0)
	c.SetParamNames("id")
	c.SetParamValues("99")

	if err := GetAnalysisHandler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestIngestPostHandlerIsIdempotent(t *testing.T) {
	f := newFixture()
	body := `{"platform_id":"tw-1","platform":"twitter","content":"سلام دنیا #ایران @user1"}`

	rec, c := f.request(http.MethodPost, "/api/posts", body, 0)
	if err := IngestPostHandler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("first ingest status = %d, want %d", rec.Code, http.StatusCreated)
	}

	var resp struct {
		Post *common.Post `json:"post"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(resp.Post.Hashtags) != 1 || resp.Post.Hashtags[0] != "ایران" {
		t.Errorf("hashtags = %v, want [ایران]", resp.Post.Hashtags)
	}
	if len(resp.Post.Mentions) != 1 || resp.Post.Mentions[0] != "user1" {
		t.Errorf("mentions = %v, want [user1]", resp.Post.Mentions)
	}
	if resp.Post.Language != "fa" {
		t.Errorf("language = %q, want fa", resp.Post.Language)
	}

	rec2, c2 := f.request(http.MethodPost, "/api/posts", body, 0)
	if err := IngestPostHandler(c2); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec2.Code != http.StatusOK {
		t.Fatalf("second ingest status = %d, want %d", rec2.Code, http.StatusOK)
	}
	if len(f.posts.rows) != 1 {
		t.Fatalf("stored posts = %d, want 1", len(f.posts.rows))
	}
}

func TestGetDashboardHandlerHidesPrivateDashboards(t *testing.T) {
	f := newFixture()
	dashboards := f.app.Dashboards.(*fakeDashboardStore)
	dashboards.rows[1] = &common.Dashboard{ID: 1, Name: "ops", UserID: 42, IsPublic: false}

	rec, c := f.request(http.MethodGet, "/api/dashboards/1", "", 7)
	c.SetParamNames("id")
	c.SetParamValues("1")

	if err := GetDashboardHandler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}

	rec2, c2 := f.request(http.MethodGet, "/api/dashboards/1", "", 42)
	c2.SetParamNames("id")
	c2.SetParamValues("1")

	if err := GetDashboardHandler(c2); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec2.Code != http.StatusOK {
		t.Fatalf("owner status = %d, want %d", rec2.Code, http.StatusOK)
	}
}
