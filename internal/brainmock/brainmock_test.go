package brainmock

import (
	"context"
	"math"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/rasadhq/rasad/pkg/brain"
)

func newTestServer(t *testing.T) *brain.Client {
	t.Helper()
	e := echo.New()
	NewServer(ServerParams{Seed: 1, Delay: -1, BatchStepDelay: -1}).Register(e)
	server := httptest.NewServer(e)
	t.Cleanup(server.Close)
	return brain.NewClient(brain.ClientParams{BaseURL: server.URL, Timeout: 10 * time.Second})
}

func TestHealth(t *testing.T) {
	client := newTestServer(t)

	health, err := client.Health(context.Background())
	if err != nil {
		t.Fatalf("Health() error = %v", err)
	}
	if health.Status != "healthy" || health.Mode != "mock" {
		t.Errorf("health = %+v", health)
	}
}

func TestSentimentScoreRanges(t *testing.T) {
	client := newTestServer(t)

	texts := make([]string, 50)
	for i := range texts {
		texts[i] = "متن آزمایشی"
	}
	results, err := client.AnalyzeSentiment(context.Background(), texts, nil)
	if err != nil {
		t.Fatalf("AnalyzeSentiment() error = %v", err)
	}
	if len(results) != len(texts) {
		t.Fatalf("got %d results, want %d", len(results), len(texts))
	}

	for _, result := range results {
		s := result.Sentiment
		if s == nil {
			t.Fatal("missing sentiment")
		}
		switch s.Label {
		case "positive":
			if s.Score < 0.3 || s.Score > 1.0 {
				t.Errorf("positive score %v out of range", s.Score)
			}
		case "negative":
			if s.Score < -1.0 || s.Score > -0.3 {
				t.Errorf("negative score %v out of range", s.Score)
			}
		case "neutral":
			if s.Score < -0.3 || s.Score > 0.3 {
				t.Errorf("neutral score %v out of range", s.Score)
			}
		default:
			t.Errorf("unexpected label %q", s.Label)
		}
		if s.Confidence < 0.7 || s.Confidence > 0.99 {
			t.Errorf("confidence %v out of range", s.Confidence)
		}
	}
}

func TestEmotionsSumToOne(t *testing.T) {
	client := newTestServer(t)

	results, err := client.AnalyzeEmotions(context.Background(), []string{"متن"}, nil)
	if err != nil {
		t.Fatalf("AnalyzeEmotions() error = %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}

	var total float64
	for _, score := range results[0].Emotions {
		total += score
	}
	if math.Abs(total-1.0) > 1e-6 {
		t.Errorf("emotion scores sum to %v, want 1.0", total)
	}
	if _, ok := results[0].Emotions[results[0].DominantEmotion]; !ok {
		t.Errorf("dominant emotion %q not in distribution", results[0].DominantEmotion)
	}
}

func TestTrendsBelowMinimum(t *testing.T) {
	client := newTestServer(t)

	posts := []brain.TrendPost{{ID: 1, Content: "متن"}}
	trends, err := client.DetectTrends(context.Background(), posts, "1h", 10)
	if err != nil {
		t.Fatalf("DetectTrends() error = %v", err)
	}
	if len(trends) != 0 {
		t.Errorf("got %d trends for 1 post with min size 10, want 0", len(trends))
	}
}

func TestCommunityCount(t *testing.T) {
	client := newTestServer(t)

	nodes := make([]brain.GraphNodeRef, 9)
	for i := range nodes {
		nodes[i] = brain.GraphNodeRef{ID: string(rune('a' + i)), Type: "hashtag"}
	}
	result, err := client.DetectCommunities(context.Background(), nodes, nil)
	if err != nil {
		t.Fatalf("DetectCommunities() error = %v", err)
	}
	if want := 9/3 + 1; len(result.Communities) != want {
		t.Errorf("got %d communities, want %d", len(result.Communities), want)
	}
	if len(result.Nodes) != len(nodes) {
		t.Errorf("got %d assignments, want %d", len(result.Nodes), len(nodes))
	}

	var assigned int
	for _, community := range result.Communities {
		assigned += community.Size
	}
	if assigned != len(nodes) {
		t.Errorf("community sizes sum to %d, want %d", assigned, len(nodes))
	}
}

func TestCentralityDegrees(t *testing.T) {
	client := newTestServer(t)

	nodes := []brain.GraphNodeRef{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	edges := []brain.GraphEdgeRef{
		{Source: "a", Target: "b"},
		{Source: "a", Target: "c"},
		{Source: "b", Target: "c"},
	}
	analysis, err := client.AnalyzeGraph(context.Background(), nodes, edges, []string{"centrality"})
	if err != nil {
		t.Fatalf("AnalyzeGraph() error = %v", err)
	}
	byID := make(map[string]brain.NodeRank)
	for _, rank := range analysis.Centrality {
		byID[rank.ID] = rank
	}
	if byID["a"].OutDegree != 2 || byID["a"].InDegree != 0 {
		t.Errorf("node a degrees = %+v", byID["a"])
	}
	if byID["c"].InDegree != 2 || byID["c"].Degree != 2 {
		t.Errorf("node c degrees = %+v", byID["c"])
	}
}

func TestBatchLifecycle(t *testing.T) {
	client := newTestServer(t)

	posts := []brain.BatchPost{
		{ID: 10, Content: "متن اول"},
		{ID: 11, Content: "متن دوم"},
	}
	taskID, err := client.SubmitBatch(context.Background(), 7, posts, nil)
	if err != nil {
		t.Fatalf("SubmitBatch() error = %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	var status *brain.BatchStatus
	for time.Now().Before(deadline) {
		status, err = client.GetBatchStatus(context.Background(), taskID)
		if err != nil {
			t.Fatalf("GetBatchStatus() error = %v", err)
		}
		if status.Status == brain.BatchCompleted {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if status == nil || status.Status != brain.BatchCompleted {
		t.Fatalf("task never completed, last status %+v", status)
	}
	if status.TotalPosts != 2 || status.Progress != 100 {
		t.Errorf("status = %+v", status)
	}

	result, err := client.GetBatchResult(context.Background(), taskID)
	if err != nil {
		t.Fatalf("GetBatchResult() error = %v", err)
	}
	if len(result.Results) != 2 {
		t.Fatalf("got %d results, want 2", len(result.Results))
	}
	if result.Results[0].TextID != "10" || result.Results[1].TextID != "11" {
		t.Errorf("text ids = %q, %q", result.Results[0].TextID, result.Results[1].TextID)
	}
	if result.Results[0].Sentiment == nil || len(result.Results[0].Keywords) == 0 {
		t.Errorf("default analysis types missing from %+v", result.Results[0])
	}
}

func TestBatchUnknownTask(t *testing.T) {
	client := newTestServer(t)

	_, err := client.GetBatchStatus(context.Background(), "no-such-task")
	brainErr, ok := err.(*brain.Error)
	if !ok || brainErr.Kind != brain.KindServiceError || brainErr.StatusCode != 404 {
		t.Fatalf("error = %v, want 404 service error", err)
	}
}

func TestSeededGeneratorIsDeterministic(t *testing.T) {
	a := newGenerator(42)
	b := newGenerator(42)

	for i := 0; i < 10; i++ {
		if got, want := a.sentiment(), b.sentiment(); *got != *want {
			t.Fatalf("sequence diverged at %d: %+v vs %+v", i, got, want)
		}
	}
}
