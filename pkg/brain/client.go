package brain

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

// DefaultTimeout bounds every analyzer call. Inference can be slow, so the
// default is generous.
const DefaultTimeout = 300 * time.Second

// Client talks to the analysis service. It is stateless per call and safe
// for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
}

// ClientParams contains configuration for creating a Client.
type ClientParams struct {
	BaseURL string
	Timeout time.Duration

	// HTTPClient overrides the transport, mainly for tests.
	HTTPClient *http.Client
}

func NewClient(params ClientParams) *Client {
	timeout := params.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	httpClient := params.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		baseURL: strings.TrimRight(params.BaseURL, "/"),
		http:    httpClient,
		timeout: timeout,
	}
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("brain: encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("brain: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return classifyTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &Error{
			Kind:       KindServiceError,
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(msg)),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Kind: KindServiceError, StatusCode: resp.StatusCode, Message: "invalid response body"}
	}
	return nil
}

func classifyTransportError(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &Error{Kind: KindTimeout, Message: "analysis service timeout"}
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return &Error{Kind: KindUnavailable, Message: "analysis service unavailable"}
}

// Health reports the analyzer's health. A transport failure is returned as
// an unhealthy status rather than an error so callers can branch on one
// value.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	var status HealthStatus
	if err := c.do(ctx, http.MethodGet, "/health", nil, &status); err != nil {
		var brainErr *Error
		if errors.As(err, &brainErr) {
			return &HealthStatus{Status: "unhealthy"}, nil
		}
		return nil, err
	}
	return &status, nil
}

// IsAvailable reports whether the analyzer answers its health check.
func (c *Client) IsAvailable(ctx context.Context) bool {
	health, err := c.Health(ctx)
	return err == nil && health.Status == "healthy"
}

type textsRequest struct {
	Texts         []string       `json:"texts"`
	TextIDs       []string       `json:"text_ids,omitempty"`
	AnalysisTypes []string       `json:"analysis_types,omitempty"`
	Language      string         `json:"language"`
	Config        map[string]any `json:"config,omitempty"`
}

func defaultTextIDs(texts, ids []string) []string {
	if len(ids) == len(texts) {
		return ids
	}
	out := make([]string, len(texts))
	for i := range texts {
		out[i] = fmt.Sprint(i)
	}
	return out
}

// AnalyzeSentiment classifies the sentiment of each text.
func (c *Client) AnalyzeSentiment(ctx context.Context, texts, textIDs []string) ([]TextResult, error) {
	req := textsRequest{
		Texts:         texts,
		TextIDs:       defaultTextIDs(texts, textIDs),
		AnalysisTypes: []string{"sentiment"},
		Language:      "fa",
	}
	var resp struct {
		Results []TextResult `json:"results"`
	}
	if err := c.do(ctx, http.MethodPost, "/analyze/sentiment", req, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// AnalyzeEmotions scores the emotions of each text.
func (c *Client) AnalyzeEmotions(ctx context.Context, texts, textIDs []string) ([]TextResult, error) {
	req := textsRequest{
		Texts:         texts,
		TextIDs:       defaultTextIDs(texts, textIDs),
		AnalysisTypes: []string{"emotion"},
		Language:      "fa",
	}
	var resp struct {
		Results []TextResult `json:"results"`
	}
	if err := c.do(ctx, http.MethodPost, "/analyze/emotion", req, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// TextAnalysisParams selects which signals AnalyzeText requests.
type TextAnalysisParams struct {
	Texts         []string
	TextIDs       []string
	AnalysisTypes []string
	Config        map[string]any
}

// AnalyzeText runs the configurable full text analysis.
func (c *Client) AnalyzeText(ctx context.Context, params TextAnalysisParams) ([]TextResult, error) {
	types := params.AnalysisTypes
	if len(types) == 0 {
		types = []string{"sentiment", "emotion", "keywords", "entities"}
	}
	req := textsRequest{
		Texts:         params.Texts,
		TextIDs:       defaultTextIDs(params.Texts, params.TextIDs),
		AnalysisTypes: types,
		Language:      "fa",
		Config:        params.Config,
	}
	var resp struct {
		Results []TextResult `json:"results"`
	}
	if err := c.do(ctx, http.MethodPost, "/analyze/text", req, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// Summarize produces one summary per text.
func (c *Client) Summarize(ctx context.Context, texts []string, maxLength, minLength int) ([]string, error) {
	if maxLength <= 0 {
		maxLength = 150
	}
	if minLength <= 0 {
		minLength = 30
	}
	req := struct {
		Texts     []string `json:"texts"`
		MaxLength int      `json:"max_length"`
		MinLength int      `json:"min_length"`
		Language  string   `json:"language"`
	}{texts, maxLength, minLength, "fa"}

	var resp struct {
		Summaries []string `json:"summaries"`
	}
	if err := c.do(ctx, http.MethodPost, "/analyze/summarize", req, &resp); err != nil {
		return nil, err
	}
	return resp.Summaries, nil
}

// ExtractKeywords returns up to maxKeywords keywords per text.
func (c *Client) ExtractKeywords(ctx context.Context, texts []string, maxKeywords int) ([][]string, error) {
	if maxKeywords <= 0 {
		maxKeywords = 10
	}
	req := struct {
		Texts       []string `json:"texts"`
		MaxKeywords int      `json:"max_keywords"`
		Language    string   `json:"language"`
	}{texts, maxKeywords, "fa"}

	var resp struct {
		Keywords [][]string `json:"keywords"`
	}
	if err := c.do(ctx, http.MethodPost, "/analyze/keywords", req, &resp); err != nil {
		return nil, err
	}
	return resp.Keywords, nil
}

// ExtractEntities returns the named entities per text.
func (c *Client) ExtractEntities(ctx context.Context, texts []string) ([][]EntityResult, error) {
	req := struct {
		Texts    []string `json:"texts"`
		Language string   `json:"language"`
	}{texts, "fa"}

	var resp struct {
		Entities [][]EntityResult `json:"entities"`
	}
	if err := c.do(ctx, http.MethodPost, "/analyze/entities", req, &resp); err != nil {
		return nil, err
	}
	return resp.Entities, nil
}

// DetectTopics models topics over the corpus.
func (c *Client) DetectTopics(ctx context.Context, texts []string, numTopics int) (*TopicsResult, error) {
	if numTopics <= 0 {
		numTopics = 10
	}
	req := struct {
		Texts     []string `json:"texts"`
		NumTopics int      `json:"num_topics"`
		Language  string   `json:"language"`
	}{texts, numTopics, "fa"}

	var resp TopicsResult
	if err := c.do(ctx, http.MethodPost, "/analyze/topics", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DetectTrends asks the analyzer for trend descriptors over posts.
func (c *Client) DetectTrends(ctx context.Context, posts []TrendPost, timeWindow string, minTrendSize int) ([]TrendResult, error) {
	if timeWindow == "" {
		timeWindow = "1h"
	}
	if minTrendSize <= 0 {
		minTrendSize = 10
	}
	req := struct {
		Posts        []TrendPost `json:"posts"`
		TimeField    string      `json:"time_field"`
		ContentField string      `json:"content_field"`
		MinTrendSize int         `json:"min_trend_size"`
		TimeWindow   string      `json:"time_window"`
	}{posts, "posted_at", "content", minTrendSize, timeWindow}

	var resp struct {
		Trends []TrendResult `json:"trends"`
	}
	if err := c.do(ctx, http.MethodPost, "/analyze/trends", req, &resp); err != nil {
		return nil, err
	}
	return resp.Trends, nil
}

// AnalyzeGraph runs the selected algorithms over the graph.
func (c *Client) AnalyzeGraph(ctx context.Context, nodes []GraphNodeRef, edges []GraphEdgeRef, algorithms []string) (*GraphAnalysis, error) {
	if len(algorithms) == 0 {
		algorithms = []string{"pagerank", "community_detection", "centrality"}
	}
	req := struct {
		Nodes      []GraphNodeRef `json:"nodes"`
		Edges      []GraphEdgeRef `json:"edges"`
		Algorithms []string       `json:"algorithms"`
	}{nodes, edges, algorithms}

	var resp GraphAnalysis
	if err := c.do(ctx, http.MethodPost, "/analyze/graph", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// PageRank scores every node.
func (c *Client) PageRank(ctx context.Context, nodes []GraphNodeRef, edges []GraphEdgeRef, damping float64) ([]NodeRank, error) {
	if damping <= 0 || damping >= 1 {
		damping = 0.85
	}
	req := struct {
		Nodes     []GraphNodeRef `json:"nodes"`
		Edges     []GraphEdgeRef `json:"edges"`
		Algorithm string         `json:"algorithm"`
		Damping   float64        `json:"damping"`
	}{nodes, edges, "pagerank", damping}

	var resp struct {
		Nodes []NodeRank `json:"nodes"`
	}
	if err := c.do(ctx, http.MethodPost, "/analyze/graph/pagerank", req, &resp); err != nil {
		return nil, err
	}
	return resp.Nodes, nil
}

// DetectCommunities partitions the graph into communities.
func (c *Client) DetectCommunities(ctx context.Context, nodes []GraphNodeRef, edges []GraphEdgeRef) (*CommunityResult, error) {
	req := struct {
		Nodes     []GraphNodeRef `json:"nodes"`
		Edges     []GraphEdgeRef `json:"edges"`
		Algorithm string         `json:"algorithm"`
	}{nodes, edges, "community_detection"}

	var resp CommunityResult
	if err := c.do(ctx, http.MethodPost, "/analyze/graph/communities", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SubmitBatch queues an async batch analysis and returns its task id.
func (c *Client) SubmitBatch(ctx context.Context, analysisID int64, posts []BatchPost, config map[string]any) (string, error) {
	req := struct {
		AnalysisID int64          `json:"analysis_id"`
		Posts      []BatchPost    `json:"posts"`
		Config     map[string]any `json:"config"`
	}{analysisID, posts, config}

	var resp struct {
		TaskID string `json:"task_id"`
		Status string `json:"status"`
	}
	if err := c.do(ctx, http.MethodPost, "/batch/analyze", req, &resp); err != nil {
		return "", err
	}
	if resp.TaskID == "" {
		return "", &Error{Kind: KindServiceError, Message: "batch submission returned no task id"}
	}
	return resp.TaskID, nil
}

// GetBatchStatus polls an async batch job.
func (c *Client) GetBatchStatus(ctx context.Context, taskID string) (*BatchStatus, error) {
	var resp BatchStatus
	if err := c.do(ctx, http.MethodGet, "/batch/status/"+taskID, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetBatchResult fetches the final payload of an async batch job.
func (c *Client) GetBatchResult(ctx context.Context, taskID string) (*BatchResult, error) {
	var resp BatchResult
	if err := c.do(ctx, http.MethodGet, "/batch/result/"+taskID, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
