// Package brain is the typed HTTP boundary to the external analysis service.
// The client classifies failures but never retries; retry policy belongs to
// the caller.
package brain

import (
	"encoding/json"
	"fmt"
)

// Kind classifies a failed analyzer call.
type Kind string

const (
	// KindTimeout means the analyzer took longer than the configured
	// timeout. Retryable.
	KindTimeout Kind = "timeout"
	// KindServiceError means the analyzer answered with a non-2xx status.
	// Generally not retryable without changing the input.
	KindServiceError Kind = "service_error"
	// KindUnavailable means the analyzer could not be reached at all.
	// Retryable.
	KindUnavailable Kind = "unavailable"
)

// Error is the failure type for every analyzer call.
type Error struct {
	Kind       Kind
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("brain: %s (status %d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("brain: %s: %s", e.Kind, e.Message)
}

// Sentiment is one sentiment classification.
type Sentiment struct {
	Label      string  `json:"label"`
	Score      float64 `json:"score"`
	Confidence float64 `json:"confidence"`
}

// EntityResult is one recognized entity with the analyzer's confidence.
type EntityResult struct {
	Text       string  `json:"text"`
	Type       string  `json:"type"`
	Start      int     `json:"start"`
	End        int     `json:"end"`
	Confidence float64 `json:"confidence,omitempty"`
}

// TopicResult is one detected topic.
type TopicResult struct {
	Topic    string   `json:"topic"`
	Score    float64  `json:"score"`
	Keywords []string `json:"keywords,omitempty"`
}

// TextResult is the per-text payload of text analysis and batch results.
// Which fields are set depends on the requested analysis types.
type TextResult struct {
	TextID          string             `json:"text_id"`
	Sentiment       *Sentiment         `json:"sentiment,omitempty"`
	Emotions        map[string]float64 `json:"emotions,omitempty"`
	DominantEmotion string             `json:"dominant_emotion,omitempty"`
	Keywords        []string           `json:"keywords,omitempty"`
	Entities        []EntityResult     `json:"entities,omitempty"`
	Topics          []TopicResult      `json:"topics,omitempty"`
	Summary         string             `json:"summary,omitempty"`
}

// Raw serializes the result for opaque storage alongside the typed columns.
func (r TextResult) Raw() json.RawMessage {
	raw, err := json.Marshal(r)
	if err != nil {
		return nil
	}
	return raw
}

// HealthStatus is the analyzer's health report.
type HealthStatus struct {
	Status       string `json:"status"`
	Service      string `json:"service,omitempty"`
	Version      string `json:"version,omitempty"`
	GPUAvailable bool   `json:"gpu_available"`
	Mode         string `json:"mode,omitempty"`
}

// GraphNodeRef identifies one node in a graph analysis request.
type GraphNodeRef struct {
	ID   string `json:"id"`
	Type string `json:"type,omitempty"`
}

// GraphEdgeRef identifies one edge in a graph analysis request.
type GraphEdgeRef struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Weight float64 `json:"weight,omitempty"`
}

// NodeRank is one node's metrics from a PageRank or centrality pass.
type NodeRank struct {
	ID        string  `json:"id"`
	Type      string  `json:"type,omitempty"`
	Pagerank  float64 `json:"pagerank"`
	Degree    int     `json:"degree,omitempty"`
	InDegree  int     `json:"in_degree,omitempty"`
	OutDegree int     `json:"out_degree,omitempty"`
}

// Community describes one detected community.
type Community struct {
	CommunityID int      `json:"community_id"`
	Size        int      `json:"size"`
	Density     float64  `json:"density"`
	Keywords    []string `json:"keywords,omitempty"`
}

// NodeCommunity is one node's community assignment.
type NodeCommunity struct {
	ID          string `json:"id"`
	CommunityID int    `json:"community_id"`
}

// CommunityResult is the full output of a community-detection pass.
type CommunityResult struct {
	Communities []Community     `json:"communities"`
	Nodes       []NodeCommunity `json:"nodes"`
	Modularity  float64         `json:"modularity"`
}

// GraphAnalysis is the output of the generic graph-analysis call; which
// sections are set depends on the requested algorithms.
type GraphAnalysis struct {
	NodeCount   int              `json:"node_count"`
	EdgeCount   int              `json:"edge_count"`
	Pagerank    []NodeRank       `json:"pagerank,omitempty"`
	Communities *CommunityResult `json:"communities,omitempty"`
	Centrality  []NodeRank       `json:"centrality,omitempty"`
}

// TrendResult is one trend descriptor from trend detection.
type TrendResult struct {
	Name       string     `json:"name"`
	Volume     int        `json:"volume"`
	GrowthRate float64    `json:"growth_rate"`
	Velocity   float64    `json:"velocity"`
	Sentiment  *Sentiment `json:"sentiment,omitempty"`
	Keywords   []string   `json:"keywords,omitempty"`
}

// TrendPost is the minimal post view sent to trend detection.
type TrendPost struct {
	ID       int64    `json:"id"`
	Content  string   `json:"content"`
	PostedAt string   `json:"posted_at,omitempty"`
	Hashtags []string `json:"hashtags,omitempty"`
}

// BatchPost is the per-post payload of a batch submission.
type BatchPost struct {
	ID      int64  `json:"id"`
	Content string `json:"content"`
}

// Batch job statuses reported by the analyzer.
const (
	BatchQueued     = "queued"
	BatchProcessing = "processing"
	BatchCompleted  = "completed"
	BatchFailed     = "failed"
)

// BatchStatus is the progress report for an async batch job.
type BatchStatus struct {
	TaskID     string  `json:"task_id"`
	Status     string  `json:"status"`
	Progress   float64 `json:"progress"`
	TotalPosts int     `json:"total_posts"`
}

// BatchResult is the final payload of an async batch job. Results is nil
// until Status is completed.
type BatchResult struct {
	TaskID  string       `json:"task_id"`
	Status  string       `json:"status"`
	Results []TextResult `json:"results,omitempty"`
	Message string       `json:"message,omitempty"`
}

// TopicsResult is the output of topic detection: corpus-level topics plus a
// per-document distribution.
type TopicsResult struct {
	GlobalTopics   []TopicResult   `json:"global_topics"`
	DocumentTopics [][]TopicResult `json:"document_topics"`
}
