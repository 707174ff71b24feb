// Package common holds the domain model shared by the stores, the analysis
// services, and the HTTP layer. The structs here are plain data carriers;
// behavior lives in the packages that operate on them.
package common

import (
	"encoding/json"
	"time"
)

// AnalysisType selects which kind of analysis a job runs. TypeFull asks the
// analyzer for every text signal at once (sentiment, emotions, keywords,
// entities, topics, summary).
type AnalysisType string

const (
	TypeSentiment         AnalysisType = "sentiment"
	TypeEmotion           AnalysisType = "emotion"
	TypeSummarization     AnalysisType = "summarization"
	TypeTopicModeling     AnalysisType = "topic_modeling"
	TypeKeywordExtraction AnalysisType = "keyword_extraction"
	TypeEntityRecognition AnalysisType = "entity_recognition"
	TypeTrendDetection    AnalysisType = "trend_detection"
	TypeGraphAnalysis     AnalysisType = "graph_analysis"
	TypeFull              AnalysisType = "full"
)

// Valid reports whether t is one of the known analysis types.
func (t AnalysisType) Valid() bool {
	switch t {
	case TypeSentiment, TypeEmotion, TypeSummarization, TypeTopicModeling,
		TypeKeywordExtraction, TypeEntityRecognition, TypeTrendDetection,
		TypeGraphAnalysis, TypeFull:
		return true
	}
	return false
}

// AnalysisStatus is the lifecycle state of an analysis job.
//
// Transitions: pending -> queued -> processing -> completed | failed.
// Pending, queued, and processing jobs may move to cancelled. Completed and
// failed are terminal.
type AnalysisStatus string

const (
	StatusPending    AnalysisStatus = "pending"
	StatusQueued     AnalysisStatus = "queued"
	StatusProcessing AnalysisStatus = "processing"
	StatusCompleted  AnalysisStatus = "completed"
	StatusFailed     AnalysisStatus = "failed"
	StatusCancelled  AnalysisStatus = "cancelled"
)

// Terminal reports whether no further transition is defined out of s.
func (s AnalysisStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// Analysis is one analysis run over a selected set of posts. The orchestrator
// is the only writer after creation; the summary is populated exactly when
// the status reaches completed.
type Analysis struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	AnalysisType AnalysisType    `json:"analysis_type"`
	Config       json.RawMessage `json:"config,omitempty"`
	QueryFilters json.RawMessage `json:"query_filters,omitempty"`
	PostCount    int             `json:"post_count"`
	Status       AnalysisStatus  `json:"status"`
	Progress     float64         `json:"progress"`
	Summary      json.RawMessage `json:"summary,omitempty"`
	ErrorMessage string          `json:"error_message,omitempty"`
	StartedAt    *time.Time      `json:"started_at,omitempty"`
	CompletedAt  *time.Time      `json:"completed_at,omitempty"`
	UserID       int64           `json:"user_id"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// AnalysisResult is the per-post output of one analysis run. At most one
// result exists per (post, analysis) pair; re-processing a job skips posts
// that already have a row.
type AnalysisResult struct {
	ID                  int64              `json:"id"`
	PostID              int64              `json:"post_id"`
	AnalysisID          int64              `json:"analysis_id"`
	SentimentLabel      string             `json:"sentiment_label,omitempty"`
	SentimentScore      *float64           `json:"sentiment_score,omitempty"`
	SentimentConfidence *float64           `json:"sentiment_confidence,omitempty"`
	Emotions            map[string]float64 `json:"emotions,omitempty"`
	DominantEmotion     string             `json:"dominant_emotion,omitempty"`
	Summary             string             `json:"summary,omitempty"`
	Keywords            []string           `json:"keywords,omitempty"`
	Topics              []Topic            `json:"topics,omitempty"`
	Entities            []Entity           `json:"entities,omitempty"`
	NodeDegree          *int               `json:"node_degree,omitempty"`
	CentralityScore     *float64           `json:"centrality_score,omitempty"`
	CommunityID         *int               `json:"community_id,omitempty"`
	RawResults          json.RawMessage    `json:"raw_results,omitempty"`
	CreatedAt           time.Time          `json:"created_at"`
}

// Topic is one detected topic with its relevance score.
type Topic struct {
	Topic string  `json:"topic"`
	Score float64 `json:"score"`
}

// Entity is one recognized named entity with its span in the source text.
type Entity struct {
	Text  string `json:"text"`
	Type  string `json:"type"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// Post is a single social-media post, the unit of analysis. PlatformID is
// unique and serves as the ingestion idempotency key.
type Post struct {
	ID                int64      `json:"id"`
	PlatformID        string     `json:"platform_id"`
	Platform          string     `json:"platform"`
	Content           string     `json:"content,omitempty"`
	ContentNormalized string     `json:"content_normalized,omitempty"`
	Language          string     `json:"language"`
	URL               string     `json:"url,omitempty"`
	MediaURLs         []string   `json:"media_urls,omitempty"`
	LikesCount        int        `json:"likes_count"`
	CommentsCount     int        `json:"comments_count"`
	SharesCount       int        `json:"shares_count"`
	ViewsCount        int        `json:"views_count"`
	PostedAt          *time.Time `json:"posted_at,omitempty"`
	Hashtags          []string   `json:"hashtags,omitempty"`
	Mentions          []string   `json:"mentions,omitempty"`
	IsProcessed       bool       `json:"is_processed"`
	ProcessingError   string     `json:"processing_error,omitempty"`
	DataSourceID      *int64     `json:"data_source_id,omitempty"`
	AuthorID          *int64     `json:"author_id,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// Author is a social-media account that produced posts.
type Author struct {
	ID             int64           `json:"id"`
	PlatformID     string          `json:"platform_id"`
	Platform       string          `json:"platform"`
	Username       string          `json:"username,omitempty"`
	DisplayName    string          `json:"display_name,omitempty"`
	Bio            string          `json:"bio,omitempty"`
	ProfileURL     string          `json:"profile_url,omitempty"`
	AvatarURL      string          `json:"avatar_url,omitempty"`
	FollowersCount int             `json:"followers_count"`
	FollowingCount int             `json:"following_count"`
	PostsCount     int             `json:"posts_count"`
	InfluenceScore *float64        `json:"influence_score,omitempty"`
	PagerankScore  *float64        `json:"pagerank_score,omitempty"`
	ExtraData      json.RawMessage `json:"extra_data,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// DataSource is a configured collection endpoint for one platform.
// Credentials never serialize to JSON.
type DataSource struct {
	ID               int64           `json:"id"`
	Name             string          `json:"name"`
	Platform         string          `json:"platform"`
	APIEndpoint      string          `json:"api_endpoint,omitempty"`
	Credentials      json.RawMessage `json:"-"`
	CollectionConfig json.RawMessage `json:"collection_config,omitempty"`
	Description      string          `json:"description,omitempty"`
	IsActive         bool            `json:"is_active"`
	LastSyncAt       *time.Time      `json:"last_sync_at,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// GraphNode is a node in the derived interaction network. NodeID is the
// stable string identity ("hashtag_x", "author_y") used as the upsert key;
// centrality metrics are written back by the analyzer passes.
type GraphNode struct {
	ID                    int64           `json:"id"`
	NodeID                string          `json:"node_id"`
	NodeType              string          `json:"node_type"`
	Label                 string          `json:"label,omitempty"`
	Attributes            json.RawMessage `json:"attributes,omitempty"`
	Degree                int             `json:"degree"`
	InDegree              int             `json:"in_degree"`
	OutDegree             int             `json:"out_degree"`
	Pagerank              *float64        `json:"pagerank,omitempty"`
	BetweennessCentrality *float64        `json:"betweenness_centrality,omitempty"`
	ClosenessCentrality   *float64        `json:"closeness_centrality,omitempty"`
	EigenvectorCentrality *float64        `json:"eigenvector_centrality,omitempty"`
	CommunityID           *int            `json:"community_id,omitempty"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
}

// Graph node types.
const (
	NodeTypeAuthor  = "author"
	NodeTypeHashtag = "hashtag"
	NodeTypeTopic   = "topic"
	NodeTypeKeyword = "keyword"
	NodeTypePost    = "post"
)

// GraphEdge is a typed relation between two nodes. Edges are deduplicated on
// (source, target, type): repeats increment the occurrence count and refresh
// last seen, the weight only changes on an explicit metric recompute.
type GraphEdge struct {
	ID              int64           `json:"id"`
	SourceID        int64           `json:"source_id"`
	TargetID        int64           `json:"target_id"`
	EdgeType        string          `json:"edge_type"`
	Weight          float64         `json:"weight"`
	Attributes      json.RawMessage `json:"attributes,omitempty"`
	FirstSeen       *time.Time      `json:"first_seen,omitempty"`
	LastSeen        *time.Time      `json:"last_seen,omitempty"`
	OccurrenceCount int             `json:"occurrence_count"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// Graph edge types.
const (
	EdgeTypeMentions     = "mentions"
	EdgeTypeRepliesTo    = "replies_to"
	EdgeTypeRetweets     = "retweets"
	EdgeTypeFollows      = "follows"
	EdgeTypeCoOccurrence = "co_occurrence"
)

// TrendStatus is the activity state of a detected trend. Transitions only
// run downward: active -> declining -> ended.
type TrendStatus string

const (
	TrendActive    TrendStatus = "active"
	TrendDeclining TrendStatus = "declining"
	TrendEnded     TrendStatus = "ended"
)

// Trend is a detected topical spike over a time window.
type Trend struct {
	ID                    int64              `json:"id"`
	Name                  string             `json:"name"`
	Description           string             `json:"description,omitempty"`
	Volume                int                `json:"volume"`
	GrowthRate            *float64           `json:"growth_rate,omitempty"`
	Velocity              *float64           `json:"velocity,omitempty"`
	PeakTime              *time.Time         `json:"peak_time,omitempty"`
	Keywords              []string           `json:"keywords,omitempty"`
	Hashtags              []string           `json:"hashtags,omitempty"`
	SentimentDistribution map[string]float64 `json:"sentiment_distribution,omitempty"`
	TimeSeries            []TimePoint        `json:"time_series,omitempty"`
	Status                TrendStatus        `json:"status"`
	AnalysisID            *int64             `json:"analysis_id,omitempty"`
	CreatedAt             time.Time          `json:"created_at"`
	UpdatedAt             time.Time          `json:"updated_at"`
}

// TimePoint is one bucket of a trend's volume time series.
type TimePoint struct {
	Time  time.Time `json:"time"`
	Count int       `json:"count"`
}

// Dashboard is a saved widget layout for one user.
type Dashboard struct {
	ID              int64           `json:"id"`
	Name            string          `json:"name"`
	Description     string          `json:"description,omitempty"`
	Layout          json.RawMessage `json:"layout,omitempty"`
	Widgets         json.RawMessage `json:"widgets,omitempty"`
	Filters         json.RawMessage `json:"filters,omitempty"`
	RefreshInterval int             `json:"refresh_interval"`
	IsDefault       bool            `json:"is_default"`
	IsPublic        bool            `json:"is_public"`
	UserID          int64           `json:"user_id"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// User owns analyses and dashboards. Authentication is not part of this
// service; the record exists for ownership and auditing.
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	FullName  string    `json:"full_name,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AnalysisSummary is the aggregate generated over a completed job's results.
// It carries no timestamp so regeneration over the same result set is
// byte-identical.
type AnalysisSummary struct {
	TotalPosts            int            `json:"total_posts"`
	ProcessedPosts        int            `json:"processed_posts"`
	SentimentDistribution map[string]int `json:"sentiment_distribution"`
	EmotionDistribution   map[string]int `json:"emotion_distribution"`
	AverageSentiment      *float64       `json:"average_sentiment,omitempty"`
	TopKeywords           []KeywordCount `json:"top_keywords"`
}

// KeywordCount is one keyword with its occurrence count across results.
type KeywordCount struct {
	Keyword string `json:"keyword"`
	Count   int    `json:"count"`
}
