package queue

// ProcessAnalysisMsg asks a worker to run one analysis job.
type ProcessAnalysisMsg struct {
	AnalysisID int64 `json:"analysis_id"`
}

// BuildGraphMsg asks a worker to rebuild part of the interaction network.
// GraphType is hashtag, mention, or all.
type BuildGraphMsg struct {
	GraphType string `json:"graph_type"`
	Hours     int    `json:"hours"`
}

// DetectTrendsMsg asks a worker to run a trend detection pass.
type DetectTrendsMsg struct {
	Hours    int `json:"hours"`
	MinCount int `json:"min_count"`
}
