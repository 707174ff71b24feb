package brainmock

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/rasadhq/rasad/pkg/brain"
	"github.com/rasadhq/rasad/pkg/logger"
)

// Server holds the mock analyzer's state behind its HTTP handlers.
type Server struct {
	gen   *generator
	batch *batchStore
	delay time.Duration
}

// ServerParams contains configuration for creating a Server.
type ServerParams struct {
	// Seed fixes the random sequence. Zero seeds from the clock.
	Seed int64
	// Delay is the simulated inference latency per request. Negative
	// disables it; zero uses the default 100ms to 500ms jitter.
	Delay time.Duration
	// BatchStepDelay is the pause between posts while a batch job runs.
	BatchStepDelay time.Duration
}

func NewServer(params ServerParams) *Server {
	seed := params.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	gen := newGenerator(seed)

	stepDelay := params.BatchStepDelay
	if stepDelay == 0 {
		stepDelay = 50 * time.Millisecond
	} else if stepDelay < 0 {
		stepDelay = 0
	}

	return &Server{
		gen:   gen,
		batch: newBatchStore(gen, stepDelay),
		delay: params.Delay,
	}
}

// Register mounts every analyzer route on the echo instance.
func (s *Server) Register(e *echo.Echo) {
	e.GET("/health", s.health)

	analyze := e.Group("/analyze")
	analyze.POST("/sentiment", s.analyzeSentiment)
	analyze.POST("/emotion", s.analyzeEmotion)
	analyze.POST("/text", s.analyzeText)
	analyze.POST("/summarize", s.summarize)
	analyze.POST("/keywords", s.extractKeywords)
	analyze.POST("/entities", s.extractEntities)
	analyze.POST("/topics", s.detectTopics)
	analyze.POST("/trends", s.detectTrends)
	analyze.POST("/graph", s.analyzeGraph)
	analyze.POST("/graph/pagerank", s.graphPagerank)
	analyze.POST("/graph/communities", s.graphCommunities)

	batch := e.Group("/batch")
	batch.POST("/analyze", s.batchAnalyze)
	batch.GET("/status/:taskId", s.batchStatus)
	batch.GET("/result/:taskId", s.batchResult)
}

// simulateLatency sleeps to mimic inference time.
func (s *Server) simulateLatency() {
	if s.delay < 0 {
		return
	}
	if s.delay > 0 {
		time.Sleep(s.delay)
		return
	}
	time.Sleep(time.Duration(100+s.gen.intn(400)) * time.Millisecond)
}

func formatPostID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, brain.HealthStatus{
		Status:       "healthy",
		Service:      "rasad-brain",
		Version:      "1.0.0",
		GPUAvailable: false,
		Mode:         "mock",
	})
}

type textsRequest struct {
	Texts         []string       `json:"texts"`
	TextIDs       []string       `json:"text_ids"`
	AnalysisTypes []string       `json:"analysis_types"`
	Language      string         `json:"language"`
	Config        map[string]any `json:"config"`
}

func (r *textsRequest) ids() []string {
	if len(r.TextIDs) == len(r.Texts) {
		return r.TextIDs
	}
	ids := make([]string, len(r.Texts))
	for i := range r.Texts {
		ids[i] = strconv.Itoa(i)
	}
	return ids
}

func (s *Server) runTextAnalysis(c echo.Context, types []string) error {
	var req textsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if len(req.Texts) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "texts must not be empty")
	}
	s.simulateLatency()

	ids := req.ids()
	results := make([]brain.TextResult, 0, len(req.Texts))
	for i, text := range req.Texts {
		results = append(results, s.gen.textResult(ids[i], text, types))
	}
	return c.JSON(http.StatusOK, map[string]any{"results": results})
}

func (s *Server) analyzeSentiment(c echo.Context) error {
	return s.runTextAnalysis(c, []string{"sentiment"})
}

func (s *Server) analyzeEmotion(c echo.Context) error {
	return s.runTextAnalysis(c, []string{"emotion"})
}

func (s *Server) analyzeText(c echo.Context) error {
	var req textsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if len(req.Texts) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "texts must not be empty")
	}
	types := req.AnalysisTypes
	if len(types) == 0 {
		types = []string{"sentiment", "emotion", "keywords", "entities"}
	}
	s.simulateLatency()

	ids := req.ids()
	results := make([]brain.TextResult, 0, len(req.Texts))
	for i, text := range req.Texts {
		results = append(results, s.gen.textResult(ids[i], text, types))
	}
	return c.JSON(http.StatusOK, map[string]any{"results": results})
}

func (s *Server) summarize(c echo.Context) error {
	var req struct {
		Texts     []string `json:"texts"`
		MaxLength int      `json:"max_length"`
		MinLength int      `json:"min_length"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if len(req.Texts) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "texts must not be empty")
	}
	s.simulateLatency()

	summaries := make([]string, 0, len(req.Texts))
	for _, text := range req.Texts {
		summaries = append(summaries, s.gen.summary(text, req.MaxLength))
	}
	return c.JSON(http.StatusOK, map[string]any{"summaries": summaries})
}

func (s *Server) extractKeywords(c echo.Context) error {
	var req struct {
		Texts       []string `json:"texts"`
		MaxKeywords int      `json:"max_keywords"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	s.simulateLatency()

	keywords := make([][]string, 0, len(req.Texts))
	for range req.Texts {
		keywords = append(keywords, s.gen.keywords(req.MaxKeywords))
	}
	return c.JSON(http.StatusOK, map[string]any{"keywords": keywords})
}

func (s *Server) extractEntities(c echo.Context) error {
	var req struct {
		Texts []string `json:"texts"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	s.simulateLatency()

	entities := make([][]brain.EntityResult, 0, len(req.Texts))
	for range req.Texts {
		entities = append(entities, s.gen.entities())
	}
	return c.JSON(http.StatusOK, map[string]any{"entities": entities})
}

func (s *Server) detectTopics(c echo.Context) error {
	var req struct {
		Texts     []string `json:"texts"`
		NumTopics int      `json:"num_topics"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if len(req.Texts) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "texts must not be empty")
	}
	s.simulateLatency()

	global := s.gen.topics(req.NumTopics)
	perDoc := make([][]brain.TopicResult, 0, len(req.Texts))
	for range req.Texts {
		n := 1 + s.gen.intn(3)
		if n > len(global) {
			n = len(global)
		}
		perDoc = append(perDoc, global[:n])
	}
	return c.JSON(http.StatusOK, brain.TopicsResult{
		GlobalTopics:   global,
		DocumentTopics: perDoc,
	})
}

func (s *Server) detectTrends(c echo.Context) error {
	var req struct {
		Posts        []brain.TrendPost `json:"posts"`
		MinTrendSize int               `json:"min_trend_size"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	s.simulateLatency()

	minSize := req.MinTrendSize
	if minSize <= 0 {
		minSize = 10
	}
	if len(req.Posts) < minSize {
		return c.JSON(http.StatusOK, map[string]any{"trends": []brain.TrendResult{}})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"trends": s.gen.trends(len(req.Posts), minSize),
	})
}

type graphRequest struct {
	Nodes      []brain.GraphNodeRef `json:"nodes"`
	Edges      []brain.GraphEdgeRef `json:"edges"`
	Algorithms []string             `json:"algorithms"`
	Damping    float64              `json:"damping"`
}

func (s *Server) analyzeGraph(c echo.Context) error {
	var req graphRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if len(req.Nodes) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "nodes must not be empty")
	}
	algorithms := req.Algorithms
	if len(algorithms) == 0 {
		algorithms = []string{"pagerank", "community_detection", "centrality"}
	}
	s.simulateLatency()

	analysis := brain.GraphAnalysis{
		NodeCount: len(req.Nodes),
		EdgeCount: len(req.Edges),
	}
	for _, algo := range algorithms {
		switch algo {
		case "pagerank":
			analysis.Pagerank = s.gen.pagerank(req.Nodes)
		case "community_detection":
			analysis.Communities = s.gen.communities(req.Nodes)
		case "centrality":
			analysis.Centrality = s.gen.centrality(req.Nodes, req.Edges)
		}
	}
	return c.JSON(http.StatusOK, analysis)
}

func (s *Server) graphPagerank(c echo.Context) error {
	var req graphRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if len(req.Nodes) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "nodes must not be empty")
	}
	damping := req.Damping
	if damping <= 0 || damping >= 1 {
		damping = 0.85
	}
	s.simulateLatency()

	return c.JSON(http.StatusOK, map[string]any{
		"nodes":      s.gen.pagerank(req.Nodes),
		"damping":    damping,
		"iterations": 20 + s.gen.intn(30),
	})
}

func (s *Server) graphCommunities(c echo.Context) error {
	var req graphRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if len(req.Nodes) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "nodes must not be empty")
	}
	s.simulateLatency()

	return c.JSON(http.StatusOK, s.gen.communities(req.Nodes))
}

func (s *Server) batchAnalyze(c echo.Context) error {
	var req struct {
		AnalysisID int64             `json:"analysis_id"`
		Posts      []brain.BatchPost `json:"posts"`
		Config     map[string]any    `json:"config"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if len(req.Posts) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "posts must not be empty")
	}

	types := analysisTypesFromConfig(req.Config)
	posts := make([]batchPostInput, 0, len(req.Posts))
	for _, post := range req.Posts {
		posts = append(posts, batchPostInput{ID: post.ID, Content: post.Content, Types: types})
	}

	task := s.batch.Submit(req.AnalysisID, posts)
	logger.Info("batch task queued", "task_id", task.TaskID, "analysis_id", req.AnalysisID, "posts", len(req.Posts))

	return c.JSON(http.StatusOK, map[string]any{
		"analysis_id": req.AnalysisID,
		"task_id":     task.TaskID,
		"status":      task.Status,
		"message":     "batch analysis queued",
	})
}

// analysisTypesFromConfig reads the requested per-post signals out of the
// batch config, defaulting to the full set.
func analysisTypesFromConfig(config map[string]any) []string {
	raw, ok := config["analysis_types"].([]any)
	if !ok || len(raw) == 0 {
		return []string{"sentiment", "emotion", "keywords", "entities"}
	}
	types := make([]string, 0, len(raw))
	for _, entry := range raw {
		if typ, ok := entry.(string); ok {
			types = append(types, typ)
		}
	}
	if len(types) == 0 {
		return []string{"sentiment", "emotion", "keywords", "entities"}
	}
	return types
}

func (s *Server) batchStatus(c echo.Context) error {
	task, ok := s.batch.Get(c.Param("taskId"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "task not found")
	}
	return c.JSON(http.StatusOK, brain.BatchStatus{
		TaskID:     task.TaskID,
		Status:     task.Status,
		Progress:   task.Progress,
		TotalPosts: task.TotalPosts,
	})
}

func (s *Server) batchResult(c echo.Context) error {
	task, ok := s.batch.Get(c.Param("taskId"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "task not found")
	}
	if task.Status != brain.BatchCompleted {
		return c.JSON(http.StatusOK, brain.BatchResult{
			TaskID:  task.TaskID,
			Status:  task.Status,
			Message: "task not completed yet",
		})
	}
	return c.JSON(http.StatusOK, brain.BatchResult{
		TaskID:  task.TaskID,
		Status:  task.Status,
		Results: task.Results,
	})
}
