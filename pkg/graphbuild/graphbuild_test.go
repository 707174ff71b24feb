package graphbuild

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/rasadhq/rasad/pkg/brain"
	"github.com/rasadhq/rasad/pkg/common"
	"github.com/rasadhq/rasad/pkg/store"
)

type edgeKey struct {
	source, target int64
	edgeType       string
}

type fakeGraphStore struct {
	mu     sync.Mutex
	nextID int64
	nodes  map[string]*common.GraphNode
	edges  map[edgeKey]*common.GraphEdge
}

func newFakeGraphStore() *fakeGraphStore {
	return &fakeGraphStore{
		nodes: make(map[string]*common.GraphNode),
		edges: make(map[edgeKey]*common.GraphEdge),
	}
}

func (f *fakeGraphStore) GetNodeByNodeID(_ context.Context, nodeID string) (*common.GraphNode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	node, ok := f.nodes[nodeID]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := *node
	return &out, nil
}

func (f *fakeGraphStore) GetOrCreateNode(_ context.Context, node *common.GraphNode) (*common.GraphNode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if existing, ok := f.nodes[node.NodeID]; ok {
		out := *existing
		return &out, nil
	}
	f.nextID++
	clone := *node
	clone.ID = f.nextID
	f.nodes[node.NodeID] = &clone
	out := clone
	return &out, nil
}

func (f *fakeGraphStore) UpsertEdge(_ context.Context, sourceID, targetID int64, edgeType string) (*common.GraphEdge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := edgeKey{sourceID, targetID, edgeType}
	if existing, ok := f.edges[key]; ok {
		existing.OccurrenceCount++
		out := *existing
		return &out, nil
	}
	f.nextID++
	edge := &common.GraphEdge{
		ID: f.nextID, SourceID: sourceID, TargetID: targetID,
		EdgeType: edgeType, Weight: 1.0, OccurrenceCount: 1,
	}
	f.edges[key] = edge
	out := *edge
	return &out, nil
}

func (f *fakeGraphStore) ListNodes(_ context.Context, nodeType string, skip, limit int) ([]common.GraphNode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []common.GraphNode
	for _, node := range f.nodes {
		if nodeType == "" || node.NodeType == nodeType {
			all = append(all, *node)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	if skip >= len(all) {
		return nil, nil
	}
	all = all[skip:]
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (f *fakeGraphStore) ListEdges(_ context.Context, edgeType string, skip, limit int) ([]common.GraphEdge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []common.GraphEdge
	for _, edge := range f.edges {
		if edgeType == "" || edge.EdgeType == edgeType {
			all = append(all, *edge)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	if skip >= len(all) {
		return nil, nil
	}
	all = all[skip:]
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (f *fakeGraphStore) UpdateNodeRank(_ context.Context, nodeID string, pagerank float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	node, ok := f.nodes[nodeID]
	if !ok {
		return store.ErrNotFound
	}
	node.Pagerank = &pagerank
	return nil
}

func (f *fakeGraphStore) UpdateNodeCommunity(_ context.Context, nodeID string, communityID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	node, ok := f.nodes[nodeID]
	if !ok {
		return store.ErrNotFound
	}
	node.CommunityID = &communityID
	return nil
}

func (f *fakeGraphStore) Stats(context.Context) (*store.GraphStats, error) {
	return &store.GraphStats{}, nil
}

func (f *fakeGraphStore) Clear(context.Context) error {
	f.nodes = make(map[string]*common.GraphNode)
	f.edges = make(map[edgeKey]*common.GraphEdge)
	return nil
}

type fakePostLister struct {
	posts []common.Post
}

func (f *fakePostLister) Create(_ context.Context, p *common.Post) (*common.Post, error) { return p, nil }
func (f *fakePostLister) Get(context.Context, int64) (*common.Post, error) {
	return nil, store.ErrNotFound
}
func (f *fakePostLister) GetByPlatformID(context.Context, string) (*common.Post, error) {
	return nil, store.ErrNotFound
}
func (f *fakePostLister) Filter(context.Context, store.PostFilter, int, int) ([]common.Post, error) {
	return nil, nil
}
func (f *fakePostLister) MarkProcessed(context.Context, int64, string) error { return nil }
func (f *fakePostLister) ListSince(_ context.Context, _ time.Time, limit int) ([]common.Post, error) {
	if len(f.posts) > limit {
		return f.posts[:limit], nil
	}
	return f.posts, nil
}
func (f *fakePostLister) CountWithHashtagSince(context.Context, string, time.Time) (int, error) {
	return 0, nil
}
func (f *fakePostLister) Stats(context.Context) (*store.PostStats, error) {
	return &store.PostStats{}, nil
}

type fakeAuthorStore struct {
	authors map[int64]*common.Author
}

func (f *fakeAuthorStore) Create(_ context.Context, a *common.Author) (*common.Author, error) {
	return a, nil
}
func (f *fakeAuthorStore) Get(_ context.Context, id int64) (*common.Author, error) {
	a, ok := f.authors[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return a, nil
}
func (f *fakeAuthorStore) GetByPlatformID(context.Context, string, string) (*common.Author, error) {
	return nil, store.ErrNotFound
}
func (f *fakeAuthorStore) List(context.Context, string, int, int) ([]common.Author, error) {
	return nil, nil
}
func (f *fakeAuthorStore) Delete(context.Context, int64) error { return nil }

type fakeGraphBrain struct{}

func (fakeGraphBrain) PageRank(_ context.Context, nodes []brain.GraphNodeRef, _ []brain.GraphEdgeRef, _ float64) ([]brain.NodeRank, error) {
	out := make([]brain.NodeRank, 0, len(nodes))
	for i, node := range nodes {
		out = append(out, brain.NodeRank{ID: node.ID, Pagerank: 0.01 * float64(i+1)})
	}
	return out, nil
}

func (fakeGraphBrain) DetectCommunities(_ context.Context, nodes []brain.GraphNodeRef, _ []brain.GraphEdgeRef) (*brain.CommunityResult, error) {
	assignments := make([]brain.NodeCommunity, 0, len(nodes))
	for i, node := range nodes {
		assignments = append(assignments, brain.NodeCommunity{ID: node.ID, CommunityID: i % 2})
	}
	return &brain.CommunityResult{Nodes: assignments, Modularity: 0.5}, nil
}

func int64Ptr(v int64) *int64 { return &v }

func newService(graph *fakeGraphStore, posts *fakePostLister, authors *fakeAuthorStore) *Service {
	if authors == nil {
		authors = &fakeAuthorStore{authors: map[int64]*common.Author{}}
	}
	return NewService(ServiceParams{
		Graph:   graph,
		Posts:   posts,
		Authors: authors,
		Brain:   fakeGraphBrain{},
	})
}

func TestBuildHashtagNetwork(t *testing.T) {
	graph := newFakeGraphStore()
	posts := &fakePostLister{posts: []common.Post{
		{ID: 1, Hashtags: []string{"a", "b", "c"}},
	}}
	service := newService(graph, posts, nil)

	report, err := service.BuildHashtagNetwork(context.Background(), time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("BuildHashtagNetwork() error = %v", err)
	}
	if report.NodesTouched != 3 {
		t.Errorf("nodes = %d, want 3", report.NodesTouched)
	}
	if report.EdgesTouched != 3 {
		t.Errorf("edges = %d, want C(3,2) = 3", report.EdgesTouched)
	}
	if _, err := graph.GetNodeByNodeID(context.Background(), HashtagNodeID("a")); err != nil {
		t.Errorf("node hashtag_a missing: %v", err)
	}
}

func TestBuildHashtagNetworkDedupesRepeats(t *testing.T) {
	graph := newFakeGraphStore()
	posts := &fakePostLister{posts: []common.Post{
		{ID: 1, Hashtags: []string{"a", "b"}},
		{ID: 2, Hashtags: []string{"a", "b"}},
		{ID: 3, Hashtags: []string{"a", "a", "b"}},
	}}
	service := newService(graph, posts, nil)

	_, err := service.BuildHashtagNetwork(context.Background(), time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("BuildHashtagNetwork() error = %v", err)
	}
	if len(graph.edges) != 1 {
		t.Fatalf("got %d distinct edges, want 1", len(graph.edges))
	}
	for _, edge := range graph.edges {
		if edge.OccurrenceCount != 3 {
			t.Errorf("occurrence count = %d, want 3", edge.OccurrenceCount)
		}
		if edge.Weight != 1.0 {
			t.Errorf("weight = %v, repeats must not change it", edge.Weight)
		}
	}
}

func TestBuildMentionNetwork(t *testing.T) {
	graph := newFakeGraphStore()
	posts := &fakePostLister{posts: []common.Post{
		{ID: 1, AuthorID: int64Ptr(7), Mentions: []string{"sara", "nima"}},
		{ID: 2, Mentions: []string{"sara"}},
	}}
	authors := &fakeAuthorStore{authors: map[int64]*common.Author{
		7: {ID: 7, Username: "reza"},
	}}
	service := newService(graph, posts, authors)

	report, err := service.BuildMentionNetwork(context.Background(), time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("BuildMentionNetwork() error = %v", err)
	}
	if report.NodesTouched != 3 {
		t.Errorf("nodes = %d, want 3 (reza, sara, nima)", report.NodesTouched)
	}
	if report.EdgesTouched != 2 {
		t.Errorf("edges = %d, want 2", report.EdgesTouched)
	}
}

func TestComputeMetricsWritesBack(t *testing.T) {
	graph := newFakeGraphStore()
	ctx := context.Background()
	for _, tag := range []string{"a", "b", "c", "d"} {
		graph.GetOrCreateNode(ctx, &common.GraphNode{
			NodeID: HashtagNodeID(tag), NodeType: common.NodeTypeHashtag, Label: tag,
		})
	}
	service := newService(graph, &fakePostLister{}, nil)

	if err := service.ComputeMetrics(ctx); err != nil {
		t.Fatalf("ComputeMetrics() error = %v", err)
	}
	for nodeID, node := range graph.nodes {
		if node.Pagerank == nil {
			t.Errorf("node %s missing pagerank", nodeID)
		}
		if node.CommunityID == nil {
			t.Errorf("node %s missing community", nodeID)
		}
	}
}

func TestComputeMetricsEmptyGraph(t *testing.T) {
	service := newService(newFakeGraphStore(), &fakePostLister{}, nil)
	if err := service.ComputeMetrics(context.Background()); err != nil {
		t.Fatalf("ComputeMetrics() on empty graph error = %v", err)
	}
}

func TestRunUnknownGraphType(t *testing.T) {
	service := newService(newFakeGraphStore(), &fakePostLister{}, nil)
	err := service.Run(context.Background(), &common.Analysis{
		Config: []byte(`{"graph_type":"bogus"}`),
	})
	if err == nil {
		t.Fatal("Run() accepted an unknown graph type")
	}
}

func TestRunBuildsAndComputes(t *testing.T) {
	graph := newFakeGraphStore()
	posts := &fakePostLister{posts: []common.Post{{ID: 1, Hashtags: []string{"x", "y"}}}}
	service := newService(graph, posts, nil)

	if err := service.Run(context.Background(), &common.Analysis{}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	node, err := graph.GetNodeByNodeID(context.Background(), HashtagNodeID("x"))
	if err != nil {
		t.Fatal(err)
	}
	if node.Pagerank == nil {
		t.Error("metrics not computed after build")
	}
}

func TestLoadGraphPaginates(t *testing.T) {
	graph := newFakeGraphStore()
	ctx := context.Background()
	for i := 0; i < 1200; i++ {
		graph.GetOrCreateNode(ctx, &common.GraphNode{
			NodeID: fmt.Sprintf("hashtag_%d", i), NodeType: common.NodeTypeHashtag,
		})
	}
	service := newService(graph, &fakePostLister{}, nil)

	nodes, _, err := service.loadGraph(ctx)
	if err != nil {
		t.Fatalf("loadGraph() error = %v", err)
	}
	if len(nodes) != 1200 {
		t.Errorf("loaded %d nodes, want 1200", len(nodes))
	}
}
