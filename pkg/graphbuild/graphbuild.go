// Package graphbuild derives the interaction network from stored posts and
// writes analyzer-computed metrics back onto it.
package graphbuild

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rasadhq/rasad/pkg/brain"
	"github.com/rasadhq/rasad/pkg/common"
	"github.com/rasadhq/rasad/pkg/logger"
	"github.com/rasadhq/rasad/pkg/store"
)

// BrainClient is the slice of the analyzer client the graph passes need.
type BrainClient interface {
	PageRank(ctx context.Context, nodes []brain.GraphNodeRef, edges []brain.GraphEdgeRef, damping float64) ([]brain.NodeRank, error)
	DetectCommunities(ctx context.Context, nodes []brain.GraphNodeRef, edges []brain.GraphEdgeRef) (*brain.CommunityResult, error)
}

// Service builds and annotates the graph.
type Service struct {
	graph    store.GraphStore
	posts    store.PostStore
	authors  store.AuthorStore
	brain    BrainClient
	maxPosts int
	pageSize int
}

// ServiceParams contains configuration for creating a Service.
type ServiceParams struct {
	Graph   store.GraphStore
	Posts   store.PostStore
	Authors store.AuthorStore
	Brain   BrainClient

	// MaxPosts caps how many posts one build pass scans. Default 5000.
	MaxPosts int
}

func NewService(params ServiceParams) *Service {
	maxPosts := params.MaxPosts
	if maxPosts <= 0 {
		maxPosts = 5000
	}
	return &Service{
		graph:    params.Graph,
		posts:    params.Posts,
		authors:  params.Authors,
		brain:    params.Brain,
		maxPosts: maxPosts,
		pageSize: 500,
	}
}

// BuildReport summarizes one build pass.
type BuildReport struct {
	PostsScanned int `json:"posts_scanned"`
	NodesTouched int `json:"nodes_touched"`
	EdgesTouched int `json:"edges_touched"`
}

// HashtagNodeID is the stable node identity for a hashtag.
func HashtagNodeID(tag string) string {
	return "hashtag_" + tag
}

// AuthorNodeID is the stable node identity for an author.
func AuthorNodeID(username string) string {
	return "author_" + username
}

// BuildHashtagNetwork links hashtags that co-occur in a post. Every unordered
// pair in one post yields one co_occurrence edge touch.
func (s *Service) BuildHashtagNetwork(ctx context.Context, since time.Time) (*BuildReport, error) {
	posts, err := s.posts.ListSince(ctx, since, s.maxPosts)
	if err != nil {
		return nil, err
	}

	report := &BuildReport{PostsScanned: len(posts)}
	nodeIDs := make(map[string]int64)

	for _, post := range posts {
		tags := dedupe(post.Hashtags)
		if len(tags) == 0 {
			continue
		}

		ids := make([]int64, 0, len(tags))
		for _, tag := range tags {
			id, known := nodeIDs[tag]
			if !known {
				node, err := s.graph.GetOrCreateNode(ctx, &common.GraphNode{
					NodeID:   HashtagNodeID(tag),
					NodeType: common.NodeTypeHashtag,
					Label:    tag,
				})
				if err != nil {
					return nil, fmt.Errorf("node for hashtag %q: %w", tag, err)
				}
				id = node.ID
				nodeIDs[tag] = id
				report.NodesTouched++
			}
			ids = append(ids, id)
		}

		for i := 0; i < len(ids); i++ {
			for j := i + 1; j < len(ids); j++ {
				if _, err := s.graph.UpsertEdge(ctx, ids[i], ids[j], common.EdgeTypeCoOccurrence); err != nil {
					return nil, err
				}
				report.EdgesTouched++
			}
		}
	}

	logger.Info("hashtag network built", "posts", report.PostsScanned, "nodes", report.NodesTouched, "edges", report.EdgesTouched)
	return report, nil
}

// BuildMentionNetwork links post authors to the accounts they mention.
func (s *Service) BuildMentionNetwork(ctx context.Context, since time.Time) (*BuildReport, error) {
	posts, err := s.posts.ListSince(ctx, since, s.maxPosts)
	if err != nil {
		return nil, err
	}

	report := &BuildReport{PostsScanned: len(posts)}
	nodeIDs := make(map[string]int64)

	node := func(username string) (int64, error) {
		if id, known := nodeIDs[username]; known {
			return id, nil
		}
		created, err := s.graph.GetOrCreateNode(ctx, &common.GraphNode{
			NodeID:   AuthorNodeID(username),
			NodeType: common.NodeTypeAuthor,
			Label:    username,
		})
		if err != nil {
			return 0, err
		}
		nodeIDs[username] = created.ID
		report.NodesTouched++
		return created.ID, nil
	}

	for _, post := range posts {
		if post.AuthorID == nil || len(post.Mentions) == 0 {
			continue
		}
		author, err := s.authors.Get(ctx, *post.AuthorID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			return nil, err
		}
		if author.Username == "" {
			continue
		}

		sourceID, err := node(author.Username)
		if err != nil {
			return nil, err
		}
		for _, mention := range dedupe(post.Mentions) {
			if mention == author.Username {
				continue
			}
			targetID, err := node(mention)
			if err != nil {
				return nil, err
			}
			if _, err := s.graph.UpsertEdge(ctx, sourceID, targetID, common.EdgeTypeMentions); err != nil {
				return nil, err
			}
			report.EdgesTouched++
		}
	}

	logger.Info("mention network built", "posts", report.PostsScanned, "nodes", report.NodesTouched, "edges", report.EdgesTouched)
	return report, nil
}

// ComputeMetrics runs PageRank and community detection over the stored graph
// and writes the scores back per node. The two analyzer passes run
// concurrently; write-backs go through the node's stable string id.
func (s *Service) ComputeMetrics(ctx context.Context) error {
	nodes, edges, err := s.loadGraph(ctx)
	if err != nil {
		return err
	}
	if len(nodes) == 0 {
		logger.Info("graph empty, skipping metrics")
		return nil
	}

	byID := make(map[int64]string, len(nodes))
	refs := make([]brain.GraphNodeRef, 0, len(nodes))
	for _, node := range nodes {
		byID[node.ID] = node.NodeID
		refs = append(refs, brain.GraphNodeRef{ID: node.NodeID, Type: node.NodeType})
	}

	edgeRefs := make([]brain.GraphEdgeRef, 0, len(edges))
	for _, edge := range edges {
		source, sourceOK := byID[edge.SourceID]
		target, targetOK := byID[edge.TargetID]
		if !sourceOK || !targetOK {
			continue
		}
		edgeRefs = append(edgeRefs, brain.GraphEdgeRef{Source: source, Target: target, Weight: edge.Weight})
	}

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		ranks, err := s.brain.PageRank(groupCtx, refs, edgeRefs, 0)
		if err != nil {
			return fmt.Errorf("pagerank: %w", err)
		}
		for _, rank := range ranks {
			if err := s.graph.UpdateNodeRank(groupCtx, rank.ID, rank.Pagerank); err != nil {
				return err
			}
		}
		return nil
	})

	group.Go(func() error {
		result, err := s.brain.DetectCommunities(groupCtx, refs, edgeRefs)
		if err != nil {
			return fmt.Errorf("communities: %w", err)
		}
		for _, assignment := range result.Nodes {
			if err := s.graph.UpdateNodeCommunity(groupCtx, assignment.ID, assignment.CommunityID); err != nil {
				return err
			}
		}
		return nil
	})

	if err := group.Wait(); err != nil {
		return err
	}
	logger.Info("graph metrics computed", "nodes", len(nodes), "edges", len(edgeRefs))
	return nil
}

func (s *Service) loadGraph(ctx context.Context) ([]common.GraphNode, []common.GraphEdge, error) {
	var nodes []common.GraphNode
	for skip := 0; ; skip += s.pageSize {
		page, err := s.graph.ListNodes(ctx, "", skip, s.pageSize)
		if err != nil {
			return nil, nil, err
		}
		nodes = append(nodes, page...)
		if len(page) < s.pageSize {
			break
		}
	}

	var edges []common.GraphEdge
	for skip := 0; ; skip += s.pageSize {
		page, err := s.graph.ListEdges(ctx, "", skip, s.pageSize)
		if err != nil {
			return nil, nil, err
		}
		edges = append(edges, page...)
		if len(page) < s.pageSize {
			break
		}
	}
	return nodes, edges, nil
}

// runConfig is the JSON shape of a graph_analysis job's config.
type runConfig struct {
	GraphType string `json:"graph_type"`
	Hours     int    `json:"hours"`
}

// Run executes a graph_analysis job: build the requested network over the
// configured window, then recompute metrics.
func (s *Service) Run(ctx context.Context, a *common.Analysis) error {
	cfg := runConfig{GraphType: "hashtag", Hours: 24}
	if len(a.Config) > 0 {
		if err := json.Unmarshal(a.Config, &cfg); err != nil {
			return fmt.Errorf("graph config: %w", err)
		}
	}
	if cfg.Hours <= 0 {
		cfg.Hours = 24
	}
	since := time.Now().Add(-time.Duration(cfg.Hours) * time.Hour)

	switch cfg.GraphType {
	case "hashtag", "":
		if _, err := s.BuildHashtagNetwork(ctx, since); err != nil {
			return err
		}
	case "mention":
		if _, err := s.BuildMentionNetwork(ctx, since); err != nil {
			return err
		}
	case "all":
		if _, err := s.BuildHashtagNetwork(ctx, since); err != nil {
			return err
		}
		if _, err := s.BuildMentionNetwork(ctx, since); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown graph type %q", cfg.GraphType)
	}

	return s.ComputeMetrics(ctx)
}

// dedupe keeps first occurrences, preserving order.
func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, value := range values {
		if value == "" {
			continue
		}
		if _, dup := seen[value]; dup {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}
