package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rasadhq/rasad/internal/server/middleware"
	"github.com/rasadhq/rasad/pkg/common"
	"github.com/rasadhq/rasad/pkg/store"
)

// ListGraphNodesHandler pages through graph nodes, optionally by node type.
func ListGraphNodesHandler(c echo.Context) error {
	type listNodesQuery struct {
		NodeType string `query:"node_type"`
		Skip     int    `query:"skip"`
		Limit    int    `query:"limit"`
	}

	type listNodesResponse struct {
		Message string             `json:"message"`
		Nodes   []common.GraphNode `json:"nodes,omitempty"`
	}

	q := new(listNodesQuery)
	if err := c.Bind(q); err != nil {
		return c.JSON(http.StatusBadRequest, listNodesResponse{
			Message: "Invalid query parameters",
		})
	}

	cc := c.(*middleware.AppContext)
	nodes, err := cc.App.Graph.ListNodes(c.Request().Context(), q.NodeType, q.Skip, q.Limit)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, listNodesResponse{
		Message: "Nodes retrieved successfully",
		Nodes:   nodes,
	})
}

// ListGraphEdgesHandler pages through graph edges, optionally by edge type.
func ListGraphEdgesHandler(c echo.Context) error {
	type listEdgesQuery struct {
		EdgeType string `query:"edge_type"`
		Skip     int    `query:"skip"`
		Limit    int    `query:"limit"`
	}

	type listEdgesResponse struct {
		Message string             `json:"message"`
		Edges   []common.GraphEdge `json:"edges,omitempty"`
	}

	q := new(listEdgesQuery)
	if err := c.Bind(q); err != nil {
		return c.JSON(http.StatusBadRequest, listEdgesResponse{
			Message: "Invalid query parameters",
		})
	}

	cc := c.(*middleware.AppContext)
	edges, err := cc.App.Graph.ListEdges(c.Request().Context(), q.EdgeType, q.Skip, q.Limit)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, listEdgesResponse{
		Message: "Edges retrieved successfully",
		Edges:   edges,
	})
}

// GetGraphStatsHandler aggregates node and edge counts by type.
func GetGraphStatsHandler(c echo.Context) error {
	type getStatsResponse struct {
		Message string            `json:"message"`
		Stats   *store.GraphStats `json:"stats,omitempty"`
	}

	cc := c.(*middleware.AppContext)
	stats, err := cc.App.Graph.Stats(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, getStatsResponse{
		Message: "Stats retrieved successfully",
		Stats:   stats,
	})
}
