package graph

import (
	"errors"
	"maps"
	"slices"
)

var (
	// ErrInvalidNodeID is returned by [Graph.AddNode] when the node ID is
	// empty. All nodes must have non-empty identifiers.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Graph.AddNode] when a node with the
	// same ID already exists. Node IDs must be unique across the whole graph;
	// a duplicate indicates a resolver defect, not bad input.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownSourceNode is returned by [Graph.AddEdge] when the From node
	// does not exist in the graph.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [Graph.AddEdge] when the To node
	// does not exist in the graph.
	ErrUnknownTargetNode = errors.New("unknown target node")
)

// Metadata stores arbitrary key-value pairs attached to nodes or edges.
// It is commonly used to carry entity fields (addresses, ports, weights)
// through to the renderer. Metadata maps are never nil after AddNode/AddEdge.
type Metadata map[string]any

// NodeType identifies the entity kind a node represents. The renderer maps
// each type to a consistent style class and label format.
type NodeType string

// Node types for all topology entities.
const (
	TypeGatewayClass NodeType = "gatewayclass"
	TypeGateway      NodeType = "gateway"
	TypeListener     NodeType = "listener"
	TypeRoute        NodeType = "route"
	TypeRule         NodeType = "rule"
	TypeBackend      NodeType = "backend"
	TypeEndpoint     NodeType = "endpoint"
	TypeGrant        NodeType = "referencegrant"
)

// EdgeKind labels the relationship an edge represents.
type EdgeKind string

// Edge kinds produced by the resolver.
const (
	EdgeImplements EdgeKind = "implements" // class → gateway
	EdgeListens    EdgeKind = "listens"    // gateway → listener
	EdgeAttached   EdgeKind = "attached"   // gateway → route
	EdgeRule       EdgeKind = "rule"       // route → rule
	EdgeBackendRef EdgeKind = "backend"    // rule → backend (weighted)
	EdgeServes     EdgeKind = "serves"     // backend → endpoint
	EdgeGrants     EdgeKind = "grants"     // grant → backend (on request)
)

// Node is a vertex in the topology graph. Nodes are created once by the
// resolver and never mutated afterwards; the Label is what the renderer
// displays, the Meta map carries supplementary fields.
type Node struct {
	ID    string
	Type  NodeType
	Label string
	Meta  Metadata
}

// Edge is a directed, kind-labeled connection between two nodes.
type Edge struct {
	Kind EdgeKind
	From string
	To   string
	Meta Metadata
}

// Graph is an in-memory directed topology graph keyed by stable node IDs.
// All accessors return deterministically ordered results (sorted by ID)
// so that two runs over identical input produce byte-identical renderings.
//
// The zero value is not usable - use New. Graph is not safe for concurrent
// use; one analysis run builds and discards its own instance.
type Graph struct {
	nodes    map[string]*Node
	edges    []Edge
	outgoing map[string][]int // nodeID -> indices into edges
	incoming map[string][]int
	byType   map[NodeType][]string
}

// New creates an empty topology graph.
func New() *Graph {
	return &Graph{
		nodes:    make(map[string]*Node),
		outgoing: make(map[string][]int),
		incoming: make(map[string][]int),
		byType:   make(map[NodeType][]string),
	}
}

// AddNode adds a node to the graph. Returns ErrInvalidNodeID for an empty
// ID or ErrDuplicateNodeID if the ID is already taken. A duplicate is a
// caller bug and callers should treat it as fatal to the run.
func (g *Graph) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := g.nodes[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	if n.Meta == nil {
		n.Meta = Metadata{}
	}
	node := &n
	g.nodes[node.ID] = node
	g.byType[node.Type] = append(g.byType[node.Type], node.ID)
	return nil
}

// AddEdge adds a directed edge between two existing nodes. Returns
// ErrUnknownSourceNode or ErrUnknownTargetNode when an endpoint is missing;
// dangling edges are never stored.
func (g *Graph) AddEdge(e Edge) error {
	if _, ok := g.nodes[e.From]; !ok {
		return ErrUnknownSourceNode
	}
	if _, ok := g.nodes[e.To]; !ok {
		return ErrUnknownTargetNode
	}
	if e.Meta == nil {
		e.Meta = Metadata{}
	}
	idx := len(g.edges)
	g.edges = append(g.edges, e)
	g.outgoing[e.From] = append(g.outgoing[e.From], idx)
	g.incoming[e.To] = append(g.incoming[e.To], idx)
	return nil
}

// Node returns the node with the given ID and true, or nil and false.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns all nodes sorted by ID.
func (g *Graph) Nodes() []*Node {
	ids := slices.Sorted(maps.Keys(g.nodes))
	nodes := make([]*Node, len(ids))
	for i, id := range ids {
		nodes[i] = g.nodes[id]
	}
	return nodes
}

// NodesByType returns all nodes of the given type sorted by ID.
func (g *Graph) NodesByType(t NodeType) []*Node {
	ids := slices.Clone(g.byType[t])
	slices.Sort(ids)
	nodes := make([]*Node, len(ids))
	for i, id := range ids {
		nodes[i] = g.nodes[id]
	}
	return nodes
}

// Edges returns a copy of all edges sorted by (From, To, Kind).
func (g *Graph) Edges() []Edge {
	edges := slices.Clone(g.edges)
	sortEdges(edges)
	return edges
}

// EdgesFrom returns the outgoing edges of a node sorted by (To, Kind).
// Returns nil if the node has no outgoing edges or doesn't exist.
func (g *Graph) EdgesFrom(id string) []Edge {
	idxs := g.outgoing[id]
	if len(idxs) == 0 {
		return nil
	}
	edges := make([]Edge, len(idxs))
	for i, idx := range idxs {
		edges[i] = g.edges[idx]
	}
	sortEdges(edges)
	return edges
}

// EdgesFromKind returns the outgoing edges of a node restricted to one kind,
// sorted by target ID.
func (g *Graph) EdgesFromKind(id string, kind EdgeKind) []Edge {
	var edges []Edge
	for _, e := range g.EdgesFrom(id) {
		if e.Kind == kind {
			edges = append(edges, e)
		}
	}
	return edges
}

// NeighborCount returns the number of outgoing edges from the node.
// Returns 0 if the node doesn't exist.
func (g *Graph) NeighborCount(id string) int { return len(g.outgoing[id]) }

// InDegree returns the number of incoming edges to the node.
func (g *Graph) InDegree(id string) int { return len(g.incoming[id]) }

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int { return len(g.edges) }

func sortEdges(edges []Edge) {
	slices.SortFunc(edges, func(a, b Edge) int {
		if a.From != b.From {
			if a.From < b.From {
				return -1
			}
			return 1
		}
		if a.To != b.To {
			if a.To < b.To {
				return -1
			}
			return 1
		}
		if a.Kind < b.Kind {
			return -1
		}
		if a.Kind > b.Kind {
			return 1
		}
		return 0
	})
}
