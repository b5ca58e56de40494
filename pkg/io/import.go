package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/gwmap/gwmap/pkg/graph"
)

// ReadJSON decodes a JSON topology from r into a graph.
//
// The input must be a JSON object with "nodes" and "edges" arrays.
// Each node must have "id" and "type" fields; each edge must have
// "from", "to" and "kind" fields referencing node IDs.
//
// ReadJSON returns an error if:
//   - The JSON is malformed
//   - A node has a duplicate ID
//   - An edge references an unknown node ID
//
// Errors are wrapped with context describing which node or edge caused
// the problem. Use errors.Is to check for specific graph errors.
//
// The returned graph is independent of r and can be modified safely
// after ReadJSON returns. ReadJSON does not close r.
func ReadJSON(r io.Reader) (*graph.Graph, error) {
	var data topology
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	g := graph.New()
	for _, n := range data.Nodes {
		err := g.AddNode(graph.Node{
			ID:    n.ID,
			Type:  graph.NodeType(n.Type),
			Label: n.Label,
			Meta:  restoreMeta(n.Meta),
		})
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", n.ID, err)
		}
	}
	for _, e := range data.Edges {
		err := g.AddEdge(graph.Edge{
			From: e.From,
			To:   e.To,
			Kind: graph.EdgeKind(e.Kind),
			Meta: restoreMeta(e.Meta),
		})
		if err != nil {
			return nil, fmt.Errorf("edge %s->%s: %w", e.From, e.To, err)
		}
	}

	return g, nil
}

// restoreMeta rebuilds the typed metadata values that encoding/json
// flattens: integral numbers decode as float64 and typed slices as
// []any. Renderers type-assert int, []int and []string, so a reloaded
// graph must carry the same value types as a freshly built one or its
// rendered output diverges.
func restoreMeta(m graph.Metadata) graph.Metadata {
	if len(m) == 0 {
		return m
	}
	out := make(graph.Metadata, len(m))
	for k, v := range m {
		out[k] = restoreMetaValue(v)
	}
	return out
}

func restoreMetaValue(v any) any {
	switch t := v.(type) {
	case float64:
		// All numeric metadata is integral (ports, pod counts, percents).
		return int(t)
	case []any:
		if len(t) == 0 {
			return []string{}
		}
		if _, ok := t[0].(float64); ok {
			ints := make([]int, len(t))
			for i, e := range t {
				f, _ := e.(float64)
				ints[i] = int(f)
			}
			return ints
		}
		strs := make([]string, len(t))
		for i, e := range t {
			s, _ := e.(string)
			strs[i] = s
		}
		return strs
	default:
		return v
	}
}

// ImportJSON reads a JSON file at path and returns the decoded graph.
// The error wraps the underlying cause with the file path for context.
func ImportJSON(path string) (*graph.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}
