package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/gwmap/gwmap/pkg/graph"
)

type topology struct {
	Nodes []node `json:"nodes"`
	Edges []edge `json:"edges"`
}

type node struct {
	ID    string         `json:"id"`
	Type  string         `json:"type"`
	Label string         `json:"label,omitempty"`
	Meta  graph.Metadata `json:"meta,omitempty"`
}

type edge struct {
	From string         `json:"from"`
	To   string         `json:"to"`
	Kind string         `json:"kind"`
	Meta graph.Metadata `json:"meta,omitempty"`
}

// WriteJSON encodes a topology graph as JSON and writes it to w.
// Nodes and edges appear in the graph's deterministic sorted order,
// so equal graphs produce identical output.
func WriteJSON(g *graph.Graph, w io.Writer) error {
	nodes := g.Nodes()
	edges := g.Edges()

	out := topology{
		Nodes: make([]node, len(nodes)),
		Edges: make([]edge, len(edges)),
	}

	for i, n := range nodes {
		out.Nodes[i] = node{
			ID:    n.ID,
			Type:  string(n.Type),
			Label: n.Label,
			Meta:  n.Meta,
		}
	}
	for i, e := range edges {
		out.Edges[i] = edge{
			From: e.From,
			To:   e.To,
			Kind: string(e.Kind),
			Meta: e.Meta,
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// Marshal returns the JSON encoding of a topology graph as bytes.
// The pipeline hashes this for cache keys.
func Marshal(g *graph.Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteJSON(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExportJSON writes a topology graph to a JSON file at path.
// This is a convenience wrapper around [WriteJSON] for file-based output.
func ExportJSON(g *graph.Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(g, f)
}
