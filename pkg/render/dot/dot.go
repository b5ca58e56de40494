package dot

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/gwmap/gwmap/pkg/graph"
	"github.com/gwmap/gwmap/pkg/render"
)

// Options configures DOT rendering.
type Options struct {
	// Mode selects the layout. Zero value falls back to ModeDetailed.
	Mode render.Mode
}

// fillColors maps entity types to node fill colors, mirroring the style
// classes of the Mermaid renderer.
var fillColors = map[graph.NodeType]string{
	graph.TypeGatewayClass: "#e8daef",
	graph.TypeGateway:      "#d6eaf8",
	graph.TypeListener:     "#ebf5fb",
	graph.TypeRoute:        "#d5f5e3",
	graph.TypeRule:         "#fef9e7",
	graph.TypeBackend:      "#fdebd0",
	graph.TypeEndpoint:     "#fadbd8",
	graph.TypeGrant:        "#f2f3f4",
}

// ToDOT converts a topology graph to Graphviz DOT format. Detailed mode
// clusters each gateway with its listeners; overview mode clusters the
// four layers and collapses rules. Output is deterministic: the graph's
// accessors iterate in sorted-ID order.
func ToDOT(g *graph.Graph, opts Options) string {
	if opts.Mode == "" {
		opts.Mode = render.ModeDetailed
	}

	var buf bytes.Buffer
	buf.WriteString("digraph topology {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontsize=12];\n")
	buf.WriteString("\n")

	if g.NodeCount() == 0 {
		buf.WriteString("  empty [label=\"no gateway resources found\", fillcolor=white];\n")
		buf.WriteString("}\n")
		return buf.String()
	}

	if opts.Mode == render.ModeOverview {
		writeOverview(&buf, g)
	} else {
		writeDetailed(&buf, g)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func writeDetailed(buf *bytes.Buffer, g *graph.Graph) {
	for _, gw := range g.NodesByType(graph.TypeGateway) {
		fmt.Fprintf(buf, "  subgraph cluster_%s {\n", gw.ID)
		fmt.Fprintf(buf, "    label=%q;\n", "Gateway: "+gw.Label)
		writeNode(buf, "    ", gw)
		for _, e := range g.EdgesFromKind(gw.ID, graph.EdgeListens) {
			if lis, ok := g.Node(e.To); ok {
				writeNode(buf, "    ", lis)
			}
		}
		buf.WriteString("  }\n")
	}

	for _, typ := range []graph.NodeType{
		graph.TypeGatewayClass, graph.TypeRoute, graph.TypeRule,
		graph.TypeBackend, graph.TypeEndpoint, graph.TypeGrant,
	} {
		for _, n := range g.NodesByType(typ) {
			writeNode(buf, "  ", n)
		}
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		writeEdge(buf, e)
	}
}

func writeOverview(buf *bytes.Buffer, g *graph.Graph) {
	layers := []struct {
		typ   graph.NodeType
		title string
	}{
		{graph.TypeGatewayClass, "GatewayClasses"},
		{graph.TypeGateway, "Gateways"},
		{graph.TypeRoute, "Routes"},
		{graph.TypeBackend, "Backends"},
	}
	for _, layer := range layers {
		nodes := g.NodesByType(layer.typ)
		if len(nodes) == 0 {
			continue
		}
		fmt.Fprintf(buf, "  subgraph cluster_%s {\n    label=%q;\n", layer.typ, layer.title)
		for _, n := range nodes {
			writeNode(buf, "    ", n)
		}
		buf.WriteString("  }\n")
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		if e.Kind == graph.EdgeImplements || e.Kind == graph.EdgeAttached {
			writeEdge(buf, e)
		}
	}

	type pair struct{ from, to string }
	seen := make(map[pair]bool)
	for _, rt := range g.NodesByType(graph.TypeRoute) {
		for _, re := range g.EdgesFromKind(rt.ID, graph.EdgeRule) {
			for _, be := range g.EdgesFromKind(re.To, graph.EdgeBackendRef) {
				p := pair{rt.ID, be.To}
				if seen[p] {
					continue
				}
				seen[p] = true
				fmt.Fprintf(buf, "  %q -> %q [label=\"backend\"];\n", rt.ID, be.To)
			}
		}
	}
}

func writeNode(buf *bytes.Buffer, prefix string, n *graph.Node) {
	label := strings.ReplaceAll(nodeLabel(n), "<br/>", "\\n")
	fmt.Fprintf(buf, "%s%q [label=%q, fillcolor=%q];\n", prefix, n.ID, label, fillColors[n.Type])
}

func nodeLabel(n *graph.Node) string {
	switch n.Type {
	case graph.TypeGatewayClass:
		return "GatewayClass: " + n.Label
	case graph.TypeGateway:
		label := n.Label
		if addrs, _ := n.Meta["addresses"].([]string); len(addrs) > 0 {
			label += "<br/>" + strings.Join(addrs, ", ")
		}
		if marked, _ := n.Meta["no_routes"].(bool); marked {
			label += "<br/>no routes attached"
		}
		return label
	case graph.TypeRoute:
		kind, _ := n.Meta["kind"].(string)
		return kind + ": " + n.Label
	default:
		return n.Label
	}
}

func writeEdge(buf *bytes.Buffer, e graph.Edge) {
	if e.Kind == graph.EdgeBackendRef {
		percent, _ := e.Meta["percent"].(int)
		fmt.Fprintf(buf, "  %q -> %q [label=\"%d%%\"];\n", e.From, e.To, percent)
		return
	}
	fmt.Fprintf(buf, "  %q -> %q [label=%q];\n", e.From, e.To, string(e.Kind))
}

// RenderSVG renders a DOT document to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	parsed, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer parsed.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, parsed, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
