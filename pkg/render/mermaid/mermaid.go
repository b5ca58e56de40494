package mermaid

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gwmap/gwmap/pkg/graph"
	"github.com/gwmap/gwmap/pkg/render"
)

// Options configures Mermaid rendering.
type Options struct {
	// Mode selects the layout. Zero value falls back to ModeDetailed.
	Mode render.Mode

	// Focus restricts detailed mode to a single gateway ("namespace/name")
	// and everything reachable from it. Ignored in overview mode.
	Focus string
}

const indent = "    "

// Render emits a Mermaid flowchart for the topology graph.
//
// Output is deterministic and idempotent: nodes and edges are written in
// sorted-ID order and the text contains no timestamps, so rendering an
// unchanged graph twice produces byte-identical documents. An empty graph
// renders a minimal diagram with an explanatory annotation rather than
// failing.
func Render(g *graph.Graph, opts Options) (string, error) {
	if opts.Mode == "" {
		opts.Mode = render.ModeDetailed
	}

	var b strings.Builder
	b.WriteString("flowchart LR\n")

	if g.NodeCount() == 0 {
		b.WriteString(indent + `empty(["no gateway resources found"])` + "\n")
		return b.String(), nil
	}

	included, err := includedNodes(g, opts)
	if err != nil {
		return "", err
	}

	switch opts.Mode {
	case render.ModeOverview:
		writeOverview(&b, g, included)
	default:
		writeDetailed(&b, g, included)
	}

	writeStyles(&b, g, included, opts.Mode)
	return b.String(), nil
}

// includedNodes returns the set of node IDs to render. Without a focus
// every node is included; with one, only the focused gateway's subtree
// plus its implementing class.
func includedNodes(g *graph.Graph, opts Options) (map[string]bool, error) {
	included := make(map[string]bool, g.NodeCount())
	if opts.Focus == "" || opts.Mode == render.ModeOverview {
		for _, n := range g.Nodes() {
			included[n.ID] = true
		}
		return included, nil
	}

	var start *graph.Node
	for _, n := range g.NodesByType(graph.TypeGateway) {
		if n.Label == opts.Focus {
			start = n
			break
		}
	}
	if start == nil {
		return nil, fmt.Errorf("focus gateway %q not found", opts.Focus)
	}

	queue := []string{start.ID}
	included[start.ID] = true
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, e := range g.EdgesFrom(id) {
			if !included[e.To] {
				included[e.To] = true
				queue = append(queue, e.To)
			}
		}
	}
	// Pull in the class implementing the focused gateway.
	for _, c := range g.NodesByType(graph.TypeGatewayClass) {
		for _, e := range g.EdgesFromKind(c.ID, graph.EdgeImplements) {
			if e.To == start.ID {
				included[c.ID] = true
			}
		}
	}
	return included, nil
}

// detailedTypes are the free-standing node types emitted after the gateway
// subgraphs, in this order.
var detailedTypes = []graph.NodeType{
	graph.TypeGatewayClass,
	graph.TypeRoute,
	graph.TypeRule,
	graph.TypeBackend,
	graph.TypeEndpoint,
	graph.TypeGrant,
}

func writeDetailed(b *strings.Builder, g *graph.Graph, included map[string]bool) {
	// One subgraph per gateway holding the gateway node and its listeners.
	// Routes and everything downstream stay outside the subgraphs: Mermaid
	// places a node in at most one subgraph, and a route can attach to
	// several gateways.
	for _, gw := range g.NodesByType(graph.TypeGateway) {
		if !included[gw.ID] {
			continue
		}
		fmt.Fprintf(b, "%ssubgraph sg_%s[%q]\n", indent, gw.ID, "Gateway: "+gw.Label)
		writeNode(b, indent+indent, gw)
		for _, e := range g.EdgesFromKind(gw.ID, graph.EdgeListens) {
			if lis, ok := g.Node(e.To); ok {
				writeNode(b, indent+indent, lis)
			}
		}
		if noRoutes(gw) {
			fmt.Fprintf(b, "%s%snote_%s([%q])\n", indent, indent, gw.ID, "no routes attached")
		}
		b.WriteString(indent + "end\n")
	}

	for _, typ := range detailedTypes {
		for _, n := range g.NodesByType(typ) {
			if included[n.ID] {
				writeNode(b, indent, n)
			}
		}
	}

	for _, e := range g.Edges() {
		if !included[e.From] || !included[e.To] {
			continue
		}
		writeEdge(b, e)
	}
}

// overviewLayers maps the four overview layers to their subgraph titles.
var overviewLayers = []struct {
	typ   graph.NodeType
	title string
}{
	{graph.TypeGatewayClass, "GatewayClasses"},
	{graph.TypeGateway, "Gateways"},
	{graph.TypeRoute, "Routes"},
	{graph.TypeBackend, "Backends"},
}

func writeOverview(b *strings.Builder, g *graph.Graph, included map[string]bool) {
	for _, layer := range overviewLayers {
		nodes := g.NodesByType(layer.typ)
		if len(nodes) == 0 {
			continue
		}
		fmt.Fprintf(b, "%ssubgraph layer_%s[%q]\n", indent, layer.typ, layer.title)
		for _, n := range nodes {
			if included[n.ID] {
				writeNode(b, indent+indent, n)
			}
		}
		b.WriteString(indent + "end\n")
	}

	for _, e := range g.Edges() {
		if !included[e.From] || !included[e.To] {
			continue
		}
		switch e.Kind {
		case graph.EdgeImplements, graph.EdgeAttached:
			writeEdge(b, e)
		}
	}

	// Rules are omitted in overview mode: collapse route -> rule -> backend
	// chains into direct route -> backend edges.
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
				fmt.Fprintf(b, "%s%s -->|backend| %s\n", indent, rt.ID, be.To)
			}
		}
	}
}

func writeNode(b *strings.Builder, prefix string, n *graph.Node) {
	opener, closer := shape(n.Type)
	fmt.Fprintf(b, "%s%s%s\"%s\"%s\n", prefix, n.ID, opener, escape(label(n)), closer)
}

// shape returns the Mermaid node delimiters per entity type.
func shape(t graph.NodeType) (string, string) {
	switch t {
	case graph.TypeListener, graph.TypeEndpoint:
		return "([", "])"
	case graph.TypeRule:
		return "{{", "}}"
	case graph.TypeGrant:
		return "[/", "/]"
	default:
		return "[", "]"
	}
}

// label builds the display label for a node. The field sets per type are
// part of the output contract: a gateway label always carries
// namespace/name and address, never just the name.
func label(n *graph.Node) string {
	switch n.Type {
	case graph.TypeGatewayClass:
		l := "GatewayClass: " + n.Label
		if c := metaString(n, "controller"); c != "" {
			l += "<br/>" + c
		}
		return l
	case graph.TypeGateway:
		l := n.Label + "<br/>addr: " + orDash(strings.Join(metaStrings(n, "addresses"), ", "))
		if s := metaString(n, "status"); s != "" {
			l += "<br/>status: " + s
		}
		if noRoutes(n) {
			l += "<br/>no routes attached"
		}
		return l
	case graph.TypeListener:
		l := n.Label
		if m := metaString(n, "tls_mode"); m != "" {
			l += " " + m
		}
		return l
	case graph.TypeRoute:
		l := metaString(n, "kind") + ": " + n.Label
		if hosts := metaStrings(n, "hostnames"); len(hosts) > 0 {
			l += "<br/>hosts: " + strings.Join(hosts, ", ")
		}
		return l
	case graph.TypeBackend:
		l := metaString(n, "kind") + ": " + n.Label
		if ports := metaInts(n, "ports"); len(ports) > 0 {
			l += "<br/>ports: " + joinInts(ports)
		}
		l += fmt.Sprintf("<br/>pods: %d", metaInt(n, "pod_count"))
		return l
	case graph.TypeEndpoint:
		l := n.Label + "<br/>" + metaString(n, "pod_ip")
		if ready, _ := n.Meta["ready"].(bool); ready {
			l += " ready"
		} else {
			l += " not ready"
		}
		return l
	case graph.TypeGrant:
		l := "ReferenceGrant: " + n.Label
		if from := metaString(n, "from"); from != "" {
			l += "<br/>from: " + from
		}
		return l
	default:
		return n.Label
	}
}

func writeEdge(b *strings.Builder, e graph.Edge) {
	if e.Kind == graph.EdgeBackendRef {
		fmt.Fprintf(b, "%s%s -->|%d%%| %s\n", indent, e.From, metaEdgeInt(e, "percent"), e.To)
		return
	}
	fmt.Fprintf(b, "%s%s -->|%s| %s\n", indent, e.From, e.Kind, e.To)
}

// styleDefs assigns one style class per entity type, applied consistently
// regardless of mode.
var styleDefs = []struct {
	typ   graph.NodeType
	style string
}{
	{graph.TypeGatewayClass, "fill:#e8daef,stroke:#7d3c98"},
	{graph.TypeGateway, "fill:#d6eaf8,stroke:#2874a6"},
	{graph.TypeListener, "fill:#ebf5fb,stroke:#5499c7"},
	{graph.TypeRoute, "fill:#d5f5e3,stroke:#1e8449"},
	{graph.TypeRule, "fill:#fef9e7,stroke:#b7950b"},
	{graph.TypeBackend, "fill:#fdebd0,stroke:#ca6f1e"},
	{graph.TypeEndpoint, "fill:#fadbd8,stroke:#943126"},
	{graph.TypeGrant, "fill:#f2f3f4,stroke:#707b7c"},
}

func writeStyles(b *strings.Builder, g *graph.Graph, included map[string]bool, mode render.Mode) {
	for _, def := range styleDefs {
		if mode == render.ModeOverview && !overviewType(def.typ) {
			continue
		}
		var ids []string
		for _, n := range g.NodesByType(def.typ) {
			if included[n.ID] {
				ids = append(ids, n.ID)
			}
		}
		if len(ids) == 0 {
			continue
		}
		slices.Sort(ids)
		fmt.Fprintf(b, "%sclassDef %s %s\n", indent, def.typ, def.style)
		fmt.Fprintf(b, "%sclass %s %s\n", indent, strings.Join(ids, ","), def.typ)
	}
}

func overviewType(t graph.NodeType) bool {
	switch t {
	case graph.TypeGatewayClass, graph.TypeGateway, graph.TypeRoute, graph.TypeBackend:
		return true
	}
	return false
}

func noRoutes(n *graph.Node) bool {
	marked, _ := n.Meta["no_routes"].(bool)
	return marked
}

func escape(s string) string {
	return strings.ReplaceAll(s, `"`, "#quot;")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func joinInts(ns []int) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = fmt.Sprint(n)
	}
	return strings.Join(parts, ", ")
}

func metaString(n *graph.Node, key string) string {
	s, _ := n.Meta[key].(string)
	return s
}

func metaStrings(n *graph.Node, key string) []string {
	s, _ := n.Meta[key].([]string)
	return s
}

func metaInt(n *graph.Node, key string) int {
	i, _ := n.Meta[key].(int)
	return i
}

func metaInts(n *graph.Node, key string) []int {
	s, _ := n.Meta[key].([]int)
	return s
}

func metaEdgeInt(e graph.Edge, key string) int {
	i, _ := e.Meta[key].(int)
	return i
}
