package topology

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/gwmap/gwmap/pkg/graph"
	"github.com/gwmap/gwmap/pkg/resource"
)

// Options controls graph construction.
type Options struct {
	// IncludeGrants adds ReferenceGrant nodes and grant edges to the
	// graph. Grants always gate cross-namespace resolution; they only
	// appear as topology nodes when explicitly requested.
	IncludeGrants bool
}

// Build resolves all relationships in the snapshot and returns the derived
// topology graph together with the run summary.
//
// Resolution is a single sequential pass with no shared state across runs.
// Non-fatal conditions (unresolved classes, blocked cross-namespace
// references, gateways without routes, missing backends) accumulate into
// the summary; only graph integrity violations return an error, since they
// indicate a resolver defect rather than bad input.
func Build(snap *resource.Snapshot, opts Options) (*graph.Graph, *Summary, error) {
	b := &builder{
		g:        graph.New(),
		summary:  newSummary(snap),
		snap:     snap,
		gateways: make(map[string]string),
		routes:   make(map[routeKey]string),
		backends: make(map[string]resource.Backend),
		classes:  make(map[string]bool),
		attached: make(map[string]bool),
	}

	steps := []func() error{
		b.addClasses,
		b.addGateways,
		b.addRoutes,
		b.addRules,
		b.addBackends,
		b.addTargets,
		b.addEndpoints,
	}
	if opts.IncludeGrants {
		steps = append(steps, b.addGrants)
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, nil, err
		}
	}
	b.markOrphanGateways()

	return b.g, b.summary, nil
}

type routeKey struct {
	kind      resource.RouteKind
	namespace string
	name      string
}

type builder struct {
	g       *graph.Graph
	summary *Summary
	snap    *resource.Snapshot

	gateways map[string]string // "ns/name" -> node ID
	routes   map[routeKey]string
	backends map[string]resource.Backend // "ns/name" -> entity
	classes  map[string]bool
	attached map[string]bool // gateway node ID -> has at least one route
}

func nn(namespace, name string) string { return namespace + "/" + name }

func (b *builder) addClasses() error {
	for _, c := range b.snap.Classes {
		b.classes[c.Name] = true
		err := b.g.AddNode(graph.Node{
			ID:    graph.NodeID("class", c.Name),
			Type:  graph.TypeGatewayClass,
			Label: c.Name,
			Meta: graph.Metadata{
				"controller": c.Controller,
				"accepted":   c.Accepted,
			},
		})
		if err != nil {
			return fmt.Errorf("class %s: %w", c.Name, err)
		}
	}
	return nil
}

func (b *builder) addGateways() error {
	for _, gw := range b.snap.Gateways {
		id := graph.NodeID("gw", gw.Namespace, gw.Name)
		b.gateways[nn(gw.Namespace, gw.Name)] = id
		err := b.g.AddNode(graph.Node{
			ID:    id,
			Type:  graph.TypeGateway,
			Label: nn(gw.Namespace, gw.Name),
			Meta: graph.Metadata{
				"class":     gw.ClassName,
				"addresses": slices.Clone(gw.Addresses),
				"status":    gw.Status,
			},
		})
		if err != nil {
			return fmt.Errorf("gateway %s: %w", nn(gw.Namespace, gw.Name), err)
		}

		// Listeners are embedded: one node per listener, inside the
		// gateway's subgraph only.
		for i, l := range gw.Listeners {
			lid := graph.NodeID("lis", gw.Namespace, gw.Name, strconv.Itoa(i))
			label := fmt.Sprintf("%s:%d", l.Protocol, l.Port)
			err := b.g.AddNode(graph.Node{
				ID:    lid,
				Type:  graph.TypeListener,
				Label: label,
				Meta: graph.Metadata{
					"protocol": l.Protocol,
					"port":     l.Port,
					"tls_mode": l.TLSMode,
				},
			})
			if err != nil {
				return fmt.Errorf("listener %s/%s: %w", nn(gw.Namespace, gw.Name), label, err)
			}
			if err := b.g.AddEdge(graph.Edge{Kind: graph.EdgeListens, From: id, To: lid}); err != nil {
				return fmt.Errorf("listener edge %s: %w", lid, err)
			}
		}

		// Rule 1: class -> gateway. A gateway whose class is unknown is
		// retained with the implements edge omitted.
		if b.classes[gw.ClassName] {
			cid := graph.NodeID("class", gw.ClassName)
			if err := b.g.AddEdge(graph.Edge{Kind: graph.EdgeImplements, From: cid, To: id}); err != nil {
				return fmt.Errorf("implements edge %s: %w", id, err)
			}
		} else {
			b.summary.UnresolvedClasses = append(b.summary.UnresolvedClasses,
				fmt.Sprintf("%s -> %s", nn(gw.Namespace, gw.Name), gw.ClassName))
		}
	}
	return nil
}

func (b *builder) addRoutes() error {
	for _, rt := range b.snap.Routes {
		id := graph.NodeID("rt", strings.ToLower(string(rt.Kind)), rt.Namespace, rt.Name)
		b.routes[routeKey{rt.Kind, rt.Namespace, rt.Name}] = id
		err := b.g.AddNode(graph.Node{
			ID:    id,
			Type:  graph.TypeRoute,
			Label: nn(rt.Namespace, rt.Name),
			Meta: graph.Metadata{
				"kind":      string(rt.Kind),
				"hostnames": slices.Clone(rt.Hostnames),
			},
		})
		if err != nil {
			return fmt.Errorf("route %s: %w", nn(rt.Namespace, rt.Name), err)
		}

		// Rule 2: gateway -> route via parentRefs. A ref without a
		// namespace defaults to the route's own namespace.
		for _, ref := range rt.ParentRefs {
			ns := ref.Namespace
			if ns == "" {
				ns = rt.Namespace
			}
			gwID, ok := b.gateways[nn(ns, ref.Name)]
			if !ok {
				b.summary.UnresolvedParents = append(b.summary.UnresolvedParents,
					fmt.Sprintf("%s %s -> %s", rt.Kind, nn(rt.Namespace, rt.Name), nn(ns, ref.Name)))
				continue
			}
			if b.hasEdge(gwID, id, graph.EdgeAttached) {
				continue
			}
			if err := b.g.AddEdge(graph.Edge{Kind: graph.EdgeAttached, From: gwID, To: id}); err != nil {
				return fmt.Errorf("attach %s: %w", id, err)
			}
			b.attached[gwID] = true
		}
	}
	return nil
}

// addRules attaches each rule to its route in source index order. Index
// order is semantically meaningful - the infrastructure evaluates rules
// in order - so it is preserved through node IDs and positional metadata.
func (b *builder) addRules() error {
	rules := slices.Clone(b.snap.Rules)
	slices.SortStableFunc(rules, func(a, c resource.RouteRule) int {
		if a.RouteNamespace != c.RouteNamespace {
			return strings.Compare(a.RouteNamespace, c.RouteNamespace)
		}
		if a.RouteName != c.RouteName {
			return strings.Compare(a.RouteName, c.RouteName)
		}
		return a.Index - c.Index
	})

	for _, rule := range rules {
		routeID, ok := b.routes[routeKey{rule.RouteKind, rule.RouteNamespace, rule.RouteName}]
		if !ok {
			b.summary.UnresolvedParents = append(b.summary.UnresolvedParents,
				fmt.Sprintf("rule %d -> %s %s", rule.Index, rule.RouteKind,
					nn(rule.RouteNamespace, rule.RouteName)))
			continue
		}
		id := graph.NodeID("rule", rule.RouteNamespace, rule.RouteName, strconv.Itoa(rule.Index))
		label := fmt.Sprintf("rule %d", rule.Index)
		if rule.Match != "" {
			label += ": " + rule.Match
		}
		err := b.g.AddNode(graph.Node{
			ID:    id,
			Type:  graph.TypeRule,
			Label: label,
			Meta: graph.Metadata{
				"index": rule.Index,
				"match": rule.Match,
			},
		})
		if err != nil {
			return fmt.Errorf("rule %s: %w", id, err)
		}
		if err := b.g.AddEdge(graph.Edge{Kind: graph.EdgeRule, From: routeID, To: id}); err != nil {
			return fmt.Errorf("rule edge %s: %w", id, err)
		}
	}
	return nil
}

func (b *builder) addBackends() error {
	for _, be := range b.snap.Backends {
		b.backends[nn(be.Namespace, be.Name)] = be
		err := b.g.AddNode(graph.Node{
			ID:    graph.NodeID("svc", be.Namespace, be.Name),
			Type:  graph.TypeBackend,
			Label: nn(be.Namespace, be.Name),
			Meta: graph.Metadata{
				"kind":      be.Kind,
				"ports":     slices.Clone(be.Ports),
				"pod_count": be.PodCount,
			},
		})
		if err != nil {
			return fmt.Errorf("backend %s: %w", nn(be.Namespace, be.Name), err)
		}
	}
	return nil
}

// addTargets materializes rule -> backend edges (resolver rules 3 and 4).
// Percentages are computed from the weights of all targets in the rule;
// a blocked cross-namespace target drops the edge but not the backend
// node, and never shifts the other targets' percentages.
func (b *builder) addTargets() error {
	for _, rule := range b.snap.Rules {
		ruleID := graph.NodeID("rule", rule.RouteNamespace, rule.RouteName, strconv.Itoa(rule.Index))
		if _, ok := b.g.Node(ruleID); !ok {
			continue // rule was unresolved, already reported
		}
		percents := Percentages(rule.Backends)
		for i, ref := range rule.Backends {
			ns := ref.Namespace
			if ns == "" {
				ns = rule.RouteNamespace
			}
			backend, ok := b.backends[nn(ns, ref.Name)]
			if !ok {
				b.summary.MissingBackends = append(b.summary.MissingBackends,
					fmt.Sprintf("%s rule %d -> %s", nn(rule.RouteNamespace, rule.RouteName),
						rule.Index, nn(ns, ref.Name)))
				continue
			}
			if ns != rule.RouteNamespace && !grantPermits(b.snap.Grants, rule.RouteKind, rule.RouteNamespace, backend) {
				b.summary.BlockedReferences = append(b.summary.BlockedReferences,
					fmt.Sprintf("%s %s rule %d -> %s", rule.RouteKind,
						nn(rule.RouteNamespace, rule.RouteName), rule.Index, nn(ns, ref.Name)))
				continue
			}
			err := b.g.AddEdge(graph.Edge{
				Kind: graph.EdgeBackendRef,
				From: ruleID,
				To:   graph.NodeID("svc", ns, ref.Name),
				Meta: graph.Metadata{
					"weight":  ref.Weight,
					"percent": percents[i],
					"port":    ref.Port,
				},
			})
			if err != nil {
				return fmt.Errorf("target edge %s: %w", nn(ns, ref.Name), err)
			}
		}
	}
	return nil
}

func (b *builder) addEndpoints() error {
	for _, ep := range b.snap.Endpoints {
		id := graph.NodeID("ep", ep.ServiceNamespace, ep.ServiceName, ep.PodName)
		err := b.g.AddNode(graph.Node{
			ID:    id,
			Type:  graph.TypeEndpoint,
			Label: ep.PodName,
			Meta: graph.Metadata{
				"pod_ip": ep.PodIP,
				"ready":  ep.Ready,
			},
		})
		if err != nil {
			return fmt.Errorf("endpoint %s: %w", ep.PodName, err)
		}
		// Rule 5: backend -> endpoint by (serviceNamespace, serviceName).
		if _, ok := b.backends[nn(ep.ServiceNamespace, ep.ServiceName)]; ok {
			svcID := graph.NodeID("svc", ep.ServiceNamespace, ep.ServiceName)
			if err := b.g.AddEdge(graph.Edge{Kind: graph.EdgeServes, From: svcID, To: id}); err != nil {
				return fmt.Errorf("endpoint edge %s: %w", id, err)
			}
		}
	}
	return nil
}

func (b *builder) addGrants() error {
	for _, gr := range b.snap.Grants {
		id := graph.NodeID("grant", gr.Namespace, gr.Name)
		fromParts := make([]string, len(gr.From))
		for i, f := range gr.From {
			fromParts[i] = f.Kind + ":" + f.Namespace
		}
		err := b.g.AddNode(graph.Node{
			ID:    id,
			Type:  graph.TypeGrant,
			Label: nn(gr.Namespace, gr.Name),
			Meta:  graph.Metadata{"from": strings.Join(fromParts, ", ")},
		})
		if err != nil {
			return fmt.Errorf("grant %s: %w", nn(gr.Namespace, gr.Name), err)
		}
		for _, to := range gr.To {
			for _, be := range b.snap.Backends {
				if be.Namespace != gr.Namespace || !strings.EqualFold(be.Kind, to.Kind) {
					continue
				}
				if to.Name != "" && to.Name != be.Name {
					continue
				}
				svcID := graph.NodeID("svc", be.Namespace, be.Name)
				if b.hasEdge(id, svcID, graph.EdgeGrants) {
					continue
				}
				if err := b.g.AddEdge(graph.Edge{Kind: graph.EdgeGrants, From: id, To: svcID}); err != nil {
					return fmt.Errorf("grant edge %s: %w", svcID, err)
				}
			}
		}
	}
	return nil
}

// markOrphanGateways records gateways with zero attached routes. They stay
// in the graph and render with an explicit "no routes attached" marker.
func (b *builder) markOrphanGateways() {
	for _, gw := range b.snap.Gateways {
		id := b.gateways[nn(gw.Namespace, gw.Name)]
		if !b.attached[id] {
			if n, ok := b.g.Node(id); ok {
				n.Meta["no_routes"] = true
			}
			b.summary.GatewaysWithoutRoutes = append(b.summary.GatewaysWithoutRoutes,
				nn(gw.Namespace, gw.Name))
		}
	}
}

func (b *builder) hasEdge(from, to string, kind graph.EdgeKind) bool {
	for _, e := range b.g.EdgesFromKind(from, kind) {
		if e.To == to {
			return true
		}
	}
	return false
}

// grantPermits reports whether any ReferenceGrant authorizes a reference
// from the given route kind and namespace to the backend. Any single
// satisfying grant is sufficient: resolution is existential, there is no
// ordering dependency between grants.
func grantPermits(grants []resource.ReferenceGrant, kind resource.RouteKind, routeNS string, backend resource.Backend) bool {
	for _, gr := range grants {
		if gr.Namespace != backend.Namespace {
			continue
		}
		if !grantFromMatches(gr.From, kind, routeNS) {
			continue
		}
		if grantToMatches(gr.To, backend) {
			return true
		}
	}
	return false
}

func grantFromMatches(from []resource.GrantFrom, kind resource.RouteKind, routeNS string) bool {
	for _, f := range from {
		if strings.EqualFold(f.Kind, string(kind)) && f.Namespace == routeNS {
			return true
		}
	}
	return false
}

func grantToMatches(to []resource.GrantTo, backend resource.Backend) bool {
	for _, t := range to {
		if !strings.EqualFold(t.Kind, backend.Kind) {
			continue
		}
		if t.Name == "" || t.Name == backend.Name {
			return true
		}
	}
	return false
}
