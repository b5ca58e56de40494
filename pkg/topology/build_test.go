package topology

import (
	"reflect"
	"testing"

	"github.com/gwmap/gwmap/pkg/graph"
	"github.com/gwmap/gwmap/pkg/resource"
)

// scenarioSnapshot builds the canonical end-to-end topology: one class,
// one gateway with two listeners, one HTTPRoute with an 80/20 canary
// split, and two ready endpoints behind the primary service.
func scenarioSnapshot() *resource.Snapshot {
	snap := resource.NewSnapshot()
	snap.Classes = []resource.GatewayClass{
		{Name: "istio", Controller: "istio.io/gateway-controller", Accepted: "True"},
	}
	snap.Gateways = []resource.Gateway{
		{
			Namespace: "default", Name: "api-gateway", ClassName: "istio",
			Listeners: []resource.Listener{
				{Protocol: "HTTPS", Port: 443, TLSMode: "Terminate"},
				{Protocol: "HTTP", Port: 80},
			},
			Addresses: []string{"203.0.113.10"},
			Status:    "Programmed",
		},
	}
	snap.Routes = []resource.Route{
		{
			Kind: resource.RouteHTTP, Namespace: "default", Name: "api-route",
			Hostnames:  []string{"api.example.com"},
			ParentRefs: []resource.ParentRef{{Name: "api-gateway"}},
		},
	}
	snap.Rules = []resource.RouteRule{
		{
			RouteKind: resource.RouteHTTP, RouteNamespace: "default", RouteName: "api-route",
			Index: 0, Match: "PathPrefix /",
			Backends: []resource.WeightedBackendRef{
				{BackendRef: resource.BackendRef{Name: "api-service", Port: 8080}, Weight: 80},
				{BackendRef: resource.BackendRef{Name: "api-service-canary", Port: 8080}, Weight: 20},
			},
		},
	}
	snap.Backends = []resource.Backend{
		{Namespace: "default", Name: "api-service", Kind: "Service", Ports: []int{8080}, PodCount: 2},
		{Namespace: "default", Name: "api-service-canary", Kind: "Service", Ports: []int{8080}, PodCount: 1},
	}
	snap.Endpoints = []resource.Endpoint{
		{ServiceNamespace: "default", ServiceName: "api-service", PodName: "api-7d4b9c-x2x4j", PodIP: "10.244.1.17", Ready: true},
		{ServiceNamespace: "default", ServiceName: "api-service", PodName: "api-7d4b9c-k9f2p", PodIP: "10.244.2.31", Ready: true},
	}
	return snap
}

func TestBuildEndToEndScenario(t *testing.T) {
	g, summary, err := Build(scenarioSnapshot(), Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	wantNodes := map[graph.NodeType]int{
		graph.TypeGatewayClass: 1,
		graph.TypeGateway:      1,
		graph.TypeListener:     2,
		graph.TypeRoute:        1,
		graph.TypeRule:         1,
		graph.TypeBackend:      2,
		graph.TypeEndpoint:     2,
	}
	for typ, want := range wantNodes {
		if got := len(g.NodesByType(typ)); got != want {
			t.Errorf("%s nodes = %d, want %d", typ, got, want)
		}
	}

	ruleID := graph.NodeID("rule", "default", "api-route", "0")
	targets := g.EdgesFromKind(ruleID, graph.EdgeBackendRef)
	if len(targets) != 2 {
		t.Fatalf("backend edges = %d, want 2", len(targets))
	}
	percents := map[string]int{}
	for _, e := range targets {
		percents[e.To] = e.Meta["percent"].(int)
	}
	if percents[graph.NodeID("svc", "default", "api-service")] != 80 {
		t.Errorf("api-service percent = %d, want 80", percents[graph.NodeID("svc", "default", "api-service")])
	}
	if percents[graph.NodeID("svc", "default", "api-service-canary")] != 20 {
		t.Errorf("canary percent = %d, want 20", percents[graph.NodeID("svc", "default", "api-service-canary")])
	}

	svcID := graph.NodeID("svc", "default", "api-service")
	if got := len(g.EdgesFromKind(svcID, graph.EdgeServes)); got != 2 {
		t.Errorf("endpoint edges = %d, want 2", got)
	}

	if summary.Findings() != 0 {
		t.Errorf("findings = %d, want 0: %+v", summary.Findings(), summary)
	}
	if summary.Counts["gateways"] != 1 || summary.Counts["endpoints"] != 2 {
		t.Errorf("counts = %v", summary.Counts)
	}
}

func TestBuildSummaryDeterministic(t *testing.T) {
	_, first, err := Build(scenarioSnapshot(), Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	_, second, err := Build(scenarioSnapshot(), Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("summaries differ across identical builds:\n%+v\n%+v", first, second)
	}
}

func TestBuildParentRefNamespaceDefault(t *testing.T) {
	// A same-named gateway exists both in the route's own namespace and
	// elsewhere; the ref without a namespace must resolve to the route's
	// namespace.
	snap := resource.NewSnapshot()
	snap.Gateways = []resource.Gateway{
		{Namespace: "team-a", Name: "shared-gw", ClassName: "istio"},
		{Namespace: "infra", Name: "shared-gw", ClassName: "istio"},
	}
	snap.Routes = []resource.Route{
		{Kind: resource.RouteHTTP, Namespace: "team-a", Name: "r",
			ParentRefs: []resource.ParentRef{{Name: "shared-gw"}}},
	}

	g, summary, err := Build(snap, Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	teamGW := graph.NodeID("gw", "team-a", "shared-gw")
	infraGW := graph.NodeID("gw", "infra", "shared-gw")
	if got := len(g.EdgesFromKind(teamGW, graph.EdgeAttached)); got != 1 {
		t.Errorf("team-a gateway attached edges = %d, want 1", got)
	}
	if got := len(g.EdgesFromKind(infraGW, graph.EdgeAttached)); got != 0 {
		t.Errorf("infra gateway attached edges = %d, want 0", got)
	}
	if len(summary.UnresolvedParents) != 0 {
		t.Errorf("unresolved parents = %v", summary.UnresolvedParents)
	}
}

func TestBuildUnknownParent(t *testing.T) {
	snap := resource.NewSnapshot()
	snap.Routes = []resource.Route{
		{Kind: resource.RouteHTTP, Namespace: "default", Name: "r",
			ParentRefs: []resource.ParentRef{{Name: "no-such-gateway"}}},
	}

	g, summary, err := Build(snap, Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(summary.UnresolvedParents) != 1 {
		t.Fatalf("unresolved parents = %v, want 1 entry", summary.UnresolvedParents)
	}
	// The route is still retained as a node.
	if got := len(g.NodesByType(graph.TypeRoute)); got != 1 {
		t.Errorf("route nodes = %d, want 1", got)
	}
}

func TestBuildUnresolvedClass(t *testing.T) {
	snap := resource.NewSnapshot()
	snap.Gateways = []resource.Gateway{
		{Namespace: "default", Name: "gw", ClassName: "missing-class"},
	}

	g, summary, err := Build(snap, Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(summary.UnresolvedClasses) != 1 {
		t.Fatalf("unresolved classes = %v, want 1 entry", summary.UnresolvedClasses)
	}
	gwID := graph.NodeID("gw", "default", "gw")
	if _, ok := g.Node(gwID); !ok {
		t.Error("gateway with unresolved class must be retained")
	}
	if got := g.InDegree(gwID); got != 0 {
		t.Errorf("gateway in-degree = %d, want 0 (implements edge omitted)", got)
	}
}

func TestBuildCrossNamespaceGating(t *testing.T) {
	base := func() *resource.Snapshot {
		snap := resource.NewSnapshot()
		snap.Gateways = []resource.Gateway{{Namespace: "team-a", Name: "gw", ClassName: "istio"}}
		snap.Routes = []resource.Route{
			{Kind: resource.RouteHTTP, Namespace: "team-a", Name: "r",
				ParentRefs: []resource.ParentRef{{Name: "gw"}}},
		}
		snap.Rules = []resource.RouteRule{
			{RouteKind: resource.RouteHTTP, RouteNamespace: "team-a", RouteName: "r", Index: 0,
				Backends: []resource.WeightedBackendRef{
					{BackendRef: resource.BackendRef{Namespace: "team-b", Name: "shared"}, Weight: 1},
				}},
		}
		snap.Backends = []resource.Backend{{Namespace: "team-b", Name: "shared", Kind: "Service"}}
		return snap
	}

	grant := resource.ReferenceGrant{
		Namespace: "team-b", Name: "allow",
		From: []resource.GrantFrom{{Kind: "HTTPRoute", Namespace: "team-a"}},
		To:   []resource.GrantTo{{Kind: "Service", Name: "shared"}},
	}

	ruleID := graph.NodeID("rule", "team-a", "r", "0")
	svcID := graph.NodeID("svc", "team-b", "shared")

	t.Run("WithGrant", func(t *testing.T) {
		snap := base()
		snap.Grants = []resource.ReferenceGrant{grant}
		g, summary, err := Build(snap, Options{})
		if err != nil {
			t.Fatalf("Build: %v", err)
		}
		if got := len(g.EdgesFromKind(ruleID, graph.EdgeBackendRef)); got != 1 {
			t.Errorf("backend edges = %d, want 1", got)
		}
		if len(summary.BlockedReferences) != 0 {
			t.Errorf("blocked = %v, want none", summary.BlockedReferences)
		}
	})

	t.Run("WithoutGrant", func(t *testing.T) {
		g, summary, err := Build(base(), Options{})
		if err != nil {
			t.Fatalf("Build: %v", err)
		}
		if got := len(g.EdgesFromKind(ruleID, graph.EdgeBackendRef)); got != 0 {
			t.Errorf("backend edges = %d, want 0 (blocked)", got)
		}
		if len(summary.BlockedReferences) != 1 {
			t.Errorf("blocked = %v, want exactly 1", summary.BlockedReferences)
		}
		// The backend node itself stays.
		if _, ok := g.Node(svcID); !ok {
			t.Error("blocked backend node must be retained")
		}
	})

	t.Run("GrantUnrestrictedName", func(t *testing.T) {
		snap := base()
		g := grant
		g.To = []resource.GrantTo{{Kind: "Service"}}
		snap.Grants = []resource.ReferenceGrant{g}
		gr, summary, err := Build(snap, Options{})
		if err != nil {
			t.Fatalf("Build: %v", err)
		}
		if got := len(gr.EdgesFromKind(ruleID, graph.EdgeBackendRef)); got != 1 {
			t.Errorf("backend edges = %d, want 1", got)
		}
		if len(summary.BlockedReferences) != 0 {
			t.Errorf("blocked = %v", summary.BlockedReferences)
		}
	})

	t.Run("GrantWrongKind", func(t *testing.T) {
		snap := base()
		g := grant
		g.From = []resource.GrantFrom{{Kind: "GRPCRoute", Namespace: "team-a"}}
		snap.Grants = []resource.ReferenceGrant{g}
		_, summary, err := Build(snap, Options{})
		if err != nil {
			t.Fatalf("Build: %v", err)
		}
		if len(summary.BlockedReferences) != 1 {
			t.Errorf("blocked = %v, want 1", summary.BlockedReferences)
		}
	})
}

func TestBuildMissingBackendDistinctFromBlocked(t *testing.T) {
	snap := resource.NewSnapshot()
	snap.Routes = []resource.Route{
		{Kind: resource.RouteHTTP, Namespace: "a", Name: "r"},
	}
	snap.Rules = []resource.RouteRule{
		{RouteKind: resource.RouteHTTP, RouteNamespace: "a", RouteName: "r", Index: 0,
			Backends: []resource.WeightedBackendRef{
				{BackendRef: resource.BackendRef{Namespace: "b", Name: "ghost"}, Weight: 1},
			}},
	}

	_, summary, err := Build(snap, Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(summary.MissingBackends) != 1 || len(summary.BlockedReferences) != 0 {
		t.Errorf("missing = %v, blocked = %v; want 1 missing, 0 blocked",
			summary.MissingBackends, summary.BlockedReferences)
	}
}

func TestBuildOrphanGateway(t *testing.T) {
	snap := resource.NewSnapshot()
	snap.Classes = []resource.GatewayClass{{Name: "istio"}}
	snap.Gateways = []resource.Gateway{{Namespace: "default", Name: "lonely", ClassName: "istio"}}

	g, summary, err := Build(snap, Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(summary.GatewaysWithoutRoutes) != 1 {
		t.Fatalf("gateways without routes = %v, want 1", summary.GatewaysWithoutRoutes)
	}
	n, ok := g.Node(graph.NodeID("gw", "default", "lonely"))
	if !ok {
		t.Fatal("orphan gateway must never be omitted")
	}
	if marked, _ := n.Meta["no_routes"].(bool); !marked {
		t.Error("orphan gateway missing no_routes marker")
	}
}

func TestBuildWeightZeroEdgeRendered(t *testing.T) {
	snap := resource.NewSnapshot()
	snap.Routes = []resource.Route{{Kind: resource.RouteHTTP, Namespace: "d", Name: "r"}}
	snap.Rules = []resource.RouteRule{
		{RouteKind: resource.RouteHTTP, RouteNamespace: "d", RouteName: "r", Index: 0,
			Backends: []resource.WeightedBackendRef{
				{BackendRef: resource.BackendRef{Name: "live"}, Weight: 1},
				{BackendRef: resource.BackendRef{Name: "drained"}, Weight: 0},
			}},
	}
	snap.Backends = []resource.Backend{
		{Namespace: "d", Name: "live", Kind: "Service"},
		{Namespace: "d", Name: "drained", Kind: "Service"},
	}

	g, _, err := Build(snap, Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	edges := g.EdgesFromKind(graph.NodeID("rule", "d", "r", "0"), graph.EdgeBackendRef)
	if len(edges) != 2 {
		t.Fatalf("backend edges = %d, want 2 (weight 0 edge must be rendered)", len(edges))
	}
	for _, e := range edges {
		if e.To == graph.NodeID("svc", "d", "drained") && e.Meta["percent"].(int) != 0 {
			t.Errorf("drained percent = %v, want 0", e.Meta["percent"])
		}
	}
}

func TestBuildIncludeGrants(t *testing.T) {
	snap := resource.NewSnapshot()
	snap.Backends = []resource.Backend{{Namespace: "team-b", Name: "shared", Kind: "Service"}}
	snap.Grants = []resource.ReferenceGrant{
		{Namespace: "team-b", Name: "allow",
			From: []resource.GrantFrom{{Kind: "HTTPRoute", Namespace: "team-a"}},
			To:   []resource.GrantTo{{Kind: "Service"}}},
	}

	g, _, err := Build(snap, Options{IncludeGrants: true})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if got := len(g.NodesByType(graph.TypeGrant)); got != 1 {
		t.Fatalf("grant nodes = %d, want 1", got)
	}
	grantID := graph.NodeID("grant", "team-b", "allow")
	if got := len(g.EdgesFromKind(grantID, graph.EdgeGrants)); got != 1 {
		t.Errorf("grant edges = %d, want 1", got)
	}

	// Without the option, no grant nodes appear.
	g2, _, err := Build(snap, Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if got := len(g2.NodesByType(graph.TypeGrant)); got != 0 {
		t.Errorf("grant nodes without option = %d, want 0", got)
	}
}

func TestBuildEmptySnapshot(t *testing.T) {
	g, summary, err := Build(resource.NewSnapshot(), Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if g.NodeCount() != 0 || g.EdgeCount() != 0 {
		t.Errorf("graph = %d nodes, %d edges; want empty", g.NodeCount(), g.EdgeCount())
	}
	if summary.Findings() != 0 {
		t.Errorf("findings = %d, want 0", summary.Findings())
	}
}

func TestBuildDuplicateGatewayFatal(t *testing.T) {
	snap := resource.NewSnapshot()
	snap.Gateways = []resource.Gateway{
		{Namespace: "d", Name: "gw", ClassName: "istio"},
		{Namespace: "d", Name: "gw", ClassName: "istio"},
	}
	if _, _, err := Build(snap, Options{}); err == nil {
		t.Fatal("Build with duplicate node IDs must fail")
	}
}

func TestBuildDistinguishesDottedNames(t *testing.T) {
	// Route names are DNS subdomains, so "api-v1" and "api.v1" are both
	// legal and must stay separate nodes rather than collide.
	snap := resource.NewSnapshot()
	snap.Gateways = []resource.Gateway{
		{Namespace: "default", Name: "gw", ClassName: "istio"},
	}
	snap.Routes = []resource.Route{
		{Kind: resource.RouteHTTP, Namespace: "default", Name: "api-v1",
			ParentRefs: []resource.ParentRef{{Name: "gw"}}},
		{Kind: resource.RouteHTTP, Namespace: "default", Name: "api.v1",
			ParentRefs: []resource.ParentRef{{Name: "gw"}}},
	}

	g, _, err := Build(snap, Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if got := len(g.NodesByType(graph.TypeRoute)); got != 2 {
		t.Errorf("route nodes = %d, want 2", got)
	}
}
