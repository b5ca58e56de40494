package mermaid

import (
	"strings"
	"testing"

	"github.com/gwmap/gwmap/pkg/graph"
	"github.com/gwmap/gwmap/pkg/render"
	"github.com/gwmap/gwmap/pkg/resource"
	"github.com/gwmap/gwmap/pkg/topology"
)

func buildScenario(t *testing.T) *graph.Graph {
	t.Helper()
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
		{Kind: resource.RouteHTTP, Namespace: "default", Name: "api-route",
			Hostnames:  []string{"api.example.com"},
			ParentRefs: []resource.ParentRef{{Name: "api-gateway"}}},
	}
	snap.Rules = []resource.RouteRule{
		{RouteKind: resource.RouteHTTP, RouteNamespace: "default", RouteName: "api-route",
			Index: 0, Match: "PathPrefix /",
			Backends: []resource.WeightedBackendRef{
				{BackendRef: resource.BackendRef{Name: "api-service", Port: 8080}, Weight: 80},
				{BackendRef: resource.BackendRef{Name: "api-service-canary", Port: 8080}, Weight: 20},
			}},
	}
	snap.Backends = []resource.Backend{
		{Namespace: "default", Name: "api-service", Kind: "Service", Ports: []int{8080}, PodCount: 2},
		{Namespace: "default", Name: "api-service-canary", Kind: "Service", Ports: []int{8080}, PodCount: 1},
	}
	snap.Endpoints = []resource.Endpoint{
		{ServiceNamespace: "default", ServiceName: "api-service", PodName: "api-x", PodIP: "10.244.1.17", Ready: true},
		{ServiceNamespace: "default", ServiceName: "api-service", PodName: "api-y", PodIP: "10.244.2.31", Ready: true},
	}
	g, _, err := topology.Build(snap, topology.Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return g
}

func TestRenderDetailedScenario(t *testing.T) {
	g := buildScenario(t)
	out, err := Render(g, Options{Mode: render.ModeDetailed})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	wantFragments := []string{
		"flowchart LR",
		`subgraph sg_gw_default_api_gateway["Gateway: default/api-gateway"]`,
		"addr: 203.0.113.10",
		"HTTPS:443 Terminate",
		"HTTP:80",
		`HTTPRoute: default/api-route`,
		"hosts: api.example.com",
		"rule 0: PathPrefix /",
		"-->|80%| svc_default_api_service\n",
		"-->|20%| svc_default_api_service_canary\n",
		"-->|implements| gw_default_api_gateway",
		"-->|serves| ep_default_api_service_api_x",
		"classDef gateway ",
		"classDef endpoint ",
	}
	for _, frag := range wantFragments {
		if !strings.Contains(out, frag) {
			t.Errorf("output missing %q\n%s", frag, out)
		}
	}
}

func TestRenderIdempotent(t *testing.T) {
	g := buildScenario(t)
	a, err := Render(g, Options{Mode: render.ModeDetailed})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	b, err := Render(g, Options{Mode: render.ModeDetailed})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if a != b {
		t.Error("two renders of the same graph differ")
	}
}

func TestRenderDeterministicAcrossBuilds(t *testing.T) {
	a, err := Render(buildScenario(t), Options{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	b, err := Render(buildScenario(t), Options{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if a != b {
		t.Error("independent builds of the same input render differently")
	}
}

func TestRenderOverviewOmitsRulesAndEndpoints(t *testing.T) {
	g := buildScenario(t)
	out, err := Render(g, Options{Mode: render.ModeOverview})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	for _, frag := range []string{
		`subgraph layer_gatewayclass["GatewayClasses"]`,
		`subgraph layer_gateway["Gateways"]`,
		`subgraph layer_route["Routes"]`,
		`subgraph layer_backend["Backends"]`,
		"rt_httproute_default_api_route -->|backend| svc_default_api_service\n",
	} {
		if !strings.Contains(out, frag) {
			t.Errorf("output missing %q\n%s", frag, out)
		}
	}
	for _, absent := range []string{"rule_", "ep_", "lis_"} {
		if strings.Contains(out, absent) {
			t.Errorf("overview output must not contain %q nodes\n%s", absent, out)
		}
	}
}

func TestRenderEmptyGraph(t *testing.T) {
	out, err := Render(graph.New(), Options{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	want := "flowchart LR\n    empty([\"no gateway resources found\"])\n"
	if out != want {
		t.Errorf("empty diagram = %q, want %q", out, want)
	}
}

func TestRenderOrphanGatewayAnnotation(t *testing.T) {
	snap := resource.NewSnapshot()
	snap.Gateways = []resource.Gateway{
		{Namespace: "default", Name: "lonely", ClassName: "istio"},
	}
	g, _, err := topology.Build(snap, topology.Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	out, err := Render(g, Options{Mode: render.ModeDetailed})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(out, "no routes attached") {
		t.Errorf("orphan gateway must carry a 'no routes attached' annotation\n%s", out)
	}
	if !strings.Contains(out, "gw_default_lonely") {
		t.Errorf("orphan gateway node missing\n%s", out)
	}
}

func TestRenderFocus(t *testing.T) {
	snap := resource.NewSnapshot()
	snap.Gateways = []resource.Gateway{
		{Namespace: "default", Name: "gw-a", ClassName: "istio"},
		{Namespace: "default", Name: "gw-b", ClassName: "istio"},
	}
	snap.Routes = []resource.Route{
		{Kind: resource.RouteHTTP, Namespace: "default", Name: "route-a",
			ParentRefs: []resource.ParentRef{{Name: "gw-a"}}},
		{Kind: resource.RouteHTTP, Namespace: "default", Name: "route-b",
			ParentRefs: []resource.ParentRef{{Name: "gw-b"}}},
	}
	g, _, err := topology.Build(snap, topology.Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	out, err := Render(g, Options{Mode: render.ModeDetailed, Focus: "default/gw-a"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(out, "route-a") || strings.Contains(out, "route-b") {
		t.Errorf("focus must include gw-a subtree and exclude gw-b's\n%s", out)
	}

	if _, err := Render(g, Options{Mode: render.ModeDetailed, Focus: "default/nope"}); err == nil {
		t.Error("unknown focus gateway must return an error")
	}
}

func TestRenderEscapesQuotes(t *testing.T) {
	g := graph.New()
	g.AddNode(graph.Node{ID: "rt_x", Type: graph.TypeRoute, Label: `we"ird`, Meta: graph.Metadata{"kind": "HTTPRoute"}})
	out, err := Render(g, Options{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if strings.Contains(out, `we"ird`) {
		t.Errorf("quotes must be escaped\n%s", out)
	}
	if !strings.Contains(out, "we#quot;ird") {
		t.Errorf("expected escaped label\n%s", out)
	}
}
