package resource

// Kind identifies a resource record kind produced by the collection step.
type Kind string

// Record kinds accepted by the loader. Each kind maps to one input file
// (or reader) containing one pipe-delimited record per line.
const (
	KindGatewayClass   Kind = "gatewayclasses"
	KindGateway        Kind = "gateways"
	KindRoute          Kind = "routes"
	KindRouteRule      Kind = "routerules"
	KindBackend        Kind = "backends"
	KindReferenceGrant Kind = "referencegrants"
	KindEndpoint       Kind = "endpoints"
)

// Kinds lists all record kinds in loading order.
var Kinds = []Kind{
	KindGatewayClass,
	KindGateway,
	KindRoute,
	KindRouteRule,
	KindBackend,
	KindReferenceGrant,
	KindEndpoint,
}

// RouteKind is the closed set of route variants. All variants share the
// same field set relevant to topology (namespace, name, hostnames,
// parentRefs) and the resolver treats them uniformly; the kind matters
// for ReferenceGrant matching and display.
type RouteKind string

// Route variants.
const (
	RouteHTTP RouteKind = "HTTPRoute"
	RouteGRPC RouteKind = "GRPCRoute"
	RouteTCP  RouteKind = "TCPRoute"
	RouteTLS  RouteKind = "TLSRoute"
)

// HasHostnames reports whether the variant carries hostnames.
// TCP routes match on port only and have none.
func (k RouteKind) HasHostnames() bool { return k != RouteTCP }

// GatewayClass is a cluster-scoped controller implementation type.
type GatewayClass struct {
	Name       string `json:"name"`
	Controller string `json:"controller"`
	Accepted   string `json:"accepted"`
}

// Listener is a protocol/port binding embedded in exactly one Gateway.
// It never appears in the graph outside its gateway's subgraph.
type Listener struct {
	Protocol string `json:"protocol"`
	Port     int    `json:"port"`
	TLSMode  string `json:"tls_mode,omitempty"`
}

// Gateway is a deployed entry point terminating traffic. Immutable once
// loaded; constructed from a single collection snapshot.
type Gateway struct {
	Namespace string     `json:"namespace"`
	Name      string     `json:"name"`
	ClassName string     `json:"class_name"`
	Listeners []Listener `json:"listeners,omitempty"`
	Addresses []string   `json:"addresses,omitempty"`
	Status    string     `json:"status,omitempty"`
}

// ParentRef references a Gateway a route wants to attach to. An empty
// Namespace means the route's own namespace - resolution applies that
// default, not the loader.
type ParentRef struct {
	Namespace string `json:"namespace,omitempty"`
	Name      string `json:"name"`
}

// Route is one of the four route variants, tagged by Kind.
type Route struct {
	Kind       RouteKind   `json:"kind"`
	Namespace  string      `json:"namespace"`
	Name       string      `json:"name"`
	Hostnames  []string    `json:"hostnames,omitempty"`
	ParentRefs []ParentRef `json:"parent_refs,omitempty"`
}

// BackendRef identifies a backend service targeted by a route rule.
// An empty Namespace means the route's own namespace.
type BackendRef struct {
	Namespace string `json:"namespace,omitempty"`
	Name      string `json:"name"`
	Port      int    `json:"port,omitempty"`
}

// WeightedBackendRef is a backend target with a relative traffic weight.
// Weights are proportions within one rule, not percentages; a missing
// weight defaults to 1 at load time. Weight 0 means "do not serve
// traffic" - the edge is still rendered at 0%.
type WeightedBackendRef struct {
	BackendRef
	Weight int `json:"weight"`
}

// RouteRule is one ordered match rule within a route, fanning out to one
// or more weighted backends. Rules arrive pre-extracted from their route
// by the collection step and are re-associated by (kind, namespace, name).
type RouteRule struct {
	RouteKind      RouteKind            `json:"route_kind"`
	RouteNamespace string               `json:"route_namespace"`
	RouteName      string               `json:"route_name"`
	Index          int                  `json:"index"`
	Match          string               `json:"match,omitempty"`
	Backends       []WeightedBackendRef `json:"backends,omitempty"`
}

// Backend is a service (or equivalent) that routes send traffic to.
type Backend struct {
	Namespace string `json:"namespace"`
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	Ports     []int  `json:"ports,omitempty"`
	PodCount  int    `json:"pod_count"`
}

// GrantFrom describes an allowed reference source (route kind + namespace).
type GrantFrom struct {
	Kind      string `json:"kind"`
	Namespace string `json:"namespace"`
}

// GrantTo describes an allowed reference target. An empty Name leaves the
// target unrestricted by name.
type GrantTo struct {
	Kind string `json:"kind"`
	Name string `json:"name,omitempty"`
}

// ReferenceGrant authorizes cross-namespace references from routes to
// backends in the grant's own namespace. Grants gate edge materialization;
// they only appear in the diagram when explicitly requested.
type ReferenceGrant struct {
	Namespace string      `json:"namespace"`
	Name      string      `json:"name"`
	From      []GrantFrom `json:"from"`
	To        []GrantTo   `json:"to"`
}

// Endpoint is a live pod endpoint belonging to a backend service,
// many-to-one by (ServiceNamespace, ServiceName).
type Endpoint struct {
	ServiceNamespace string `json:"service_namespace"`
	ServiceName      string `json:"service_name"`
	PodName          string `json:"pod_name"`
	PodIP            string `json:"pod_ip"`
	Ready            bool   `json:"ready"`
}

// Snapshot holds the fully typed entity collections of one analysis run.
// Entities are immutable after loading; all relationships are derived
// later by the resolver, never stored as pointers here.
type Snapshot struct {
	Classes   []GatewayClass   `json:"classes,omitempty"`
	Gateways  []Gateway        `json:"gateways,omitempty"`
	Routes    []Route          `json:"routes,omitempty"`
	Rules     []RouteRule      `json:"rules,omitempty"`
	Backends  []Backend        `json:"backends,omitempty"`
	Grants    []ReferenceGrant `json:"grants,omitempty"`
	Endpoints []Endpoint       `json:"endpoints,omitempty"`

	// Skipped counts malformed (wrong-arity) records per kind. Skipped
	// records are reported, never fatal.
	Skipped map[Kind]int `json:"skipped,omitempty"`
}

// NewSnapshot creates an empty snapshot with an initialized skip counter.
func NewSnapshot() *Snapshot {
	return &Snapshot{Skipped: make(map[Kind]int)}
}

// SkippedTotal returns the total number of skipped records across kinds.
func (s *Snapshot) SkippedTotal() int {
	total := 0
	for _, n := range s.Skipped {
		total += n
	}
	return total
}

// Empty reports whether the snapshot contains no resources of any kind.
// An empty snapshot is a valid input and renders a minimal diagram.
func (s *Snapshot) Empty() bool {
	return len(s.Classes) == 0 && len(s.Gateways) == 0 && len(s.Routes) == 0 &&
		len(s.Rules) == 0 && len(s.Backends) == 0 && len(s.Grants) == 0 &&
		len(s.Endpoints) == 0
}
