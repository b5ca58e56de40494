package resource

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Record field separators. Each record is one line; top-level fields are
// pipe-separated, list items comma-separated, sub-fields colon-separated.
const (
	fieldSep = "|"
	listSep  = ","
	subSep   = ":"
)

// Expected field counts per kind. A record with a different arity is
// malformed and skipped (counted, never fatal).
var arity = map[Kind]int{
	KindGatewayClass:   3, // name|controller|accepted
	KindGateway:        6, // namespace|name|class|listeners|addresses|status
	KindRoute:          5, // kind|namespace|name|hostnames|parentRefs
	KindRouteRule:      6, // routeKind|routeNamespace|routeName|index|match|backends
	KindBackend:        5, // namespace|name|kind|ports|podCount
	KindReferenceGrant: 4, // namespace|name|from|to
	KindEndpoint:       5, // serviceNamespace|serviceName|podName|podIP|ready
}

// LoadDir reads one file per record kind from dir ("<kind>.txt") into a
// snapshot. A missing file is a valid empty kind, not an error. Only I/O
// failures on existing files are returned.
func LoadDir(dir string) (*Snapshot, error) {
	snap := NewSnapshot()
	for _, kind := range Kinds {
		path := filepath.Join(dir, string(kind)+".txt")
		f, err := os.Open(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		err = Decode(kind, f, snap)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
	}
	return snap, nil
}

// Decode reads records of one kind from r into the snapshot. Blank lines
// and lines starting with '#' are ignored. Malformed records increment
// snap.Skipped[kind] and are otherwise dropped.
func Decode(kind Kind, r io.Reader, snap *Snapshot) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := decodeRecord(kind, line, snap); err != nil {
			snap.Skipped[kind]++
		}
	}
	return scanner.Err()
}

func decodeRecord(kind Kind, line string, snap *Snapshot) error {
	fields := strings.Split(line, fieldSep)
	if want := arity[kind]; len(fields) != want {
		return fmt.Errorf("expected %d fields, got %d", want, len(fields))
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	switch kind {
	case KindGatewayClass:
		snap.Classes = append(snap.Classes, GatewayClass{
			Name:       fields[0],
			Controller: fields[1],
			Accepted:   fields[2],
		})
	case KindGateway:
		listeners, err := parseListeners(fields[3])
		if err != nil {
			return err
		}
		snap.Gateways = append(snap.Gateways, Gateway{
			Namespace: fields[0],
			Name:      fields[1],
			ClassName: fields[2],
			Listeners: listeners,
			Addresses: splitList(fields[4]),
			Status:    fields[5],
		})
	case KindRoute:
		rk, err := parseRouteKind(fields[0])
		if err != nil {
			return err
		}
		snap.Routes = append(snap.Routes, Route{
			Kind:       rk,
			Namespace:  fields[1],
			Name:       fields[2],
			Hostnames:  splitList(fields[3]),
			ParentRefs: parseParentRefs(fields[4]),
		})
	case KindRouteRule:
		rk, err := parseRouteKind(fields[0])
		if err != nil {
			return err
		}
		idx, err := strconv.Atoi(fields[3])
		if err != nil {
			return fmt.Errorf("rule index: %w", err)
		}
		backends, err := parseBackendRefs(fields[5])
		if err != nil {
			return err
		}
		snap.Rules = append(snap.Rules, RouteRule{
			RouteKind:      rk,
			RouteNamespace: fields[1],
			RouteName:      fields[2],
			Index:          idx,
			Match:          fields[4],
			Backends:       backends,
		})
	case KindBackend:
		ports, err := parsePorts(fields[3])
		if err != nil {
			return err
		}
		snap.Backends = append(snap.Backends, Backend{
			Namespace: fields[0],
			Name:      fields[1],
			Kind:      fields[2],
			Ports:     ports,
			PodCount:  atoiDefault(fields[4], 0),
		})
	case KindReferenceGrant:
		snap.Grants = append(snap.Grants, ReferenceGrant{
			Namespace: fields[0],
			Name:      fields[1],
			From:      parseGrantFrom(fields[2]),
			To:        parseGrantTo(fields[3]),
		})
	case KindEndpoint:
		snap.Endpoints = append(snap.Endpoints, Endpoint{
			ServiceNamespace: fields[0],
			ServiceName:      fields[1],
			PodName:          fields[2],
			PodIP:            fields[3],
			Ready:            strings.EqualFold(fields[4], "true"),
		})
	default:
		return fmt.Errorf("unknown record kind %q", kind)
	}
	return nil
}

func parseRouteKind(s string) (RouteKind, error) {
	switch RouteKind(s) {
	case RouteHTTP, RouteGRPC, RouteTCP, RouteTLS:
		return RouteKind(s), nil
	}
	return "", fmt.Errorf("unknown route kind %q", s)
}

// parseListeners parses "HTTPS:443:Terminate,HTTP:80" into listeners.
// The TLS mode sub-field is optional.
func parseListeners(s string) ([]Listener, error) {
	var listeners []Listener
	for _, item := range splitList(s) {
		parts := strings.Split(item, subSep)
		if len(parts) < 2 || len(parts) > 3 {
			return nil, fmt.Errorf("listener %q: expected protocol:port[:tlsMode]", item)
		}
		port, err := strconv.Atoi(parts[1])
		if err != nil {
			return nil, fmt.Errorf("listener %q: port: %w", item, err)
		}
		l := Listener{Protocol: parts[0], Port: port}
		if len(parts) == 3 {
			l.TLSMode = parts[2]
		}
		listeners = append(listeners, l)
	}
	return listeners, nil
}

// parseParentRefs parses "ns/name,name" - the namespace part is optional
// and left empty here; the resolver defaults it to the route's namespace.
func parseParentRefs(s string) []ParentRef {
	var refs []ParentRef
	for _, item := range splitList(s) {
		ns, name := splitNamespaced(item)
		refs = append(refs, ParentRef{Namespace: ns, Name: name})
	}
	return refs
}

// parseBackendRefs parses "[ns/]name[:port[:weight]]" items. A missing
// weight defaults to 1 so a single unweighted backend renders as 100%.
func parseBackendRefs(s string) ([]WeightedBackendRef, error) {
	var refs []WeightedBackendRef
	for _, item := range splitList(s) {
		parts := strings.Split(item, subSep)
		if len(parts) > 3 {
			return nil, fmt.Errorf("backend ref %q: expected [ns/]name[:port[:weight]]", item)
		}
		ns, name := splitNamespaced(parts[0])
		ref := WeightedBackendRef{
			BackendRef: BackendRef{Namespace: ns, Name: name},
			Weight:     1,
		}
		if len(parts) >= 2 && parts[1] != "" {
			port, err := strconv.Atoi(parts[1])
			if err != nil {
				return nil, fmt.Errorf("backend ref %q: port: %w", item, err)
			}
			ref.Port = port
		}
		if len(parts) == 3 {
			w, err := strconv.Atoi(parts[2])
			if err != nil || w < 0 {
				return nil, fmt.Errorf("backend ref %q: invalid weight", item)
			}
			ref.Weight = w
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

func parsePorts(s string) ([]int, error) {
	var ports []int
	for _, item := range splitList(s) {
		p, err := strconv.Atoi(item)
		if err != nil {
			return nil, fmt.Errorf("port %q: %w", item, err)
		}
		ports = append(ports, p)
	}
	return ports, nil
}

// parseGrantFrom parses "Kind:ns,Kind:ns" items.
func parseGrantFrom(s string) []GrantFrom {
	var from []GrantFrom
	for _, item := range splitList(s) {
		kind, ns, _ := strings.Cut(item, subSep)
		from = append(from, GrantFrom{Kind: kind, Namespace: ns})
	}
	return from
}

// parseGrantTo parses "Kind[:name]" items - name is optional.
func parseGrantTo(s string) []GrantTo {
	var to []GrantTo
	for _, item := range splitList(s) {
		kind, name, _ := strings.Cut(item, subSep)
		to = append(to, GrantTo{Kind: kind, Name: name})
	}
	return to
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var items []string
	for _, item := range strings.Split(s, listSep) {
		item = strings.TrimSpace(item)
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}

func splitNamespaced(s string) (namespace, name string) {
	if ns, n, ok := strings.Cut(s, "/"); ok {
		return ns, n
	}
	return "", s
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
