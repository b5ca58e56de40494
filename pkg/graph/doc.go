// Package graph implements the in-memory topology graph shared by the
// resolver and the renderers.
//
// The graph is a plain directed graph with typed nodes and kind-labeled
// edges. It is purely derived data: entities never hold pointers to each
// other, all relationships live here as edges computed by the resolver.
// One analysis run builds one graph from a resource snapshot and discards
// it after rendering.
//
// # Determinism
//
// Node IDs are stable functions of (type, namespace, name[, index]) - see
// [NodeID] - and every accessor returns results sorted by ID. Renderers
// that iterate the graph therefore produce byte-identical output for
// identical input, which the golden tests rely on.
//
// # Integrity
//
// AddNode and AddEdge enforce the two invariants that matter downstream:
// no duplicate node IDs and no dangling edges. Violations are returned as
// sentinel errors ([ErrDuplicateNodeID], [ErrUnknownSourceNode],
// [ErrUnknownTargetNode]) and indicate a resolver bug; callers abort the
// run rather than render a silently-wrong diagram.
package graph
