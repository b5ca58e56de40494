// Package topology resolves the implicit relationships between loaded
// resources into explicit graph edges.
//
// None of the relationships are stored as direct foreign keys in the
// input: route attachment is inferred from parentRefs (with the namespace
// defaulting to the route's own), cross-namespace backend references are
// gated by ReferenceGrants, rule fan-out carries relative weights, and
// endpoint membership is keyed by (serviceNamespace, serviceName). The
// resolver evaluates these rules in a fixed order and accumulates every
// non-fatal finding into the run [Summary].
//
// The output graph is purely derived: rebuilding from the same snapshot
// always produces the identical graph, which downstream rendering relies
// on for byte-identical diagrams.
package topology
