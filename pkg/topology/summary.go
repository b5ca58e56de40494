package topology

import (
	"github.com/gwmap/gwmap/pkg/resource"
)

// Summary is the structured result of one analysis run and the primary
// observability surface: it is produced on every run, also when the
// diagram itself goes to a file, so that "missing" relationships stay
// distinguishable from "intentionally absent" ones.
//
// The summary is a pure function of the snapshot: two runs over the
// same input produce identical summaries. Per-run identity lives on
// the pipeline result, not here.
type Summary struct {
	// Counts holds the number of loaded entities per kind.
	Counts map[string]int `json:"counts"`

	// UnresolvedClasses lists gateways whose className matched no known
	// GatewayClass ("ns/name -> class"). The gateway is retained, the
	// implements edge is omitted.
	UnresolvedClasses []string `json:"unresolved_classes,omitempty"`

	// UnresolvedParents lists route parentRefs that matched no gateway,
	// and rules whose route is unknown.
	UnresolvedParents []string `json:"unresolved_parents,omitempty"`

	// BlockedReferences lists cross-namespace backend references omitted
	// because no ReferenceGrant permits them. Distinct from MissingBackends.
	BlockedReferences []string `json:"blocked_references,omitempty"`

	// MissingBackends lists backend references that matched no known
	// backend entity.
	MissingBackends []string `json:"missing_backends,omitempty"`

	// GatewaysWithoutRoutes lists gateways with zero attached routes.
	// These render with an explicit "no routes attached" annotation.
	GatewaysWithoutRoutes []string `json:"gateways_without_routes,omitempty"`

	// SkippedRecords counts malformed records dropped by the loader.
	SkippedRecords map[resource.Kind]int `json:"skipped_records,omitempty"`
}

// newSummary creates a summary seeded with the snapshot counts.
func newSummary(snap *resource.Snapshot) *Summary {
	s := &Summary{
		Counts: map[string]int{
			"classes":   len(snap.Classes),
			"gateways":  len(snap.Gateways),
			"routes":    len(snap.Routes),
			"rules":     len(snap.Rules),
			"backends":  len(snap.Backends),
			"grants":    len(snap.Grants),
			"endpoints": len(snap.Endpoints),
		},
	}
	if len(snap.Skipped) > 0 {
		s.SkippedRecords = snap.Skipped
	}
	return s
}

// Findings returns the total number of non-fatal findings recorded.
func (s *Summary) Findings() int {
	return len(s.UnresolvedClasses) + len(s.UnresolvedParents) +
		len(s.BlockedReferences) + len(s.MissingBackends) +
		len(s.GatewaysWithoutRoutes)
}
