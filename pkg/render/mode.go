package render

// Mode is the diagram layout strategy.
type Mode string

const (
	// ModeDetailed renders the full depth per gateway: listeners, attached
	// routes, route rules, weighted backends, and live endpoints.
	ModeDetailed Mode = "detailed"

	// ModeOverview renders only four layers (classes, gateways, routes,
	// backends), omitting rules and endpoints entirely.
	ModeOverview Mode = "overview"
)

// DefaultDetailThreshold is the largest gateway count still rendered in
// detailed mode. Topologies with more gateways switch to overview mode.
// Golden tests pin this value; callers may override it per run but the
// default must not change.
const DefaultDetailThreshold = 3

// SelectMode chooses the layout for a topology with the given number of
// gateways. A threshold <= 0 selects DefaultDetailThreshold. The function
// is pure: same inputs, same mode.
func SelectMode(gatewayCount, threshold int) Mode {
	if threshold <= 0 {
		threshold = DefaultDetailThreshold
	}
	if gatewayCount > threshold {
		return ModeOverview
	}
	return ModeDetailed
}
