package graph

import (
	"fmt"
	"strings"
)

// NodeID builds a stable node identifier from a type prefix and name parts.
// The result is a pure function of its inputs, so identical topologies
// always produce identical IDs across runs - diagram output is compared
// byte-for-byte in golden tests.
//
// Parts are joined with underscores. Within a part, alphanumerics pass
// through, a hyphen becomes an underscore, and any other character is
// hex-escaped ("." becomes "_2e"). Resource names draw on the DNS-1123
// alphabet (lowercase alphanumerics, hyphens, dots), so two distinct
// names always yield distinct IDs, and the IDs stay safe for Mermaid
// and DOT.
func NodeID(prefix string, parts ...string) string {
	var b strings.Builder
	b.WriteString(prefix)
	for _, p := range parts {
		if p == "" {
			continue
		}
		b.WriteByte('_')
		b.WriteString(sanitize(p))
	}
	return b.String()
}

func sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-':
			b.WriteByte('_')
		default:
			// Distinct escape per character so "api.v1" and "api-v1"
			// cannot collapse to the same ID.
			for _, c := range []byte(string(r)) {
				fmt.Fprintf(&b, "_%02x", c)
			}
		}
	}
	return b.String()
}
