package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/gwmap/gwmap/pkg/pipeline"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleHighlight for emphasized values.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleSuccess for success messages.
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

// =============================================================================
// Internal Styles
// =============================================================================

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)

	styleSummaryKey = lipgloss.NewStyle().Foreground(colorGray).Width(22)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

// =============================================================================
// Status Output
// =============================================================================

// printSuccess prints a success message.
func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + msg)
}

// printError prints an error message.
func printError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconError.Render(iconError) + " " + msg)
}

// printInfo prints an info/status message.
func printInfo(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + msg)
}

// printDetail prints a detail line (indented).
func printDetail(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println("  " + StyleDim.Render(msg))
}

// printFile prints a file output line.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// =============================================================================
// Summary Output
// =============================================================================

// writeSummary writes the run summary to w. The caller picks stderr when
// the diagram itself occupies stdout so piped output stays clean.
func writeSummary(w io.Writer, result *pipeline.Result) {
	s := result.Summary
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Topology Summary"))
	b.WriteString(" " + StyleDim.Render("(run "+shortID(result.RunID)+", "+string(result.Mode)+" mode)"))
	b.WriteString("\n")

	writeSummaryRow(&b, "Resources", fmt.Sprintf(
		"%d classes · %d gateways · %d routes · %d backends",
		s.Counts["classes"], s.Counts["gateways"], s.Counts["routes"], s.Counts["backends"]))
	writeSummaryRow(&b, "Graph", fmt.Sprintf("%d nodes · %d edges · %s",
		result.Stats.NodeCount, result.Stats.EdgeCount, cachedTag(result.CacheInfo.BuildHit)))

	if n := len(s.UnresolvedClasses); n > 0 {
		writeWarnRow(&b, "Unresolved classes", n)
	}
	if n := len(s.UnresolvedParents); n > 0 {
		writeWarnRow(&b, "Unresolved parents", n)
	}
	if n := len(s.BlockedReferences); n > 0 {
		writeWarnRow(&b, "Blocked references", n)
	}
	if n := len(s.MissingBackends); n > 0 {
		writeWarnRow(&b, "Missing backends", n)
	}
	if len(s.GatewaysWithoutRoutes) > 0 {
		writeSummaryRow(&b, "Orphan gateways", strings.Join(s.GatewaysWithoutRoutes, ", "))
	}

	skipped := 0
	for _, n := range s.SkippedRecords {
		skipped += n
	}
	if skipped > 0 {
		writeWarnRow(&b, "Skipped records", skipped)
	}

	if s.Findings() == 0 {
		writeSummaryRow(&b, "Findings", StyleSuccess.Render("none"))
	}

	fmt.Fprint(w, b.String())
}

func writeSummaryRow(b *strings.Builder, key, value string) {
	b.WriteString(styleSummaryKey.Render(key) + " " + StyleValue.Render(value) + "\n")
}

func writeWarnRow(b *strings.Builder, key string, n int) {
	b.WriteString(styleSummaryKey.Render(key) + " " +
		styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(fmt.Sprintf("%d", n)) + "\n")
}

// cachedTag renders a cached/fresh marker.
func cachedTag(cached bool) string {
	if cached {
		return styleCached.Render(iconCached)
	}
	return styleComputed.Render(iconFresh)
}

// shortID truncates a run ID for display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
