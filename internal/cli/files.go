package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gwmap/gwmap/pkg/pipeline"
)

// parseFormats parses a comma-separated format string into a slice.
// An empty string falls back to the given default format.
func parseFormats(s, fallback string) []string {
	if s == "" {
		if fallback == "" {
			fallback = pipeline.FormatMermaid
		}
		return []string{fallback}
	}
	return strings.Split(s, ",")
}

// nopCloser wraps an io.Writer with a no-op Close method.
// It is used to make os.Stdout compatible with io.WriteCloser.
type nopCloser struct{ io.Writer }

// Close implements io.Closer with a no-op.
func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for the given path.
// If path is empty, it returns os.Stdout wrapped in nopCloser.
// Otherwise, it creates the file at path, overwriting if it exists.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

// basePath derives the base output path from the output and input paths.
// If output is empty, it uses the input's base name without extension.
// If output has a format extension (.svg, .dot, etc.), it strips it.
// This is used when generating multiple files (e.g., topo.svg, topo.mmd).
func basePath(output, input string) string {
	if output == "" {
		name := filepath.Base(filepath.Clean(input))
		return strings.TrimSuffix(name, filepath.Ext(name))
	}
	ext := strings.TrimPrefix(filepath.Ext(output), ".")
	if pipeline.ValidFormats[ext] || ext == "mmd" {
		return strings.TrimSuffix(output, "."+ext)
	}
	return output
}

// fileExt maps a format to its file extension.
func fileExt(format string) string {
	if format == pipeline.FormatMermaid {
		return "mmd"
	}
	return format
}

// writeArtifacts writes rendered artifacts to files, or to stdout when a
// single format was requested and no output path is set.
// Returns true if the diagram went to stdout (summaries then go to stderr).
func writeArtifacts(artifacts map[string][]byte, formats []string, input, output string) (bool, error) {
	if len(formats) == 1 {
		out, err := openOutput(output)
		if err != nil {
			return false, err
		}
		defer out.Close()
		if _, err := out.Write(artifacts[formats[0]]); err != nil {
			return false, err
		}
		if output != "" {
			printFile(output)
			return false, nil
		}
		return true, nil
	}

	base := basePath(output, input)
	for _, format := range formats {
		path := fmt.Sprintf("%s.%s", base, fileExt(format))
		if err := os.WriteFile(path, artifacts[format], 0644); err != nil {
			return false, err
		}
		printFile(path)
	}
	return false, nil
}
