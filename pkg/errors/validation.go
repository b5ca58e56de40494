package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// dns1123Regex matches valid Kubernetes object names (RFC 1123 labels).
var dns1123Regex = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?$`)

// ValidateResourceName validates a Kubernetes-style resource name.
// Names must be non-empty RFC 1123 labels of at most 253 characters.
func ValidateResourceName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "resource name cannot be empty")
	}

	if len(name) > 253 {
		return New(ErrCodeInvalidInput, "resource name too long (max 253 characters)")
	}

	if !dns1123Regex.MatchString(name) {
		return New(ErrCodeInvalidInput, "invalid resource name: %q", name)
	}

	return nil
}

// ValidateFocus validates a gateway focus reference of the form
// "namespace/name". Both components must be valid resource names.
func ValidateFocus(focus string) error {
	if focus == "" {
		return New(ErrCodeInvalidFocus, "focus cannot be empty")
	}

	parts := strings.Split(focus, "/")
	if len(parts) != 2 {
		return New(ErrCodeInvalidFocus, "focus must be namespace/name, got %q", focus)
	}

	for _, part := range parts {
		if err := ValidateResourceName(part); err != nil {
			return New(ErrCodeInvalidFocus, "invalid focus %q: %s", focus, UserMessage(err))
		}
	}

	return nil
}

// ValidatePath validates a file path for safety.
// It prevents path traversal attacks and ensures reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	// Check for null bytes and control characters
	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	// Check for path traversal
	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	// No backslashes (potential Windows path injection)
	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}
