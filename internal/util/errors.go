package util

import (
	"fmt"
	"strings"
)

// maxErrorLineLength is the maximum length for extracted error messages.
const maxErrorLineLength = 200

// WrapError wraps an error with a descriptive operation context.
func WrapError(operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("failed to %s: %w", operation, err)
}

// TailLines returns up to n of the last non-blank lines of text, oldest
// first, each trimmed and cut to maxErrorLineLength.
func TailLines(text string, n int) []string {
	if n <= 0 {
		return nil
	}
	lines := strings.Split(strings.TrimSpace(text), "\n")
	var tail []string
	for i := len(lines) - 1; i >= 0 && len(tail) < n; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		if len(line) > maxErrorLineLength {
			line = line[:maxErrorLineLength] + "..."
		}
		tail = append(tail, line)
	}
	for i, j := 0, len(tail)-1; i < j; i, j = i+1, j-1 {
		tail[i], tail[j] = tail[j], tail[i]
	}
	return tail
}

// ExtractLastError extracts the last meaningful line from stderr output.
func ExtractLastError(stderr string) string {
	if tail := TailLines(stderr, 1); len(tail) > 0 {
		return tail[0]
	}
	return ""
}
