// Package strings provides string manipulation utilities.
package strings

import (
	"strings"
)

// DedupeAndTrimLower trims, lowercases and removes empty or repeated
// elements. Order of first occurrence is preserved. Hex addresses compare
// case-insensitively, so this is applied to identity lists before parsing.
//
// Example:
//
//	DedupeAndTrimLower([]string{"  0xAB ", "0xab", ""})
//	// Returns: []string{"0xab"}
func DedupeAndTrimLower(values []string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))

	for _, v := range values {
		trimmed := strings.ToLower(strings.TrimSpace(v))
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; !ok {
			seen[trimmed] = struct{}{}
			result = append(result, trimmed)
		}
	}

	return result
}
