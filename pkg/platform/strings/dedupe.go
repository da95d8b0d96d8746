// Package strings provides small string helpers shared by request parsing.
package strings

import (
	"strings"
)

// DedupeAndTrimLower trims, lowercases and drops empty or repeated values,
// preserving first-seen order.
//
//	DedupeAndTrimLower([]string{" License ", "license", "", "Citation_Profile"})
//	// []string{"license", "citation_profile"}
func DedupeAndTrimLower(values []string) []string {
	if len(values) == 0 {
		return values
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
