package tui

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// closestView returns the nearest view name for a mistyped jump target, if
// any name is within edit distance 2.
func closestView(input string, names []string) (string, bool) {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" {
		return "", false
	}
	best := ""
	bestDist := -1
	for _, n := range names {
		d := levenshtein.ComputeDistance(input, n)
		if bestDist < 0 || d < bestDist {
			best, bestDist = n, d
		}
	}
	if bestDist >= 0 && bestDist <= 2 {
		return best, true
	}
	return "", false
}
