package utils

import "github.com/agnivade/levenshtein"

// Like reports whether two names are at most one edit apart.
func Like(a, b string) bool {
	return levenshtein.ComputeDistance(a, b) < 2
}

// Closest returns the first candidate that is Like name, if any.
func Closest(name string, candidates []string) (string, bool) {
	for _, c := range candidates {
		if Like(name, c) {
			return c, true
		}
	}
	return "", false
}
