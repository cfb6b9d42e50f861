package match

import (
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
)

// maxNameEditDistance is the exclusive upper bound on edit distance for two
// names to still count as the same station.
const maxNameEditDistance = 3

// NormalizeName lowercases a station name, strips punctuation and collapses
// runs of whitespace, so "Tata Power - MG Road" and "tata power mg road!!"
// compare equal.
func NormalizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	lastSpace := true
	for _, r := range strings.ToLower(name) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastSpace = false
		case unicode.IsSpace(r):
			if !lastSpace {
				b.WriteRune(' ')
				lastSpace = true
			}
		default:
			// punctuation is dropped entirely
		}
	}
	return strings.TrimRight(b.String(), " ")
}

// NamesSimilar reports whether two raw station names refer to the same place:
// normalized forms are equal, one contains the other, or they are within a
// small edit distance of each other.
func NamesSimilar(a, b string) bool {
	na, nb := NormalizeName(a), NormalizeName(b)
	if na == nb {
		return true
	}
	if na == "" || nb == "" {
		return false
	}
	if strings.Contains(na, nb) || strings.Contains(nb, na) {
		return true
	}
	return levenshtein.ComputeDistance(na, nb) < maxNameEditDistance
}
