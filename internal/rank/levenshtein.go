package rank

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Distance computes the Levenshtein edit distance between two strings,
// counted in runes: the minimum number of single-rune insertions, deletions
// or substitutions turning a into b.
//
// Time complexity: O(len(a) * len(b))
// Space complexity: O(min(len(a), len(b))).
func Distance(a, b string) int {
	if a == b {
		return 0
	}

	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	// Keep ra the shorter one so the rows stay small.
	if len(ra) > len(rb) {
		ra, rb = rb, ra
	}

	prev := make([]int, len(ra)+1)
	curr := make([]int, len(ra)+1)
	for i := range prev {
		prev[i] = i
	}

	for j := 1; j <= len(rb); j++ {
		curr[0] = j
		for i := 1; i <= len(ra); i++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[i] = min(
				prev[i]+1,      // deletion
				curr[i-1]+1,    // insertion
				prev[i-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(ra)]
}

// DistanceNormalized computes a similarity score between 0 and 1.
// 1.0 means identical strings. The score is 1 - distance/max(len(a), len(b)),
// lengths counted in runes.
func DistanceNormalized(a, b string) float64 {
	la, lb := len([]rune(a)), len([]rune(b))
	if la == 0 && lb == 0 {
		return 1.0
	}
	return 1.0 - float64(Distance(a, b))/float64(max(la, lb))
}

var folder = cases.Fold()

// Fold normalizes a label for lexical comparison: NFC, Unicode case folding,
// trimmed, inner whitespace collapsed, underscores read as spaces.
func Fold(s string) string {
	s = norm.NFC.String(s)
	s = folder.String(s)
	s = strings.ReplaceAll(s, "_", " ")
	return strings.Join(strings.Fields(s), " ")
}

// LexicalScore is the score used by the Levenshtein strategy.
func LexicalScore(term, label string) float64 {
	return DistanceNormalized(Fold(term), Fold(label))
}
