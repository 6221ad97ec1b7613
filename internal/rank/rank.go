package rank

import (
	"cmp"
	"slices"

	"github.com/roach88/nlq/internal/ir"
)

const (
	// AutoFloor is the lowest score an automatic threshold ever accepts.
	AutoFloor = 0.5

	// AutoRatio keeps candidates within this fraction of the best score.
	AutoRatio = 0.75
)

// Sort orders scores in place: score descending, entity ID ascending.
func Sort(scores ir.Scores) {
	slices.SortStableFunc(scores, func(a, b ir.Score) int {
		if c := cmp.Compare(b.Value, a.Value); c != 0 {
			return c
		}
		return cmp.Compare(a.Entity.ID, b.Entity.ID)
	})
}

// AutoThreshold derives the cut-off for an automatic threshold from the best
// score in the set: max(AutoFloor, best*AutoRatio).
func AutoThreshold(best float64) float64 {
	return max(AutoFloor, best*AutoRatio)
}

// Apply sorts the candidates and drops those under the threshold.
// The returned slice may be empty.
func Apply(scores ir.Scores, t Threshold) ir.Scores {
	Sort(scores)
	if len(scores) == 0 {
		return scores
	}

	cutoff := t.Value
	if t.Auto {
		cutoff = AutoThreshold(scores[0].Value)
	}

	kept := scores[:0]
	for _, s := range scores {
		if s.Value >= cutoff {
			kept = append(kept, s)
		}
	}
	return kept
}
