package engine

import (
	"github.com/roach88/nlq/internal/ir"
	"github.com/roach88/nlq/internal/rank"
)

// Role is the resolver that produced a step.
type Role string

const (
	RolePivot     Role = "pivot"
	RolePredicate Role = "predicate"
)

// Source tells whether a step searched or answered from the memo.
type Source string

const (
	SourceSearch Source = "search"
	SourceMemo   Source = "memo"
)

// Step is one resolution decision of a pass.
type Step struct {
	// Seq is the logical clock value of the step, starting at 1 per pass.
	Seq int64 `json:"seq"`

	// Pattern is the index of the pattern being processed.
	Pattern int `json:"pattern"`

	Role        Role   `json:"role"`
	Placeholder string `json:"placeholder"`
	Term        string `json:"term"`
	Source      Source `json:"source"`

	// Strategy, Score and Candidates are set for searches only.
	Strategy   rank.Strategy `json:"strategy,omitempty"`
	Score      float64       `json:"score,omitempty"`
	Candidates int           `json:"candidates,omitempty"`

	// Pivot is the ID of the pivot a predicate search was scoped by.
	// Empty for pivot steps and unscoped searches.
	Pivot string `json:"pivot,omitempty"`

	Entity ir.Entity `json:"entity"`
}

// record stamps and appends a step to the pass trace.
func (p *pass) record(s Step) {
	s.Seq = p.clock.Next()
	s.Pattern = p.index
	p.trace = append(p.trace, s)
}

// Searches returns the steps that issued a backend search.
func Searches(trace []Step) []Step {
	var out []Step
	for _, s := range trace {
		if s.Source == SourceSearch {
			out = append(out, s)
		}
	}
	return out
}
