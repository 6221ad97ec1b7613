package engine

import (
	"context"

	"github.com/roach88/nlq/internal/ir"
	"github.com/roach88/nlq/internal/rank"
)

// resolvePredicate resolves a Class or Property binding scoped by pivot.
//
// Other kinds are left alone, as are bindings already memoized. A nil pivot
// is an unscoped search unless the engine requires a pivot, in which case
// it is a RESOLUTION_FAILURE.
func (p *pass) resolvePredicate(ctx context.Context, pivot *ir.Entity, b ir.Binding) error {
	if !b.Kind.IsPredicate() {
		return nil
	}
	if p.builder.IsResolved(b) {
		p.logger.Debug("predicate memo hit", "placeholder", b.Placeholder)
		step := Step{
			Role:        RolePredicate,
			Placeholder: b.Placeholder,
			Term:        b.Term,
			Source:      SourceMemo,
		}
		if sols := p.builder.Solutions(b); len(sols) > 0 {
			step.Entity = sols[0]
		}
		p.record(step)
		return nil
	}

	pivotID := ""
	if pivot == nil {
		if p.engine.requirePivot {
			return NewResolutionFailure(b.Placeholder, b.Term, "no pivot")
		}
		p.logger.Debug("no pivot, searching unscoped", "placeholder", b.Placeholder)
	} else {
		pivotID = pivot.ID
	}

	params := rank.Embedding()
	scores, err := p.engine.searcher.PivotedSearch(ctx, pivot, b.Term, params)
	if err != nil {
		return NewBackendUnavailableError(b.Placeholder, b.Term, err)
	}
	p.logger.Debug("pivoted search",
		"placeholder", b.Placeholder,
		"term", b.Term,
		"pivot", pivotID,
		"strategy", params.Strategy,
		"candidates", len(scores),
	)

	top, ok := scores.Top()
	if !ok {
		return NewResolutionFailure(b.Placeholder, b.Term, "no predicate candidates")
	}
	if err := p.builder.Add(b, top.Entity); err != nil {
		return err
	}

	p.record(Step{
		Role:        RolePredicate,
		Placeholder: b.Placeholder,
		Term:        b.Term,
		Source:      SourceSearch,
		Strategy:    params.Strategy,
		Pivot:       pivotID,
		Entity:      top.Entity,
		Score:       top.Value,
		Candidates:  len(scores),
	})
	return nil
}
