package engine

import (
	"context"

	"github.com/roach88/nlq/internal/ir"
	"github.com/roach88/nlq/internal/rank"
)

// resolvePivot returns the entity to scope predicate resolution by, or nil.
//
// A memoized resolution of b is returned without searching, whatever b's
// kind. Otherwise only Instance bindings are searched, lexically with an
// automatic threshold; the top candidate is memoized and returned. Any
// other kind yields no pivot.
func (p *pass) resolvePivot(ctx context.Context, b ir.Binding) (*ir.Entity, error) {
	if sols := p.builder.Solutions(b); len(sols) > 0 {
		top := sols[0]
		p.logger.Debug("pivot memo hit", "placeholder", b.Placeholder, "entity", top.ID)
		p.record(Step{
			Role:        RolePivot,
			Placeholder: b.Placeholder,
			Term:        b.Term,
			Source:      SourceMemo,
			Entity:      top,
		})
		return &top, nil
	}

	if b.Kind != ir.KindInstance {
		return nil, nil
	}

	params := rank.Levenshtein()
	scores, err := p.engine.searcher.InstanceSearch(ctx, b.Term, params)
	if err != nil {
		return nil, NewBackendUnavailableError(b.Placeholder, b.Term, err)
	}
	p.logger.Debug("instance search",
		"placeholder", b.Placeholder,
		"term", b.Term,
		"strategy", params.Strategy,
		"threshold", params.Threshold.String(),
		"candidates", len(scores),
	)

	top, ok := scores.Top()
	if !ok {
		return nil, NewResolutionFailure(b.Placeholder, b.Term, "no instance candidates")
	}
	if err := p.builder.Add(b, top.Entity); err != nil {
		return nil, err
	}

	p.record(Step{
		Role:        RolePivot,
		Placeholder: b.Placeholder,
		Term:        b.Term,
		Source:      SourceSearch,
		Strategy:    params.Strategy,
		Entity:      top.Entity,
		Score:       top.Value,
		Candidates:  len(scores),
	})
	entity := top.Entity
	return &entity, nil
}
