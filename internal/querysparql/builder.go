package querysparql

import (
	"errors"
	"fmt"

	"github.com/roach88/nlq/internal/ir"
	"github.com/roach88/nlq/internal/queryir"
)

var (
	// ErrAlreadyResolved is returned by Add for a binding that already has a
	// resolution. A binding is resolved at most once per pass.
	ErrAlreadyResolved = errors.New("binding already resolved")

	// ErrUnboundToken is returned by Build for a pattern token that is
	// neither structural nor declared in the plan.
	ErrUnboundToken = errors.New("unbound placeholder")

	// ErrMalformedPattern is returned by Build for a pattern that does not
	// have exactly three tokens.
	ErrMalformedPattern = errors.New("malformed triple pattern")
)

// Resolution records the entity chosen for a binding.
type Resolution struct {
	Binding ir.Binding `json:"binding"`
	Entity  ir.Entity  `json:"entity"`
}

// Builder is the resolution state for one pass over a plan.
type Builder struct {
	plan      *queryir.Plan
	solutions map[ir.Binding][]ir.Entity
	order     []ir.Binding // bindings in resolution order
}

// NewBuilder creates an empty builder for plan.
func NewBuilder(plan *queryir.Plan) *Builder {
	return &Builder{
		plan:      plan,
		solutions: make(map[ir.Binding][]ir.Entity),
	}
}

// IsResolved reports whether binding already has a resolution.
func (b *Builder) IsResolved(binding ir.Binding) bool {
	_, ok := b.solutions[binding]
	return ok
}

// Solutions returns the prior resolutions of binding, best first, or nil
// when the binding has none.
func (b *Builder) Solutions(binding ir.Binding) []ir.Entity {
	sols, ok := b.solutions[binding]
	if !ok {
		return nil
	}
	out := make([]ir.Entity, len(sols))
	copy(out, sols)
	return out
}

// Add records entity as the resolution of binding.
// Returns ErrAlreadyResolved if binding was resolved before.
func (b *Builder) Add(binding ir.Binding, entity ir.Entity) error {
	if b.IsResolved(binding) {
		return fmt.Errorf("%w: %s", ErrAlreadyResolved, binding)
	}
	b.solutions[binding] = []ir.Entity{entity}
	b.order = append(b.order, binding)
	return nil
}

// Resolutions returns every resolution in the order it was added.
func (b *Builder) Resolutions() []Resolution {
	out := make([]Resolution, 0, len(b.order))
	for _, binding := range b.order {
		out = append(out, Resolution{Binding: binding, Entity: b.solutions[binding][0]})
	}
	return out
}
