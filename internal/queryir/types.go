package queryir

import (
	"strings"

	"github.com/roach88/nlq/internal/ir"
)

// Structural placeholder prefixes. Tokens carrying one of these are
// synthesized into bindings and never looked up in Plan.Bindings.
const (
	VariablePrefix = "?VAR"
	TypePrefix     = "TYPE"
)

// StructuralKind returns the kind of a structural placeholder token and
// true, or false when the token is not structural.
func StructuralKind(token string) (ir.BindingKind, bool) {
	switch {
	case strings.HasPrefix(token, VariablePrefix):
		return ir.KindVariable, true
	case strings.HasPrefix(token, TypePrefix):
		return ir.KindType, true
	}
	return "", false
}

// Plan is an ordered set of triple patterns with their bindings.
type Plan struct {
	// Question is the natural-language question the plan was derived from.
	// Informational only.
	Question string `json:"question,omitempty"`

	// Patterns in resolution order.
	Patterns []ir.TriplePattern `json:"patterns"`

	// Bindings keyed by Placeholder, in declaration order.
	Bindings []ir.Binding `json:"bindings"`
}

// Binding returns the binding declared for placeholder.
func (p *Plan) Binding(placeholder string) (ir.Binding, bool) {
	for _, b := range p.Bindings {
		if b.Placeholder == placeholder {
			return b, true
		}
	}
	return ir.Binding{}, false
}

// ID returns the content-addressed identity of the plan.
func (p *Plan) ID() (string, error) {
	return ir.PlanID(p.Patterns, p.Bindings)
}
