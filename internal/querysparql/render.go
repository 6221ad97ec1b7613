package querysparql

import (
	"fmt"
	"strings"

	"github.com/roach88/nlq/internal/ir"
	"github.com/roach88/nlq/internal/queryir"
)

// Query forms.
const (
	FormSelect = "SELECT"
	FormAsk    = "ASK"
)

// Query is the finalized result of a resolution pass.
type Query struct {
	// PlanID is the content hash of the plan the query was built from.
	PlanID string `json:"plan_id"`

	// Form is FormSelect when the plan projects variables, FormAsk otherwise.
	Form string `json:"form"`

	// Variables projected by a SELECT, in order of first appearance.
	Variables []string `json:"variables"`

	// Triples are the rendered terms of each pattern, in plan order.
	Triples [][3]string `json:"triples"`

	// Resolutions maps placeholder to chosen entity ID.
	Resolutions map[string]string `json:"resolutions"`

	// Unresolved lists searchable placeholders that no resolver handled,
	// rendered as variables.
	Unresolved []string `json:"unresolved"`

	// Text is the SPARQL query.
	Text string `json:"text"`
}

// String returns the SPARQL text.
func (q *Query) String() string {
	return q.Text
}

// Build renders the plan with every resolution substituted.
// Build does not modify the builder and may be called more than once.
func (b *Builder) Build() (*Query, error) {
	planID, err := b.plan.ID()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	q := &Query{
		PlanID:      planID,
		Variables:   []string{},
		Triples:     make([][3]string, 0, len(b.plan.Patterns)),
		Resolutions: make(map[string]string),
		Unresolved:  []string{},
	}

	projected := make(map[string]bool)
	unresolved := make(map[string]bool)
	for i, pat := range b.plan.Patterns {
		tokens := pat.Tokens()
		if len(tokens) != 3 {
			return nil, fmt.Errorf("build query: pattern %d %q: %w", i, pat, ErrMalformedPattern)
		}

		var triple [3]string
		for j, tok := range tokens {
			term, kind, resolved, err := b.renderToken(tok)
			if err != nil {
				return nil, fmt.Errorf("build query: pattern %d: %w", i, err)
			}
			switch {
			case resolved != "":
				q.Resolutions[tok] = resolved
			case kind == ir.KindVariable:
				if !projected[term] {
					projected[term] = true
					q.Variables = append(q.Variables, term)
				}
			case !kind.IsStructural() && !unresolved[tok]:
				unresolved[tok] = true
				q.Unresolved = append(q.Unresolved, tok)
			}
			triple[j] = term
		}
		q.Triples = append(q.Triples, triple)
	}

	q.Form = FormSelect
	if len(q.Variables) == 0 {
		q.Form = FormAsk
	}
	q.Text = renderText(q)
	return q, nil
}

// renderToken returns the SPARQL term for a token, the kind it renders as
// and, when the token is a resolved binding, the chosen entity ID.
func (b *Builder) renderToken(tok string) (term string, kind ir.BindingKind, entityID string, err error) {
	if sk, ok := queryir.StructuralKind(tok); ok {
		if sk == ir.KindType {
			return "a", sk, "", nil
		}
		return tok, sk, "", nil
	}

	binding, ok := b.plan.Binding(tok)
	if !ok {
		return "", "", "", fmt.Errorf("%w %q", ErrUnboundToken, tok)
	}
	switch binding.Kind {
	case ir.KindType:
		return "a", binding.Kind, "", nil
	case ir.KindVariable:
		return "?" + variableName(tok), binding.Kind, "", nil
	}
	if sols := b.solutions[binding]; len(sols) > 0 {
		return "<" + sols[0].ID + ">", binding.Kind, sols[0].ID, nil
	}
	return "?" + variableName(tok), binding.Kind, "", nil
}

// variableName maps a placeholder to a legal SPARQL variable name.
func variableName(placeholder string) string {
	var sb strings.Builder
	for _, r := range placeholder {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			sb.WriteRune(r)
		default:
			sb.WriteRune('_')
		}
	}
	return sb.String()
}

func renderText(q *Query) string {
	var sb strings.Builder
	if q.Form == FormSelect {
		sb.WriteString("SELECT DISTINCT ")
		sb.WriteString(strings.Join(q.Variables, " "))
		sb.WriteString(" WHERE {\n")
	} else {
		sb.WriteString("ASK WHERE {\n")
	}
	for _, t := range q.Triples {
		fmt.Fprintf(&sb, "  %s %s %s .\n", t[0], t[1], t[2])
	}
	sb.WriteString("}\n")
	return sb.String()
}
