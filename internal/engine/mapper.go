package engine

import (
	"github.com/roach88/nlq/internal/ir"
	"github.com/roach88/nlq/internal/queryir"
)

// MapPlaceholder maps a pattern token to its binding.
//
// Structural tokens ("?VAR...", "TYPE...") become Variable/Type bindings
// that use the token as both placeholder and term; the binding list is not
// consulted for them. Any other token must match a binding placeholder
// exactly, or MapPlaceholder returns an UNMAPPED_PLACEHOLDER error.
func MapPlaceholder(token string, bindings []ir.Binding) (ir.Binding, error) {
	if kind, ok := queryir.StructuralKind(token); ok {
		return ir.Binding{Kind: kind, Placeholder: token, Term: token}, nil
	}
	for _, b := range bindings {
		if b.Placeholder == token {
			return b, nil
		}
	}
	return ir.Binding{}, NewUnmappedPlaceholderError(token)
}

// AsTriple substitutes every token of pattern with its binding.
// Tokens are mapped subject, predicate, object; the first failure wins.
func AsTriple(pattern ir.TriplePattern, bindings []ir.Binding) (ir.Triple, error) {
	tokens := pattern.Tokens()
	if len(tokens) != 3 {
		return ir.Triple{}, NewMalformedPatternError(string(pattern), len(tokens))
	}

	var mapped [3]ir.Binding
	for i, tok := range tokens {
		b, err := MapPlaceholder(tok, bindings)
		if err != nil {
			if re, ok := err.(*ResolutionError); ok {
				re.Pattern = string(pattern)
			}
			return ir.Triple{}, err
		}
		mapped[i] = b
	}
	return ir.Triple{S: mapped[0], P: mapped[1], O: mapped[2]}, nil
}
