package ir

import (
	"fmt"
	"strings"
)

// BindingKind is the structural role of a placeholder. It decides whether a
// binding is searched at all and, if so, with which ranking strategy.
type BindingKind string

const (
	// KindVariable is a free query variable (placeholder prefix "?VAR").
	KindVariable BindingKind = "variable"

	// KindType is an rdf:type placeholder (placeholder prefix "TYPE").
	KindType BindingKind = "type"

	// KindInstance is a named individual, resolved lexically as a pivot.
	KindInstance BindingKind = "instance"

	// KindClass is a class, resolved semantically against a pivot.
	KindClass BindingKind = "class"

	// KindProperty is a property, resolved semantically against a pivot.
	KindProperty BindingKind = "property"
)

// AllKinds returns every valid binding kind in declaration order.
func AllKinds() []BindingKind {
	return []BindingKind{KindVariable, KindType, KindInstance, KindClass, KindProperty}
}

// IsValid reports whether k is one of the known kinds.
func (k BindingKind) IsValid() bool {
	switch k {
	case KindVariable, KindType, KindInstance, KindClass, KindProperty:
		return true
	}
	return false
}

// IsStructural reports whether bindings of this kind pass through unresolved.
// Variable and Type bindings are never searched.
func (k BindingKind) IsStructural() bool {
	return k == KindVariable || k == KindType
}

// IsPredicate reports whether bindings of this kind go through the
// pivot-scoped semantic search.
func (k BindingKind) IsPredicate() bool {
	return k == KindClass || k == KindProperty
}

// ParseBindingKind parses a kind name case-insensitively.
func ParseBindingKind(s string) (BindingKind, error) {
	k := BindingKind(strings.ToLower(strings.TrimSpace(s)))
	if !k.IsValid() {
		return "", fmt.Errorf("invalid binding kind: %q", s)
	}
	return k, nil
}

// Binding ties a placeholder in a triple pattern to the text that should be
// searched for it. Bindings are values: copy freely, never mutate.
type Binding struct {
	Kind        BindingKind `json:"kind"`
	Placeholder string      `json:"placeholder"`
	Term        string      `json:"term"`
}

// String renders the binding for logs.
func (b Binding) String() string {
	return fmt.Sprintf("%s(%s=%q)", b.Kind, b.Placeholder, b.Term)
}

// TriplePattern is a whitespace separated "subject predicate object" token
// triple as produced by the query plan.
type TriplePattern string

// Tokens splits the pattern on whitespace. Callers check the length.
func (p TriplePattern) Tokens() []string {
	return strings.Fields(string(p))
}

// Triple is a TriplePattern with every token substituted by its Binding.
type Triple struct {
	S Binding `json:"s"`
	P Binding `json:"p"`
	O Binding `json:"o"`
}

// String renders the triple for logs.
func (t Triple) String() string {
	return fmt.Sprintf("Triple{s=%s, p=%s, o=%s}", t.S, t.P, t.O)
}

// EntityKind classifies entities held by the search backend.
type EntityKind string

const (
	EntityInstance EntityKind = "instance"
	EntityClass    EntityKind = "class"
	EntityProperty EntityKind = "property"
)

// IsValid reports whether k is a known entity kind.
func (k EntityKind) IsValid() bool {
	return k == EntityInstance || k == EntityClass || k == EntityProperty
}

// Entity is a concrete node of the knowledge graph. ID is the IRI used in
// emitted queries.
type Entity struct {
	ID    string     `json:"id"`
	Label string     `json:"label"`
	Kind  EntityKind `json:"kind"`
}

// Score is a ranked candidate: an entity plus its similarity score.
type Score struct {
	Entity Entity  `json:"entity"`
	Value  float64 `json:"value"`
}

// Scores is an ordered candidate list, highest score first.
type Scores []Score

// Top returns the rank-0 candidate. ok is false when the list is empty;
// callers must branch on it rather than index blindly.
func (s Scores) Top() (Score, bool) {
	if len(s) == 0 {
		return Score{}, false
	}
	return s[0], true
}

// Entities returns the entities in rank order.
func (s Scores) Entities() []Entity {
	out := make([]Entity, len(s))
	for i, sc := range s {
		out[i] = sc.Entity
	}
	return out
}
