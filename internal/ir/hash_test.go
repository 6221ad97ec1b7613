package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanID_Deterministic(t *testing.T) {
	patterns := []TriplePattern{"I1 P1 ?VAR1"}
	bindings := []Binding{
		{Kind: KindInstance, Placeholder: "I1", Term: "Inception"},
		{Kind: KindProperty, Placeholder: "P1", Term: "director"},
	}

	id1, err := PlanID(patterns, bindings)
	require.NoError(t, err)
	assert.Len(t, id1, 64)

	// Binding declaration order does not change identity.
	id2, err := PlanID(patterns, []Binding{bindings[1], bindings[0]})
	require.NoError(t, err)
	assert.Equal(t, id1, id2)
}

func TestPlanID_PatternOrderMatters(t *testing.T) {
	bindings := []Binding{{Kind: KindInstance, Placeholder: "I1", Term: "Inception"}}

	id1, err := PlanID([]TriplePattern{"I1 P1 ?VAR1", "?VAR1 P2 ?VAR2"}, bindings)
	require.NoError(t, err)
	id2, err := PlanID([]TriplePattern{"?VAR1 P2 ?VAR2", "I1 P1 ?VAR1"}, bindings)
	require.NoError(t, err)

	assert.NotEqual(t, id1, id2)
}

func TestBindingHash_DomainSeparated(t *testing.T) {
	b := Binding{Kind: KindProperty, Placeholder: "P1", Term: "director"}
	h, err := BindingHash(b)
	require.NoError(t, err)

	planID, err := PlanID(nil, nil)
	require.NoError(t, err)
	assert.NotEqual(t, h, planID)

	other, err := BindingHash(Binding{Kind: KindClass, Placeholder: "P1", Term: "director"})
	require.NoError(t, err)
	assert.NotEqual(t, h, other)
}
