package testutil

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/nlq/internal/ir"
	"github.com/roach88/nlq/internal/rank"
)

var (
	film = ir.Entity{ID: "film:inception", Label: "Inception", Kind: ir.EntityInstance}
	dir  = ir.Entity{ID: "prop:director", Label: "director", Kind: ir.EntityProperty}
)

func TestFakeSearcher_ScriptedInstances(t *testing.T) {
	other := ir.Entity{ID: "film:other", Kind: ir.EntityInstance}
	f := NewFakeSearcher().WithInstances("Inception", film, other)

	scores, err := f.InstanceSearch(context.Background(), "Inception", rank.Levenshtein())
	require.NoError(t, err)
	require.Len(t, scores, 2)
	top, ok := scores.Top()
	require.True(t, ok)
	assert.Equal(t, film, top.Entity)
	assert.Greater(t, scores[0].Value, scores[1].Value)
}

func TestFakeSearcher_UnscriptedIsEmpty(t *testing.T) {
	f := NewFakeSearcher()
	scores, err := f.InstanceSearch(context.Background(), "nothing", rank.Levenshtein())
	require.NoError(t, err)
	assert.Empty(t, scores)
}

func TestFakeSearcher_PivotedLookup(t *testing.T) {
	generic := ir.Entity{ID: "prop:generic", Kind: ir.EntityProperty}
	f := NewFakeSearcher().
		WithPivoted(film.ID, "director", dir).
		WithPivoted(AnyPivot, "director", generic)
	ctx := context.Background()

	scores, err := f.PivotedSearch(ctx, &film, "director", rank.Embedding())
	require.NoError(t, err)
	assert.Equal(t, dir, scores[0].Entity)

	other := ir.Entity{ID: "film:other"}
	scores, err = f.PivotedSearch(ctx, &other, "director", rank.Embedding())
	require.NoError(t, err)
	assert.Equal(t, generic, scores[0].Entity)

	calls := f.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, film.ID, calls[0].Pivot)
	assert.True(t, calls[0].HasPivot)
	assert.Equal(t, rank.StrategyEmbedding, calls[0].Params.Strategy)
}

func TestFakeSearcher_NilPivot(t *testing.T) {
	f := NewFakeSearcher().WithPivoted("", "director", dir)

	scores, err := f.PivotedSearch(context.Background(), nil, "director", rank.Embedding())
	require.NoError(t, err)
	require.Len(t, scores, 1)

	calls := f.Calls()
	require.Len(t, calls, 1)
	assert.False(t, calls[0].HasPivot)
	assert.Equal(t, MethodPivoted, calls[0].Method)
}

func TestFakeSearcher_FailOn(t *testing.T) {
	boom := errors.New("backend down")
	f := NewFakeSearcher().WithInstances("Inception", film).FailOn("Inception", boom)

	_, err := f.InstanceSearch(context.Background(), "Inception", rank.Levenshtein())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, f.CallCount("Inception"))
}

func TestFakeSearcher_CallOrderAndReset(t *testing.T) {
	f := NewFakeSearcher()
	ctx := context.Background()
	_, _ = f.InstanceSearch(ctx, "a", rank.Levenshtein())
	_, _ = f.PivotedSearch(ctx, nil, "b", rank.Embedding())

	calls := f.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, int64(1), calls[0].Seq)
	assert.Equal(t, int64(2), calls[1].Seq)

	f.Reset()
	assert.Empty(t, f.Calls())
	_, _ = f.InstanceSearch(ctx, "a", rank.Levenshtein())
	assert.Equal(t, int64(1), f.Calls()[0].Seq)
}

func TestFakeSearcher_ResultsAreCopies(t *testing.T) {
	f := NewFakeSearcher().WithInstances("Inception", film)
	ctx := context.Background()

	scores, _ := f.InstanceSearch(ctx, "Inception", rank.Levenshtein())
	scores[0].Entity.ID = "mutated"

	again, _ := f.InstanceSearch(ctx, "Inception", rank.Levenshtein())
	assert.Equal(t, film.ID, again[0].Entity.ID)
}
