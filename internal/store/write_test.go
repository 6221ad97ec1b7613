package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/nlq/internal/ir"
)

func TestPutEntity(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	e := ir.Entity{ID: "film:inception", Label: "Inception", Kind: ir.EntityInstance}
	require.NoError(t, s.PutEntity(ctx, e, "Inception (2010)"))

	got, err := s.ReadEntity(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, e, got)

	aliases, err := s.Aliases(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Inception (2010)"}, aliases)
}

func TestPutEntity_Replaces(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.PutEntity(ctx, ir.Entity{ID: "x", Label: "old", Kind: ir.EntityClass}, "a", "b"))
	require.NoError(t, s.PutEntity(ctx, ir.Entity{ID: "x", Label: "new", Kind: ir.EntityClass}, "c"))

	got, err := s.ReadEntity(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, "new", got.Label)

	aliases, err := s.Aliases(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, aliases)
}

func TestPutEntity_Invalid(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name string
		e    ir.Entity
	}{
		{"missing id", ir.Entity{Label: "x", Kind: ir.EntityClass}},
		{"missing label", ir.Entity{ID: "x", Kind: ir.EntityClass}},
		{"bad kind", ir.Entity{ID: "x", Label: "x", Kind: "widget"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, s.PutEntity(ctx, tt.e))
		})
	}
}

func TestPutEntity_RecordsEmbedder(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.PutEntity(ctx, ir.Entity{ID: "x", Label: "x", Kind: ir.EntityClass}))

	st, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, "hash/256", st.Embedder)
}

func TestPutEntity_EmbedderMismatch(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.PutEntity(ctx, ir.Entity{ID: "x", Label: "x", Kind: ir.EntityClass}))

	s.embedder = NewHashingEmbedder(64)
	err := s.PutEntity(ctx, ir.Entity{ID: "y", Label: "y", Kind: ir.EntityClass})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmbedderMismatch))
}

func TestPutType(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.PutEntity(ctx, ir.Entity{ID: "film:inception", Label: "Inception", Kind: ir.EntityInstance}))
	require.NoError(t, s.PutEntity(ctx, ir.Entity{ID: "class:film", Label: "Film", Kind: ir.EntityClass}))

	require.NoError(t, s.PutType(ctx, "film:inception", "class:film"))
	require.NoError(t, s.PutType(ctx, "film:inception", "class:film"), "idempotent")

	classes, err := s.ClassesOf(ctx, "film:inception")
	require.NoError(t, err)
	require.Len(t, classes, 1)
	assert.Equal(t, "class:film", classes[0].ID)

	err = s.PutType(ctx, "class:film", "class:film")
	assert.True(t, errors.Is(err, ErrKindMismatch))

	err = s.PutType(ctx, "film:missing", "class:film")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestPutEdge(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.PutEntity(ctx, ir.Entity{ID: "a", Label: "a", Kind: ir.EntityInstance}))
	require.NoError(t, s.PutEntity(ctx, ir.Entity{ID: "b", Label: "b", Kind: ir.EntityInstance}))
	require.NoError(t, s.PutEntity(ctx, ir.Entity{ID: "p", Label: "p", Kind: ir.EntityProperty}))

	require.NoError(t, s.PutEdge(ctx, "a", "p", "b"))
	require.NoError(t, s.PutEdge(ctx, "a", "p", "b"), "idempotent")

	st, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, st.Edges)

	err = s.PutEdge(ctx, "a", "b", "p")
	assert.True(t, errors.Is(err, ErrKindMismatch), "predicate must be a property")

	err = s.PutEdge(ctx, "a", "p", "missing")
	assert.Error(t, err, "foreign key on object")
}

func TestIndex(t *testing.T) {
	s := createTestStore(t)
	ds, err := ParseDataset([]byte(filmDatasetYAML))
	require.NoError(t, err)

	stats, err := s.Index(context.Background(), ds)
	require.NoError(t, err)
	assert.Equal(t, IndexStats{Entities: 9, Types: 3, Edges: 3}, stats)

	st, err := s.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Stats{Instances: 4, Classes: 2, Properties: 3, Types: 3, Edges: 3, Embedder: "hash/256"}, st)
}

func TestIndex_Idempotent(t *testing.T) {
	s := filmStore(t)
	ds, err := ParseDataset([]byte(filmDatasetYAML))
	require.NoError(t, err)

	_, err = s.Index(context.Background(), ds)
	require.NoError(t, err)

	st, err := s.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, st.Instances)
	assert.Equal(t, 3, st.Edges)
}

type failingEmbedder struct{}

func (failingEmbedder) Name() string { return "failing" }

func (failingEmbedder) Embed(context.Context, string) ([]float32, error) {
	return nil, errors.New("embedder offline")
}

func TestIndex_EmbedFailureWritesNothing(t *testing.T) {
	s := createTestStore(t, WithEmbedder(failingEmbedder{}))
	ds, err := ParseDataset([]byte(filmDatasetYAML))
	require.NoError(t, err)

	_, err = s.Index(context.Background(), ds)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "embedder offline")

	st, err := s.Stats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, st.Instances)
	assert.Empty(t, st.Embedder)
}
