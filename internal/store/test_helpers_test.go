package store

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
)

// createTestStore creates a new file-backed store for testing.
func createTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	opts = append([]Option{WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}, opts...)
	s, err := Open(path, opts...)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

const filmDatasetYAML = `
entities:
  - {id: "class:film", label: Film, kind: class}
  - {id: "class:person", label: Person, kind: class}
  - {id: "prop:director", label: director, kind: property, aliases: [directed by]}
  - {id: "prop:starring", label: starring, kind: property}
  - {id: "prop:birthplace", label: birth place, kind: property}
  - id: film:inception
    label: Inception
    kind: instance
    aliases: ["Inception (2010)"]
    types: ["class:film"]
  - id: person:nolan
    label: Christopher Nolan
    kind: instance
    aliases: [Chris Nolan]
    types: ["class:person"]
  - {id: "person:dicaprio", label: Leonardo DiCaprio, kind: instance, types: ["class:person"]}
  - {id: "city:london", label: London, kind: instance}
edges:
  - {subject: "film:inception", predicate: "prop:director", object: "person:nolan"}
  - {subject: "film:inception", predicate: "prop:starring", object: "person:dicaprio"}
  - {subject: "person:nolan", predicate: "prop:birthplace", object: "city:london"}
`

// filmStore returns a store indexed with the film dataset.
func filmStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	s := createTestStore(t, opts...)
	ds, err := ParseDataset([]byte(filmDatasetYAML))
	if err != nil {
		t.Fatalf("ParseDataset() failed: %v", err)
	}
	if _, err := s.Index(context.Background(), ds); err != nil {
		t.Fatalf("Index() failed: %v", err)
	}
	return s
}
