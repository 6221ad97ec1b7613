package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/nlq/internal/ir"
)

var (
	// ErrEmbedderMismatch is returned when the index was built with a
	// different embedder than the store is configured with.
	ErrEmbedderMismatch = errors.New("embedder mismatch")

	// ErrKindMismatch is returned when a type or edge references an entity
	// of the wrong kind.
	ErrKindMismatch = errors.New("entity kind mismatch")
)

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// PutEntity inserts or replaces an entity and its aliases.
// The entity's vector is computed from its label and aliases.
func (s *Store) PutEntity(ctx context.Context, e ir.Entity, aliases ...string) error {
	if err := validateEntity(e); err != nil {
		return fmt.Errorf("put entity: %w", err)
	}

	vec, err := s.embedder.Embed(ctx, embeddingText(e.Label, aliases))
	if err != nil {
		return fmt.Errorf("put entity %s: embed: %w", e.ID, err)
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := s.ensureEmbedder(ctx, tx); err != nil {
			return err
		}
		return putEntity(ctx, tx, e, aliases, vec)
	})
}

// PutType records that instanceID is an instance of classID.
// Idempotent: an existing membership is left alone.
func (s *Store) PutType(ctx context.Context, instanceID, classID string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		return putType(ctx, tx, instanceID, classID)
	})
}

// PutEdge records the fact (subjectID, predicateID, objectID).
// The predicate must be a property entity. Idempotent.
func (s *Store) PutEdge(ctx context.Context, subjectID, predicateID, objectID string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		return putEdge(ctx, tx, subjectID, predicateID, objectID)
	})
}

// IndexStats counts what Index wrote.
type IndexStats struct {
	Entities int `json:"entities"`
	Types    int `json:"types"`
	Edges    int `json:"edges"`
}

// Index writes a whole dataset in one transaction. Vectors are computed
// before the transaction starts; a failure leaves the index unchanged.
func (s *Store) Index(ctx context.Context, ds *Dataset) (IndexStats, error) {
	var stats IndexStats
	if err := ds.Validate(); err != nil {
		return stats, fmt.Errorf("index dataset: %w", err)
	}

	vectors := make([][]float32, len(ds.Entities))
	for i, rec := range ds.Entities {
		vec, err := s.embedder.Embed(ctx, embeddingText(rec.Label, rec.Aliases))
		if err != nil {
			return stats, fmt.Errorf("index dataset: embed %s: %w", rec.ID, err)
		}
		vectors[i] = vec
	}

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if err := s.ensureEmbedder(ctx, tx); err != nil {
			return err
		}
		for i, rec := range ds.Entities {
			if err := putEntity(ctx, tx, rec.Entity(), rec.Aliases, vectors[i]); err != nil {
				return err
			}
			stats.Entities++
		}
		for _, rec := range ds.Entities {
			for _, classID := range rec.Types {
				if err := putType(ctx, tx, rec.ID, classID); err != nil {
					return err
				}
				stats.Types++
			}
		}
		for _, edge := range ds.Edges {
			if err := putEdge(ctx, tx, edge.Subject, edge.Predicate, edge.Object); err != nil {
				return err
			}
			stats.Edges++
		}
		return nil
	})
	if err != nil {
		return IndexStats{}, fmt.Errorf("index dataset: %w", err)
	}

	s.logger.Info("dataset indexed",
		"entities", stats.Entities,
		"types", stats.Types,
		"edges", stats.Edges,
		"embedder", s.embedder.Name(),
	)
	return stats, nil
}

// inTx runs fn in a transaction, committing on success.
func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// ensureEmbedder records the store's embedder on first write and rejects
// writes from a different one.
func (s *Store) ensureEmbedder(ctx context.Context, q queryer) error {
	name, err := readMeta(ctx, q, metaEmbedder)
	switch {
	case errors.Is(err, ErrNotFound):
		_, err := q.ExecContext(ctx, `INSERT INTO meta (key, value) VALUES (?, ?)`, metaEmbedder, s.embedder.Name())
		if err != nil {
			return fmt.Errorf("record embedder: %w", err)
		}
		return nil
	case err != nil:
		return err
	case name != s.embedder.Name():
		return fmt.Errorf("%w: index built with %q, store uses %q", ErrEmbedderMismatch, name, s.embedder.Name())
	}
	return nil
}

func putEntity(ctx context.Context, q queryer, e ir.Entity, aliases []string, vec []float32) error {
	vecJSON, err := marshalVector(vec)
	if err != nil {
		return fmt.Errorf("put entity %s: %w", e.ID, err)
	}

	_, err = q.ExecContext(ctx, `
		INSERT INTO entities (id, label, kind, vector)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			label = excluded.label,
			kind = excluded.kind,
			vector = excluded.vector
	`, e.ID, e.Label, string(e.Kind), vecJSON)
	if err != nil {
		return fmt.Errorf("put entity %s: %w", e.ID, err)
	}

	if _, err := q.ExecContext(ctx, `DELETE FROM aliases WHERE entity_id = ?`, e.ID); err != nil {
		return fmt.Errorf("put entity %s: clear aliases: %w", e.ID, err)
	}
	for _, alias := range aliases {
		_, err := q.ExecContext(ctx, `
			INSERT INTO aliases (entity_id, alias) VALUES (?, ?)
			ON CONFLICT DO NOTHING
		`, e.ID, alias)
		if err != nil {
			return fmt.Errorf("put entity %s: alias %q: %w", e.ID, alias, err)
		}
	}
	return nil
}

func putType(ctx context.Context, q queryer, instanceID, classID string) error {
	if err := checkKind(ctx, q, instanceID, ir.EntityInstance); err != nil {
		return fmt.Errorf("put type: %w", err)
	}
	if err := checkKind(ctx, q, classID, ir.EntityClass); err != nil {
		return fmt.Errorf("put type: %w", err)
	}
	_, err := q.ExecContext(ctx, `
		INSERT INTO types (instance_id, class_id) VALUES (?, ?)
		ON CONFLICT DO NOTHING
	`, instanceID, classID)
	if err != nil {
		return fmt.Errorf("put type %s -> %s: %w", instanceID, classID, err)
	}
	return nil
}

func putEdge(ctx context.Context, q queryer, subjectID, predicateID, objectID string) error {
	if err := checkKind(ctx, q, predicateID, ir.EntityProperty); err != nil {
		return fmt.Errorf("put edge: %w", err)
	}
	_, err := q.ExecContext(ctx, `
		INSERT INTO edges (subject_id, predicate_id, object_id) VALUES (?, ?, ?)
		ON CONFLICT DO NOTHING
	`, subjectID, predicateID, objectID)
	if err != nil {
		return fmt.Errorf("put edge %s %s %s: %w", subjectID, predicateID, objectID, err)
	}
	return nil
}

// checkKind verifies that entity id exists and has kind want.
func checkKind(ctx context.Context, q queryer, id string, want ir.EntityKind) error {
	var kind string
	err := q.QueryRowContext(ctx, `SELECT kind FROM entities WHERE id = ?`, id).Scan(&kind)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: entity %s", ErrNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("read kind of %s: %w", id, err)
	}
	if ir.EntityKind(kind) != want {
		return fmt.Errorf("%w: %s is %s, want %s", ErrKindMismatch, id, kind, want)
	}
	return nil
}

func validateEntity(e ir.Entity) error {
	if e.ID == "" {
		return errors.New("entity id is required")
	}
	if e.Label == "" {
		return fmt.Errorf("entity %s: label is required", e.ID)
	}
	if !e.Kind.IsValid() {
		return fmt.Errorf("entity %s: invalid kind %q", e.ID, e.Kind)
	}
	return nil
}
