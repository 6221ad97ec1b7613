package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/nlq/internal/ir"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

const metaEmbedder = "embedder"

// ReadEntity returns the entity with the given id.
func (s *Store) ReadEntity(ctx context.Context, id string) (ir.Entity, error) {
	var e ir.Entity
	var kind string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, label, kind FROM entities WHERE id = ?
	`, id).Scan(&e.ID, &e.Label, &kind)
	if errors.Is(err, sql.ErrNoRows) {
		return ir.Entity{}, fmt.Errorf("entity %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return ir.Entity{}, fmt.Errorf("read entity %s: %w", id, err)
	}
	e.Kind = ir.EntityKind(kind)
	return e, nil
}

// ListEntities returns the entities of one kind, or all entities when kind
// is empty, ordered by id.
//
// Returns an empty slice (not nil) if there are none.
func (s *Store) ListEntities(ctx context.Context, kind ir.EntityKind) ([]ir.Entity, error) {
	query := `SELECT id, label, kind FROM entities ORDER BY id COLLATE BINARY ASC`
	args := []any{}
	if kind != "" {
		query = `SELECT id, label, kind FROM entities WHERE kind = ? ORDER BY id COLLATE BINARY ASC`
		args = append(args, string(kind))
	}
	return s.scanEntities(ctx, query, args...)
}

// ClassesOf returns the classes instanceID belongs to, ordered by id.
func (s *Store) ClassesOf(ctx context.Context, instanceID string) ([]ir.Entity, error) {
	return s.scanEntities(ctx, `
		SELECT e.id, e.label, e.kind
		FROM types t JOIN entities e ON e.id = t.class_id
		WHERE t.instance_id = ?
		ORDER BY e.id COLLATE BINARY ASC
	`, instanceID)
}

// Aliases returns the aliases of an entity, sorted.
func (s *Store) Aliases(ctx context.Context, id string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT alias FROM aliases WHERE entity_id = ? ORDER BY alias COLLATE BINARY ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("query aliases: %w", err)
	}
	defer rows.Close()

	aliases := []string{}
	for rows.Next() {
		var a string
		if err := rows.Scan(&a); err != nil {
			return nil, fmt.Errorf("scan alias: %w", err)
		}
		aliases = append(aliases, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate aliases: %w", err)
	}
	return aliases, nil
}

// Stats summarizes the index.
type Stats struct {
	Instances  int    `json:"instances"`
	Classes    int    `json:"classes"`
	Properties int    `json:"properties"`
	Types      int    `json:"types"`
	Edges      int    `json:"edges"`
	Embedder   string `json:"embedder"`
}

// Stats counts the rows of the index.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	counts, err := s.countByKind(ctx)
	if err != nil {
		return st, err
	}
	st.Instances = counts[ir.EntityInstance]
	st.Classes = counts[ir.EntityClass]
	st.Properties = counts[ir.EntityProperty]

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM types`).Scan(&st.Types); err != nil {
		return st, fmt.Errorf("count types: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM edges`).Scan(&st.Edges); err != nil {
		return st, fmt.Errorf("count edges: %w", err)
	}

	name, err := readMeta(ctx, s.db, metaEmbedder)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return st, err
	}
	st.Embedder = name
	return st, nil
}

// countByKind must release its rows before Stats runs the next query: the
// pool holds a single connection.
func (s *Store) countByKind(ctx context.Context) (map[ir.EntityKind]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT kind, COUNT(*) FROM entities GROUP BY kind`)
	if err != nil {
		return nil, fmt.Errorf("count entities: %w", err)
	}
	defer rows.Close()

	counts := make(map[ir.EntityKind]int)
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, fmt.Errorf("scan entity count: %w", err)
		}
		counts[ir.EntityKind(kind)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entity counts: %w", err)
	}
	return counts, nil
}

func (s *Store) scanEntities(ctx context.Context, query string, args ...any) ([]ir.Entity, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query entities: %w", err)
	}
	defer rows.Close()

	entities := []ir.Entity{}
	for rows.Next() {
		var e ir.Entity
		var kind string
		if err := rows.Scan(&e.ID, &e.Label, &kind); err != nil {
			return nil, fmt.Errorf("scan entity: %w", err)
		}
		e.Kind = ir.EntityKind(kind)
		entities = append(entities, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entities: %w", err)
	}
	return entities, nil
}

// readMeta returns a meta value, or ErrNotFound.
func readMeta(ctx context.Context, q queryer, key string) (string, error) {
	var value string
	err := q.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("meta %s: %w", key, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("read meta %s: %w", key, err)
	}
	return value, nil
}
