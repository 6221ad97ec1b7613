package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/nlq/internal/ir"
	"github.com/roach88/nlq/internal/rank"
)

// candidate is an entity with everything ranking needs.
type candidate struct {
	entity ir.Entity
	labels []string // label first, then aliases
	vector []float32
}

const candidateQuery = `
	SELECT e.id, e.label, e.kind, e.vector,
		COALESCE(group_concat(a.alias, char(31)), '')
	FROM entities e
	LEFT JOIN aliases a ON a.entity_id = e.id
	WHERE %s
	GROUP BY e.id
	ORDER BY e.id COLLATE BINARY ASC
`

// pivotScope selects the class and property ids related to a pivot: its
// classes, predicates of edges touching it, and, for a class pivot,
// predicates of edges touching its instances.
const pivotScope = `e.kind IN ('class', 'property') AND e.id IN (
		SELECT class_id FROM types WHERE instance_id = ?
		UNION
		SELECT predicate_id FROM edges WHERE subject_id = ? OR object_id = ?
		UNION
		SELECT ed.predicate_id FROM edges ed
		JOIN types t ON t.instance_id = ed.subject_id OR t.instance_id = ed.object_id
		WHERE t.class_id = ?
	)`

// InstanceSearch ranks every instance entity against term.
// Implements the engine's search backend.
func (s *Store) InstanceSearch(ctx context.Context, term string, params rank.Params) (ir.Scores, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("instance search: %w", err)
	}

	cands, err := s.candidates(ctx, `e.kind = 'instance'`)
	if err != nil {
		return nil, fmt.Errorf("instance search: %w", err)
	}

	scores, err := s.score(ctx, cands, term, params)
	if err != nil {
		return nil, fmt.Errorf("instance search: %w", err)
	}

	s.logger.Debug("instance search",
		"term", term,
		"strategy", params.Strategy,
		"threshold", params.Threshold.String(),
		"candidates", len(cands),
		"kept", len(scores),
	)
	return scores, nil
}

// PivotedSearch ranks class and property entities against term.
// With a non-nil pivot only entities related to the pivot are candidates;
// a nil pivot searches all of them.
// Implements the engine's search backend.
func (s *Store) PivotedSearch(ctx context.Context, pivot *ir.Entity, term string, params rank.Params) (ir.Scores, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("pivoted search: %w", err)
	}

	var cands []candidate
	var err error
	pivotID := ""
	if pivot == nil {
		cands, err = s.candidates(ctx, `e.kind IN ('class', 'property')`)
	} else {
		pivotID = pivot.ID
		cands, err = s.candidates(ctx, pivotScope, pivot.ID, pivot.ID, pivot.ID, pivot.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("pivoted search: %w", err)
	}

	scores, err := s.score(ctx, cands, term, params)
	if err != nil {
		return nil, fmt.Errorf("pivoted search: %w", err)
	}

	s.logger.Debug("pivoted search",
		"term", term,
		"pivot", pivotID,
		"strategy", params.Strategy,
		"candidates", len(cands),
		"kept", len(scores),
	)
	return scores, nil
}

// candidates reads the entities matching where, in id order.
func (s *Store) candidates(ctx context.Context, where string, args ...any) ([]candidate, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(candidateQuery, where), args...)
	if err != nil {
		return nil, fmt.Errorf("query candidates: %w", err)
	}
	defer rows.Close()

	var cands []candidate
	for rows.Next() {
		var c candidate
		var kind, vecJSON, aliasCol string
		if err := rows.Scan(&c.entity.ID, &c.entity.Label, &kind, &vecJSON, &aliasCol); err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		c.entity.Kind = ir.EntityKind(kind)
		c.labels = append([]string{c.entity.Label}, splitAliases(aliasCol)...)
		if c.vector, err = unmarshalVector(vecJSON); err != nil {
			return nil, fmt.Errorf("candidate %s: %w", c.entity.ID, err)
		}
		cands = append(cands, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate candidates: %w", err)
	}
	return cands, nil
}

// score ranks candidates with the requested strategy and applies the
// threshold. The result is never nil.
func (s *Store) score(ctx context.Context, cands []candidate, term string, params rank.Params) (ir.Scores, error) {
	scores := make(ir.Scores, 0, len(cands))

	switch params.Strategy {
	case rank.StrategyLevenshtein:
		for _, c := range cands {
			best := 0.0
			for _, l := range c.labels {
				best = max(best, rank.LexicalScore(term, l))
			}
			scores = append(scores, ir.Score{Entity: c.entity, Value: best})
		}

	case rank.StrategyEmbedding:
		if len(cands) == 0 {
			return scores, nil
		}
		if err := s.checkEmbedder(ctx); err != nil {
			return nil, err
		}
		q, err := s.embedder.Embed(ctx, term)
		if err != nil {
			return nil, fmt.Errorf("embed term %q: %w", term, err)
		}
		for _, c := range cands {
			scores = append(scores, ir.Score{Entity: c.entity, Value: rank.Cosine(q, c.vector)})
		}

	default:
		return nil, fmt.Errorf("unsupported strategy %q", params.Strategy)
	}

	return rank.Apply(scores, params.Threshold), nil
}

// checkEmbedder fails when the stored vectors came from another embedder.
func (s *Store) checkEmbedder(ctx context.Context) error {
	name, err := readMeta(ctx, s.db, metaEmbedder)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if name != s.embedder.Name() {
		return fmt.Errorf("%w: index built with %q, store uses %q", ErrEmbedderMismatch, name, s.embedder.Name())
	}
	return nil
}
