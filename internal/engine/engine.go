package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/nlq/internal/ir"
	"github.com/roach88/nlq/internal/queryir"
	"github.com/roach88/nlq/internal/querysparql"
	"github.com/roach88/nlq/internal/rank"
)

// Searcher is the ranked entity-search backend.
//
// Both searches return candidates best first. An empty result is not an
// error for the backend; the engine decides whether it is fatal.
type Searcher interface {
	// InstanceSearch ranks instance entities against term.
	InstanceSearch(ctx context.Context, term string, params rank.Params) (ir.Scores, error)

	// PivotedSearch ranks class and property entities against term, scoped
	// by pivot. A nil pivot asks for an unscoped search.
	PivotedSearch(ctx context.Context, pivot *ir.Entity, term string, params rank.Params) (ir.Scores, error)
}

// QueryBuilder owns the resolution state of one pass and builds the final
// query. querysparql.Builder is the production implementation.
type QueryBuilder interface {
	IsResolved(b ir.Binding) bool
	Solutions(b ir.Binding) []ir.Entity
	Add(b ir.Binding, e ir.Entity) error
	Build() (*querysparql.Query, error)
}

// BuilderFactory creates the builder for a pass.
type BuilderFactory func(plan *queryir.Plan) QueryBuilder

func sparqlBuilder(plan *queryir.Plan) QueryBuilder {
	return querysparql.NewBuilder(plan)
}

// Engine runs resolution passes against a search backend.
//
// An Engine holds no per-query state. Resolve may be called repeatedly;
// each call gets a fresh builder and clock.
type Engine struct {
	searcher     Searcher
	logger       *slog.Logger
	passGen      PassTokenGenerator
	newBuilder   BuilderFactory
	requirePivot bool
}

// EngineOption allows configuration of engine parameters.
type EngineOption func(*Engine)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithPassGenerator sets the pass token generator. Default: UUIDv7Generator.
func WithPassGenerator(g PassTokenGenerator) EngineOption {
	return func(e *Engine) {
		e.passGen = g
	}
}

// WithRequirePivot makes a predicate resolution without a pivot fail with
// RESOLUTION_FAILURE instead of issuing an unscoped search.
func WithRequirePivot(require bool) EngineOption {
	return func(e *Engine) {
		e.requirePivot = require
	}
}

// WithBuilderFactory replaces the query builder used by each pass.
func WithBuilderFactory(f BuilderFactory) EngineOption {
	return func(e *Engine) {
		e.newBuilder = f
	}
}

// New creates an Engine over the given search backend.
func New(s Searcher, opts ...EngineOption) *Engine {
	e := &Engine{
		searcher:   s,
		logger:     slog.Default(),
		passGen:    UUIDv7Generator{},
		newBuilder: sparqlBuilder,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Result is the outcome of a successful pass.
type Result struct {
	PassID string             `json:"pass_id"`
	Query  *querysparql.Query `json:"query"`
	Trace  []Step             `json:"trace"`
}

// Resolve runs one resolution pass over plan.
//
// Patterns are processed strictly in plan order. The first error aborts the
// pass and is returned; no partial result is produced.
func (e *Engine) Resolve(ctx context.Context, plan *queryir.Plan) (*Result, error) {
	if plan == nil {
		return nil, errors.New("resolve: nil plan")
	}

	p := &pass{
		engine:  e,
		id:      e.passGen.Generate(),
		plan:    plan,
		builder: e.newBuilder(plan),
		clock:   NewClock(),
	}
	logger := e.logger.With("pass", p.id)
	p.logger = logger

	logger.Debug("resolution pass starting",
		"patterns", len(plan.Patterns),
		"bindings", len(plan.Bindings),
	)

	for i, pat := range plan.Patterns {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("resolve pattern %d: %w", i, err)
		}
		if err := p.resolvePattern(ctx, i, pat); err != nil {
			logger.Warn("resolution pass failed",
				"pattern", string(pat),
				"index", i,
				"error", err,
			)
			return nil, err
		}
	}

	q, err := p.builder.Build()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	logger.Debug("resolution pass complete",
		"steps", len(p.trace),
		"unresolved", len(q.Unresolved),
	)

	return &Result{PassID: p.id, Query: q, Trace: p.trace}, nil
}

// pass is the state of one Resolve call. It never outlives the call.
type pass struct {
	engine  *Engine
	logger  *slog.Logger
	id      string
	plan    *queryir.Plan
	builder QueryBuilder
	clock   *Clock
	trace   []Step

	// current pattern, for errors and trace steps
	index   int
	pattern string
}

// resolvePattern maps one pattern, resolves its pivot, then its predicate.
func (p *pass) resolvePattern(ctx context.Context, index int, pat ir.TriplePattern) error {
	p.index = index
	p.pattern = string(pat)

	p.logger.Debug("resolving pattern", "pattern", p.pattern, "index", index)

	triple, err := AsTriple(pat, p.plan.Bindings)
	if err != nil {
		return err
	}

	pivot, err := p.resolvePivot(ctx, triple.S)
	if err != nil {
		return p.annotate(err)
	}
	if pivot == nil {
		pivot, err = p.resolvePivot(ctx, triple.O)
		if err != nil {
			return p.annotate(err)
		}
	}

	if err := p.resolvePredicate(ctx, pivot, triple.P); err != nil {
		return p.annotate(err)
	}
	return nil
}

// annotate stamps the current pattern on a ResolutionError.
func (p *pass) annotate(err error) error {
	var re *ResolutionError
	if errors.As(err, &re) && re.Pattern == "" {
		re.Pattern = p.pattern
	}
	return err
}
