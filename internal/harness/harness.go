package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/nlq/internal/engine"
	"github.com/roach88/nlq/internal/ir"
	"github.com/roach88/nlq/internal/rank"
	"github.com/roach88/nlq/internal/store"
	"github.com/roach88/nlq/internal/testutil"
)

// Run executes a test scenario and returns the result.
//
// Each scenario runs against a fresh in-memory store for isolation, and the
// pass token comes from a fixed generator, so repeated runs produce
// identical results.
//
// Execution flow:
//  1. Load and index the dataset into an in-memory store
//  2. Build the plan and an engine that records every backend call
//  3. Resolve the plan
//  4. Evaluate expectations against the outcome
//
// A pass failure is not a Run error: it is compared with expect.error.
// Run returns an error only when the scenario itself cannot be executed.
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext is Run with an explicit context.
func RunContext(ctx context.Context, scenario *Scenario) (*Result, error) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	dataset, err := scenario.dataset()
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}

	st, err := store.Open(":memory:", store.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	if _, err := st.Index(ctx, dataset); err != nil {
		return nil, fmt.Errorf("index dataset: %w", err)
	}

	plan, err := scenario.Plan.ToPlan()
	if err != nil {
		return nil, fmt.Errorf("build plan: %w", err)
	}

	rec := &recordingSearcher{inner: st}
	eng := engine.New(rec,
		engine.WithLogger(logger),
		engine.WithPassGenerator(testutil.NewFixedPassGenerator(scenario.PassToken)),
		engine.WithRequirePivot(scenario.RequirePivot),
	)

	result := NewResult()
	out, resolveErr := eng.Resolve(ctx, plan)
	result.Searches = append(result.Searches, rec.calls...)
	if resolveErr != nil {
		result.Err = resolveErr
		result.ErrorCode = ErrorCode(resolveErr)
	} else {
		result.PassID = out.PassID
		result.Query = out.Query
		result.Trace = out.Trace
	}

	evaluate(result, scenario.Expect)
	return result, nil
}

// ErrorCode returns the resolution error code of err, or "ERROR" when err
// is not a resolution error.
func ErrorCode(err error) string {
	var re *engine.ResolutionError
	if errors.As(err, &re) {
		return string(re.Code)
	}
	return "ERROR"
}

// recordingSearcher records calls before delegating to the store.
type recordingSearcher struct {
	inner engine.Searcher
	calls []SearchRecord
}

func (r *recordingSearcher) InstanceSearch(ctx context.Context, term string, params rank.Params) (ir.Scores, error) {
	r.calls = append(r.calls, SearchRecord{Method: MethodInstance, Term: term})
	return r.inner.InstanceSearch(ctx, term, params)
}

func (r *recordingSearcher) PivotedSearch(ctx context.Context, pivot *ir.Entity, term string, params rank.Params) (ir.Scores, error) {
	rec := SearchRecord{Method: MethodPivoted, Term: term}
	if pivot != nil {
		rec.Pivot = pivot.ID
	}
	r.calls = append(r.calls, rec)
	return r.inner.PivotedSearch(ctx, pivot, term, params)
}
