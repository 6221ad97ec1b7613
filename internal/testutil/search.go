package testutil

import (
	"context"
	"sync"

	"github.com/roach88/nlq/internal/ir"
	"github.com/roach88/nlq/internal/rank"
)

// Search methods recorded by FakeSearcher.
const (
	MethodInstance = "instance"
	MethodPivoted  = "pivoted"
)

// AnyPivot matches a pivoted search regardless of its pivot.
const AnyPivot = "*"

// SearchCall is one recorded call to FakeSearcher.
type SearchCall struct {
	Seq    int64
	Method string
	Term   string

	// Pivot is the pivot entity ID; empty when the search had no pivot.
	Pivot    string
	HasPivot bool

	Params rank.Params
}

// FakeSearcher is a scripted search backend that records every call.
//
// Results are scripted per term (and, for pivoted searches, per pivot ID).
// Unscripted searches return an empty result. FakeSearcher satisfies
// engine.Searcher.
type FakeSearcher struct {
	mu        sync.Mutex
	clock     *DeterministicClock
	instances map[string]ir.Scores
	pivoted   map[pivotKey]ir.Scores
	failures  map[string]error
	calls     []SearchCall
}

type pivotKey struct {
	pivot string
	term  string
}

// NewFakeSearcher creates a searcher with nothing scripted.
func NewFakeSearcher() *FakeSearcher {
	return &FakeSearcher{
		clock:     NewDeterministicClock(),
		instances: make(map[string]ir.Scores),
		pivoted:   make(map[pivotKey]ir.Scores),
		failures:  make(map[string]error),
	}
}

// WithInstances scripts the instance search result for term. Entities are
// given descending scores in argument order.
func (f *FakeSearcher) WithInstances(term string, entities ...ir.Entity) *FakeSearcher {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.instances[term] = scored(entities)
	return f
}

// WithPivoted scripts the pivoted search result for (pivotID, term).
// pivotID "" matches a search without pivot; AnyPivot matches any search
// for term that has no more specific script.
func (f *FakeSearcher) WithPivoted(pivotID, term string, entities ...ir.Entity) *FakeSearcher {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pivoted[pivotKey{pivot: pivotID, term: term}] = scored(entities)
	return f
}

// FailOn makes every search for term return err.
func (f *FakeSearcher) FailOn(term string, err error) *FakeSearcher {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[term] = err
	return f
}

// InstanceSearch implements engine.Searcher.
func (f *FakeSearcher) InstanceSearch(_ context.Context, term string, params rank.Params) (ir.Scores, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, SearchCall{
		Seq:    f.clock.Next(),
		Method: MethodInstance,
		Term:   term,
		Params: params,
	})
	if err := f.failures[term]; err != nil {
		return nil, err
	}
	return clone(f.instances[term]), nil
}

// PivotedSearch implements engine.Searcher.
func (f *FakeSearcher) PivotedSearch(_ context.Context, pivot *ir.Entity, term string, params rank.Params) (ir.Scores, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	call := SearchCall{
		Seq:    f.clock.Next(),
		Method: MethodPivoted,
		Term:   term,
		Params: params,
	}
	if pivot != nil {
		call.Pivot = pivot.ID
		call.HasPivot = true
	}
	f.calls = append(f.calls, call)

	if err := f.failures[term]; err != nil {
		return nil, err
	}
	if s, ok := f.pivoted[pivotKey{pivot: call.Pivot, term: term}]; ok {
		return clone(s), nil
	}
	return clone(f.pivoted[pivotKey{pivot: AnyPivot, term: term}]), nil
}

// Calls returns every recorded call in issue order.
func (f *FakeSearcher) Calls() []SearchCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]SearchCall, len(f.calls))
	copy(out, f.calls)
	return out
}

// CallCount returns how many searches were issued for term.
func (f *FakeSearcher) CallCount(term string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.Term == term {
			n++
		}
	}
	return n
}

// Reset forgets recorded calls. Scripts are kept.
func (f *FakeSearcher) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
	f.clock.Reset()
}

func scored(entities []ir.Entity) ir.Scores {
	out := make(ir.Scores, len(entities))
	for i, e := range entities {
		out[i] = ir.Score{Entity: e, Value: 1 - float64(i)*0.1}
	}
	return out
}

func clone(s ir.Scores) ir.Scores {
	if s == nil {
		return ir.Scores{}
	}
	out := make(ir.Scores, len(s))
	copy(out, s)
	return out
}
