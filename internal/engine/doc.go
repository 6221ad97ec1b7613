// Package engine resolves a query plan into a concrete graph query.
//
// A resolution pass walks the plan's triple patterns in order. For each
// pattern it:
//
//  1. maps the three tokens to bindings (MapPlaceholder / AsTriple)
//  2. resolves a pivot from the subject binding, falling back to the object
//  3. resolves the predicate binding, scoped by that pivot
//
// and finally asks the query builder to build the query.
//
// Single writer: a pass runs on the caller's goroutine, one pattern at a
// time. The builder's memo is the only channel between patterns, so a later
// pattern sees every entity an earlier one resolved. Plan order must match
// dependency order.
//
// Every binding is searched at most once per pass. Variable and Type
// bindings are never searched. Resolution always takes the rank-0
// candidate; an empty candidate list is a RESOLUTION_FAILURE, never a
// default entity.
//
// Any error aborts the pass. There are no partial results.
//
// Steps are stamped with a per-pass logical clock (Clock.Next), never wall
// time, so the trace of a pass is reproducible.
package engine
