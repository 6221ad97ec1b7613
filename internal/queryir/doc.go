// Package queryir provides the abstract query plan handed to the resolver.
//
// A Plan is what natural-language analysis produces: an ordered list of
// placeholder triple patterns plus the bindings that say what each
// placeholder stands for. The resolver turns a Plan into a concrete graph
// query; the plan itself never changes.
//
// ARCHITECTURE:
//
//	[question analysis] -> [Plan] -> [engine] -> [querysparql.Builder] -> SPARQL
//
// PLACEHOLDERS:
//
// Each pattern is three whitespace separated tokens. A token is either:
//   - a structural placeholder, recognized by prefix: "?VAR..." (variable)
//     or "TYPE..." (rdf:type); these are never looked up
//   - the Placeholder of exactly one Binding in Plan.Bindings
//
// ORDERING:
//
// Pattern order is significant. The engine resolves patterns strictly in
// plan order and later patterns reuse entities memoized by earlier ones, so
// the plan must list a pattern that introduces an instance before patterns
// that use it as context. Validate warns when that is not the case.
//
// Validate is collect-all: it reports every problem in a plan without
// stopping at the first one. The engine, by contrast, fails fast.
package queryir
