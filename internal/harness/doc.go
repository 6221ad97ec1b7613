// Package harness runs query-resolution conformance scenarios.
//
// A scenario pairs an entity dataset with a plan and the expected outcome
// of resolving it. Each scenario runs against a fresh in-memory store, with
// a fixed pass token, so the emitted query and trace are reproducible and
// can be compared against golden files.
//
// # Scenario Format
//
//	name: director_of_inception
//	description: "Instance pivot scopes the property search"
//	dataset_file: ../datasets/films.yaml   # or an inline dataset:
//	plan:
//	  patterns: ["I1 P1 ?VAR1"]
//	  bindings:
//	    - {placeholder: I1, kind: instance, term: Inception}
//	    - {placeholder: P1, kind: property, term: director}
//	require_pivot: false
//	expect:
//	  resolutions: {I1: "film:inception"}
//	  unresolved: []
//	  searches:
//	    - {method: instance, term: Inception}
//	    - {method: pivoted, term: director, pivot: "film:inception"}
//	  query: |
//	    SELECT DISTINCT ?VAR1 WHERE { ... }
//
// A scenario expecting failure sets expect.error to the error code
// (UNMAPPED_PLACEHOLDER, RESOLUTION_FAILURE, BACKEND_UNAVAILABLE,
// MALFORMED_PATTERN).
//
// # Expectations
//
//   - error: the pass fails with this code (empty: the pass succeeds)
//   - resolutions: placeholder -> entity id, subset match
//   - unresolved: exact list, when present
//   - searches: exact ordered list of backend calls, when present
//   - query: exact SPARQL text, ignoring surrounding whitespace
package harness
