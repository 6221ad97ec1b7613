// Package store is the SQLite entity index behind the resolution engine.
//
// It holds three tables:
//   - entities: id, label, kind (instance|class|property) and an embedding
//     vector of the label and aliases
//   - types: instance -> class membership
//   - edges: subject -> predicate -> object facts
//
// plus aliases (alternative labels) and a meta table recording which
// embedder produced the stored vectors.
//
// *Store implements the engine's search backend:
//
//   - InstanceSearch ranks instance entities against a term. The lexical
//     strategy scores the best of label and aliases.
//   - PivotedSearch ranks class and property entities. With a pivot, the
//     candidates are the pivot's classes and the predicates of edges that
//     touch the pivot (or, for a class pivot, touch its instances). A nil
//     pivot searches every class and property.
//
// Candidate lists are read in id order (COLLATE BINARY) and ranked with
// package rank, so results are deterministic.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Types and edges must reference indexed entities
package store
