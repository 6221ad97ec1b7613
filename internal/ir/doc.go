// Package ir provides the shared data types for query-plan resolution.
//
// This package contains type definitions and serialization helpers only.
// All other internal packages import ir; ir imports nothing internal. This
// keeps IR the foundational layer with no circular dependencies.
//
// Key design constraints:
//   - Bindings and triple patterns are immutable inputs produced upstream
//   - Binding is comparable and used directly as a memoization key
//   - Scores are ordered highest first; rank 0 is always the chosen candidate
//   - Canonical JSON (RFC 8785) is the only serialization used for hashing
//   - All JSON tags use snake_case
package ir
