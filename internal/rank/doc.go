// Package rank holds the ranking strategies used by entity search.
//
// Two strategies exist:
//
//   - Levenshtein: lexical edit-distance similarity, used for instance
//     lookup. The default threshold is automatic (see AutoThreshold).
//   - Embedding: cosine similarity between embedding vectors, used for
//     pivot-scoped class and property lookup.
//
// Ranking is deterministic: candidates are ordered by score descending,
// ties broken by entity ID ascending, so rank 0 is always well defined.
package rank
