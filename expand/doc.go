// Package expand turns one legal question into a small set of search queries.
//
// Questions that cite an article ("article 1457", "art. 742") are expanded
// from a fixed template without any model call. Every other question is
// rephrased by a completion model using Quebec legal vocabulary, and a query
// built from the legal entities found in the question is appended.
//
// The result is deduplicated case-insensitively, keeps the question first
// and never holds more than MaxQueries entries. Expansion never fails: when
// the model is unavailable the question alone is returned.
package expand
