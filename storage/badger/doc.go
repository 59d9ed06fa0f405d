// Package badger implements the passage store on an embedded BadgerDB.
//
// Passages are stored under a single key prefix, serialized with mus-go.
// Search is a brute-force scan computing the dot product of unit vectors,
// which equals cosine similarity.
package badger
