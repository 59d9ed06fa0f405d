// Package postgres implements the passage store on PostgreSQL with the
// pgvector extension.
//
// Passages live in a single table. The embedding column uses the vector type
// and search orders by the cosine distance operator (<=>). Scores are reported
// as 1 - distance so they are comparable with the badger backend. Metadata
// filters are evaluated with JSONB containment over the flattened attributes.
package postgres
