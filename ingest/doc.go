// Package ingest loads pre-chunked legal passages into a passage store.
//
// Input is JSON Lines, one passage per line. Passages are embedded in
// batches with retry and exponential backoff, normalized for cosine
// similarity and written through storage.PassageRepository. Progress is
// reported to an optional writer.
package ingest
