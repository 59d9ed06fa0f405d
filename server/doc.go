// Package server exposes the question pipeline over HTTP.
//
// Routes:
//
//	POST /api/v1/query   {"question": "...", "user_id": "..."}
//	GET  /health
//	GET  /metrics        Prometheus exposition, when a gatherer is configured
//
// The caller identity used for rate limiting is the user_id field, then the
// X-User-ID header, then the client address.
package server
