// Package guard decides whether a user question is admitted to the
// retrieval pipeline.
//
// InputGuard runs, in order and stopping at the first failure:
//
//  1. length limits on the trimmed query
//  2. per-user sliding window rate limiting (RateLimiter)
//  3. prompt injection risk scoring (PatternRiskScorer)
//  4. domain relevance classification (RelevanceClassifier)
//
// Accepted queries are sanitized once, after every check passes.
// Rejections are returned as *RejectionError carrying the message shown
// to the user; errors.Is works against the sentinel of the failing stage.
//
// The risk scorer is a table of Rules. Injection patterns use negative
// lookahead and are compiled with github.com/dlclark/regexp2.
package guard
