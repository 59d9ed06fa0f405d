// Package web provides the secondary context source used when the knowledge
// base returns too little.
//
// FallbackDecider decides whether the fused context is too short and, if so,
// searches the web for the first expanded queries with a regional qualifier
// appended. TavilyClient is the Searcher used in production.
package web
