package main

import (
	"fmt"
	"io"
	"sync"
	"unicode/utf8"

	"github.com/poiesic/juris/core"
	"github.com/poiesic/juris/retrieval"
)

// consoleMonitor prints each fusion stage for ask --verbose.
type consoleMonitor struct {
	mu sync.Mutex
	w  io.Writer
}

var _ retrieval.Monitor = (*consoleMonitor)(nil)

func newConsoleMonitor(w io.Writer) *consoleMonitor {
	return &consoleMonitor{w: w}
}

func (m *consoleMonitor) printf(format string, args ...any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fmt.Fprintf(m.w, format, args...)
}

func (m *consoleMonitor) Start(queries []string) {
	m.printf("🔍 %d requêtes de recherche\n", len(queries))
	for i, q := range queries {
		m.printf("  %2d. %s\n", i+1, q)
	}
}

// QueryFinished may be called concurrently from the worker pool.
func (m *consoleMonitor) QueryFinished(query string, raw, kept int, err error) {
	if err != nil {
		m.printf("  ✗ %q: %v\n", query, err)
		return
	}
	m.printf("  ✓ %q: %d résultats, %d retenus\n", query, raw, kept)
}

func (m *consoleMonitor) AfterMerge(unique int) {
	m.printf("📚 %d passages uniques après fusion\n", unique)
}

func (m *consoleMonitor) BudgetReached(kept, available int) {
	m.printf("✂️  budget de contexte atteint: %d/%d passages\n", kept, available)
}

func (m *consoleMonitor) Finish(fc *core.FusedContext) {
	m.printf("📄 contexte: %d passages, %d caractères\n\n", len(fc.Candidates), utf8.RuneCountInString(fc.Text))
}
