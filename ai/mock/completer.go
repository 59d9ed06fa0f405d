package mock

import (
	"context"
	"sync"
	"sync/atomic"
)

// MockCompleter is a test double for ai.Completer.
// It allows custom behavior injection via function fields.
type MockCompleter struct {
	// CompleteFunc is called by Complete if set.
	// If nil, Complete returns Response.
	CompleteFunc func(ctx context.Context, prompt string) (string, error)

	// Response is the canned answer used when CompleteFunc is nil.
	Response string

	callCount atomic.Int64

	mu      sync.Mutex
	prompts []string
}

// NewMockCompleter creates a mock completer that always answers response.
// Note: Returns concrete type to allow test assertions.
func NewMockCompleter(response string) *MockCompleter {
	return &MockCompleter{Response: response}
}

// WithCompleteFunc sets CompleteFunc and returns the mock for chaining.
func (m *MockCompleter) WithCompleteFunc(fn func(ctx context.Context, prompt string) (string, error)) *MockCompleter {
	m.CompleteFunc = fn
	return m
}

// Complete records the prompt and returns the injected or canned response.
func (m *MockCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	m.callCount.Add(1)
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()

	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, prompt)
	}
	return m.Response, nil
}

// CallCount returns the number of times Complete was called.
func (m *MockCompleter) CallCount() int {
	return int(m.callCount.Load())
}

// Prompts returns a copy of every prompt received, in call order.
func (m *MockCompleter) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.prompts))
	copy(out, m.prompts)
	return out
}

// LastPrompt returns the most recent prompt, or "" if none.
func (m *MockCompleter) LastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.prompts) == 0 {
		return ""
	}
	return m.prompts[len(m.prompts)-1]
}

// Reset clears the call count, recorded prompts and injected behavior.
func (m *MockCompleter) Reset() {
	m.callCount.Store(0)
	m.mu.Lock()
	m.prompts = nil
	m.mu.Unlock()
	m.CompleteFunc = nil
}
