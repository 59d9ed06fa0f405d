// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package mock

import "github.com/poiesic/juris/ai"

// MockProvider is a test double for ai.AIProvider.
// It aggregates a mock embedder and one mock completer per purpose.
type MockProvider struct {
	embedder   *MockEmbedder
	completers map[ai.Purpose]*MockCompleter
}

// NewMockProvider creates a new mock provider with default mock services.
// The classification completer answers "OUI"; the others answer "".
//
// Returns ai.AIProvider interface for consistency with production constructors.
// Use GetMockEmbedder()/GetMockCompleter() to access concrete types for test assertions.
func NewMockProvider() ai.AIProvider {
	return &MockProvider{
		embedder: NewMockEmbedder(),
		completers: map[ai.Purpose]*MockCompleter{
			ai.PurposeExpansion:      NewMockCompleter(""),
			ai.PurposeClassification: NewMockCompleter("OUI"),
			ai.PurposeSynthesis:      NewMockCompleter(""),
		},
	}
}

// NewMockProviderWithServices creates a mock provider with custom mock services.
// Purposes missing from completers get an empty-response mock.
func NewMockProviderWithServices(embedder *MockEmbedder, completers map[ai.Purpose]*MockCompleter) ai.AIProvider {
	p := &MockProvider{
		embedder:   embedder,
		completers: make(map[ai.Purpose]*MockCompleter, len(ai.Purposes)),
	}
	for _, purpose := range ai.Purposes {
		if c, ok := completers[purpose]; ok {
			p.completers[purpose] = c
		} else {
			p.completers[purpose] = NewMockCompleter("")
		}
	}
	return p
}

// Embedder returns the mock embedder.
func (p *MockProvider) Embedder() ai.Embedder {
	return p.embedder
}

// Completer returns the mock completer for purpose.
func (p *MockProvider) Completer(purpose ai.Purpose) ai.Completer {
	return p.GetMockCompleter(purpose)
}

// Close is a no-op for mock provider.
func (p *MockProvider) Close() error {
	return nil
}

// GetMockEmbedder returns the underlying mock embedder for test assertions.
func (p *MockProvider) GetMockEmbedder() *MockEmbedder {
	return p.embedder
}

// GetMockCompleter returns the underlying mock completer for purpose.
func (p *MockProvider) GetMockCompleter(purpose ai.Purpose) *MockCompleter {
	if c, ok := p.completers[purpose]; ok {
		return c
	}
	return p.completers[ai.PurposeSynthesis]
}
