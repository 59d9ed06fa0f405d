package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		EmbeddingHost:   "http://localhost:11434",
		CompletionHost:  "http://localhost:11434",
		EmbeddingModel:  "text-embedding-3-small",
		ExpansionModel:  "llama-3.3-70b-versatile",
		ClassifierModel: "llama-3.1-8b-instant",
		SynthesisModel:  "llama-3.3-70b-versatile",
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotNil(t, cfg)
	assert.Equal(t, "https://api.openai.com/v1", cfg.EmbeddingHost)
	assert.Equal(t, "https://api.groq.com/openai/v1", cfg.CompletionHost)
	assert.Equal(t, "text-embedding-3-small", cfg.EmbeddingModel)
	assert.Equal(t, "llama-3.3-70b-versatile", cfg.ExpansionModel)
	assert.Equal(t, "llama-3.1-8b-instant", cfg.ClassifierModel)
	assert.Equal(t, "llama-3.3-70b-versatile", cfg.SynthesisModel)
}

func TestNewConfig(t *testing.T) {
	t.Run("with no options", func(t *testing.T) {
		cfg := NewConfig()

		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("with custom host", func(t *testing.T) {
		cfg := NewConfig(WithHost("http://custom:8080/v1"))

		assert.Equal(t, "http://custom:8080/v1", cfg.EmbeddingHost)
		assert.Equal(t, "http://custom:8080/v1", cfg.CompletionHost)
	})

	t.Run("with separate hosts and keys", func(t *testing.T) {
		cfg := NewConfig(
			WithEmbeddingHost("http://embed:8080/v1"),
			WithCompletionHost("http://complete:9090/v1"),
			WithEmbeddingAPIKey("ek"),
			WithCompletionAPIKey("ck"),
		)

		assert.Equal(t, "http://embed:8080/v1", cfg.EmbeddingHost)
		assert.Equal(t, "http://complete:9090/v1", cfg.CompletionHost)
		assert.Equal(t, "ek", cfg.EmbeddingAPIKey)
		assert.Equal(t, "ck", cfg.CompletionAPIKey)
	})

	t.Run("with custom models", func(t *testing.T) {
		cfg := NewConfig(
			WithEmbeddingModel("e"),
			WithExpansionModel("x"),
			WithClassifierModel("c"),
			WithSynthesisModel("s"),
		)

		assert.Equal(t, "e", cfg.EmbeddingModel)
		assert.Equal(t, "x", cfg.ModelFor(PurposeExpansion))
		assert.Equal(t, "c", cfg.ModelFor(PurposeClassification))
		assert.Equal(t, "s", cfg.ModelFor(PurposeSynthesis))
	})
}

func TestConfigNormalize(t *testing.T) {
	tests := []struct {
		name               string
		embeddingHost      string
		completionHost     string
		expectedEmbedding  string
		expectedCompletion string
	}{
		{
			name:               "already has /v1",
			embeddingHost:      "http://localhost:11434/v1",
			completionHost:     "https://api.groq.com/openai/v1",
			expectedEmbedding:  "http://localhost:11434/v1",
			expectedCompletion: "https://api.groq.com/openai/v1",
		},
		{
			name:               "missing /v1",
			embeddingHost:      "http://localhost:11434",
			completionHost:     "http://localhost:11434",
			expectedEmbedding:  "http://localhost:11434/v1",
			expectedCompletion: "http://localhost:11434/v1",
		},
		{
			name:               "has trailing slash",
			embeddingHost:      "http://localhost:11434/",
			completionHost:     "http://localhost:11434/",
			expectedEmbedding:  "http://localhost:11434/v1",
			expectedCompletion: "http://localhost:11434/v1",
		},
		{
			name: "empty hosts",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				EmbeddingHost:  tt.embeddingHost,
				CompletionHost: tt.completionHost,
			}

			cfg.Normalize()

			assert.Equal(t, tt.expectedEmbedding, cfg.EmbeddingHost)
			assert.Equal(t, tt.expectedCompletion, cfg.CompletionHost)
		})
	}
}

func TestConfigValidate(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		cfg := validConfig()

		err := cfg.Validate()
		assert.NoError(t, err)

		// Should also normalize
		assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
		assert.Equal(t, "http://localhost:11434/v1", cfg.CompletionHost)
	})

	missing := []struct {
		field string
		clear func(*Config)
	}{
		{"EmbeddingHost", func(c *Config) { c.EmbeddingHost = "" }},
		{"CompletionHost", func(c *Config) { c.CompletionHost = "" }},
		{"EmbeddingModel", func(c *Config) { c.EmbeddingModel = "" }},
		{"ExpansionModel", func(c *Config) { c.ExpansionModel = "" }},
		{"ClassifierModel", func(c *Config) { c.ClassifierModel = "" }},
		{"SynthesisModel", func(c *Config) { c.SynthesisModel = "" }},
	}
	for _, m := range missing {
		t.Run("missing "+m.field, func(t *testing.T) {
			cfg := validConfig()
			m.clear(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), m.field)
		})
	}
}

func TestSamplingFor(t *testing.T) {
	assert.Equal(t, Sampling{Temperature: 0.3}, SamplingFor(PurposeExpansion))
	assert.Equal(t, Sampling{Temperature: 0, MaxTokens: 50}, SamplingFor(PurposeClassification))
	assert.Equal(t, Sampling{Temperature: 0}, SamplingFor(PurposeSynthesis))
	assert.Equal(t, "classification", PurposeClassification.String())
}

func TestConfigValidate_Integration(t *testing.T) {
	cfg := NewConfig()
	err := cfg.Validate()
	require.NoError(t, err)
}
