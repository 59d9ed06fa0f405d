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


package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/poiesic/juris/ai"
	"github.com/poiesic/juris/guard"
	"github.com/poiesic/juris/retrieval"
	"github.com/poiesic/juris/web"
)

// Environment variables read by ApplyEnv.
const (
	EnvAPIKey          = "JURIS_API_KEY"
	EnvEmbeddingAPIKey = "OPENAI_API_KEY"
	EnvCompletionKey   = "GROQ_API_KEY"
	EnvTavilyAPIKey    = "TAVILY_API_KEY"
	EnvDatabaseURL     = "JURIS_DATABASE_URL"
)

// Storage backends.
const (
	BackendBadger   = "badger"
	BackendPostgres = "postgres"
)

// Duration is a time.Duration written as a string such as "30s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Config is the root of the configuration file.
type Config struct {
	LogLevel  string          `toml:"log_level"`
	AI        AIConfig        `toml:"ai"`
	Guard     GuardConfig     `toml:"guard"`
	Retrieval RetrievalConfig `toml:"retrieval"`
	Web       WebConfig       `toml:"web"`
	Storage   StorageConfig   `toml:"storage"`
	Server    ServerConfig    `toml:"server"`
}

// AIConfig selects the model hosts and models.
type AIConfig struct {
	EmbeddingHost    string   `toml:"embedding_host"`
	CompletionHost   string   `toml:"completion_host"`
	EmbeddingAPIKey  string   `toml:"embedding_api_key"`
	CompletionAPIKey string   `toml:"completion_api_key"`
	EmbeddingModel   string   `toml:"embedding_model"`
	ExpansionModel   string   `toml:"expansion_model"`
	ClassifierModel  string   `toml:"classifier_model"`
	SynthesisModel   string   `toml:"synthesis_model"`
	CallTimeout      Duration `toml:"call_timeout"`
}

// GuardConfig holds the admission limits.
type GuardConfig struct {
	MinChars  int `toml:"min_chars"`
	MaxChars  int `toml:"max_chars"`
	MaxWords  int `toml:"max_words"`
	PerMinute int `toml:"per_minute"`
	PerHour   int `toml:"per_hour"`
}

// RetrievalConfig tunes the fusion pass.
type RetrievalConfig struct {
	TopK          int     `toml:"top_k"`
	MinScore      float64 `toml:"min_score"`
	ContextBudget int     `toml:"context_budget"`
	Namespace     string  `toml:"namespace"`
	PoolSize      int     `toml:"pool_size"`
}

// WebConfig configures the web fallback. It is disabled without an API key.
type WebConfig struct {
	APIKey           string  `toml:"api_key"`
	MinContextLength int     `toml:"min_context_length"`
	MaxQueries       int     `toml:"max_queries"`
	RatePerSecond    float64 `toml:"rate_per_second"`
}

// StorageConfig selects the passage store.
type StorageConfig struct {
	Backend     string `toml:"backend"`
	Path        string `toml:"path"`
	DatabaseURL string `toml:"database_url"`
	Table       string `toml:"table"`
	Dimensions  int    `toml:"dimensions"`
}

// ServerConfig configures the HTTP transport.
type ServerConfig struct {
	Addr           string   `toml:"addr"`
	RequestTimeout Duration `toml:"request_timeout"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// Load reads path, applies defaults and the environment, and validates the
// result. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		md, err := toml.DecodeFile(path, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("%w: unknown keys %v in %s", ErrInvalidConfig, undecoded, path)
		}
	}
	cfg.ApplyEnv(os.Getenv)
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyDefaults replaces zero values with the package defaults.
func (c *Config) ApplyDefaults() {
	aiDefaults := ai.DefaultConfig()
	setString(&c.LogLevel, "info")

	setString(&c.AI.EmbeddingHost, aiDefaults.EmbeddingHost)
	setString(&c.AI.CompletionHost, aiDefaults.CompletionHost)
	setString(&c.AI.EmbeddingModel, aiDefaults.EmbeddingModel)
	setString(&c.AI.ExpansionModel, aiDefaults.ExpansionModel)
	setString(&c.AI.ClassifierModel, aiDefaults.ClassifierModel)
	setString(&c.AI.SynthesisModel, aiDefaults.SynthesisModel)
	if c.AI.CallTimeout.Duration == 0 {
		c.AI.CallTimeout.Duration = guard.DefaultCallTimeout
	}

	setInt(&c.Guard.MinChars, guard.DefaultMinChars)
	setInt(&c.Guard.MaxChars, guard.DefaultMaxChars)
	setInt(&c.Guard.MaxWords, guard.DefaultMaxWords)
	setInt(&c.Guard.PerMinute, guard.DefaultPerMinute)
	setInt(&c.Guard.PerHour, guard.DefaultPerHour)

	setInt(&c.Retrieval.TopK, retrieval.DefaultTopK)
	if c.Retrieval.MinScore == 0 {
		c.Retrieval.MinScore = retrieval.DefaultMinScore
	}
	setInt(&c.Retrieval.ContextBudget, retrieval.DefaultContextBudget)
	setInt(&c.Retrieval.PoolSize, retrieval.DefaultPoolSize)

	setInt(&c.Web.MinContextLength, web.DefaultMinContextLength)
	setInt(&c.Web.MaxQueries, web.DefaultMaxQueries)
	if c.Web.RatePerSecond == 0 {
		c.Web.RatePerSecond = 1
	}

	setString(&c.Storage.Backend, BackendBadger)
	setString(&c.Storage.Table, "passages")
	setInt(&c.Storage.Dimensions, 1536)

	setString(&c.Server.Addr, ":8080")
	if c.Server.RequestTimeout.Duration == 0 {
		c.Server.RequestTimeout.Duration = 2 * time.Minute
	}
}

// ApplyEnv fills secrets from the environment. Values already present in
// the file win, except that JURIS_API_KEY only fills keys left empty by
// the provider specific variables.
func (c *Config) ApplyEnv(getenv func(string) string) {
	setString(&c.AI.EmbeddingAPIKey, getenv(EnvEmbeddingAPIKey))
	setString(&c.AI.CompletionAPIKey, getenv(EnvCompletionKey))
	if key := getenv(EnvAPIKey); key != "" {
		setString(&c.AI.EmbeddingAPIKey, key)
		setString(&c.AI.CompletionAPIKey, key)
	}
	setString(&c.Web.APIKey, getenv(EnvTavilyAPIKey))
	setString(&c.Storage.DatabaseURL, getenv(EnvDatabaseURL))
}

// Validate checks the values that defaults cannot fix.
func (c *Config) Validate() error {
	var problems []string
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("log_level %q", c.LogLevel))
	}
	if c.Guard.MinChars < 0 || c.Guard.MaxChars < c.Guard.MinChars || c.Guard.MaxWords <= 0 {
		problems = append(problems, "guard length limits")
	}
	if c.Guard.PerMinute <= 0 || c.Guard.PerHour <= 0 {
		problems = append(problems, "guard rate limits")
	}
	if c.Retrieval.MinScore < 0 || c.Retrieval.MinScore > 1 {
		problems = append(problems, fmt.Sprintf("retrieval.min_score %v", c.Retrieval.MinScore))
	}
	if c.Web.RatePerSecond < 0 {
		problems = append(problems, "web.rate_per_second")
	}
	switch c.Storage.Backend {
	case BackendBadger:
	case BackendPostgres:
		if c.Storage.DatabaseURL == "" {
			problems = append(problems, "storage.database_url is required for postgres")
		}
		if c.Storage.Dimensions <= 0 {
			problems = append(problems, "storage.dimensions")
		}
	default:
		problems = append(problems, fmt.Sprintf("storage.backend %q", c.Storage.Backend))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// AIOptions converts the [ai] table into ai.Config options.
func (c *Config) AIOptions() []ai.ConfigOption {
	return []ai.ConfigOption{
		ai.WithEmbeddingHost(c.AI.EmbeddingHost),
		ai.WithCompletionHost(c.AI.CompletionHost),
		ai.WithEmbeddingAPIKey(c.AI.EmbeddingAPIKey),
		ai.WithCompletionAPIKey(c.AI.CompletionAPIKey),
		ai.WithEmbeddingModel(c.AI.EmbeddingModel),
		ai.WithExpansionModel(c.AI.ExpansionModel),
		ai.WithClassifierModel(c.AI.ClassifierModel),
		ai.WithSynthesisModel(c.AI.SynthesisModel),
	}
}

func setString(dst *string, v string) {
	if *dst == "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if *dst == 0 {
		*dst = v
	}
}
