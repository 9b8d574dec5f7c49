// Package config loads application settings from an optional JSON file
// and SIEVE_-prefixed environment variables. Settings here cover the
// embedding backends; the per-rule clustering weights live in their own
// file handled by the ruleconf package.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Backend names accepted for embeddings.backend.
const (
	BackendLocal            = "local"
	BackendOpenAICompatible = "openai_compatible"
)

// Config is the resolved application configuration.
type Config struct {
	Embeddings Embeddings `mapstructure:"embeddings"`
}

// Embeddings selects and parameterizes the embedding backend.
type Embeddings struct {
	Backend   string `mapstructure:"backend"`
	BatchSize int    `mapstructure:"batch_size"`

	OpenAI OpenAI `mapstructure:"openai"`
	Local  Local  `mapstructure:"local"`
}

// OpenAI configures an OpenAI-compatible embeddings endpoint.
type OpenAI struct {
	BaseURL        string `mapstructure:"base_url"`
	Model          string `mapstructure:"model"`
	APIKey         string `mapstructure:"api_key"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// Local configures the on-disk ONNX embedding model.
type Local struct {
	ModelPath      string `mapstructure:"model_path"`
	VocabPath      string `mapstructure:"vocab_path"`
	ProjectionPath string `mapstructure:"projection_path"`
	LibraryPath    string `mapstructure:"library_path"`
}

// Load reads the configuration. path may be empty, in which case only
// defaults and environment variables apply. Recoverable problems (an
// unknown backend, an openai backend without a base URL) downgrade the
// config rather than failing; each downgrade is reported as a warning.
func Load(path string) (Config, []string, error) {
	v := viper.New()
	v.SetConfigType("json")

	v.SetDefault("embeddings.backend", BackendLocal)
	v.SetDefault("embeddings.batch_size", 512)
	v.SetDefault("embeddings.openai.model", "text-embedding-3-small")
	v.SetDefault("embeddings.openai.timeout_seconds", 30)
	v.SetDefault("embeddings.local.model_path", "models/model_quantized.onnx")
	v.SetDefault("embeddings.local.vocab_path", "models/vocab.txt")
	v.SetDefault("embeddings.local.projection_path", "models/2_Dense/model.safetensors")
	v.SetDefault("embeddings.local.library_path", "")

	v.SetEnvPrefix("SIEVE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	var warnings []string

	switch cfg.Embeddings.Backend {
	case BackendLocal, BackendOpenAICompatible:
	default:
		warnings = append(warnings, fmt.Sprintf(
			"unknown embeddings backend %q, falling back to %s",
			cfg.Embeddings.Backend, BackendLocal))
		cfg.Embeddings.Backend = BackendLocal
	}

	if cfg.Embeddings.Backend == BackendOpenAICompatible {
		if cfg.Embeddings.OpenAI.BaseURL == "" {
			warnings = append(warnings,
				"openai_compatible backend requires embeddings.openai.base_url, falling back to local")
			cfg.Embeddings.Backend = BackendLocal
		}
		if cfg.Embeddings.OpenAI.APIKey == "" {
			cfg.Embeddings.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
		}
	}

	if cfg.Embeddings.BatchSize <= 0 {
		warnings = append(warnings, fmt.Sprintf(
			"embeddings.batch_size must be positive, got %d, using 512",
			cfg.Embeddings.BatchSize))
		cfg.Embeddings.BatchSize = 512
	}

	return cfg, warnings, nil
}
