// Package config provides application-wide configuration.
// Values come from defaults, then an optional YAML file named by CONFIG_FILE,
// then environment variables; later sources win. All fields have safe
// defaults so the binary runs locally with only API keys set.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ProviderConfig configures one hosted or local LLM endpoint.
type ProviderConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// Config holds runtime configuration for dispatchrag.
type Config struct {
	// HTTP
	Host string `yaml:"host"` // HOST, default: "0.0.0.0"
	Port int    `yaml:"port"` // PORT, default: 5001

	// Corpus / retrieval
	CorpusPath string `yaml:"corpus_path"`     // CORPUS_PATH, default: "emergency.csv"
	TopK       int    `yaml:"retrieval_top_k"` // RETRIEVAL_TOP_K, default: 5

	// LLM chain
	Providers             []string      `yaml:"llm_providers"`          // LLM_PROVIDERS, default: "openai,anthropic"
	LLMTimeout            time.Duration `yaml:"llm_timeout"`            // LLM_TIMEOUT, default: 10s
	CompletionTemperature float64       `yaml:"completion_temperature"` // COMPLETION_TEMPERATURE, default: 0.7
	CompletionMaxTokens   int           `yaml:"completion_max_tokens"`  // COMPLETION_MAX_TOKENS, default: 150
	SeverityProvider      string        `yaml:"severity_provider"`      // SEVERITY_PROVIDER, default: first available in chain
	SeverityMaxTokens     int           `yaml:"severity_max_tokens"`    // SEVERITY_MAX_TOKENS, default: 50

	OpenAI    ProviderConfig `yaml:"openai"`
	Anthropic ProviderConfig `yaml:"anthropic"`
	Ollama    ProviderConfig `yaml:"ollama"`

	// Response shape: "scored" or "completion".
	ResponseVariant string `yaml:"response_variant"` // RESPONSE_VARIANT, default: "scored"

	// Prediction history; empty disables it.
	DatabasePath string `yaml:"database_path"` // DATABASE_PATH

	LogLevel  string `yaml:"log_level"`  // LOG_LEVEL, default: "info"
	LogFormat string `yaml:"log_format"` // LOG_FORMAT, default: "json"
}

const (
	envKeyConfigFile            = "CONFIG_FILE"
	envKeyHost                  = "HOST"
	envKeyPort                  = "PORT"
	envKeyCorpusPath            = "CORPUS_PATH"
	envKeyTopK                  = "RETRIEVAL_TOP_K"
	envKeyProviders             = "LLM_PROVIDERS"
	envKeyLLMTimeout            = "LLM_TIMEOUT"
	envKeyCompletionTemperature = "COMPLETION_TEMPERATURE"
	envKeyCompletionMaxTokens   = "COMPLETION_MAX_TOKENS"
	envKeySeverityProvider      = "SEVERITY_PROVIDER"
	envKeySeverityMaxTokens     = "SEVERITY_MAX_TOKENS"
	envKeyOpenAIKey             = "OPENAI_API_KEY"
	envKeyOpenAIBaseURL         = "OPENAI_BASE_URL"
	envKeyOpenAIModel           = "OPENAI_MODEL"
	envKeyAnthropicKey          = "ANTHROPIC_API_KEY"
	envKeyAnthropicBaseURL      = "ANTHROPIC_BASE_URL"
	envKeyAnthropicModel        = "ANTHROPIC_MODEL"
	envKeyOllamaBaseURL         = "OLLAMA_BASE_URL"
	envKeyOllamaChatModel       = "OLLAMA_CHAT_MODEL"
	envKeyResponseVariant       = "RESPONSE_VARIANT"
	envKeyDatabasePath          = "DATABASE_PATH"
	envKeyLogLevel              = "LOG_LEVEL"
	envKeyLogFormat             = "LOG_FORMAT"
)

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Host:                  "0.0.0.0",
		Port:                  5001,
		CorpusPath:            "emergency.csv",
		TopK:                  5,
		Providers:             []string{"openai", "anthropic"},
		LLMTimeout:            10 * time.Second,
		CompletionTemperature: 0.7,
		CompletionMaxTokens:   150,
		SeverityMaxTokens:     50,
		OpenAI: ProviderConfig{
			BaseURL: "https://api.openai.com/v1",
			Model:   "gpt-4o-mini",
		},
		Anthropic: ProviderConfig{
			BaseURL: "https://api.anthropic.com",
			Model:   "claude-3-5-haiku-20241022",
		},
		Ollama: ProviderConfig{
			BaseURL: "http://localhost:11434",
			Model:   "llama3.2:3b",
		},
		ResponseVariant: "scored",
		LogLevel:        "info",
		LogFormat:       "json",
	}
}

// LoadDotEnv loads KEY=VALUE pairs from the given files (".env" when none)
// into the process environment without overriding variables already set.
// Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config: load %s: %w", p, err)
		}
	}
	return nil
}

// Load builds the configuration. It fails only when CONFIG_FILE names a file
// that cannot be read or parsed; malformed env values fall back silently.
func Load() (Config, error) {
	cfg := Default()
	if path := os.Getenv(envKeyConfigFile); path != "" {
		if err := overlayYAML(&cfg, path); err != nil {
			return Config{}, err
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

// Addr returns host:port for the HTTP listener.
func (c Config) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

func overlayYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Host = envOr(envKeyHost, cfg.Host)
	cfg.Port = envInt(envKeyPort, cfg.Port)
	cfg.CorpusPath = envOr(envKeyCorpusPath, cfg.CorpusPath)
	cfg.TopK = envInt(envKeyTopK, cfg.TopK)
	cfg.Providers = envList(envKeyProviders, cfg.Providers)
	cfg.LLMTimeout = envDuration(envKeyLLMTimeout, cfg.LLMTimeout)
	cfg.CompletionTemperature = envFloat(envKeyCompletionTemperature, cfg.CompletionTemperature)
	cfg.CompletionMaxTokens = envInt(envKeyCompletionMaxTokens, cfg.CompletionMaxTokens)
	cfg.SeverityProvider = envOr(envKeySeverityProvider, cfg.SeverityProvider)
	cfg.SeverityMaxTokens = envInt(envKeySeverityMaxTokens, cfg.SeverityMaxTokens)

	cfg.OpenAI.APIKey = envOr(envKeyOpenAIKey, cfg.OpenAI.APIKey)
	cfg.OpenAI.BaseURL = envOr(envKeyOpenAIBaseURL, cfg.OpenAI.BaseURL)
	cfg.OpenAI.Model = envOr(envKeyOpenAIModel, cfg.OpenAI.Model)
	cfg.Anthropic.APIKey = envOr(envKeyAnthropicKey, cfg.Anthropic.APIKey)
	cfg.Anthropic.BaseURL = envOr(envKeyAnthropicBaseURL, cfg.Anthropic.BaseURL)
	cfg.Anthropic.Model = envOr(envKeyAnthropicModel, cfg.Anthropic.Model)
	cfg.Ollama.BaseURL = envOr(envKeyOllamaBaseURL, cfg.Ollama.BaseURL)
	cfg.Ollama.Model = envOr(envKeyOllamaChatModel, cfg.Ollama.Model)

	cfg.ResponseVariant = envOr(envKeyResponseVariant, cfg.ResponseVariant)
	cfg.DatabasePath = envOr(envKeyDatabasePath, cfg.DatabasePath)
	cfg.LogLevel = envOr(envKeyLogLevel, cfg.LogLevel)
	cfg.LogFormat = envOr(envKeyLogFormat, cfg.LogFormat)
}

// envOr returns the value of the environment variable key, or fallback if not set.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	n, err := strconv.Atoi(envOr(key, ""))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func envFloat(key string, fallback float64) float64 {
	f, err := strconv.ParseFloat(envOr(key, ""), 64)
	if err != nil || f < 0 {
		return fallback
	}
	return f
}

func envDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(envOr(key, ""))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// envList splits a comma-separated value, dropping blanks and lower-casing names.
func envList(key string, fallback []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.ToLower(strings.TrimSpace(part)); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
