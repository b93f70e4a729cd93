// Package config loads the genai service settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/KamdynS/petclinic-genai/discovery"
)

// Discovery backends
const (
	DiscoveryStatic = "static"
	DiscoveryRedis  = "redis"
)

// Config carries environment-driven settings for the genai process.
type Config struct {
	HTTPPort  int
	LogLevel  string
	LogFormat string

	CustomersServiceURL string
	VetsServiceURL      string
	VisitsServiceURL    string
	DiscoveryBackend    string
	DiscoverySelector   string
	RedisAddr           string

	DatabaseURL string

	LLMProvider     string
	OpenAIAPIKey    string
	AnthropicAPIKey string
	LLMModel        string
	EmbeddingModel  string

	HTTPClientTimeout time.Duration
	ChatMemoryWindow  int
	ChatTimeout       time.Duration
	MaxIterations     int
}

// Load reads an optional .env file, then the environment, applies defaults
// and validates the result.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the process environment only
func FromEnv() (Config, error) {
	cfg := Config{
		LogLevel:            envDefault("LOG_LEVEL", "info"),
		LogFormat:           envDefault("LOG_FORMAT", "json"),
		CustomersServiceURL: envDefault("CUSTOMERS_SERVICE_URL", "http://customers-service:8081"),
		VetsServiceURL:      envDefault("VETS_SERVICE_URL", "http://vets-service:8083"),
		VisitsServiceURL:    envDefault("VISITS_SERVICE_URL", "http://visits-service:8082"),
		DiscoveryBackend:    strings.ToLower(envDefault("DISCOVERY_BACKEND", DiscoveryStatic)),
		DiscoverySelector:   envDefault("DISCOVERY_SELECTOR", "first"),
		RedisAddr:           strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		DatabaseURL:         strings.TrimSpace(os.Getenv("DATABASE_URL")),
		LLMProvider:         strings.ToLower(envDefault("LLM_PROVIDER", "openai")),
		OpenAIAPIKey:        strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		AnthropicAPIKey:     strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY")),
		LLMModel:            strings.TrimSpace(os.Getenv("LLM_MODEL")),
		EmbeddingModel:      strings.TrimSpace(os.Getenv("EMBEDDING_MODEL")),
	}

	var errs []error
	cfg.HTTPPort = envInt("HTTP_PORT", 8084, &errs)
	cfg.ChatMemoryWindow = envInt("CHAT_MEMORY_WINDOW", 10, &errs)
	cfg.MaxIterations = envInt("CHAT_MAX_ITERATIONS", 5, &errs)
	cfg.HTTPClientTimeout = envDuration("HTTP_CLIENT_TIMEOUT", 10*time.Second, &errs)
	cfg.ChatTimeout = envDuration("CHAT_TIMEOUT", 60*time.Second, &errs)

	if err := cfg.validate(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return Config{}, errors.Join(errs...)
	}
	return cfg, nil
}

func (c Config) validate() error {
	var errs []error
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		errs = append(errs, fmt.Errorf("HTTP_PORT must be between 1 and 65535"))
	}
	switch c.DiscoveryBackend {
	case DiscoveryStatic:
	case DiscoveryRedis:
		if c.RedisAddr == "" {
			errs = append(errs, fmt.Errorf("REDIS_ADDR is required when DISCOVERY_BACKEND=redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("DISCOVERY_BACKEND must be %q or %q", DiscoveryStatic, DiscoveryRedis))
	}
	if _, err := discovery.SelectorByName(c.DiscoverySelector); err != nil {
		errs = append(errs, fmt.Errorf("DISCOVERY_SELECTOR: %w", err))
	}
	switch c.LLMProvider {
	case "openai":
		if c.OpenAIAPIKey == "" {
			errs = append(errs, fmt.Errorf("OPENAI_API_KEY is required for LLM_PROVIDER=openai"))
		}
	case "anthropic":
		if c.AnthropicAPIKey == "" {
			errs = append(errs, fmt.Errorf("ANTHROPIC_API_KEY is required for LLM_PROVIDER=anthropic"))
		}
		if c.OpenAIAPIKey == "" {
			errs = append(errs, fmt.Errorf("OPENAI_API_KEY is required for embeddings"))
		}
	default:
		errs = append(errs, fmt.Errorf("LLM_PROVIDER must be openai or anthropic"))
	}
	if c.ChatMemoryWindow <= 0 {
		errs = append(errs, fmt.Errorf("CHAT_MEMORY_WINDOW must be a positive integer"))
	}
	return errors.Join(errs...)
}

// ServiceURLs maps the logical service names to their configured base URLs
func (c Config) ServiceURLs() map[string]string {
	return map[string]string{
		discovery.CustomersService: c.CustomersServiceURL,
		discovery.VetsService:      c.VetsServiceURL,
		discovery.VisitsService:    c.VisitsServiceURL,
	}
}

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func envInt(key string, fallback int, errs *[]error) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s must be an integer", key))
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration, errs *[]error) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		*errs = append(*errs, fmt.Errorf("%s must be a positive duration such as 5s", key))
		return fallback
	}
	return d
}
