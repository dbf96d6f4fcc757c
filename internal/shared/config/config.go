package config

import (
	"os"
	"strconv"
	"strings"

	"resume-match-api/internal/shared/telemetry"
)

const (
	ProviderGroq   = "groq"
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"

	defaultTimeoutSeconds = 120
)

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	CORSAllowOrigin []string
	LogLevel        string
	LLMProvider     string
	LLMModel        string
	LLMBaseURL      string
	LLMTemperature  float32
	LLMTimeoutSecs  int

	// llmAPIKey is read once at startup and only handed to the gateway constructor.
	llmAPIKey string
}

// Load reads configuration from .env files, an optional YAML file and the environment.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	file, err := loadFile(os.Getenv("CONFIG_FILE"))
	if err != nil {
		telemetry.Warn("config.file_ignored", map[string]any{"path": os.Getenv("CONFIG_FILE"), "err": err.Error()})
	}

	provider := normalizeProvider(getEnv("LLM_PROVIDER", file.LLM.Provider))

	return Config{
		Port:            getEnv("PORT", orDefault(file.Port, "8080")),
		Env:             normalizeEnv(getEnv("ENV", orDefault(file.Env, "dev"))),
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", orDefault(strings.Join(file.CORSAllowOrigins, ","), "http://localhost:5173"))),
		LogLevel:        getEnv("LOG_LEVEL", orDefault(file.Log.Level, "info")),
		LLMProvider:     provider,
		LLMModel:        getEnv("LLM_MODEL", orDefault(file.LLM.Model, DefaultModel(provider))),
		LLMBaseURL:      getEnv("LLM_BASE_URL", file.LLM.BaseURL),
		LLMTemperature:  getEnvFloat32("LLM_TEMPERATURE", file.LLM.Temperature),
		LLMTimeoutSecs:  getEnvInt("LLM_TIMEOUT_SECONDS", orDefaultInt(file.LLM.TimeoutSeconds, defaultTimeoutSeconds)),
		llmAPIKey:       APIKeyFor(provider),
	}
}

// LLMAPIKey returns the provider credential. Callers must never log it.
func (c Config) LLMAPIKey() string {
	return c.llmAPIKey
}

// HasLLMAPIKey reports whether a provider credential is configured.
func (c Config) HasLLMAPIKey() bool {
	return strings.TrimSpace(c.llmAPIKey) != ""
}

// WithLLMAPIKey returns a copy of c using the given credential.
func (c Config) WithLLMAPIKey(key string) Config {
	c.llmAPIKey = key
	return c
}

// DefaultModel returns the model used when LLM_MODEL is unset.
func DefaultModel(provider string) string {
	switch provider {
	case ProviderOpenAI:
		return "gpt-4o-mini"
	case ProviderGemini:
		return "gemini-2.5-flash"
	default:
		return "llama-3.3-70b-versatile"
	}
}

// APIKeyFor returns the credential for provider: LLM_API_KEY first, then the
// provider's own variable.
func APIKeyFor(provider string) string {
	if key := strings.TrimSpace(os.Getenv("LLM_API_KEY")); key != "" {
		return key
	}
	switch provider {
	case ProviderOpenAI:
		return strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	case ProviderGemini:
		return strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
	default:
		return strings.TrimSpace(os.Getenv("GROQ_API_KEY"))
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val <= 0 {
		telemetry.Warn("config.invalid_value", map[string]any{"key": key, "value": raw, "default": def})
		return def
	}
	return val
}

func getEnvFloat32(key string, def float32) float32 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseFloat(raw, 32)
	if err != nil || val < 0 {
		telemetry.Warn("config.invalid_value", map[string]any{"key": key, "value": raw, "default": def})
		return def
	}
	return float32(val)
}

func orDefault(val, def string) string {
	if strings.TrimSpace(val) != "" {
		return val
	}
	return def
}

func orDefaultInt(val, def int) int {
	if val > 0 {
		return val
	}
	return def
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

func normalizeProvider(raw string) string {
	val := strings.ToLower(strings.TrimSpace(raw))
	switch val {
	case "":
		return ProviderGroq
	case "google":
		return ProviderGemini
	case ProviderGroq, ProviderOpenAI, ProviderGemini:
		return val
	default:
		// Unknown names are kept so gateway construction rejects them.
		telemetry.Warn("config.unknown_provider", map[string]any{"provider": val})
		return val
	}
}
