// Package config loads settings from the environment and an optional .env file.
package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/theimaginaryfoundation/journal-coach/journal"
	"github.com/theimaginaryfoundation/journal-coach/journal/logging"
)

type Config struct {
	OpenAIAPIKey  string
	OpenAIBaseURL string

	StandardModel     string
	HighAccuracyModel string

	SupabaseURL         string
	SupabaseAnonKey     string
	SupabaseAccessToken string

	HTTPAddr string
	Debug    bool
}

// required lists the settings without which the first real call fails, with their env names.
func (c *Config) required() []struct{ name, value string } {
	return []struct{ name, value string }{
		{"OPENAI_API_KEY", c.OpenAIAPIKey},
		{"SUPABASE_URL", c.SupabaseURL},
		{"SUPABASE_ANON_KEY", c.SupabaseAnonKey},
	}
}

// Missing returns the env names of required settings that are empty.
func (c *Config) Missing() []string {
	var out []string
	for _, r := range c.required() {
		if strings.TrimSpace(r.value) == "" {
			out = append(out, r.name)
		}
	}
	return out
}

// Load reads .env files (if present) and the environment. It never fails: each missing required
// value is logged as a warning and surfaces later as a failed call.
func Load(logger *zap.Logger, envFiles ...string) *Config {
	logger = logging.OrNop(logger)

	// A missing .env is normal outside local development.
	_ = godotenv.Load(envFiles...)

	cfg := &Config{
		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", "VITE_OPENAI_API_KEY"),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL"),

		StandardModel:     getEnvOrDefault(journal.DefaultStandardModel, "JOURNAL_STANDARD_MODEL"),
		HighAccuracyModel: getEnvOrDefault(journal.DefaultHighAccuracyModel, "JOURNAL_HIGH_ACCURACY_MODEL"),

		SupabaseURL:         getEnv("SUPABASE_URL", "VITE_SUPABASE_URL"),
		SupabaseAnonKey:     getEnv("SUPABASE_ANON_KEY", "VITE_SUPABASE_ANON_KEY"),
		SupabaseAccessToken: getEnv("SUPABASE_ACCESS_TOKEN"),

		HTTPAddr: getEnvOrDefault(":8080", "JOURNAL_HTTP_ADDR"),
		Debug:    getBoolEnv("JOURNAL_DEBUG"),
	}

	for _, name := range cfg.Missing() {
		logger.Warn("required environment variable is not set", zap.String("name", name))
	}
	return cfg
}

// getEnv returns the first non-empty value among keys.
func getEnv(keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v
		}
	}
	return ""
}

func getEnvOrDefault(def string, keys ...string) string {
	if v := getEnv(keys...); v != "" {
		return v
	}
	return def
}

func getBoolEnv(key string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
