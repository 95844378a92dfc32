// Package config provides configuration management for StockCal.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/leeaandrob/stockcal/internal/llm"
	"github.com/rs/zerolog/log"
)

// Config holds all application configuration.
type Config struct {
	// Datasets
	DataDir string

	// Server settings
	HTTPAddr string
	Debug    bool

	// AI completion settings
	AIProvider    string
	AIAPIKey      string
	AIEndpoint    string
	AIModel       string
	AITemperature float64
	AITimeout     time.Duration

	// Run date and schedule
	Timezone     string
	ScheduleTime string

	// Publishing
	PublishEnabled bool
	RepoDir        string
	GitRemote      string
	GitBranch      string
	GitAuthorName  string
	GitAuthorEmail string

	// Run ledger (optional)
	MongoURI string
	MongoDB  string

	// Metrics listener for the generator's schedule mode
	MetricsAddr string
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Try to load .env file
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, using environment variables")
	}

	cfg := &Config{
		DataDir: getEnv("DATA_DIR", "."),

		HTTPAddr: getEnv("HTTP_ADDR", ":8000"),
		Debug:    getEnvBool("DEBUG", false),

		AIProvider:    getEnv("AI_PROVIDER", llm.DefaultProvider),
		AIAPIKey:      firstEnv("AI_API_KEY", "GEMINI_API_KEY", "OPENAI_API_KEY", "DASHSCOPE_API_KEY"),
		AIEndpoint:    getEnv("AI_ENDPOINT", ""),
		AIModel:       getEnv("AI_MODEL", ""),
		AITemperature: getEnvFloat("AI_TEMPERATURE", 0),
		AITimeout:     getEnvDuration("AI_TIMEOUT", 2*time.Minute),

		Timezone:     getEnv("TIMEZONE", "Asia/Taipei"),
		ScheduleTime: getEnv("SCHEDULE_TIME", "08:00"),

		PublishEnabled: getEnvBool("PUBLISH_ENABLED", true),
		RepoDir:        getEnv("REPO_DIR", ""),
		GitRemote:      getEnv("GIT_REMOTE", "origin"),
		GitBranch:      getEnv("GIT_BRANCH", ""),
		GitAuthorName:  getEnv("GIT_AUTHOR_NAME", "stockcal-bot"),
		GitAuthorEmail: getEnv("GIT_AUTHOR_EMAIL", "stockcal-bot@users.noreply.github.com"),

		MongoURI: getEnv("MONGO_URI", ""),
		MongoDB:  getEnv("MONGO_DB", "stockcal"),

		MetricsAddr: getEnv("METRICS_ADDR", ""),
	}

	if cfg.RepoDir == "" {
		cfg.RepoDir = cfg.DataDir
	}

	return cfg, nil
}

// Validate checks settings shared by every binary.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("DATA_DIR must not be empty")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// ValidateGenerator checks the settings a regeneration run needs.
func (c *Config) ValidateGenerator() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.AIAPIKey == "" {
		return fmt.Errorf("AI_API_KEY (or GEMINI_API_KEY) is not set")
	}
	if c.PublishEnabled && c.RepoDir == "" {
		return fmt.Errorf("REPO_DIR must be set when publishing is enabled")
	}
	return nil
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if value := os.Getenv(key); value != "" {
			return value
		}
	}
	return ""
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
