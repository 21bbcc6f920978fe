package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server      ServerConfig
	Worker      WorkerConfig
	DB          DatabaseConfig
	Logging     LoggingConfig
	LLM         LLMConfig
	Aggregation AggregationConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type WorkerConfig struct {
	Count      int
	BufferSize int
}

type DatabaseConfig struct {
	Path string
}

type LoggingConfig struct {
	Level string
}

type LLMConfig struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

type AggregationConfig struct {
	Enabled    bool
	Interval   time.Duration
	MonthsBack int
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "localhost"),
			Port: getEnvInt("SERVER_PORT", 8080),
		},
		Worker: WorkerConfig{
			Count:      getEnvInt("WORKER_COUNT", 4),
			BufferSize: getEnvInt("WORKER_BUFFER_SIZE", 20),
		},
		DB: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/outbreak-alerts.db"),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		LLM: LLMConfig{
			BaseURL: getEnv("LLM_BASE_URL", "http://localhost:11434"),
			Model:   getEnv("LLM_MODEL", "llama3.1"),
			Timeout: getEnvDuration("LLM_TIMEOUT", 2*time.Minute),
		},
		Aggregation: AggregationConfig{
			Enabled:    getEnvBool("AGGREGATION_ENABLED", true),
			Interval:   getEnvDuration("AGGREGATION_INTERVAL", 15*time.Minute),
			MonthsBack: getEnvInt("AGGREGATION_MONTHS_BACK", 6),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	if c.Worker.Count < 1 {
		return fmt.Errorf("worker count must be at least 1, got %d", c.Worker.Count)
	}

	if c.LLM.BaseURL == "" {
		return fmt.Errorf("LLM base URL must not be empty")
	}
	if c.LLM.Model == "" {
		return fmt.Errorf("LLM model must not be empty")
	}

	if c.Aggregation.Interval < time.Minute {
		return fmt.Errorf("aggregation interval must be at least 1 minute")
	}
	if c.Aggregation.MonthsBack < 1 {
		return fmt.Errorf("aggregation window must cover at least 1 month, got %d", c.Aggregation.MonthsBack)
	}

	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}
