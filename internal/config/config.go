package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:",squash"`
	Reddit   RedditConfig   `mapstructure:",squash"`
	LLM      LLMConfig      `mapstructure:",squash"`
	Analyzer AnalyzerConfig `mapstructure:",squash"`
	LogLevel string         `mapstructure:"LOG_LEVEL"`
}

type ServerConfig struct {
	Port         string        `mapstructure:"SERVER_PORT"`
	Host         string        `mapstructure:"SERVER_HOST"`
	ReadTimeout  time.Duration `mapstructure:"SERVER_READ_TIMEOUT"`
	WriteTimeout time.Duration `mapstructure:"SERVER_WRITE_TIMEOUT"`
}

type RedditConfig struct {
	ClientID     string        `mapstructure:"REDDIT_CLIENT_ID"`
	ClientSecret string        `mapstructure:"REDDIT_SECRET"`
	UserAgent    string        `mapstructure:"REDDIT_USER_AGENT"`
	AuthURL      string        `mapstructure:"REDDIT_AUTH_URL"`
	APIURL       string        `mapstructure:"REDDIT_API_URL"`
	Timeout      time.Duration `mapstructure:"REDDIT_TIMEOUT"`
}

type LLMConfig struct {
	APIKey      string        `mapstructure:"GROQ_KEY"`
	APIEndpoint string        `mapstructure:"LLM_ENDPOINT"`
	Model       string        `mapstructure:"LLM_MODEL"`
	Timeout     time.Duration `mapstructure:"LLM_TIMEOUT"`
}

type AnalyzerConfig struct {
	// Concurrency is the number of completion calls in flight per request.
	// 1 keeps the calls strictly sequential.
	Concurrency int `mapstructure:"ANALYZE_CONCURRENCY"`
}

var defaults = map[string]any{
	"SERVER_PORT":          "8000",
	"SERVER_HOST":          "0.0.0.0",
	"SERVER_READ_TIMEOUT":  "30s",
	"SERVER_WRITE_TIMEOUT": "10m",
	"REDDIT_CLIENT_ID":     "",
	"REDDIT_SECRET":        "",
	"REDDIT_USER_AGENT":    "IDEATOR/1.0",
	"REDDIT_AUTH_URL":      "https://www.reddit.com",
	"REDDIT_API_URL":       "https://oauth.reddit.com",
	"REDDIT_TIMEOUT":       "30s",
	"GROQ_KEY":             "",
	"LLM_ENDPOINT":         "https://api.groq.com/openai/v1",
	"LLM_MODEL":            "mixtral-8x7b-32768",
	"LLM_TIMEOUT":          "2m",
	"ANALYZE_CONCURRENCY":  1,
	"LOG_LEVEL":            "info",
}

var required = []string{"REDDIT_CLIENT_ID", "REDDIT_SECRET", "GROQ_KEY"}

func LoadConfig() (*Config, error) {
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	for _, key := range required {
		if v.GetString(key) == "" {
			return nil, fmt.Errorf("required key %s missing value", key)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	if cfg.Analyzer.Concurrency < 1 {
		cfg.Analyzer.Concurrency = 1
	}

	slog.Info("configuration loaded successfully")
	return &cfg, nil
}

// SlogLevel maps LOG_LEVEL onto a slog level, falling back to info.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}
