// Package config loads the application configuration from an optional
// config file and the environment.
package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

// ErrMissingToken indicates that no GitHub credential is available. This is
// a fatal configuration failure: the run must not start without one.
var ErrMissingToken = errors.New("GITHUB_TOKEN is not set")

// Config holds everything the snapshot run needs.
type Config struct {
	GitHub  GitHub
	Chat    Chat
	Workers Workers
}

// GitHub configures the data source gateway.
type GitHub struct {
	Token    string
	PageSize int
}

// Chat configures the delivery sink. An empty webhook URL disables delivery.
type Chat struct {
	WebhookURL string
}

// Workers sizes the repository-level and review-level worker pools.
type Workers struct {
	Repos   int
	Reviews int
}

// Load reads config.yaml from the working directory when present, then lets
// the environment override it. GITHUB_TOKEN is required; everything else
// has a default.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetDefault("github.page_size", 100)
	v.SetDefault("workers.repos", 4)
	v.SetDefault("workers.reviews", 8)

	v.BindEnv("github.token", "GITHUB_TOKEN")
	v.BindEnv("chat.webhook_url", "CHAT_WEBHOOK_URL", "GOOGLE_CHAT_WEBHOOK")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{
		GitHub: GitHub{
			Token:    v.GetString("github.token"),
			PageSize: v.GetInt("github.page_size"),
		},
		Chat: Chat{
			WebhookURL: v.GetString("chat.webhook_url"),
		},
		Workers: Workers{
			Repos:   v.GetInt("workers.repos"),
			Reviews: v.GetInt("workers.reviews"),
		},
	}
	if cfg.GitHub.Token == "" {
		return nil, ErrMissingToken
	}
	return cfg, nil
}
