package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load reads configuration from environment variables (prefix LERNKARTE_)
// and an optional config.yaml in the working directory. Environment
// variables take precedence over file values. Returns a validated Config
// or an error describing what is missing.
func Load() (*Config, error) {
	v := viper.New()

	// Defaults. Every key needs one registered for AutomaticEnv to see
	// its environment override during Unmarshal.
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("database.url", "")
	v.SetDefault("study.new_cards_per_session", 10)
	v.SetDefault("study.mature_threshold_days", 21)
	v.SetDefault("study.target_language", "English")
	v.SetDefault("study.due_card_limit", 100)
	v.SetDefault("srs.desired_retention", 0.9)
	v.SetDefault("srs.max_interval_days", 36500)
	v.SetDefault("srs.again_review_minutes", 10)
	v.SetDefault("srs.enable_fuzz", true)
	v.SetDefault("srs.leech_lapse_limit", 4)
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.text_model", "gemini-2.0-flash")
	v.SetDefault("gemini.image_model", "imagen-3.0-generate-002")
	v.SetDefault("gemini.image_dir", "data/images")

	// Optional config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Environment variables: LERNKARTE_SERVER_PORT, LERNKARTE_DATABASE_URL, ...
	v.SetEnvPrefix("LERNKARTE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}
