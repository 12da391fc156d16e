// Package config loads and validates application configuration from the
// environment and an optional config file.
package config

// Config holds all application configuration, grouped by concern.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Study    StudyConfig    `mapstructure:"study"    validate:"required"`
	SRS      SRSConfig      `mapstructure:"srs"      validate:"required"`
	Gemini   GeminiConfig   `mapstructure:"gemini"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains database settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// StudyConfig contains study-loop settings.
type StudyConfig struct {
	// NewCardsPerSession caps how many never-before-studied cards enter
	// the due queue per 12-hour window.
	NewCardsPerSession int `mapstructure:"new_cards_per_session" validate:"gte=0"`

	// MatureThresholdDays is the interval at which a card counts as
	// mature.
	MatureThresholdDays int `mapstructure:"mature_threshold_days" validate:"gt=0"`

	// TargetLanguage is the language prose explanations are translated
	// into before presentation.
	TargetLanguage string `mapstructure:"target_language" validate:"required"`

	// DueCardLimit bounds the due-card query.
	DueCardLimit int `mapstructure:"due_card_limit" validate:"gt=0"`
}

// SRSConfig contains the tunable scheduler parameters. The weight vector
// itself defaults in the srs package; only the operational knobs are
// exposed here.
type SRSConfig struct {
	DesiredRetention   float64 `mapstructure:"desired_retention"    validate:"gt=0,lte=1"`
	MaxIntervalDays    int     `mapstructure:"max_interval_days"    validate:"gt=0"`
	AgainReviewMinutes int     `mapstructure:"again_review_minutes" validate:"gt=0"`
	EnableFuzz         bool    `mapstructure:"enable_fuzz"`
	LeechLapseLimit    int     `mapstructure:"leech_lapse_limit"    validate:"gt=0"`
}

// GeminiConfig contains settings for the Gemini-backed translation and
// image collaborators. Empty API key disables them; the study loop then
// degrades to untranslated text and no illustrations.
type GeminiConfig struct {
	APIKey     string `mapstructure:"api_key"`
	TextModel  string `mapstructure:"text_model"`
	ImageModel string `mapstructure:"image_model"`
	ImageDir   string `mapstructure:"image_dir"`
}
