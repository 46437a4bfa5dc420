package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

const envFile = ".env"

// Config holds all configuration for the application
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Listing ListingConfig `mapstructure:"listing"`
	Export  ExportConfig  `mapstructure:"export"`
	Rewrite RewriteConfig `mapstructure:"rewrite"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ListingConfig holds the field limits and generation settings
type ListingConfig struct {
	TitleCharLimit             int    `mapstructure:"title_char_limit"`
	BulletCharLimit            int    `mapstructure:"bullet_char_limit"`
	DescriptionCharLimit       int    `mapstructure:"description_char_limit"`
	BackendTermsByteLimit      int    `mapstructure:"backend_terms_byte_limit"`
	GenericKeywordFields       int    `mapstructure:"generic_keyword_fields"`
	GenericKeywordMaxBytesEach int    `mapstructure:"generic_keyword_max_bytes_each"`
	BatchConcurrency           int    `mapstructure:"batch_concurrency"`
	DefaultBrand               string `mapstructure:"default_brand"`
}

// ExportConfig holds marketplace settings for flat-file rows and PATCH bodies
type ExportConfig struct {
	MarketplaceID string `mapstructure:"marketplace_id"`
	LanguageTag   string `mapstructure:"language_tag"`
	ProductType   string `mapstructure:"product_type"`
	RecordAction  string `mapstructure:"record_action"`
}

// RewriteConfig holds the optional text-generation backend configuration
type RewriteConfig struct {
	Provider          string        `mapstructure:"provider"` // "", "mock"/"test" or "gemini"/"google"
	Model             string        `mapstructure:"model"`
	APIKey            string        `mapstructure:"api_key"`
	BaseURL           string        `mapstructure:"base_url"`
	MaxAttempts       int           `mapstructure:"max_attempts"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
	Burst             int           `mapstructure:"burst"`
	Timeout           time.Duration `mapstructure:"timeout"`
}

// CacheConfig holds rewrite cache configuration
type CacheConfig struct {
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// LoggingConfig holds logger configuration
type LoggingConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// Load loads configuration from a local .env file, environment variables and config files
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/amazonenrichment/")

	// AMAZONENRICHMENT_LISTING_TITLE_CHAR_LIMIT -> listing.title_char_limit
	v.SetEnvPrefix("AMAZONENRICHMENT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values. Every key needs a default so
// that AutomaticEnv can override it during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"*"})

	v.SetDefault("listing.title_char_limit", 200)
	v.SetDefault("listing.bullet_char_limit", 250)
	v.SetDefault("listing.description_char_limit", 2000)
	v.SetDefault("listing.backend_terms_byte_limit", 249)
	v.SetDefault("listing.generic_keyword_fields", 5)
	v.SetDefault("listing.generic_keyword_max_bytes_each", 50)
	v.SetDefault("listing.batch_concurrency", 4)
	v.SetDefault("listing.default_brand", "Alliance Chemical")

	v.SetDefault("export.marketplace_id", "ATVPDKIKX0DER")
	v.SetDefault("export.language_tag", "en_US")
	v.SetDefault("export.product_type", "LAB_CHEMICAL")
	v.SetDefault("export.record_action", "full_update")

	v.SetDefault("rewrite.provider", "")
	v.SetDefault("rewrite.model", "gemini-2.5-flash")
	v.SetDefault("rewrite.api_key", "")
	v.SetDefault("rewrite.base_url", "")
	v.SetDefault("rewrite.max_attempts", 2)
	v.SetDefault("rewrite.requests_per_minute", 60)
	v.SetDefault("rewrite.burst", 5)
	v.SetDefault("rewrite.timeout", "60s")

	v.SetDefault("cache.ttl", "24h")
	v.SetDefault("cache.cleanup_interval", "10m")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.development", false)
}

// validate validates the configuration
func validate(config *Config) error {
	limits := []struct {
		key   string
		value int
	}{
		{"listing.title_char_limit", config.Listing.TitleCharLimit},
		{"listing.bullet_char_limit", config.Listing.BulletCharLimit},
		{"listing.description_char_limit", config.Listing.DescriptionCharLimit},
		{"listing.backend_terms_byte_limit", config.Listing.BackendTermsByteLimit},
		{"listing.generic_keyword_fields", config.Listing.GenericKeywordFields},
		{"listing.generic_keyword_max_bytes_each", config.Listing.GenericKeywordMaxBytesEach},
		{"listing.batch_concurrency", config.Listing.BatchConcurrency},
	}
	for _, l := range limits {
		if l.value <= 0 {
			return fmt.Errorf("%s must be positive, got: %d", l.key, l.value)
		}
	}

	switch strings.ToLower(config.Rewrite.Provider) {
	case "", "mock", "test":
	case "gemini", "google":
		if config.Rewrite.APIKey == "" {
			return fmt.Errorf("rewrite API key is required for provider %q (set AMAZONENRICHMENT_REWRITE_API_KEY)", config.Rewrite.Provider)
		}
	default:
		return fmt.Errorf("rewrite provider must be one of mock, test, gemini, google, got: %s", config.Rewrite.Provider)
	}

	if config.Rewrite.MaxAttempts < 1 {
		return fmt.Errorf("rewrite.max_attempts must be at least 1, got: %d", config.Rewrite.MaxAttempts)
	}

	return nil
}

// loadEnvFile applies ./.env to the process environment without overriding
// variables that are already set. A missing file is not an error.
func loadEnvFile() error {
	err := gotenv.Load(envFile)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
