// Package config loads the tracker configuration: defaults, then an optional
// YAML file, then GARDEN_* environment variables, then command-line flags,
// validated as one struct.
package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
	"google.golang.org/api/option"
)

// Config is the full runtime configuration of the tracker.
type Config struct {
	Port      string `koanf:"port" validate:"required"`
	AssetsDir string `koanf:"assets_dir" validate:"required"`

	// StoreBackend selects where records live: the shared spreadsheet, a
	// self-hosted database, or memory for local runs.
	StoreBackend  string `koanf:"store_backend" validate:"oneof=sheets postgres memory"`
	SpreadsheetID string `koanf:"spreadsheet_id" validate:"required_if=StoreBackend sheets"`
	SheetName     string `koanf:"sheet_name" validate:"required"`
	DatabaseURL   string `koanf:"database_url" validate:"required_if=StoreBackend postgres"`

	// GardenerEmails is the notification recipient list. In env form it is a
	// comma-separated string.
	GardenerEmails []string `koanf:"gardener_emails"`
	SenderName     string   `koanf:"sender_name" validate:"required"`

	// Google credentials: base64-encoded JSON wins, then a key file path,
	// then ambient application-default credentials.
	GoogleCredentialsJSON string `koanf:"google_credentials_json"`
	GoogleCredentialsFile string `koanf:"google_credentials_file"`

	MetricsUser string `koanf:"metrics_user"`
	MetricsPass string `koanf:"metrics_pass"`

	RateLimitRPS   float64 `koanf:"rate_limit_rps" validate:"gt=0"`
	RateLimitBurst int     `koanf:"rate_limit_burst" validate:"gt=0"`
}

func defaults() Config {
	return Config{
		Port:           "3333",
		AssetsDir:      "./assets",
		StoreBackend:   "sheets",
		SheetName:      "Watering Records",
		SenderName:     "Garden Watering Tracker",
		RateLimitRPS:   5,
		RateLimitBurst: 30,
	}
}

// Load builds the configuration. configFile may be empty; a missing explicit
// file is an error, flags may be nil.
func Load(configFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if configFile != "" {
		if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configFile, err)
		}
	}

	if err := k.Load(env.Provider("GARDEN_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "GARDEN_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// Environment recipients arrive as one comma-separated value; normalize
	// before unmarshalling so the field is always a clean list.
	var emails []string
	switch raw := k.Get("gardener_emails").(type) {
	case string:
		emails = splitList(raw)
	case nil:
	default:
		for _, e := range k.Strings("gardener_emails") {
			emails = append(emails, strings.TrimSpace(e))
		}
	}
	k.Delete("gardener_emails")

	cfg := defaults()
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.GardenerEmails = emails

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// GoogleClientOptions resolves the credential option for the Sheets and Gmail
// clients: base64 env material first, then a key file, then none (ambient
// application-default credentials).
func (c *Config) GoogleClientOptions() ([]option.ClientOption, error) {
	if c.GoogleCredentialsJSON != "" {
		decoded, err := base64.StdEncoding.DecodeString(c.GoogleCredentialsJSON)
		if err != nil {
			return nil, fmt.Errorf("failed to decode base64 google credentials: %w", err)
		}
		return []option.ClientOption{option.WithCredentialsJSON(decoded)}, nil
	}
	if c.GoogleCredentialsFile != "" {
		if _, err := os.Stat(c.GoogleCredentialsFile); err != nil {
			return nil, fmt.Errorf("google credentials file not found: %s", c.GoogleCredentialsFile)
		}
		return []option.ClientOption{option.WithCredentialsFile(c.GoogleCredentialsFile)}, nil
	}
	return nil, nil
}
