// Package config loads and validates application configuration.
//
// Values come from an optional YAML file named by CONFIG_FILE, then from
// environment variables, which override the file. The result is checked with
// struct-tag validation before it is returned.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata" // campaign zones resolve on minimal images

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration values for the server and the CLI.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string `yaml:"port" validate:"required,numeric"`

	// LogLevel controls the minimum log level. Defaults to "info".
	LogLevel string `yaml:"log_level" validate:"oneof=debug info warn error"`

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string `yaml:"cors_origins"`

	// DatabaseURL is the Postgres connection string of the geocode cache.
	// Optional: without it geocoding answers live in memory only.
	DatabaseURL string `yaml:"database_url"`

	// Timezone is the campaign's IANA zone, used for sheet times and "today".
	Timezone string `yaml:"timezone" validate:"required,timezone"`

	// HTTPTimeout bounds every outbound call (sheet, status endpoint, geocoder).
	HTTPTimeout time.Duration `yaml:"http_timeout" validate:"gt=0"`

	// NavProvider is the primary navigation app for stop links.
	NavProvider string `yaml:"nav_provider" validate:"oneof=kakao naver google"`

	Schedule ScheduleConfig `yaml:"schedule"`
	Status   StatusConfig   `yaml:"status"`
	Geocode  GeocodeConfig  `yaml:"geocode"`
}

// ScheduleConfig selects where the schedule is read from.
type ScheduleConfig struct {
	// Source is one of sheets, csv, xlsx. Defaults to csv.
	Source string `yaml:"source" validate:"oneof=sheets csv xlsx"`

	// SpreadsheetID and Range address the sheet for the sheets source.
	SpreadsheetID string `yaml:"spreadsheet_id" validate:"required_if=Source sheets"`
	Range         string `yaml:"range"`

	// GoogleAPIKey authenticates Sheets API reads. Application default
	// credentials are used when empty.
	GoogleAPIKey string `yaml:"google_api_key"`

	// URL is the CSV or XLSX export location: an http(s) URL or a file path.
	URL string `yaml:"url" validate:"required_unless=Source sheets"`

	// Worksheet names the XLSX worksheet. Defaults to the first one.
	Worksheet string `yaml:"worksheet"`
}

// StatusConfig configures the attendance write endpoint.
type StatusConfig struct {
	EndpointURL   string `yaml:"endpoint_url" validate:"required,url"`
	SuccessMarker string `yaml:"success_marker" validate:"required"`
}

// GeocodeConfig configures address lookup.
type GeocodeConfig struct {
	// APIKey is the Google Maps key. When empty and Project is set, the key
	// named KeyDisplayName is looked up through the API Keys service. When
	// both are empty, geocoding is disabled.
	APIKey         string        `yaml:"api_key"`
	Project        string        `yaml:"project"`
	KeyDisplayName string        `yaml:"key_display_name"`
	Region         string        `yaml:"region"`
	TTL            time.Duration `yaml:"ttl" validate:"gt=0"`
}

// Enabled reports whether any way of obtaining a Maps key is configured.
func (g GeocodeConfig) Enabled() bool {
	return g.APIKey != "" || g.Project != ""
}

// Location returns the configured time zone.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func defaults() Config {
	return Config{
		Port:        "8080",
		LogLevel:    "info",
		CORSOrigins: []string{"http://localhost:5173"},
		Timezone:    "Asia/Seoul",
		HTTPTimeout: 10 * time.Second,
		NavProvider: "kakao",
		Schedule: ScheduleConfig{
			Source: "csv",
			Range:  "A:Z",
		},
		Status: StatusConfig{
			SuccessMarker: "성공",
		},
		Geocode: GeocodeConfig{
			KeyDisplayName: "Campaign Itinerary Geocoding Key",
			Region:         "kr",
			TTL:            24 * time.Hour,
		},
	}
}

// Load reads configuration and returns a validated Config.
// Returns an error listing any required variables that are not set.
func Load() (Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parsing %s: %w", path, err)
		}
	}

	override(&cfg.Port, "PORT")
	override(&cfg.LogLevel, "LOG_LEVEL")
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		cfg.CORSOrigins = splitCSV(v)
	}
	override(&cfg.DatabaseURL, "DATABASE_URL")
	override(&cfg.Timezone, "TIMEZONE")
	override(&cfg.NavProvider, "NAV_PROVIDER")
	override(&cfg.Schedule.Source, "SCHEDULE_SOURCE")
	override(&cfg.Schedule.SpreadsheetID, "SPREADSHEET_ID")
	override(&cfg.Schedule.Range, "SHEET_RANGE")
	override(&cfg.Schedule.GoogleAPIKey, "GOOGLE_API_KEY")
	override(&cfg.Schedule.URL, "SCHEDULE_URL")
	override(&cfg.Schedule.Worksheet, "SCHEDULE_WORKSHEET")
	override(&cfg.Status.EndpointURL, "STATUS_ENDPOINT_URL")
	override(&cfg.Status.SuccessMarker, "STATUS_SUCCESS_MARKER")
	override(&cfg.Geocode.APIKey, "GOOGLE_MAPS_API_KEY")
	override(&cfg.Geocode.Project, "GCP_PROJECT")
	override(&cfg.Geocode.KeyDisplayName, "MAPS_KEY_DISPLAY_NAME")
	override(&cfg.Geocode.Region, "GEOCODE_REGION")

	var bad []string
	if err := overrideDuration(&cfg.HTTPTimeout, "HTTP_TIMEOUT"); err != nil {
		bad = append(bad, err.Error())
	}
	if err := overrideDuration(&cfg.Geocode.TTL, "GEOCODE_TTL"); err != nil {
		bad = append(bad, err.Error())
	}
	if len(bad) > 0 {
		return Config{}, fmt.Errorf("config: %s", strings.Join(bad, "; "))
	}

	var missing []string
	if cfg.Status.EndpointURL == "" {
		missing = append(missing, "STATUS_ENDPOINT_URL")
	}
	switch {
	case cfg.Schedule.Source == "sheets" && cfg.Schedule.SpreadsheetID == "":
		missing = append(missing, "SPREADSHEET_ID")
	case cfg.Schedule.Source != "sheets" && cfg.Schedule.URL == "":
		missing = append(missing, "SCHEDULE_URL")
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// override replaces *dst with the environment variable named by key when it
// is set and non-empty.
func override(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func overrideDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
