package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Server         ServerConfig
	MongoDB        MongoDBConfig
	Recommendation RecommendationConfig
	Scheduler      SchedulerConfig
	Notifier       NotifierConfig
	Sheets         SheetsConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// MongoDBConfig holds settings for MongoDB.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// RecommendationConfig tunes the forecasting and repurchase pipeline.
type RecommendationConfig struct {
	// ThresholdDays is the repurchase horizon: items predicted to be consumed
	// within this many days are recommended.
	ThresholdDays int
	// DefaultForecastDays is the consumption horizon used when there is too
	// little history to train a duration model.
	DefaultForecastDays int
	Timezone            string
}

// SchedulerConfig holds settings for the periodic recommendation refresh.
type SchedulerConfig struct {
	CronSchedule string
}

// NotifierConfig configures the optional outbound webhook. An empty URL
// disables notification.
type NotifierConfig struct {
	WebhookURL string
}

// SheetsConfig configures the optional shopping-list export to Google
// Sheets. Export is disabled when either field is empty.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Ignore the returned error here; missing .env files are acceptable when
		// configuration comes from the environment directly.
		_ = godotenv.Load()
	}

	thresholdDays, err := getenvIntWithDefault("REPURCHASE_THRESHOLD_DAYS", 2)
	if err != nil {
		return nil, err
	}

	defaultForecastDays, err := getenvIntWithDefault("DEFAULT_FORECAST_DAYS", 7)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		MongoDB: MongoDBConfig{
			URI:    getenvWithDefault("MONGODB_URI", "mongodb://localhost:27017"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "restock"),
		},
		Recommendation: RecommendationConfig{
			ThresholdDays:       thresholdDays,
			DefaultForecastDays: defaultForecastDays,
			Timezone:            getenvWithDefault("TIMEZONE", "Pacific/Auckland"),
		},
		Scheduler: SchedulerConfig{
			CronSchedule: getenvWithDefault("REFRESH_CRON_SCHEDULE", "0 6 * * *"),
		},
		Notifier: NotifierConfig{
			WebhookURL: os.Getenv("NOTIFY_WEBHOOK_URL"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_EXPORT_ID"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	switch {
	case c.MongoDB.URI == "":
		return errors.New("MONGODB_URI must be provided")
	case c.MongoDB.DBName == "":
		return errors.New("MONGODB_DB_NAME must be provided")
	}

	if c.Recommendation.ThresholdDays < 0 {
		return errors.New("REPURCHASE_THRESHOLD_DAYS must not be negative")
	}

	if c.Recommendation.DefaultForecastDays < 1 {
		return errors.New("DEFAULT_FORECAST_DAYS must be at least 1")
	}

	if c.Recommendation.Timezone == "" {
		return errors.New("TIMEZONE must be provided")
	}

	if c.Scheduler.CronSchedule == "" {
		return errors.New("REFRESH_CRON_SCHEDULE must be provided")
	}

	return nil
}

// SheetsExportEnabled reports whether the optional spreadsheet export is
// fully configured.
func (c *Config) SheetsExportEnabled() bool {
	return c.Sheets.CredentialsPath != "" && c.Sheets.SpreadsheetID != ""
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvIntWithDefault(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return parsed, nil
}
