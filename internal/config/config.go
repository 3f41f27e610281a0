package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Store driver names accepted by STORE_DRIVER.
const (
	StoreDriverFile  = "file"
	StoreDriverMongo = "mongo"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	Store     StoreConfig
	Weather   WeatherConfig
	Geocode   GeocodeConfig
	Sheets    SheetsConfig
	Scheduler SchedulerConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// StoreConfig selects and parameterizes the persistence backend.
type StoreConfig struct {
	Driver      string
	DataDir     string
	BackupLimit int
	MongoURI    string
	MongoDBName string
}

// WeatherConfig points at the current-conditions provider.
type WeatherConfig struct {
	BaseURL string
	Enabled bool
}

// GeocodeConfig points at the reverse-geocoding provider. Nominatim requires
// an identifying User-Agent.
type GeocodeConfig struct {
	BaseURL   string
	UserAgent string
	Enabled   bool
}

// SheetsConfig contains configuration required to interact with Google Sheets.
// Export stays disabled when no credentials are supplied.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// SchedulerConfig holds cron expressions for the background jobs.
type SchedulerConfig struct {
	ReminderCron string
	SnapshotCron string
	Timezone     string
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

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		Store: StoreConfig{
			Driver:      getenvWithDefault("STORE_DRIVER", StoreDriverFile),
			DataDir:     getenvWithDefault("STORE_DATA_DIR", "./data"),
			BackupLimit: getenvIntWithDefault("BACKUP_HISTORY_LIMIT", 10),
			MongoURI:    getenvWithDefault("MONGODB_URI", "mongodb://localhost:27017"),
			MongoDBName: getenvWithDefault("MONGODB_DB_NAME", "weedtracker"),
		},
		Weather: WeatherConfig{
			BaseURL: getenvWithDefault("WEATHER_BASE_URL", "https://api.open-meteo.com"),
			Enabled: getenvBoolWithDefault("WEATHER_ENABLED", true),
		},
		Geocode: GeocodeConfig{
			BaseURL:   getenvWithDefault("GEOCODE_BASE_URL", "https://nominatim.openstreetmap.org"),
			UserAgent: getenvWithDefault("GEOCODE_USER_AGENT", "weedtracker/1.0"),
			Enabled:   getenvBoolWithDefault("GEOCODE_ENABLED", true),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_DATABASE_ID"),
		},
		Scheduler: SchedulerConfig{
			ReminderCron: getenvWithDefault("REMINDER_CRON_SCHEDULE", "0 7 * * *"),
			SnapshotCron: getenvWithDefault("SNAPSHOT_CRON_SCHEDULE", "0 2 * * *"),
			Timezone:     getenvWithDefault("TIMEZONE", "Australia/Sydney"),
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

	switch c.Store.Driver {
	case StoreDriverFile:
		if c.Store.DataDir == "" {
			return errors.New("STORE_DATA_DIR must be provided for the file driver")
		}
	case StoreDriverMongo:
		if c.Store.MongoURI == "" {
			return errors.New("MONGODB_URI must be provided for the mongo driver")
		}
		if c.Store.MongoDBName == "" {
			return errors.New("MONGODB_DB_NAME must be provided for the mongo driver")
		}
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.Store.Driver)
	}

	if c.Store.BackupLimit < 1 {
		return errors.New("BACKUP_HISTORY_LIMIT must be at least 1")
	}

	if c.Weather.Enabled && c.Weather.BaseURL == "" {
		return errors.New("WEATHER_BASE_URL must not be empty")
	}
	if c.Geocode.Enabled && c.Geocode.BaseURL == "" {
		return errors.New("GEOCODE_BASE_URL must not be empty")
	}

	// Sheets export is optional, but a spreadsheet without credentials (or the
	// reverse) is a misconfiguration worth failing fast on.
	if (c.Sheets.CredentialsPath == "") != (c.Sheets.SpreadsheetID == "") {
		return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH and GOOGLE_SHEET_DATABASE_ID must be provided together")
	}

	if c.Scheduler.ReminderCron == "" {
		return errors.New("REMINDER_CRON_SCHEDULE must be provided")
	}
	if c.Scheduler.SnapshotCron == "" {
		return errors.New("SNAPSHOT_CRON_SCHEDULE must be provided")
	}
	if c.Scheduler.Timezone == "" {
		return errors.New("TIMEZONE must be provided")
	}

	return nil
}

// SheetsEnabled reports whether spreadsheet export is configured.
func (c *Config) SheetsEnabled() bool {
	return c.Sheets.CredentialsPath != "" && c.Sheets.SpreadsheetID != ""
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvIntWithDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvBoolWithDefault(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
