package core

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/jo-hoe/spectra/internal/backend/database"
)

const (
	defaultPort     = 8080
	defaultTimezone = "Local"
	defaultEnvFile  = ".env"
)

// StoreConfig addresses the tabular store.
type StoreConfig struct {
	Type             string `yaml:"type"`
	ID               string `yaml:"id"`
	Credentials      string `yaml:"credentials"`
	CredentialsFile  string `yaml:"credentialsFile"`
	ConnectionString string `yaml:"connectionString"`
	KeyPrefix        string `yaml:"keyPrefix"`
}

type CSRFConfig struct {
	Enabled        bool     `yaml:"enabled"`
	Key            string   `yaml:"key"` // 64 hex characters; random per start when empty
	Secure         bool     `yaml:"secure"`
	TrustedOrigins []string `yaml:"trustedOrigins"`
}

// EventConfig holds the copy shown on the home page.
type EventConfig struct {
	Name    string `yaml:"name"`
	Tagline string `yaml:"tagline"`
	Edition string `yaml:"edition"`
	Dates   string `yaml:"dates"`
	Venue   string `yaml:"venue"`
	Ticker  string `yaml:"ticker"`
	Footer  string `yaml:"footer"`
	LogoURL string `yaml:"logoUrl"`
}

type ServiceConfig struct {
	Port        int         `yaml:"port"`
	Timezone    string      `yaml:"timezone"`
	Store       StoreConfig `yaml:"store"`
	AdminSecret string      `yaml:"adminSecret"`
	CSRF        CSRFConfig  `yaml:"csrf"`
	Event       EventConfig `yaml:"event"`
}

// LoadConfig loads configuration from the specified YAML file, then applies
// environment overrides (optionally read from a dotenv file named by ENV_FILE, default .env).
func LoadConfig(configPath string) (*ServiceConfig, error) {
	// Read the config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	// Parse YAML
	var config ServiceConfig
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}

	if err := config.applyEnvironment(); err != nil {
		return nil, err
	}
	config.applyDefaults()

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func (config *ServiceConfig) applyEnvironment() error {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = defaultEnvFile
	}
	fileValues, err := godotenv.Read(envFile)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to read env file %s: %w", envFile, err)
		}
		fileValues = map[string]string{}
	}

	lookup := func(key string) (string, bool) {
		if value := os.Getenv(key); value != "" {
			return value, true
		}
		value, ok := fileValues[key]
		return value, ok && value != ""
	}

	overrides := []struct {
		key    string
		target *string
	}{
		{"STORE_TYPE", &config.Store.Type},
		{"STORE_ID", &config.Store.ID},
		{"STORE_CREDENTIALS", &config.Store.Credentials},
		{"STORE_CREDENTIALS_FILE", &config.Store.CredentialsFile},
		{"STORE_CONNECTION_STRING", &config.Store.ConnectionString},
		{"ADMIN_SECRET", &config.AdminSecret},
		{"CSRF_KEY", &config.CSRF.Key},
		{"TIMEZONE", &config.Timezone},
	}
	for _, override := range overrides {
		if value, ok := lookup(override.key); ok {
			*override.target = value
		}
	}

	if value, ok := lookup("PORT"); ok {
		var port int
		if _, err := fmt.Sscanf(value, "%d", &port); err != nil {
			return fmt.Errorf("invalid PORT %q: %w", value, err)
		}
		config.Port = port
	}
	return nil
}

func (config *ServiceConfig) applyDefaults() {
	if config.Port == 0 {
		config.Port = defaultPort
	}
	if config.Timezone == "" {
		config.Timezone = defaultTimezone
	}
	if config.Store.Type == "" {
		config.Store.Type = database.TypeSheets
	}

	defaults := DefaultEvent()
	event := &config.Event
	for _, field := range []struct {
		value    *string
		fallback string
	}{
		{&event.Name, defaults.Name},
		{&event.Tagline, defaults.Tagline},
		{&event.Edition, defaults.Edition},
		{&event.Dates, defaults.Dates},
		{&event.Venue, defaults.Venue},
		{&event.Ticker, defaults.Ticker},
		{&event.Footer, defaults.Footer},
		{&event.LogoURL, defaults.LogoURL},
	} {
		if *field.value == "" {
			*field.value = field.fallback
		}
	}
}

// validate checks what can be checked without contacting the store. Missing store
// credentials are not an error here; every store access reports them instead.
func (config *ServiceConfig) validate() error {
	if config.Port < 0 || config.Port > 65535 {
		return fmt.Errorf("port %d out of range", config.Port)
	}
	if !slices.Contains(database.SupportedTypes, config.Store.Type) {
		return fmt.Errorf("unsupported store type: %s", config.Store.Type)
	}
	if _, err := time.LoadLocation(config.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", config.Timezone, err)
	}
	if config.CSRF.Key != "" {
		key, err := hex.DecodeString(config.CSRF.Key)
		if err != nil || len(key) != 32 {
			return errors.New("csrf key must be 64 hex characters (32 bytes)")
		}
	}
	return nil
}

// Location returns the timezone used for row timestamps.
func (config *ServiceConfig) Location() *time.Location {
	location, err := time.LoadLocation(config.Timezone)
	if err != nil {
		return time.Local
	}
	return location
}

// DatabaseConfig resolves the store configuration, reading the credentials file if one is set.
func (config *ServiceConfig) DatabaseConfig() (database.Config, error) {
	credentials := []byte(config.Store.Credentials)
	if len(credentials) == 0 && config.Store.CredentialsFile != "" {
		data, err := os.ReadFile(config.Store.CredentialsFile)
		if err != nil {
			return database.Config{}, fmt.Errorf("failed to read store credentials %s: %w", config.Store.CredentialsFile, err)
		}
		credentials = data
	}

	return database.Config{
		Type:             config.Store.Type,
		ID:               config.Store.ID,
		Credentials:      credentials,
		ConnectionString: config.Store.ConnectionString,
		KeyPrefix:        config.Store.KeyPrefix,
	}, nil
}

// DefaultEvent is the copy of the 2025 annual day.
func DefaultEvent() EventConfig {
	return EventConfig{
		Name:    "SPECTRA 2025",
		Tagline: "Talent Meets Opportunity",
		Edition: "45th Annual Day",
		Dates:   "19th & 20th December, 2025",
		Venue:   "St. Gregorios Higher Secondary School",
		Ticker:  "Welcome to SPECTRA 2025 – Registrations Open | Check Announcements for updates!",
		Footer:  "© St. Gregorios H.S. School | SPECTRA 2025",
		LogoURL: "/icon.svg",
	}
}
