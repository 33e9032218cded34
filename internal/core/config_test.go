package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jo-hoe/spectra/internal/backend/database"
)

// writeConfig writes a config file and points ENV_FILE at a file that does not exist
// so a stray .env in the working directory cannot leak into the test.
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}
	t.Setenv("ENV_FILE", filepath.Join(tmpDir, "missing.env"))
	for _, key := range []string{"STORE_TYPE", "STORE_ID", "STORE_CREDENTIALS", "STORE_CREDENTIALS_FILE",
		"STORE_CONNECTION_STRING", "ADMIN_SECRET", "CSRF_KEY", "TIMEZONE", "PORT"} {
		t.Setenv(key, "")
	}
	return configPath
}

func TestLoadConfig_Success(t *testing.T) {
	configPath := writeConfig(t, `port: 9090
timezone: "UTC"
adminSecret: "4321"
store:
  type: sqlite
  connectionString: ":memory:"
event:
  name: "SPECTRA 2026"
`)

	config, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if config.Port != 9090 {
		t.Errorf("Expected port to be 9090, got %d", config.Port)
	}
	if config.Store.Type != database.TypeSQLite {
		t.Errorf("Expected store type sqlite, got %q", config.Store.Type)
	}
	if config.AdminSecret != "4321" {
		t.Errorf("Expected admin secret 4321, got %q", config.AdminSecret)
	}
	if config.Event.Name != "SPECTRA 2026" {
		t.Errorf("Expected event name from file, got %q", config.Event.Name)
	}
	if config.Event.Tagline != DefaultEvent().Tagline {
		t.Errorf("Expected default tagline, got %q", config.Event.Tagline)
	}
	if config.Location().String() != "UTC" {
		t.Errorf("Expected location UTC, got %s", config.Location())
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	configPath := writeConfig(t, `{}`)

	config, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if config.Port != defaultPort {
		t.Errorf("Expected default port, got %d", config.Port)
	}
	if config.Store.Type != database.TypeSheets {
		t.Errorf("Expected default store type sheets, got %q", config.Store.Type)
	}
	if config.AdminSecret != "" {
		t.Errorf("Expected no admin secret, got %q", config.AdminSecret)
	}
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	configPath := writeConfig(t, `adminSecret: "from-file"
store:
  id: "file-id"
`)
	t.Setenv("ADMIN_SECRET", "from-env")
	t.Setenv("STORE_ID", "env-id")
	t.Setenv("PORT", "7000")

	config, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if config.AdminSecret != "from-env" {
		t.Errorf("Expected env admin secret, got %q", config.AdminSecret)
	}
	if config.Store.ID != "env-id" {
		t.Errorf("Expected env store id, got %q", config.Store.ID)
	}
	if config.Port != 7000 {
		t.Errorf("Expected env port 7000, got %d", config.Port)
	}
}

func TestLoadConfig_DotEnvFile(t *testing.T) {
	configPath := writeConfig(t, `{}`)
	envPath := filepath.Join(filepath.Dir(configPath), ".env")
	content := "ADMIN_SECRET=dotenv-pin\nSTORE_CREDENTIALS='{\"type\":\"service_account\"}'\n"
	if err := os.WriteFile(envPath, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write env file: %v", err)
	}
	t.Setenv("ENV_FILE", envPath)

	config, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if config.AdminSecret != "dotenv-pin" {
		t.Errorf("Expected admin secret from .env, got %q", config.AdminSecret)
	}

	databaseConfig, err := config.DatabaseConfig()
	if err != nil {
		t.Fatalf("DatabaseConfig failed: %v", err)
	}
	if string(databaseConfig.Credentials) != `{"type":"service_account"}` {
		t.Errorf("unexpected credentials %q", databaseConfig.Credentials)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "unknown store type", content: "store:\n  type: excel\n"},
		{name: "bad timezone", content: "timezone: Mars/Olympus\n"},
		{name: "port out of range", content: "port: 70000\n"},
		{name: "short csrf key", content: "csrf:\n  key: abcd\n"},
		{name: "not yaml", content: "port: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := writeConfig(t, tt.content)
			if _, err := LoadConfig(configPath); err == nil {
				t.Fatalf("expected error, got nil")
			}
		})
	}
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	config, err := LoadConfig("/path/that/does/not/exist/config.yaml")
	if err == nil {
		t.Fatal("Expected error for non-existent file, got nil")
	}
	if config != nil {
		t.Error("Expected config to be nil when file doesn't exist")
	}
}

func TestDatabaseConfig_CredentialsFile(t *testing.T) {
	credentialsPath := filepath.Join(t.TempDir(), "service-account.json")
	if err := os.WriteFile(credentialsPath, []byte(`{"k":"v"}`), 0600); err != nil {
		t.Fatalf("Failed to write credentials: %v", err)
	}

	config := &ServiceConfig{Store: StoreConfig{Type: database.TypeSheets, ID: "id", CredentialsFile: credentialsPath}}
	databaseConfig, err := config.DatabaseConfig()
	if err != nil {
		t.Fatalf("DatabaseConfig failed: %v", err)
	}
	if string(databaseConfig.Credentials) != `{"k":"v"}` {
		t.Errorf("unexpected credentials %q", databaseConfig.Credentials)
	}

	config.Store.CredentialsFile = filepath.Join(t.TempDir(), "missing.json")
	if _, err := config.DatabaseConfig(); err == nil {
		t.Fatal("expected error for a missing credentials file")
	}
}
