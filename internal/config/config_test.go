package config

import (
	"os"
	"path/filepath"
	"testing"

	"calorie-tracker/internal/models"
	"calorie-tracker/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func writeTempYAML(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", env(nil))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, storage.BackendJSON, cfg.Storage.Backend)
	assert.Equal(t, "users.json", cfg.Storage.Path)
	assert.Equal(t, "predefined_foods.json", cfg.Catalog.Path)
	assert.Equal(t, models.Goals{Calories: 3000, Protein: 180, Fat: 80, Carbs: 300}, cfg.Goals)
	assert.Equal(t, "plain", cfg.PasswordMode)
}

func TestLoadYAMLOverlay(t *testing.T) {
	path := writeTempYAML(t, `
addr: ":9000"
storage:
  backend: sqlite
  path: /tmp/calories.db
catalog:
  path: foods.json
  watch: false
goals:
  calories: 2200
  protein: 150
log_level: debug
`)

	cfg, err := Load(path, env(nil))
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, storage.BackendSQLite, cfg.Storage.Backend)
	assert.Equal(t, "/tmp/calories.db", cfg.Storage.Path)
	assert.Equal(t, "foods.json", cfg.Catalog.Path)
	assert.False(t, cfg.Catalog.Watch)
	assert.Equal(t, "debug", cfg.LogLevel)
	// unset goal fields keep their defaults
	assert.Equal(t, models.Goals{Calories: 2200, Protein: 150, Fat: 80, Carbs: 300}, cfg.Goals)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeTempYAML(t, "addr: \":9000\"\n")

	cfg, err := Load(path, env(map[string]string{
		"PORT":           "8081",
		"DB_PATH":        "/data/calories.db",
		"CATALOG_PATH":   "/data/foods.json",
		"SECURE_COOKIE":  "true",
		"PASSWORD_MODE":  "BCRYPT",
		"ADMIN_USER":     "testuser",
		"ADMIN_PASSWORD": "testpass123",
	}))
	require.NoError(t, err)

	assert.Equal(t, ":8081", cfg.Addr)
	assert.Equal(t, storage.BackendSQLite, cfg.Storage.Backend)
	assert.Equal(t, "/data/calories.db", cfg.Storage.Path)
	assert.Equal(t, "/data/foods.json", cfg.Catalog.Path)
	assert.True(t, cfg.Web.SecureCookie)
	assert.Equal(t, "bcrypt", cfg.PasswordMode)
	assert.Equal(t, "testuser", cfg.Admin.User)
	assert.Equal(t, "testpass123", cfg.Admin.Password)
}

func TestLoadAccountsPathSelectsJSON(t *testing.T) {
	cfg, err := Load("", env(map[string]string{
		"DB_PATH":       "/data/calories.db",
		"ACCOUNTS_PATH": "/data/users.json",
	}))
	require.NoError(t, err)
	assert.Equal(t, storage.BackendJSON, cfg.Storage.Backend)
	assert.Equal(t, "/data/users.json", cfg.Storage.Path)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "unknown backend",
			env:     map[string]string{"STORAGE_BACKEND": "mongo"},
			wantErr: "unknown storage backend",
		},
		{
			name:    "bad secure cookie",
			env:     map[string]string{"SECURE_COOKIE": "maybe"},
			wantErr: "SECURE_COOKIE",
		},
		{
			name:    "bad password mode",
			env:     map[string]string{"PASSWORD_MODE": "rot13"},
			wantErr: "unknown password mode",
		},
		{
			name:    "negative goal",
			yaml:    "goals:\n  fat: -1\n",
			wantErr: "goals must be non-negative",
		},
		{
			name:    "malformed yaml",
			yaml:    "addr: [\n",
			wantErr: "parse config",
		},
		{
			name:    "empty storage path",
			yaml:    "storage:\n  path: \"\"\n",
			wantErr: "storage path is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := ""
			if tt.yaml != "" {
				path = writeTempYAML(t, tt.yaml)
			}
			_, err := Load(path, env(tt.env))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), env(nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}
