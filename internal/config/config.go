// Package config holds runtime settings. Values are layered: defaults, then
// an optional YAML file, then environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"calorie-tracker/internal/auth"
	"calorie-tracker/internal/models"
	"calorie-tracker/internal/storage"

	"gopkg.in/yaml.v3"
)

// Config holds runtime settings for the tracker.
type Config struct {
	Addr         string        `yaml:"addr"`
	Storage      StorageConfig `yaml:"storage"`
	Catalog      CatalogConfig `yaml:"catalog"`
	Web          WebConfig     `yaml:"web"`
	PasswordMode string        `yaml:"password_mode"`
	LogLevel     string        `yaml:"log_level"`
	Goals        models.Goals  `yaml:"goals"`
	Admin        AdminConfig   `yaml:"admin"`
}

// StorageConfig selects the account store.
type StorageConfig struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
}

// CatalogConfig locates the predefined food document.
type CatalogConfig struct {
	Path  string `yaml:"path"`
	Watch bool   `yaml:"watch"`
}

// WebConfig holds settings of the HTTP UI.
type WebConfig struct {
	TemplateDir  string `yaml:"template_dir"`
	StaticDir    string `yaml:"static_dir"`
	SecureCookie bool   `yaml:"secure_cookie"`
}

// AdminConfig seeds an initial account when the store is empty.
type AdminConfig struct {
	User     string `yaml:"user"`
	Password string `yaml:"-"`
}

// Default returns development defaults.
func Default() *Config {
	return &Config{
		Addr: ":8080",
		Storage: StorageConfig{
			Backend: storage.BackendJSON,
			Path:    "users.json",
		},
		Catalog: CatalogConfig{
			Path:  "predefined_foods.json",
			Watch: true,
		},
		Web: WebConfig{
			TemplateDir: "web/templates",
			StaticDir:   "web/static",
		},
		PasswordMode: auth.ModePlain,
		LogLevel:     "info",
		Goals:        models.DefaultGoals(),
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty) and the environment.
func Load(path string, getenv func(string) string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(getenv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// applyEnv overlays environment variables. PORT and DB_PATH keep their
// historical meaning; DB_PATH selects the SQLite backend unless
// STORAGE_BACKEND says otherwise.
func (c *Config) applyEnv(getenv func(string) string) error {
	if getenv == nil {
		getenv = os.Getenv
	}

	if port := getenv("PORT"); port != "" {
		c.Addr = ":" + port
	}
	if path := getenv("DB_PATH"); path != "" {
		c.Storage.Backend = storage.BackendSQLite
		c.Storage.Path = path
	}
	if path := getenv("ACCOUNTS_PATH"); path != "" {
		c.Storage.Backend = storage.BackendJSON
		c.Storage.Path = path
	}
	if backend := getenv("STORAGE_BACKEND"); backend != "" {
		c.Storage.Backend = strings.ToLower(backend)
	}
	if path := getenv("CATALOG_PATH"); path != "" {
		c.Catalog.Path = path
	}
	if v := getenv("SECURE_COOKIE"); v != "" {
		secure, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("SECURE_COOKIE: %w", err)
		}
		c.Web.SecureCookie = secure
	}
	if level := getenv("LOG_LEVEL"); level != "" {
		c.LogLevel = level
	}
	if mode := getenv("PASSWORD_MODE"); mode != "" {
		c.PasswordMode = strings.ToLower(mode)
	}
	if user := getenv("ADMIN_USER"); user != "" {
		c.Admin.User = user
	}
	if password := getenv("ADMIN_PASSWORD"); password != "" {
		c.Admin.Password = password
	}
	return nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case storage.BackendJSON, storage.BackendSQLite:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Storage.Path == "" {
		return errors.New("storage path is required")
	}
	if c.Catalog.Path == "" {
		return errors.New("catalog path is required")
	}
	if _, err := auth.NewPasswordPolicy(c.PasswordMode); err != nil {
		return err
	}
	g := c.Goals
	if g.Calories < 0 || g.Protein < 0 || g.Fat < 0 || g.Carbs < 0 {
		return errors.New("goals must be non-negative")
	}
	return nil
}
