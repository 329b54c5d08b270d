// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// EnvVar names the environment variable Load reads the config path
// from.
const EnvVar = "CHATIMAGE_CONFIG"

// Backend selects which image backend the CLI installs.
type Backend string

const (
	// BackendOffline constructs images but answers no presence or URL
	// queries.
	BackendOffline Backend = "offline"
	// BackendLocal answers from a SQLite upload index.
	BackendLocal Backend = "local"
	// BackendRemote delegates to an HTTP image service.
	BackendRemote Backend = "remote"
)

// Config is the chatimage configuration.
type Config struct {
	// Backend is one of offline, local, remote.
	Backend Backend `yaml:"backend" validate:"required,oneof=offline local remote"`

	// Sessions lists the user IDs treated as logged in. Presence and
	// URL queries use the first one.
	Sessions []string `yaml:"sessions" validate:"dive,required"`

	Local  LocalConfig  `yaml:"local"`
	Remote RemoteConfig `yaml:"remote"`
	Log    LogConfig    `yaml:"log"`
}

// LocalConfig configures the SQLite upload index.
type LocalConfig struct {
	// Path is the database file. ${VAR} patterns are expanded.
	Path string `yaml:"path"`

	// URLTemplate is the fallback download URL. Must contain {MD5} when
	// set.
	URLTemplate string `yaml:"url_template" validate:"omitempty,contains={MD5}"`

	// PoolSize is the number of SQLite connections. Zero picks the pool
	// default.
	PoolSize int `yaml:"pool_size" validate:"gte=0,lte=64"`
}

// RemoteConfig configures the HTTP image service client.
type RemoteConfig struct {
	BaseURL string `yaml:"base_url" validate:"omitempty,url"`

	// Token is the bearer token. Usually given as ${SOME_VAR} so the
	// secret stays out of the file.
	Token string `yaml:"token"`

	// Timeout bounds each request, e.g. "10s".
	Timeout time.Duration `yaml:"timeout" validate:"gte=0"`
}

// LogConfig configures the CLI logger.
type LogConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error"`

	// Format is text, json, or auto (text on a terminal, json
	// otherwise).
	Format string `yaml:"format" validate:"oneof=auto text json"`
}

// Default returns the configuration every file is merged into.
func Default() *Config {
	return &Config{
		Backend: BackendOffline,
		Local: LocalConfig{
			Path: "${HOME}/.cache/chatimage/uploads.db",
		},
		Remote: RemoteConfig{
			Timeout: 30 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "auto",
		},
	}
}

// Load loads configuration from the file named by CHATIMAGE_CONFIG.
// There is no fallback: an unset variable is an error.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvVar)
	if configPath == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your chatimage config file, or use --config flag", EnvVar)
	}
	return LoadFile(configPath)
}

// LoadFile loads, expands, and validates configuration from path.
// Files ending in .json or .jsonc may carry comments and trailing
// commas; anything else is parsed as YAML.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes data over Default(), expands variables, and validates.
// extension selects JSONC handling for ".json" and ".jsonc".
func Parse(data []byte, extension string) (*Config, error) {
	switch strings.ToLower(extension) {
	case ".json", ".jsonc":
		data = jsonc.ToJSON(data)
	}

	cfg := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	cfg.expandVariables()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// expandVariables expands ${VAR} and ${VAR:-default} in path, URL and
// token fields.
func (c *Config) expandVariables() {
	c.Local.Path = expandVars(c.Local.Path)
	c.Remote.BaseURL = expandVars(c.Remote.BaseURL)
	c.Remote.Token = expandVars(c.Remote.Token)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if value := os.Getenv(parts[1]); value != "" {
			return value
		}
		return parts[2]
	})
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their YAML key so messages match the file.
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks field constraints and the settings the selected
// backend needs. All problems are reported together.
func (c *Config) Validate() error {
	var errs []error

	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return err
		}
		for _, fieldErr := range fieldErrs {
			errs = append(errs, describeFieldError(fieldErr))
		}
	}

	switch c.Backend {
	case BackendLocal:
		if c.Local.Path == "" {
			errs = append(errs, fmt.Errorf("local.path is required for the local backend"))
		}
	case BackendRemote:
		if c.Remote.BaseURL == "" {
			errs = append(errs, fmt.Errorf("remote.base_url is required for the remote backend"))
		}
	}

	return errors.Join(errs...)
}

// describeFieldError renders "local.pool_size must be lte 64" style
// messages.
func describeFieldError(fieldErr validator.FieldError) error {
	field := fieldErr.Namespace()
	if _, rest, ok := strings.Cut(field, "."); ok {
		field = rest
	}
	switch fieldErr.Tag() {
	case "required":
		return fmt.Errorf("%s is required", field)
	case "oneof":
		return fmt.Errorf("%s must be one of [%s], got %q", field, fieldErr.Param(), fmt.Sprint(fieldErr.Value()))
	case "url":
		return fmt.Errorf("%s must be a URL, got %q", field, fmt.Sprint(fieldErr.Value()))
	case "contains":
		return fmt.Errorf("%s must contain %s", field, fieldErr.Param())
	default:
		return fmt.Errorf("%s must be %s %s", field, fieldErr.Tag(), fieldErr.Param())
	}
}

// SlogLevel returns the configured log level.
func (l LogConfig) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// EnsureStateDir creates the directory holding the local database.
func (c *Config) EnsureStateDir() error {
	if c.Backend != BackendLocal {
		return nil
	}
	dir := filepath.Dir(c.Local.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("config: creating %s: %w", dir, err)
	}
	return nil
}
