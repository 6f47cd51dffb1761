// Package config loads and saves the planner's YAML configuration.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"planner-cli/internal/model"
)

const (
	FileName = "config.yaml"

	EnvConfigDir = "PLANNER_CONFIG_DIR"
	EnvDataDir   = "PLANNER_DIR"
	EnvLogLevel  = "PLANNER_LOG_LEVEL"
)

type Config struct {
	// DataDir holds planner.sqlite and the fallback store. Empty means <config dir>/data.
	DataDir string `yaml:"dataDir,omitempty" json:"dataDir,omitempty"`
	// Origin scopes the fallback store; different origins never see each other's data.
	Origin             string `yaml:"origin,omitempty" json:"origin,omitempty"`
	FallbackQuotaBytes int64  `yaml:"fallbackQuotaBytes,omitempty" json:"fallbackQuotaBytes,omitempty"`
	// DisableDurable runs on the fallback store alone (the embedded database is never opened).
	DisableDurable bool `yaml:"disableDurable,omitempty" json:"disableDurable,omitempty"`

	DefaultCategory string `yaml:"defaultCategory,omitempty" json:"defaultCategory,omitempty"`
	DefaultColor    string `yaml:"defaultColor,omitempty" json:"defaultColor,omitempty"`

	LogLevel string `yaml:"logLevel,omitempty" json:"logLevel,omitempty"`

	UpcomingLimit       int `yaml:"upcomingLimit,omitempty" json:"upcomingLimit,omitempty"`
	UpcomingWindowHours int `yaml:"upcomingWindowHours,omitempty" json:"upcomingWindowHours,omitempty"`
	// Timezone is an IANA name used to read and show zone-less dates. Empty means local time.
	Timezone string `yaml:"timezone,omitempty" json:"timezone,omitempty"`
}

func DefaultConfig() Config {
	return Config{
		Origin:              "default",
		FallbackQuotaBytes:  5 << 20,
		DefaultCategory:     model.DefaultCategory,
		DefaultColor:        model.DefaultColor,
		LogLevel:            "warn",
		UpcomingLimit:       8,
		UpcomingWindowHours: 24,
	}
}

var hexColorRe = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

func (c Config) Validate() error {
	var errs []error
	if c.FallbackQuotaBytes < 0 {
		errs = append(errs, fmt.Errorf("fallbackQuotaBytes must be >= 0 (got %d)", c.FallbackQuotaBytes))
	}
	if c.DefaultColor != "" && !hexColorRe.MatchString(c.DefaultColor) {
		errs = append(errs, fmt.Errorf("defaultColor %q is not a hex color", c.DefaultColor))
	}
	if c.LogLevel != "" {
		var lvl slog.Level
		if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
			errs = append(errs, fmt.Errorf("logLevel: %w", err))
		}
	}
	if c.UpcomingLimit < 0 {
		errs = append(errs, fmt.Errorf("upcomingLimit must be >= 0 (got %d)", c.UpcomingLimit))
	}
	if c.UpcomingWindowHours < 0 {
		errs = append(errs, fmt.Errorf("upcomingWindowHours must be >= 0 (got %d)", c.UpcomingWindowHours))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Location resolves Timezone; empty means time.Local.
func (c Config) Location() (*time.Location, error) {
	tz := strings.TrimSpace(c.Timezone)
	if tz == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", tz, err)
	}
	return loc, nil
}

func (c Config) Defaults() model.Defaults {
	return model.Defaults{Category: c.DefaultCategory, Color: c.DefaultColor}
}

func (c Config) UpcomingWindow() time.Duration {
	return time.Duration(c.UpcomingWindowHours) * time.Hour
}

// ResolveDataDir returns DataDir, or <config dir>/data when unset.
func (c Config) ResolveDataDir() (string, error) {
	if d := strings.TrimSpace(c.DataDir); d != "" {
		return d, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "data"), nil
}

// Dir is the config directory: $PLANNER_CONFIG_DIR, else ~/.planner.
func Dir() (string, error) {
	if v := strings.TrimSpace(os.Getenv(EnvConfigDir)); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".planner"), nil
}

func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, FileName), nil
}

// Load reads path over DefaultConfig. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path with owner-only permissions, keeping the previous file as path.bak.
func Save(path string, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if prev, err := os.ReadFile(path); err == nil && len(prev) > 0 {
		_ = atomicWriteFile(dir, FileName+".bak.*.tmp", path+".bak", prev, 0o600)
	}
	return atomicWriteFile(dir, FileName+".*.tmp", path, b, 0o600)
}

func atomicWriteFile(dir, tmpPattern, path string, b []byte, perm os.FileMode) error {
	f, err := os.CreateTemp(dir, tmpPattern)
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp, perm); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
