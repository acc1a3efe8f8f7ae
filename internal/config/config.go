// Package config loads the YAML configuration file and fills in defaults so
// a missing or partial file still yields a runnable setup. The Telegram
// token deliberately lives in the environment, not the file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dukerupert/keepsake/internal/alert"
	"github.com/dukerupert/keepsake/internal/occurrence"
)

// TierConfig is one lead-time bucket: the alert fires on the day exactly
// Days before the occurrence.
type TierConfig struct {
	Label string `yaml:"label"`
	Days  int    `yaml:"days"`
}

// BackupConfig enables encrypted snapshots of the database to S3-compatible
// storage. Disabled unless Enabled is set and the bucket is configured.
type BackupConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Endpoint      string `yaml:"endpoint"`
	Bucket        string `yaml:"bucket"`
	Region        string `yaml:"region"`
	AccessKey     string `yaml:"access_key"`
	SecretKey     string `yaml:"secret_key"`
	Passphrase    string `yaml:"passphrase"`
	IntervalHours int    `yaml:"interval_hours"`
}

// Config is the top-level application configuration.
type Config struct {
	// DBPath is the SQLite database file.
	DBPath string `yaml:"db_path"`

	// Timezone is the IANA zone "today" and the tick time are evaluated in.
	Timezone string `yaml:"timezone"`

	// TickTime is the local time of day ("HH:MM") the daily tick fires.
	TickTime string `yaml:"tick_time"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// Feb29Fallback fixes where Feb-29 events fall in non-leap years:
	// "feb28" (default) or "mar1".
	Feb29Fallback string `yaml:"feb29_fallback"`

	// Tiers overrides the default month/week/day/today lead times.
	Tiers []TierConfig `yaml:"tiers"`

	Backup BackupConfig `yaml:"backup"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DBPath:        "keepsake.db",
		Timezone:      "Local",
		TickTime:      "09:00",
		LogLevel:      "info",
		Feb29Fallback: "feb28",
	}
}

// Load reads the config file at path. A missing file is not an error; the
// defaults apply. An unreadable or invalid file is fatal to the caller.
func Load(path string) (*Config, error) {
	c := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return c, c.Validate()
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.normalize()
	return c, c.Validate()
}

func (c *Config) normalize() {
	d := Default()
	if c.DBPath == "" {
		c.DBPath = d.DBPath
	}
	if c.Timezone == "" {
		c.Timezone = d.Timezone
	}
	if c.TickTime == "" {
		c.TickTime = d.TickTime
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	if c.Feb29Fallback == "" {
		c.Feb29Fallback = d.Feb29Fallback
	}
	if c.Backup.IntervalHours <= 0 {
		c.Backup.IntervalHours = 24
	}
}

// Validate rejects configurations the process must not start with.
func (c *Config) Validate() error {
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := c.Feb29Policy(); err != nil {
		return err
	}
	if _, err := c.Policy(); err != nil {
		return err
	}
	if c.Backup.Enabled {
		if c.Backup.Bucket == "" {
			return fmt.Errorf("backup enabled without a bucket")
		}
		if c.Backup.Passphrase == "" {
			return fmt.Errorf("backup enabled without a passphrase")
		}
	}
	return nil
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Feb29Policy parses the configured fallback.
func (c *Config) Feb29Policy() (occurrence.Feb29Policy, error) {
	return occurrence.ParseFeb29Policy(c.Feb29Fallback)
}

// Policy builds the alert policy from the configured tiers, or the default
// set when none are given.
func (c *Config) Policy() (alert.Policy, error) {
	if len(c.Tiers) == 0 {
		return alert.DefaultPolicy(), nil
	}
	tiers := make([]alert.Tier, 0, len(c.Tiers))
	for _, t := range c.Tiers {
		tiers = append(tiers, alert.Tier{Label: t.Label, Days: t.Days})
	}
	return alert.NewPolicy(tiers)
}

// BackupInterval returns the snapshot cadence.
func (c *Config) BackupInterval() time.Duration {
	return time.Duration(c.Backup.IntervalHours) * time.Hour
}
