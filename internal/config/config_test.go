package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.DBPath != "keepsake.db" {
		t.Errorf("db_path = %q", c.DBPath)
	}
	if c.TickTime != "09:00" {
		t.Errorf("tick_time = %q", c.TickTime)
	}
	if c.Feb29Fallback != "feb28" {
		t.Errorf("feb29_fallback = %q", c.Feb29Fallback)
	}
}

func TestLoadOverridesAndNormalizes(t *testing.T) {
	path := writeConfig(t, `
db_path: /var/lib/keepsake/dates.db
timezone: UTC
tick_time: "08:30"
feb29_fallback: mar1
tiers:
  - label: fortnight
    days: 14
  - label: today
    days: 0
`)
	c, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.DBPath != "/var/lib/keepsake/dates.db" {
		t.Errorf("db_path = %q", c.DBPath)
	}
	if c.TickTime != "08:30" {
		t.Errorf("tick_time = %q", c.TickTime)
	}
	// Unset fields fall back to defaults.
	if c.LogLevel != "info" {
		t.Errorf("log_level = %q, want info", c.LogLevel)
	}

	policy, err := c.Policy()
	if err != nil {
		t.Fatalf("policy: %v", err)
	}
	if _, ok := policy.TierFor(14); !ok {
		t.Error("custom tier not active")
	}
	if _, ok := policy.TierFor(30); ok {
		t.Error("default month tier should be replaced")
	}
}

func TestLoadRejectsBadTimezone(t *testing.T) {
	path := writeConfig(t, "timezone: Mars/Olympus\n")
	if _, err := Load(path); err == nil {
		t.Error("invalid timezone should fail")
	}
}

func TestLoadRejectsBadFeb29Fallback(t *testing.T) {
	path := writeConfig(t, "feb29_fallback: skip\n")
	if _, err := Load(path); err == nil {
		t.Error("invalid feb29_fallback should fail")
	}
}

func TestLoadRejectsDuplicateTiers(t *testing.T) {
	path := writeConfig(t, `
tiers:
  - label: a
    days: 7
  - label: b
    days: 7
`)
	if _, err := Load(path); err == nil {
		t.Error("duplicate tier day counts should fail")
	}
}

func TestLoadRejectsIncompleteBackup(t *testing.T) {
	path := writeConfig(t, `
backup:
  enabled: true
  bucket: keepsake-backups
`)
	if _, err := Load(path); err == nil {
		t.Error("backup without passphrase should fail")
	}
}

func TestBackupIntervalDefault(t *testing.T) {
	path := writeConfig(t, `
backup:
  enabled: true
  bucket: keepsake-backups
  passphrase: hunter2
`)
	c, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := c.BackupInterval().Hours(); got != 24 {
		t.Errorf("interval = %v hours, want 24", got)
	}
}
