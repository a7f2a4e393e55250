package config

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
)

// Validate rejects configs that would fail later at component start.
// It is installed as the ConfigManager validator so bad edits are refused
// at reload time instead of being half-applied.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	for _, f := range []struct{ path, raw string }{
		{"server.read_timeout", cfg.Server.ReadTimeout},
		{"server.write_timeout", cfg.Server.WriteTimeout},
		{"server.idle_timeout", cfg.Server.IdleTimeout},
		{"github.request_timeout", cfg.GitHub.RequestTimeout},
		{"storage.busy_timeout", cfg.Storage.BusyTimeout},
	} {
		if _, err := ParseDurationField(f.path, f.raw); err != nil {
			return err
		}
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Storage.Driver)) {
	case "", "sqlite", "memory":
	default:
		return fmt.Errorf("storage.driver: unknown driver %q", cfg.Storage.Driver)
	}
	if strings.EqualFold(strings.TrimSpace(cfg.Storage.Driver), "sqlite") && strings.TrimSpace(cfg.Storage.Path) == "" {
		return fmt.Errorf("storage.path: required for the sqlite driver")
	}

	if cfg.GitHub.RatePerSec < 0 {
		return fmt.Errorf("github.rate_per_sec: must be >= 0")
	}

	if r := cfg.Retention; r != nil && r.Enabled {
		maxAge, err := ParseDurationField("retention.max_age", r.MaxAge)
		if err != nil {
			return err
		}
		if maxAge <= 0 {
			return fmt.Errorf("retention.max_age: required when retention is enabled")
		}
		if s := strings.TrimSpace(r.Schedule); s != "" {
			if _, err := cron.ParseStandard(s); err != nil {
				return fmt.Errorf("retention.schedule: invalid cron expression %q: %w", s, err)
			}
		}
	}

	return nil
}
