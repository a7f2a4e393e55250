package app

import (
	"time"

	"mentionbot/internal/config"
	"mentionbot/internal/github"
	"mentionbot/internal/notifications"
	"mentionbot/internal/server"
)

func mapServerConfig(cfg *config.Config) (server.Config, error) {
	readTimeout, err := config.ParseDurationOrDefault("server.read_timeout", cfg.Server.ReadTimeout, 10*time.Second)
	if err != nil {
		return server.Config{}, err
	}
	writeTimeout, err := config.ParseDurationOrDefault("server.write_timeout", cfg.Server.WriteTimeout, 30*time.Second)
	if err != nil {
		return server.Config{}, err
	}
	idleTimeout, err := config.ParseDurationOrDefault("server.idle_timeout", cfg.Server.IdleTimeout, time.Minute)
	if err != nil {
		return server.Config{}, err
	}
	return server.Config{
		Addr:          cfg.Server.Addr,
		WebhookSecret: cfg.Server.WebhookSecret,
		ReadTimeout:   readTimeout,
		WriteTimeout:  writeTimeout,
		IdleTimeout:   idleTimeout,
	}, nil
}

func mapStorageConfig(cfg *config.Config) (notifications.Config, error) {
	busyTimeout, err := config.ParseDurationOrDefault("storage.busy_timeout", cfg.Storage.BusyTimeout, 0)
	if err != nil {
		return notifications.Config{}, err
	}
	return notifications.Config{
		Driver:      cfg.Storage.Driver,
		Path:        cfg.Storage.Path,
		BusyTimeout: busyTimeout,
	}, nil
}

func mapDirectoryConfig(cfg *config.Config) (github.Config, error) {
	requestTimeout, err := config.ParseDurationOrDefault("github.request_timeout", cfg.GitHub.RequestTimeout, 0)
	if err != nil {
		return github.Config{}, err
	}
	return github.Config{
		APIBase:        cfg.GitHub.APIBase,
		TeamAPIBase:    cfg.GitHub.TeamAPIBase,
		Token:          cfg.GitHub.Token,
		RatePerSec:     cfg.GitHub.RatePerSec,
		RequestTimeout: requestTimeout,
	}, nil
}

type retentionSettings struct {
	enabled  bool
	schedule string
	maxAge   time.Duration
}

func mapRetentionConfig(cfg *config.Config) (retentionSettings, error) {
	r := cfg.Retention
	if r == nil || !r.Enabled {
		return retentionSettings{}, nil
	}
	maxAge, err := config.ParseDurationField("retention.max_age", r.MaxAge)
	if err != nil {
		return retentionSettings{}, err
	}
	schedule := r.Schedule
	if schedule == "" {
		schedule = "0 3 * * *"
	}
	return retentionSettings{enabled: true, schedule: schedule, maxAge: maxAge}, nil
}
