package config

import (
	"sort"
	"strings"

	logx "mentionbot/pkg/logx"
)

// SummarizeConfigChange returns (1) a compact list of changed sections and
// (2) safe structured attrs for logging (never includes secrets like the
// GitHub token or the webhook secret).
func SummarizeConfigChange(oldCfg, newCfg *Config) ([]string, []logx.Field) {
	if oldCfg == nil {
		oldCfg = &Config{}
	}
	if newCfg == nil {
		newCfg = &Config{}
	}

	changed := make([]string, 0, 5)
	attrs := make([]logx.Field, 0, 16)

	// Server (never log webhook_secret)
	if strings.TrimSpace(oldCfg.Server.Addr) != strings.TrimSpace(newCfg.Server.Addr) ||
		oldCfg.Server.WebhookSecret != newCfg.Server.WebhookSecret ||
		strings.TrimSpace(oldCfg.Server.ReadTimeout) != strings.TrimSpace(newCfg.Server.ReadTimeout) ||
		strings.TrimSpace(oldCfg.Server.WriteTimeout) != strings.TrimSpace(newCfg.Server.WriteTimeout) ||
		strings.TrimSpace(oldCfg.Server.IdleTimeout) != strings.TrimSpace(newCfg.Server.IdleTimeout) {
		changed = append(changed, "server")
		attrs = append(attrs,
			logx.String("server.addr", strings.TrimSpace(newCfg.Server.Addr)),
			logx.Bool("server.webhook_secret_set", strings.TrimSpace(newCfg.Server.WebhookSecret) != ""),
		)
	}

	// Logging
	if oldCfg.Logging.Level != newCfg.Logging.Level ||
		oldCfg.Logging.Console != newCfg.Logging.Console ||
		oldCfg.Logging.File.Enabled != newCfg.Logging.File.Enabled ||
		strings.TrimSpace(oldCfg.Logging.File.Path) != strings.TrimSpace(newCfg.Logging.File.Path) {
		changed = append(changed, "logging")
		attrs = append(attrs,
			logx.String("logx.level", newCfg.Logging.Level),
			logx.Bool("logx.console", newCfg.Logging.Console),
			logx.Bool("logx.file_enabled", newCfg.Logging.File.Enabled),
		)
	}

	// GitHub (never log token)
	if strings.TrimSpace(oldCfg.GitHub.APIBase) != strings.TrimSpace(newCfg.GitHub.APIBase) ||
		strings.TrimSpace(oldCfg.GitHub.TeamAPIBase) != strings.TrimSpace(newCfg.GitHub.TeamAPIBase) ||
		oldCfg.GitHub.Token != newCfg.GitHub.Token ||
		oldCfg.GitHub.RatePerSec != newCfg.GitHub.RatePerSec ||
		strings.TrimSpace(oldCfg.GitHub.RequestTimeout) != strings.TrimSpace(newCfg.GitHub.RequestTimeout) {
		changed = append(changed, "github")
		attrs = append(attrs,
			logx.String("github.api_base", strings.TrimSpace(newCfg.GitHub.APIBase)),
			logx.Int("github.rate_per_sec", newCfg.GitHub.RatePerSec),
			logx.Bool("github.token_set", strings.TrimSpace(newCfg.GitHub.Token) != ""),
		)
	}

	// Storage
	if strings.TrimSpace(oldCfg.Storage.Driver) != strings.TrimSpace(newCfg.Storage.Driver) ||
		strings.TrimSpace(oldCfg.Storage.Path) != strings.TrimSpace(newCfg.Storage.Path) ||
		strings.TrimSpace(oldCfg.Storage.BusyTimeout) != strings.TrimSpace(newCfg.Storage.BusyTimeout) {
		changed = append(changed, "storage")
		attrs = append(attrs,
			logx.String("storage.driver", strings.TrimSpace(newCfg.Storage.Driver)),
			logx.Bool("storage.path_set", strings.TrimSpace(newCfg.Storage.Path) != ""),
		)
	}

	// Retention. Section may be nil (omitted); nil means disabled.
	oldRet := derefRetention(oldCfg.Retention)
	newRet := derefRetention(newCfg.Retention)
	if (oldCfg.Retention == nil) != (newCfg.Retention == nil) || oldRet != newRet {
		changed = append(changed, "retention")
		attrs = append(attrs,
			logx.Bool("retention.enabled", newRet.Enabled),
			logx.String("retention.schedule", strings.TrimSpace(newRet.Schedule)),
			logx.String("retention.max_age", strings.TrimSpace(newRet.MaxAge)),
		)
	}

	sort.Strings(changed)
	return changed, attrs
}

func derefRetention(r *RetentionConfig) RetentionConfig {
	if r == nil {
		return RetentionConfig{}
	}
	return *r
}
