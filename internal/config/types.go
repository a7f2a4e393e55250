package config

type Config struct {
	Server  ServerConfig  `json:"server"`
	Logging LoggingConfig `json:"logging"`
	GitHub  GitHubConfig  `json:"github"`
	Storage StorageConfig `json:"storage"`

	// Retention controls background pruning of old notification rows.
	// If omitted, pruning is disabled and rows live until acknowledged
	// or consumed by the delivery side.
	Retention *RetentionConfig `json:"retention,omitempty"`
}

// ServerConfig controls the webhook receiver HTTP server.
//
// All durations are Go duration strings (e.g. "500ms", "10s", "1m").
//
// Security note:
//   - Set webhook_secret so inbound payloads are verified against
//     X-Hub-Signature-256. Leaving it empty disables verification and
//     should only be done behind a trusted proxy.
type ServerConfig struct {
	Addr          string `json:"addr,omitempty"` // default: "127.0.0.1:8080"
	WebhookSecret string `json:"webhook_secret,omitempty"`

	ReadTimeout  string `json:"read_timeout,omitempty"`
	WriteTimeout string `json:"write_timeout,omitempty"`
	IdleTimeout  string `json:"idle_timeout,omitempty"`
}

// GitHubConfig controls the identity directory client.
//
// APIBase is the REST endpoint used to resolve user logins to numeric ids.
// TeamAPIBase is the endpoint serving team rosters
// (GET <team_api_base>/v1/teams/<name>.json).
type GitHubConfig struct {
	APIBase     string `json:"api_base,omitempty"`      // default: "https://api.github.com"
	TeamAPIBase string `json:"team_api_base,omitempty"` // default: "https://team-api.infra.rust-lang.org"
	Token       string `json:"token,omitempty"`         // optional bearer token (do not log)

	// RatePerSec caps outbound directory lookups. 0 means default (5/s).
	RatePerSec int `json:"rate_per_sec,omitempty"`

	// RequestTimeout is a Go duration string. 0 means default (30s).
	RequestTimeout string `json:"request_timeout,omitempty"`
}

// StorageConfig controls the notification ledger backing store.
//
// Driver values:
//   - "sqlite": SQLite database file (default)
//   - "memory": in-process store, lost on restart (useful for dev/tests)
type StorageConfig struct {
	Driver      string `json:"driver"`
	Path        string `json:"path"`
	BusyTimeout string `json:"busy_timeout,omitempty"` // Go duration string (sqlite)
}

// RetentionConfig controls cron-driven pruning of notification rows.
type RetentionConfig struct {
	Enabled bool `json:"enabled"`
	// Schedule is a cron expression (e.g. "0 3 * * *"). Default: daily at 03:00.
	Schedule string `json:"schedule,omitempty"`
	// MaxAge is a Go duration string; rows older than this are deleted.
	MaxAge string `json:"max_age"`
}

type LoggingConfig struct {
	Level   string      `json:"level"`
	Console bool        `json:"console"`
	File    LoggingFile `json:"file"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}
