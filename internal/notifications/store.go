package notifications

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	logx "mentionbot/pkg/logx"
)

// ErrClosed is returned by store operations after Close.
var ErrClosed = errors.New("notification store closed")

// Config configures the ledger backing store.
//
// Driver values:
//   - "sqlite": SQLite database file (default when Path is set)
//   - "memory": in-process store, lost on restart
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default
}

// Store is the persistence contract the ping orchestrator requires.
//
// Contract:
//   - Every operation is independently transactional. Callers do not get,
//     and must not expect, cross-call atomicity: a failure recording one
//     user never undoes the record for another.
//   - DeleteNotification of a missing row is a no-op, not an error.
//   - RecordUsername is an idempotent upsert.
//   - Concurrent calls from independent events must be safe; the store
//     serializes individual writes.
type Store interface {
	RecordUsername(ctx context.Context, userID int64, login string) error
	RecordNotification(ctx context.Context, n Notification) error
	DeleteNotification(ctx context.Context, userID int64, ident Identifier) error

	// NotificationsForLogin returns the recorded pings for a login in
	// insertion order. This is the read path the external delivery/digest
	// subsystem consumes; the engine itself never reads back its writes.
	NotificationsForLogin(ctx context.Context, login string) ([]Notification, error)

	// DeleteOlderThan prunes rows with a time before cutoff and reports
	// how many were removed.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)

	Close() error
}

// Open initializes the configured store.
func Open(cfg Config, log logx.Logger) (Store, error) {
	if log.IsZero() {
		log = logx.Nop()
	}

	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	if driver == "" && strings.TrimSpace(cfg.Path) != "" {
		driver = "sqlite"
	}

	switch driver {
	case "sqlite":
		return openSQLite(cfg, log)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown notification store driver %q", cfg.Driver)
	}
}
