package notifications

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	logx "mentionbot/pkg/logx"
)

//go:embed migrations.sql
var migrationsFS embed.FS

type sqliteStore struct {
	db  *sqlx.DB
	log logx.Logger
}

func openSQLite(cfg Config, log logx.Logger) (Store, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	path := cfg.Path
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// SQLite prefers a small number of concurrent writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	// Basic pragmas.
	if cfg.BusyTimeout > 0 {
		ms := cfg.BusyTimeout.Milliseconds()
		_, _ = db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", ms))
	}
	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL")

	st := &sqliteStore{db: db, log: log}
	if err := st.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return st, nil
}

func (s *sqliteStore) migrate(ctx context.Context) error {
	b, err := migrationsFS.ReadFile("migrations.sql")
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, string(b))
	return err
}

func (s *sqliteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *sqliteStore) RecordUsername(ctx context.Context, userID int64, login string) error {
	if s == nil || s.db == nil {
		return ErrClosed
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users(user_id, username) VALUES(?,?)
		 ON CONFLICT(user_id) DO UPDATE SET username=excluded.username`,
		userID, login,
	)
	return err
}

func (s *sqliteStore) RecordNotification(ctx context.Context, n Notification) error {
	if s == nil || s.db == nil {
		return ErrClosed
	}
	t := n.Time
	if t.IsZero() {
		t = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO notifications(user_id, origin_url, origin_html, time, short_description, team_name)
		 VALUES(?,?,?,?,?,?)`,
		n.UserID, n.OriginURL, n.OriginHTML, t.UnixNano(),
		nullStr(n.ShortDescription), nullStr(n.TeamName),
	)
	return err
}

func (s *sqliteStore) DeleteNotification(ctx context.Context, userID int64, ident Identifier) error {
	if s == nil || s.db == nil {
		return ErrClosed
	}

	// Zero rows affected means the notification was never recorded or is
	// already gone; both count as success.
	switch k := ident.(type) {
	case ByID:
		_, err := s.db.ExecContext(ctx,
			`DELETE FROM notifications WHERE notification_id = ? AND user_id = ?`,
			int64(k), userID,
		)
		return err
	case ByURL:
		_, err := s.db.ExecContext(ctx,
			`DELETE FROM notifications WHERE user_id = ? AND origin_url = ?`,
			userID, string(k),
		)
		return err
	}
	return fmt.Errorf("unhandled identifier %T", ident)
}

// notificationRow is the sqlite row shape; time round-trips through Unix
// nanoseconds so range comparisons stay sound.
type notificationRow struct {
	NotificationID   int64   `db:"notification_id"`
	UserID           int64   `db:"user_id"`
	OriginURL        string  `db:"origin_url"`
	OriginHTML       string  `db:"origin_html"`
	TimeNanos        int64   `db:"time"`
	ShortDescription *string `db:"short_description"`
	TeamName         *string `db:"team_name"`
}

func (r notificationRow) toNotification() Notification {
	t := time.Unix(0, r.TimeNanos).UTC()
	return Notification{
		UserID:           r.UserID,
		OriginURL:        r.OriginURL,
		OriginHTML:       r.OriginHTML,
		Time:             t,
		ShortDescription: r.ShortDescription,
		TeamName:         r.TeamName,
	}
}

func (s *sqliteStore) NotificationsForLogin(ctx context.Context, login string) ([]Notification, error) {
	if s == nil || s.db == nil {
		return nil, ErrClosed
	}

	var rows []notificationRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT n.notification_id, n.user_id, n.origin_url, n.origin_html, n.time, n.short_description, n.team_name
		 FROM notifications n
		 JOIN users u ON u.user_id = n.user_id
		 WHERE u.username = ?
		 ORDER BY n.notification_id`,
		login,
	)
	if err != nil {
		return nil, err
	}

	out := make([]Notification, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toNotification())
	}
	return out, nil
}

func (s *sqliteStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	if s == nil || s.db == nil {
		return 0, ErrClosed
	}
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM notifications WHERE time < ?`,
		cutoff.UnixNano(),
	)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return n, nil
}

func nullStr(v *string) any {
	if v == nil || strings.TrimSpace(*v) == "" {
		return nil
	}
	return *v
}
