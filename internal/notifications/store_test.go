package notifications

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	logx "mentionbot/pkg/logx"
)

func strptr(s string) *string { return &s }

// openStores builds one store per driver so every contract test runs
// against both backends.
func openStores(t *testing.T) map[string]Store {
	t.Helper()

	sqlite, err := Open(Config{
		Driver:      "sqlite",
		Path:        filepath.Join(t.TempDir(), "ledger.db"),
		BusyTimeout: time.Second,
	}, logx.Nop())
	if err != nil {
		t.Fatalf("opening sqlite store: %v", err)
	}
	t.Cleanup(func() { sqlite.Close() })

	mem, err := Open(Config{Driver: "memory"}, logx.Nop())
	if err != nil {
		t.Fatalf("opening memory store: %v", err)
	}
	t.Cleanup(func() { mem.Close() })

	return map[string]Store{"sqlite": sqlite, "memory": mem}
}

func TestRecordAndListForLogin(t *testing.T) {
	t.Parallel()
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if err := store.RecordUsername(ctx, 7, "alice"); err != nil {
				t.Fatalf("RecordUsername: %v", err)
			}
			if err := store.RecordUsername(ctx, 9, "bob"); err != nil {
				t.Fatalf("RecordUsername: %v", err)
			}

			base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
			for i, n := range []Notification{
				{UserID: 7, OriginURL: "https://example.com/1", OriginHTML: "first", Time: base, ShortDescription: strptr("Issue one")},
				{UserID: 9, OriginURL: "https://example.com/1", OriginHTML: "first", Time: base, TeamName: strptr("core team")},
				{UserID: 7, OriginURL: "https://example.com/2", OriginHTML: "second", Time: base.Add(time.Hour)},
			} {
				if err := store.RecordNotification(ctx, n); err != nil {
					t.Fatalf("RecordNotification #%d: %v", i, err)
				}
			}

			got, err := store.NotificationsForLogin(ctx, "alice")
			if err != nil {
				t.Fatalf("NotificationsForLogin: %v", err)
			}
			if len(got) != 2 {
				t.Fatalf("alice has %d notifications, want 2", len(got))
			}
			if got[0].OriginURL != "https://example.com/1" || got[1].OriginURL != "https://example.com/2" {
				t.Fatalf("notifications out of insertion order: %+v", got)
			}
			if got[0].ShortDescription == nil || *got[0].ShortDescription != "Issue one" {
				t.Fatalf("short description = %v, want %q", got[0].ShortDescription, "Issue one")
			}
			if got[0].TeamName != nil {
				t.Fatalf("team name = %v, want nil", got[0].TeamName)
			}
			if !got[0].Time.Equal(base) {
				t.Fatalf("time = %v, want %v", got[0].Time, base)
			}

			if got, err := store.NotificationsForLogin(ctx, "nobody"); err != nil || len(got) != 0 {
				t.Fatalf("unknown login = (%v, %v), want empty", got, err)
			}
		})
	}
}

func TestRecordUsernameIsAnUpsert(t *testing.T) {
	t.Parallel()
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if err := store.RecordUsername(ctx, 7, "alice"); err != nil {
				t.Fatalf("RecordUsername: %v", err)
			}
			if err := store.RecordNotification(ctx, Notification{UserID: 7, OriginURL: "u", OriginHTML: "h"}); err != nil {
				t.Fatalf("RecordNotification: %v", err)
			}

			// Login rename: old rows must surface under the new login.
			if err := store.RecordUsername(ctx, 7, "alice-renamed"); err != nil {
				t.Fatalf("RecordUsername rename: %v", err)
			}
			got, err := store.NotificationsForLogin(ctx, "alice-renamed")
			if err != nil || len(got) != 1 {
				t.Fatalf("after rename = (%v, %v), want 1 row", got, err)
			}
			if got, _ := store.NotificationsForLogin(ctx, "alice"); len(got) != 0 {
				t.Fatalf("old login still resolves to %d rows", len(got))
			}
		})
	}
}

func TestDeleteByURLScopedToUser(t *testing.T) {
	t.Parallel()
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for id, login := range map[int64]string{7: "alice", 9: "bob"} {
				if err := store.RecordUsername(ctx, id, login); err != nil {
					t.Fatalf("RecordUsername: %v", err)
				}
				if err := store.RecordNotification(ctx, Notification{UserID: id, OriginURL: "https://example.com/1", OriginHTML: "x"}); err != nil {
					t.Fatalf("RecordNotification: %v", err)
				}
			}

			if err := store.DeleteNotification(ctx, 7, ByURL("https://example.com/1")); err != nil {
				t.Fatalf("DeleteNotification: %v", err)
			}

			if got, _ := store.NotificationsForLogin(ctx, "alice"); len(got) != 0 {
				t.Fatalf("alice still has %d rows after delete", len(got))
			}
			if got, _ := store.NotificationsForLogin(ctx, "bob"); len(got) != 1 {
				t.Fatalf("bob has %d rows, want 1 (delete must not cross users)", len(got))
			}
		})
	}
}

func TestDeleteMissingRowIsSuccess(t *testing.T) {
	t.Parallel()
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if err := store.DeleteNotification(ctx, 7, ByURL("https://example.com/never")); err != nil {
				t.Fatalf("delete by url of missing row: %v", err)
			}
			if err := store.DeleteNotification(ctx, 7, ByID(12345)); err != nil {
				t.Fatalf("delete by id of missing row: %v", err)
			}
		})
	}
}

func TestDeleteOlderThan(t *testing.T) {
	t.Parallel()
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if err := store.RecordUsername(ctx, 7, "alice"); err != nil {
				t.Fatalf("RecordUsername: %v", err)
			}

			base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
			for _, n := range []Notification{
				{UserID: 7, OriginURL: "old-1", OriginHTML: "x", Time: base.Add(-48 * time.Hour)},
				{UserID: 7, OriginURL: "old-2", OriginHTML: "x", Time: base.Add(-25 * time.Hour)},
				{UserID: 7, OriginURL: "fresh", OriginHTML: "x", Time: base.Add(-time.Hour)},
			} {
				if err := store.RecordNotification(ctx, n); err != nil {
					t.Fatalf("RecordNotification: %v", err)
				}
			}

			removed, err := store.DeleteOlderThan(ctx, base.Add(-24*time.Hour))
			if err != nil {
				t.Fatalf("DeleteOlderThan: %v", err)
			}
			if removed != 2 {
				t.Fatalf("removed = %d, want 2", removed)
			}

			got, err := store.NotificationsForLogin(ctx, "alice")
			if err != nil || len(got) != 1 || got[0].OriginURL != "fresh" {
				t.Fatalf("surviving rows = (%v, %v), want just the fresh one", got, err)
			}
		})
	}
}

func TestSQLiteReopensWithDataIntact(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "ledger.db")
	ctx := context.Background()

	store, err := Open(Config{Driver: "sqlite", Path: path}, logx.Nop())
	if err != nil {
		t.Fatalf("opening sqlite store: %v", err)
	}
	if err := store.RecordUsername(ctx, 7, "alice"); err != nil {
		t.Fatalf("RecordUsername: %v", err)
	}
	if err := store.RecordNotification(ctx, Notification{UserID: 7, OriginURL: "u", OriginHTML: "h"}); err != nil {
		t.Fatalf("RecordNotification: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := Open(Config{Driver: "sqlite", Path: path}, logx.Nop())
	if err != nil {
		t.Fatalf("reopening sqlite store: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.NotificationsForLogin(ctx, "alice")
	if err != nil || len(got) != 1 {
		t.Fatalf("after reopen = (%v, %v), want 1 row", got, err)
	}
}

func TestMemoryStoreRejectsUseAfterClose(t *testing.T) {
	t.Parallel()
	store := NewMemoryStore()
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := store.RecordUsername(context.Background(), 1, "x"); err != ErrClosed {
		t.Fatalf("RecordUsername after close = %v, want ErrClosed", err)
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	t.Parallel()
	if _, err := Open(Config{Driver: "postgres"}, logx.Nop()); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}
