package notifications

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryStore is an in-process Store. It backs the "memory" driver and the
// engine tests. Rows vanish on restart.
type MemoryStore struct {
	mu     sync.Mutex
	closed bool

	nextID    int64
	rows      []memoryRow
	usernames map[int64]string
}

type memoryRow struct {
	id int64
	n  Notification
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1, usernames: make(map[int64]string)}
}

func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *MemoryStore) RecordUsername(_ context.Context, userID int64, login string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.usernames[userID] = login
	return nil
}

func (m *MemoryStore) RecordNotification(_ context.Context, n Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if n.Time.IsZero() {
		n.Time = time.Now()
	}
	m.rows = append(m.rows, memoryRow{id: m.nextID, n: n})
	m.nextID++
	return nil
}

func (m *MemoryStore) DeleteNotification(_ context.Context, userID int64, ident Identifier) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}

	keep := m.rows[:0]
	switch k := ident.(type) {
	case ByID:
		for _, r := range m.rows {
			if r.id == int64(k) && r.n.UserID == userID {
				continue
			}
			keep = append(keep, r)
		}
	case ByURL:
		for _, r := range m.rows {
			if r.n.UserID == userID && r.n.OriginURL == string(k) {
				continue
			}
			keep = append(keep, r)
		}
	default:
		return fmt.Errorf("unhandled identifier %T", ident)
	}
	m.rows = keep
	return nil
}

func (m *MemoryStore) NotificationsForLogin(_ context.Context, login string) ([]Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}

	var out []Notification
	for _, r := range m.rows {
		if m.usernames[r.n.UserID] == login {
			out = append(out, r.n)
		}
	}
	return out, nil
}

func (m *MemoryStore) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, ErrClosed
	}

	var removed int64
	keep := m.rows[:0]
	for _, r := range m.rows {
		if r.n.Time.Before(cutoff) {
			removed++
			continue
		}
		keep = append(keep, r)
	}
	m.rows = keep
	return removed, nil
}

// Username reports the recorded display login for a user id.
// Test helper; the engine never reads this back.
func (m *MemoryStore) Username(userID int64) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	login, ok := m.usernames[userID]
	return login, ok
}

// All returns a snapshot of every recorded notification in insertion order.
// Test helper.
func (m *MemoryStore) All() []Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Notification, 0, len(m.rows))
	for _, r := range m.rows {
		out = append(out, r.n)
	}
	return out
}
