package github

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	logx "mentionbot/pkg/logx"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{
		APIBase:     srv.URL,
		TeamAPIBase: srv.URL,
		RatePerSec:  1000,
	}, logx.Nop())
}

func TestUserID(t *testing.T) {
	t.Parallel()
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/users/alice":
			w.Write([]byte(`{"login":"alice","id":7}`))
		case "/users/ghost":
			http.NotFound(w, r)
		default:
			http.Error(w, "boom", http.StatusInternalServerError)
		}
	}))

	id, found, err := client.UserID(context.Background(), "alice")
	if err != nil || !found || id != 7 {
		t.Fatalf("UserID(alice) = (%d, %v, %v), want (7, true, nil)", id, found, err)
	}

	// Absence is not an error.
	id, found, err = client.UserID(context.Background(), "ghost")
	if err != nil || found || id != 0 {
		t.Fatalf("UserID(ghost) = (%d, %v, %v), want (0, false, nil)", id, found, err)
	}

	if _, _, err = client.UserID(context.Background(), "broken"); err == nil {
		t.Fatalf("expected error on server failure")
	}
}

func TestUserIDRejectsOutOfRangeID(t *testing.T) {
	t.Parallel()
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"login":"huge","id":9223372036854775808}`))
	}))

	if _, _, err := client.UserID(context.Background(), "huge"); err == nil {
		t.Fatalf("expected error for id above the signed range")
	}
}

func TestTeam(t *testing.T) {
	t.Parallel()
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/teams/core.json":
			w.Write([]byte(`{"name":"core team","members":[{"github":"alice","github_id":7},{"github":"bob","github_id":9}]}`))
		case "/v1/teams/nope.json":
			http.NotFound(w, r)
		default:
			http.Error(w, "boom", http.StatusInternalServerError)
		}
	}))

	team, err := client.Team(context.Background(), "core")
	if err != nil {
		t.Fatalf("Team(core): %v", err)
	}
	if team == nil || team.Name != "core team" || len(team.Members) != 2 {
		t.Fatalf("Team(core) = %+v", team)
	}
	if team.Members[0].Login != "alice" || team.Members[0].GitHubID != 7 {
		t.Fatalf("first member = %+v", team.Members[0])
	}

	team, err = client.Team(context.Background(), "nope")
	if err != nil || team != nil {
		t.Fatalf("Team(nope) = (%v, %v), want (nil, nil)", team, err)
	}

	if _, err = client.Team(context.Background(), "broken"); err == nil {
		t.Fatalf("expected error on server failure")
	}
}

func TestBearerTokenIsSent(t *testing.T) {
	t.Parallel()
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"login":"alice","id":7}`))
	}))
	t.Cleanup(srv.Close)

	client := NewClient(Config{APIBase: srv.URL, Token: "s3cret", RatePerSec: 1000}, logx.Nop())
	if _, _, err := client.UserID(context.Background(), "alice"); err != nil {
		t.Fatalf("UserID: %v", err)
	}
	if gotAuth != "Bearer s3cret" {
		t.Fatalf("Authorization = %q, want bearer token", gotAuth)
	}
}

func TestToLedgerID(t *testing.T) {
	t.Parallel()
	tests := []struct {
		raw     uint64
		want    int64
		wantErr bool
	}{
		{raw: 0, want: 0},
		{raw: 7, want: 7},
		{raw: math.MaxInt64, want: math.MaxInt64},
		{raw: math.MaxInt64 + 1, wantErr: true},
		{raw: math.MaxUint64, wantErr: true},
	}
	for _, tt := range tests {
		got, err := ToLedgerID(tt.raw)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ToLedgerID(%d) = %d, want error", tt.raw, got)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ToLedgerID(%d) = (%d, %v), want (%d, nil)", tt.raw, got, err, tt.want)
		}
	}
}
