package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	logx "mentionbot/pkg/logx"
)

const (
	defaultAPIBase     = "https://api.github.com"
	defaultTeamAPIBase = "https://team-api.infra.rust-lang.org"

	defaultRatePerSec     = 5
	defaultRequestTimeout = 30 * time.Second
)

// Team is a directory team: display name plus the authoritative member
// list at resolution time. Membership is never cached between events.
type Team struct {
	Name    string       `json:"name"`
	Members []TeamMember `json:"members"`
}

// TeamMember carries the directory's native id representation.
// Convert with ToLedgerID before handing the id to the ledger.
type TeamMember struct {
	Login    string `json:"github"`
	GitHubID uint64 `json:"github_id"`
}

// ToLedgerID converts a directory-native id to the ledger's signed id type.
// Ids outside the signed range fail closed: the caller skips that one user
// and keeps going with the rest of the batch.
func ToLedgerID(raw uint64) (int64, error) {
	if raw > math.MaxInt64 {
		return 0, fmt.Errorf("user id %d out of bounds", raw)
	}
	return int64(raw), nil
}

// Config configures the directory client.
type Config struct {
	APIBase     string
	TeamAPIBase string
	Token       string

	RatePerSec     int           // 0 means default (5/s)
	RequestTimeout time.Duration // 0 means default (30s)
}

// Client resolves logins and team names against the identity directory.
//
// Error contract (spec'd by the pings package):
//   - absence (unknown login/team) is NOT an error; it returns the zero
//     result with a nil error
//   - transport/protocol failures are errors
type Client struct {
	apiBase     string
	teamAPIBase string
	token       string

	httpClient *http.Client
	limiter    *rate.Limiter
	log        logx.Logger
}

func NewClient(cfg Config, log logx.Logger) *Client {
	apiBase := strings.TrimRight(strings.TrimSpace(cfg.APIBase), "/")
	if apiBase == "" {
		apiBase = defaultAPIBase
	}
	teamAPIBase := strings.TrimRight(strings.TrimSpace(cfg.TeamAPIBase), "/")
	if teamAPIBase == "" {
		teamAPIBase = defaultTeamAPIBase
	}

	rps := cfg.RatePerSec
	if rps <= 0 {
		rps = defaultRatePerSec
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	if log.IsZero() {
		log = logx.Nop()
	}

	return &Client{
		apiBase:     apiBase,
		teamAPIBase: teamAPIBase,
		token:       cfg.Token,
		httpClient:  &http.Client{Timeout: timeout},
		limiter:     rate.NewLimiter(rate.Limit(rps), rps),
		log:         log,
	}
}

// UserID resolves a login to its numeric id.
// Returns (0, false, nil) when the login does not exist.
func (c *Client) UserID(ctx context.Context, login string) (int64, bool, error) {
	var body struct {
		Login string `json:"login"`
		ID    uint64 `json:"id"`
	}

	path := c.apiBase + "/users/" + url.PathEscape(login)
	found, err := c.getJSON(ctx, path, &body)
	if err != nil {
		return 0, false, fmt.Errorf("resolving user %q: %w", login, err)
	}
	if !found {
		c.log.Trace("login not found in directory", logx.String("login", login))
		return 0, false, nil
	}

	id, err := ToLedgerID(body.ID)
	if err != nil {
		return 0, false, fmt.Errorf("resolving user %q: %w", login, err)
	}
	return id, true, nil
}

// Team resolves a team name to its display name and member list.
// Returns (nil, nil) when no such team exists.
func (c *Client) Team(ctx context.Context, name string) (*Team, error) {
	var team Team

	path := c.teamAPIBase + "/v1/teams/" + url.PathEscape(name) + ".json"
	found, err := c.getJSON(ctx, path, &team)
	if err != nil {
		return nil, fmt.Errorf("resolving team %q: %w", name, err)
	}
	if !found {
		c.log.Trace("team not found in directory", logx.String("team", name))
		return nil, nil
	}
	return &team, nil
}

// getJSON performs a rate-limited GET and decodes the JSON response.
// A 404 reports (false, nil): absence, not failure.
func (c *Client) getJSON(ctx context.Context, rawURL string, out any) (bool, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return false, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		_, _ = io.Copy(io.Discard, resp.Body)
		return false, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return false, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, fmt.Errorf("decoding response: %w", err)
	}
	return true, nil
}
