// Package pings turns mention tokens in event bodies into durable
// notification rows and retracts them again on acknowledgement.
//
// The orchestration reconciles three independently fallible steps (pattern
// match, directory resolution, ledger write) under one policy: every
// failure is logged and scoped to a single mention or acknowledgement;
// nothing aborts the rest of the event. Each fallible call below is
// matched at the call site so that policy is visible, not accidental.
package pings

import (
	"context"
	"strings"

	"mentionbot/internal/github"
	"mentionbot/internal/notifications"
	"mentionbot/internal/scanner"
	logx "mentionbot/pkg/logx"
)

// Directory resolves mention tokens to identities.
// Absence is not an error: an unknown login reports found=false and an
// unknown team reports a nil Team, both with a nil error.
type Directory interface {
	UserID(ctx context.Context, login string) (id int64, found bool, err error)
	Team(ctx context.Context, name string) (*github.Team, error)
}

// Handler processes one event end to end: acknowledgement pass, event
// gate, then the mention pass. Handlers are stateless across events and
// safe for concurrent use; per-event state (the seen-id set) lives on the
// stack of HandleEvent.
type Handler struct {
	directory Directory
	store     notifications.Store
	log       logx.Logger
}

func NewHandler(directory Directory, store notifications.Store, log logx.Logger) *Handler {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Handler{directory: directory, store: store, log: log}
}

// HandleEvent runs the ping engine over a single event.
//
// It returns an error only when the event is structurally unusable (nil);
// every per-mention failure is logged and swallowed so one bad token never
// blocks its siblings.
func (h *Handler) HandleEvent(ctx context.Context, ev github.Event) error {
	if ev == nil {
		return nil
	}
	body, ok := ev.Body()
	if !ok {
		// Nothing to scan, nothing to acknowledge.
		return nil
	}

	// Acknowledgements run for every event with a body, gated or not, so
	// an edit can always retract earlier notifications.
	h.acknowledge(ctx, ev, body)

	if !shouldProcess(ev) {
		return nil
	}

	originURL, ok := ev.HTMLURL()
	if !ok {
		// No origin identity means nothing we record could ever be
		// acknowledged; skip the mention pass entirely.
		h.log.Warn("event has a body but no html url; skipping mention pass")
		return nil
	}

	desc := shortDescription(ev)
	eventTime := ev.Time()

	tokens := scanner.Mentions(body)
	if h.log.Enabled(logx.LevelTrace) && len(tokens) > 0 {
		h.log.Trace("captured mention tokens", logx.String("tokens", strings.Join(tokens, ",")))
	}

	// Dedup by resolved numeric id across every token of this event: the
	// same person reachable via a team and a direct mention gets exactly
	// one row, and the first token seen decides its team_name.
	notified := make(map[int64]struct{})

	for _, token := range tokens {
		for _, tgt := range h.resolve(ctx, token) {
			if _, dup := notified[tgt.id]; dup {
				continue
			}
			notified[tgt.id] = struct{}{}

			if err := h.store.RecordUsername(ctx, tgt.id, tgt.login); err != nil {
				h.log.Error("record username failed",
					logx.String("login", tgt.login),
					logx.Int64("user_id", tgt.id),
					logx.Err(err),
				)
			}

			n := notifications.Notification{
				UserID:           tgt.id,
				OriginURL:        originURL,
				OriginHTML:       body,
				Time:             eventTime,
				ShortDescription: optional(desc),
				TeamName:         tgt.teamName,
			}
			if err := h.store.RecordNotification(ctx, n); err != nil {
				h.log.Error("record ping failed",
					logx.String("login", tgt.login),
					logx.Int64("user_id", tgt.id),
					logx.String("origin_url", originURL),
					logx.Err(err),
				)
			}
		}
	}

	return nil
}

// target is one (id, login) pair a mention token resolved to, tagged with
// the team display name when it came from a team reference.
type target struct {
	id       int64
	login    string
	teamName *string
}

// resolve expands a raw mention token into zero or more targets.
// All failure modes end here: they are logged and produce fewer targets,
// never an error for the caller.
func (h *Handler) resolve(ctx context.Context, token string) []target {
	if !strings.Contains(token, "/") {
		id, found, err := h.directory.UserID(ctx, token)
		if err != nil {
			h.log.Error("mention failed to resolve", logx.String("login", token), logx.Err(err))
			return nil
		}
		if !found {
			h.log.Trace("skipping mention because no id found", logx.String("login", token))
			return nil
		}
		return []target{{id: id, login: token}}
	}

	// Team ping: one row per member, all marked with the team name so
	// delivery can later treat "everyone must pay attention" differently
	// from "someone must look". The namespace segment is ignored.
	_, teamSegment := scanner.SplitTeamToken(token)
	team, err := h.directory.Team(ctx, teamSegment)
	if err != nil {
		h.log.Error("team ping failed to resolve to a known team", logx.String("team", token), logx.Err(err))
		return nil
	}
	if team == nil {
		h.log.Error("team ping failed to resolve to a known team", logx.String("team", token))
		return nil
	}

	out := make([]target, 0, len(team.Members))
	for _, member := range team.Members {
		id, err := github.ToLedgerID(member.GitHubID)
		if err != nil {
			// One oversized id skips that member only; the rest of the
			// roster still gets notified.
			h.log.Error("skipping team member",
				logx.String("team", team.Name),
				logx.String("login", member.Login),
				logx.Err(err),
			)
			continue
		}
		out = append(out, target{id: id, login: member.Login, teamName: &team.Name})
	}
	return out
}

// acknowledge deletes any notification the acting user recorded at each
// acknowledged URL. Failures are logged and never block the event.
func (h *Handler) acknowledge(ctx context.Context, ev github.Event, body string) {
	urls := scanner.Acknowledgements(body)
	if len(urls) == 0 {
		return
	}

	actor := ev.Actor()
	if h.log.Enabled(logx.LevelTrace) {
		h.log.Trace("captured acknowledgements",
			logx.String("urls", strings.Join(urls, ",")),
			logx.String("actor", actor.Login),
		)
	}

	if actor.ID == nil {
		h.log.Trace("skipping acknowledgements because actor has no id", logx.String("actor", actor.Login))
		return
	}

	for _, u := range urls {
		if err := h.store.DeleteNotification(ctx, *actor.ID, notifications.ByURL(u)); err != nil {
			h.log.Warn("failed to delete notification",
				logx.String("url", u),
				logx.String("actor", actor.Login),
				logx.Err(err),
			)
		}
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
