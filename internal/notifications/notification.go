// Package notifications is the durable ledger of mention pings.
//
// The engine appends rows when a mention resolves to a user id and deletes
// them when the author acknowledges the origin URL. A separate delivery
// subsystem consumes the rows; this package only owns the record/delete
// contract and the read path delivery uses.
package notifications

import "time"

// Notification is one recorded ping.
//
// Identity for deletion is (UserID, OriginURL). OriginHTML, Time and
// ShortDescription are informational payload and never part of identity.
// TeamName is set when the ping came from a team mention and nil for a
// direct mention; delivery may later prioritize on that distinction.
type Notification struct {
	UserID           int64     `db:"user_id"`
	OriginURL        string    `db:"origin_url"`
	OriginHTML       string    `db:"origin_html"`
	Time             time.Time `db:"-"`
	ShortDescription *string   `db:"short_description"`
	TeamName         *string   `db:"team_name"`
}

// Identifier locates a notification for deletion independent of how it was
// created. Closed union: exactly ByID (ledger row id) and ByURL
// (structural (user_id, origin_url) key, with the user id supplied
// alongside the delete call).
type Identifier interface {
	isIdentifier()
}

// ByID identifies a notification by its ledger row id.
type ByID int64

func (ByID) isIdentifier() {}

// ByURL identifies a notification by its origin URL.
type ByURL string

func (ByURL) isIdentifier() {}
