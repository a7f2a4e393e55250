// Package github holds the normalized event model for inbound webhook
// payloads and the directory client used to resolve logins and team names
// to numeric ids.
package github

import "time"

// IssuesAction is the action field of an issues event.
type IssuesAction string

const (
	IssuesOpened   IssuesAction = "opened"
	IssuesEdited   IssuesAction = "edited"
	IssuesClosed   IssuesAction = "closed"
	IssuesReopened IssuesAction = "reopened"
)

// IssueCommentAction is the action field of an issue_comment event.
type IssueCommentAction string

const (
	IssueCommentCreated IssueCommentAction = "created"
	IssueCommentEdited  IssueCommentAction = "edited"
	IssueCommentDeleted IssueCommentAction = "deleted"
)

// User is an event actor or mention target. ID is nil until resolved
// against the directory; a user that never resolves is silently dropped
// from notification.
type User struct {
	Login string `json:"login"`
	ID    *int64 `json:"id,omitempty"`
}

// Issue is the issue payload shared by both event families.
type Issue struct {
	Title     string    `json:"title"`
	Body      *string   `json:"body"`
	HTMLURL   string    `json:"html_url"`
	User      User      `json:"user"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Comment is the comment payload of an issue_comment event.
type Comment struct {
	Body      *string   `json:"body"`
	HTMLURL   string    `json:"html_url"`
	User      User      `json:"user"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Event is the closed union of event families this engine understands.
//
// There are exactly two variants: IssueEvent and IssueCommentEvent.
// Code switching on the concrete type must list both cases and no default,
// so a third family forces every switch site to be revisited.
type Event interface {
	// Body returns the free-form text the engine scans, if the event
	// carries one.
	Body() (string, bool)
	// HTMLURL returns the canonical URL of the triggering object, if any.
	// It is the origin_url identity half of recorded notifications.
	HTMLURL() (string, bool)
	// Actor returns the user whose action produced the event.
	Actor() User
	// Time returns the event timestamp.
	Time() time.Time

	isEvent()
}

// IssueEvent is an issues webhook event (opened, edited, closed, ...).
type IssueEvent struct {
	Action IssuesAction `json:"action"`
	Issue  Issue        `json:"issue"`
}

func (*IssueEvent) isEvent() {}

func (e *IssueEvent) Body() (string, bool) {
	if e.Issue.Body == nil {
		return "", false
	}
	return *e.Issue.Body, true
}

func (e *IssueEvent) HTMLURL() (string, bool) {
	if e.Issue.HTMLURL == "" {
		return "", false
	}
	return e.Issue.HTMLURL, true
}

func (e *IssueEvent) Actor() User     { return e.Issue.User }
func (e *IssueEvent) Time() time.Time { return e.Issue.UpdatedAt }

// IssueCommentEvent is an issue_comment webhook event.
type IssueCommentEvent struct {
	Action  IssueCommentAction `json:"action"`
	Issue   Issue              `json:"issue"`
	Comment Comment            `json:"comment"`
}

func (*IssueCommentEvent) isEvent() {}

func (e *IssueCommentEvent) Body() (string, bool) {
	if e.Comment.Body == nil {
		return "", false
	}
	return *e.Comment.Body, true
}

func (e *IssueCommentEvent) HTMLURL() (string, bool) {
	if e.Comment.HTMLURL == "" {
		return "", false
	}
	return e.Comment.HTMLURL, true
}

func (e *IssueCommentEvent) Actor() User     { return e.Comment.User }
func (e *IssueCommentEvent) Time() time.Time { return e.Comment.UpdatedAt }
