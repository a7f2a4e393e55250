package pings

import (
	"fmt"

	"mentionbot/internal/github"
)

// shouldProcess gates the mention pass.
//
// Issues run only on "opened" and comments only on "created": re-running on
// edits would re-notify everyone on every touch of the body. A comment edit
// that introduces a brand-new mention is therefore not picked up — known
// gap, accepted until per-mention tracking exists.
//
// The acknowledgement pass is deliberately NOT behind this gate; edits must
// always be able to retract prior notifications.
func shouldProcess(ev github.Event) bool {
	switch e := ev.(type) {
	case *github.IssueEvent:
		return e.Action == github.IssuesOpened
	case *github.IssueCommentEvent:
		return e.Action == github.IssueCommentCreated
	}
	return false
}

// shortDescription is the human-readable context stored with each ping.
func shortDescription(ev github.Event) string {
	switch e := ev.(type) {
	case *github.IssueEvent:
		return e.Issue.Title
	case *github.IssueCommentEvent:
		return fmt.Sprintf("Comment on %s", e.Issue.Title)
	}
	return ""
}
