package pings

import (
	"testing"

	"mentionbot/internal/github"
)

func TestShouldProcess(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		ev   github.Event
		want bool
	}{
		{name: "issue opened", ev: &github.IssueEvent{Action: github.IssuesOpened}, want: true},
		{name: "issue edited", ev: &github.IssueEvent{Action: github.IssuesEdited}, want: false},
		{name: "issue closed", ev: &github.IssueEvent{Action: github.IssuesClosed}, want: false},
		{name: "issue reopened", ev: &github.IssueEvent{Action: github.IssuesReopened}, want: false},
		{name: "comment created", ev: &github.IssueCommentEvent{Action: github.IssueCommentCreated}, want: true},
		{name: "comment edited", ev: &github.IssueCommentEvent{Action: github.IssueCommentEdited}, want: false},
		{name: "comment deleted", ev: &github.IssueCommentEvent{Action: github.IssueCommentDeleted}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := shouldProcess(tt.ev); got != tt.want {
				t.Fatalf("shouldProcess(%s) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestShortDescription(t *testing.T) {
	t.Parallel()
	issue := &github.IssueEvent{Action: github.IssuesOpened, Issue: github.Issue{Title: "Broken build"}}
	if got := shortDescription(issue); got != "Broken build" {
		t.Fatalf("issue description = %q, want the issue title", got)
	}

	comment := &github.IssueCommentEvent{Action: github.IssueCommentCreated, Issue: github.Issue{Title: "Broken build"}}
	if got := shortDescription(comment); got != "Comment on Broken build" {
		t.Fatalf("comment description = %q, want %q", got, "Comment on Broken build")
	}
}
