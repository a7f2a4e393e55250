package scanner

import (
	"reflect"
	"testing"
)

func TestMentions(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		text string
		want []string
	}{
		{name: "empty", text: "", want: nil},
		{name: "no mentions", text: "nothing to see here", want: nil},
		{name: "single", text: "hi @alice", want: []string{"alice"}},
		{name: "several in scan order", text: "@bob then @alice then @carol", want: []string{"bob", "alice", "carol"}},
		{name: "duplicates collapse to first", text: "@alice @bob @alice", want: []string{"alice", "bob"}},
		{name: "team token kept raw", text: "cc @rust-lang/core", want: []string{"rust-lang/core"}},
		{name: "hyphen underscore digits", text: "@a-b_c9 ok", want: []string{"a-b_c9"}},
		{name: "punctuation terminates token", text: "hey @alice, and @bob.", want: []string{"alice", "bob"}},
		{name: "case preserved", text: "@Alice vs @alice", want: []string{"Alice", "alice"}},
		{name: "mid-text at sign", text: "mail me at foo@example.com", want: []string{"example"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Mentions(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Mentions(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestAcknowledgements(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		text string
		want []string
	}{
		{name: "empty", text: "", want: nil},
		{name: "marker without url", text: "please acknowledge this", want: nil},
		{name: "single http", text: "acknowledge http://example.com/1", want: []string{"http://example.com/1"}},
		{name: "single https", text: "done, acknowledge https://example.com/42 thanks", want: []string{"https://example.com/42"}},
		{
			name: "multiple in order",
			text: "acknowledge https://a.test/1 and acknowledge https://b.test/2",
			want: []string{"https://a.test/1", "https://b.test/2"},
		},
		{name: "non-http scheme ignored", text: "acknowledge ftp://example.com/x", want: nil},
		{name: "url runs to whitespace", text: "acknowledge https://example.com/42#issuecomment-1 ok", want: []string{"https://example.com/42#issuecomment-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Acknowledgements(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Acknowledgements(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestSplitTeamToken(t *testing.T) {
	t.Parallel()
	tests := []struct {
		token     string
		namespace string
		team      string
	}{
		{token: "rust-lang/core", namespace: "rust-lang", team: "core"},
		{token: "solo", namespace: "", team: "solo"},
		{token: "org/team/extra", namespace: "org", team: "team"},
	}

	for _, tt := range tests {
		ns, team := SplitTeamToken(tt.token)
		if ns != tt.namespace || team != tt.team {
			t.Fatalf("SplitTeamToken(%q) = (%q, %q), want (%q, %q)", tt.token, ns, team, tt.namespace, tt.team)
		}
	}
}
