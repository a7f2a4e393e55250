// Package scanner extracts mention and acknowledgement tokens from
// free-form comment text.
//
// Extraction is pure pattern matching: tokens are raw strings, not yet
// resolved against the identity directory. Resolution and dedup by numeric
// id happen in the pings package.
package scanner

import (
	"regexp"
	"strings"
)

var (
	mentionRe         = regexp.MustCompile(`@([-\w/]+)`)
	acknowledgementRe = regexp.MustCompile(`acknowledge (https?://[^ ]+)`)
)

// Mentions returns the raw mention tokens in text: the part after '@',
// made of letters, digits, hyphen, underscore and '/'.
//
// Tokens are deduplicated on their raw text, first occurrence wins, and
// returned in scan order. Scan order matters downstream: when the same
// numeric id is reachable through several tokens, the first token seen
// decides the recorded team name.
//
// A token containing '/' is a team reference (<namespace>/<team>); splitting
// it is the caller's job.
func Mentions(text string) []string {
	matches := mentionRe.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(matches))
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		token := m[1]
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		out = append(out, token)
	}
	return out
}

// Acknowledgements returns every URL following the literal marker
// "acknowledge ", in scan order. Duplicates are kept: each occurrence is an
// independent retraction request.
func Acknowledgements(text string) []string {
	matches := acknowledgementRe.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}

	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m[1])
	}
	return out
}

// SplitTeamToken splits a team mention token into its namespace and team
// segments. The namespace is currently unchecked; only the team segment is
// used for directory lookup. Anything past a second '/' is ignored.
func SplitTeamToken(token string) (namespace, team string) {
	parts := strings.SplitN(token, "/", 3)
	if len(parts) < 2 {
		return "", token
	}
	return parts[0], parts[1]
}
