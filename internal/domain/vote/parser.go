// Package vote interprets comment text as a plus one vote.
package vote

import (
	"regexp"
	"strings"
)

const (
	DefaultPositive = ":+1:"
	DefaultNegative = ":-1:"
)

// Delta is the signed contribution of one comment.
type Delta int

const (
	Down    Delta = -1
	Neutral Delta = 0
	Up      Delta = 1
)

// quoted matches a whole line opened by a quote, heading or bullet marker.
var quoted = regexp.MustCompile(`(?m)^(?:>|#{1,4}|[*+-])[ \t].*$`)

// Parser counts literal vote tokens in comment bodies.
type Parser struct {
	Positive string
	Negative string
}

func NewParser(positive, negative string) Parser {
	return Parser{Positive: positive, Negative: negative}
}

func DefaultParser() Parser {
	return NewParser(DefaultPositive, DefaultNegative)
}

// Parse returns the sign of positive minus negative token occurrences, ignoring
// quoted, heading and bullet lines.
func (p Parser) Parse(body string) Delta {
	text := StripQuoted(body)
	net := count(text, p.Positive) - count(text, p.Negative)
	switch {
	case net > 0:
		return Up
	case net < 0:
		return Down
	default:
		return Neutral
	}
}

// StripQuoted drops every line starting with a quote, heading or bullet marker.
func StripQuoted(body string) string {
	return quoted.ReplaceAllString(body, "")
}

func count(text, token string) int {
	if token == "" {
		return 0
	}
	return strings.Count(text, token)
}
