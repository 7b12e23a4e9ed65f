package vote

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	p := DefaultParser()

	tests := []struct {
		name string
		body string
		want Delta
	}{
		{"empty", "", Neutral},
		{"plain positive", "Great work! :+1:", Up},
		{"plain negative", "not yet :-1:", Down},
		{"cancelled", ":+1: and :-1:", Neutral},
		{"net positive", ":+1: :+1: :-1:", Up},
		{"net negative", ":-1: :-1: :+1:", Down},
		{"quoted only", "> :+1:", Neutral},
		{"quoted then vote", "> :-1:\n:+1:", Up},
		{"heading", "## :+1:", Neutral},
		{"h4 heading", "#### :+1:", Neutral},
		{"h5 is not a heading marker", "##### :+1:", Up},
		{"bullet star", "* :+1:", Neutral},
		{"bullet plus", "+ :+1:", Neutral},
		{"bullet dash", "- :+1:", Neutral},
		{"marker without space", ">:+1:", Up},
		{"indented quote is kept", "  > :+1:", Up},
		{"not word bounded", "a:+1:b", Up},
		{"multi line", "looks good\n\n:+1:\n- nit: rename :-1:", Up},
		{"crlf quoted", "> :+1:\r\nok", Neutral},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Parse(tt.body))
		})
	}
}

func TestParseEmptyTokens(t *testing.T) {
	p := NewParser("", "")
	assert.Equal(t, Neutral, p.Parse(":+1: anything"))

	onlyPositive := NewParser(":shipit:", "")
	assert.Equal(t, Up, onlyPositive.Parse(":shipit:"))
	assert.Equal(t, Neutral, onlyPositive.Parse("nothing here"))
}

func TestStripQuoted(t *testing.T) {
	got := StripQuoted("keep\n> drop\n# drop\nkeep too")
	assert.Equal(t, "keep\n\n\nkeep too", got)
}
