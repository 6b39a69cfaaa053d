// Package render turns classified actions into chat-ready text fragments.
// It owns the bold and link markup and the zero-width obscuring of account
// names that keeps chat clients from pinging the people being mentioned
package render

import (
	"strings"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// obscureSep is a zero-width space inserted between runes so that chat
// highlight matching no longer sees the original name
const obscureSep = '\u200b'

var stripper = runes.Remove(runes.Predicate(func(r rune) bool { return r == obscureSep }))

// Renderer carries the per-deployment formatting switches
type Renderer struct {
	// Bolding wraps object ids in terminal bold markers
	Bolding bool

	// ObscureNames zero-width-splits account names before emission
	ObscureNames bool

	// HTMLLinks emits anchors instead of angle-bracketed bare URLs
	HTMLLinks bool
}

// Bold wraps s in bold markers when enabled, otherwise returns s unchanged
func (r Renderer) Bold(s string) string {
	if !r.Bolding || s == "" {
		return s
	}
	return "\x02" + s + "\x02"
}

// Name applies the obscuring policy to an account name
func (r Renderer) Name(s string) string {
	if !r.ObscureNames {
		return s
	}
	return Obscure(s)
}

// Link renders a URL per the link policy. Empty URLs render empty
func (r Renderer) Link(u string) string {
	if u == "" {
		return ""
	}
	if r.HTMLLinks {
		return `<a href="` + u + `">` + u + `</a>`
	}
	return "<" + u + ">"
}

// Obscure inserts a zero-width separator between every adjacent rune pair.
// Strings shorter than two runes come back unchanged
func Obscure(s string) string {
	rs := []rune(s)
	if len(rs) < 2 {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + len(rs)*3)
	for i, r := range rs {
		if i > 0 {
			b.WriteRune(obscureSep)
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Strip removes the obscuring separators so that Strip(Obscure(s)) == s
// for any s that does not itself contain the separator
func Strip(s string) string {
	out, _, err := transform.String(stripper, s)
	if err != nil {
		return s
	}
	return out
}
