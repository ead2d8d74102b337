// Package markup implements the inline display markup shown in the chat log.
//
// The syntax is a small bracket-tag language:
//
//	[b]bold[/b] [i]italic[/i] [color=88aaff]tinted[/color]
//	[size=24]large[/size] [ref=https://example.com]link[/ref]
//
// Literal '&', '[' and ']' are written as &amp; &bl; and &br;. Every string
// that did not come from this package must go through Escape before it is
// concatenated with markers.
package markup

import (
	"strconv"
	"strings"
)

// Tag names a marker pair.
type Tag string

const (
	TagBold   Tag = "b"
	TagItalic Tag = "i"
	TagColor  Tag = "color"
	TagSize   Tag = "size"
	TagRef    Tag = "ref"
)

// Colors used by the chat log.
const (
	ColorLink  = "88aaff"
	ColorCode  = "c0c0c0"
	ColorError = "ff3333"
)

var (
	escaper   = strings.NewReplacer("&", "&amp;", "[", "&bl;", "]", "&br;")
	unescaper = strings.NewReplacer("&amp;", "&", "&bl;", "[", "&br;", "]")
)

// Escape makes s safe to embed in markup.
func Escape(s string) string {
	return escaper.Replace(s)
}

// Unescape reverses Escape.
func Unescape(s string) string {
	return unescaper.Replace(s)
}

// Bold wraps already-escaped markup in a bold span.
func Bold(s string) string {
	return "[b]" + s + "[/b]"
}

// Italic wraps already-escaped markup in an italic span.
func Italic(s string) string {
	return "[i]" + s + "[/i]"
}

// Color wraps already-escaped markup in a color span. hex has no leading '#'.
func Color(hex, s string) string {
	return "[color=" + hex + "]" + s + "[/color]"
}

// Size wraps already-escaped markup in a size span.
func Size(size int, s string) string {
	return "[size=" + strconv.Itoa(size) + "]" + s + "[/size]"
}

// Ref wraps already-escaped markup in a reference carrying url as payload.
// The payload is escaped here. An empty url yields s unwrapped.
func Ref(url, s string) string {
	if url == "" {
		return s
	}
	return "[ref=" + Escape(url) + "]" + s + "[/ref]"
}
