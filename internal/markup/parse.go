package markup

import (
	"strconv"
	"strings"
)

// TokenKind classifies a Token.
type TokenKind int

const (
	TokenText TokenKind = iota
	TokenOpen
	TokenClose
)

// Token is one lexical unit of markup. Text is unescaped.
type Token struct {
	Kind TokenKind
	Tag  Tag
	Arg  string // color hex, size or unescaped ref payload
	Text string
}

// Parse splits s into tokens. Bracket sequences that are not well-formed
// markers are kept as literal text, so Parse never fails.
func Parse(s string) []Token {
	var (
		tokens []Token
		text   strings.Builder
	)
	flush := func() {
		if text.Len() > 0 {
			tokens = append(tokens, Token{Kind: TokenText, Text: Unescape(text.String())})
			text.Reset()
		}
	}

	for i := 0; i < len(s); {
		if s[i] != '[' {
			j := strings.IndexByte(s[i:], '[')
			if j < 0 {
				text.WriteString(s[i:])
				break
			}
			text.WriteString(s[i : i+j])
			i += j
			continue
		}

		end := strings.IndexByte(s[i+1:], ']')
		if end < 0 {
			text.WriteString(s[i:])
			break
		}
		body := s[i+1 : i+1+end]
		tok, ok := parseTag(body)
		if !ok {
			text.WriteByte('[')
			i++
			continue
		}
		flush()
		tokens = append(tokens, tok)
		i += end + 2
	}
	flush()
	return tokens
}

func parseTag(body string) (Token, bool) {
	if name, ok := strings.CutPrefix(body, "/"); ok {
		switch Tag(name) {
		case TagBold, TagItalic, TagColor, TagSize, TagRef:
			return Token{Kind: TokenClose, Tag: Tag(name)}, true
		}
		return Token{}, false
	}

	name, arg, hasArg := strings.Cut(body, "=")
	switch Tag(name) {
	case TagBold, TagItalic:
		if hasArg {
			return Token{}, false
		}
		return Token{Kind: TokenOpen, Tag: Tag(name)}, true
	case TagColor:
		if !validHex(arg) {
			return Token{}, false
		}
		return Token{Kind: TokenOpen, Tag: TagColor, Arg: strings.ToLower(strings.TrimPrefix(arg, "#"))}, true
	case TagSize:
		n, err := strconv.Atoi(strings.TrimSuffix(arg, "sp"))
		if err != nil || n <= 0 {
			return Token{}, false
		}
		return Token{Kind: TokenOpen, Tag: TagSize, Arg: strconv.Itoa(n)}, true
	case TagRef:
		if arg == "" {
			return Token{}, false
		}
		return Token{Kind: TokenOpen, Tag: TagRef, Arg: Unescape(arg)}, true
	}
	return Token{}, false
}

func validHex(s string) bool {
	s = strings.TrimPrefix(s, "#")
	switch len(s) {
	case 3, 6, 8:
	default:
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

// Strip returns the plain text of s with every marker removed.
func Strip(s string) string {
	var b strings.Builder
	for _, tok := range Parse(s) {
		if tok.Kind == TokenText {
			b.WriteString(tok.Text)
		}
	}
	return b.String()
}
