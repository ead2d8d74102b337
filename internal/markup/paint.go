package markup

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Ref is a reference collected while painting. N is its 1-based footnote number.
type Ref struct {
	N   int
	URL string
}

// Painted is the terminal rendition of a markup string.
type Painted struct {
	Text string
	Refs []Ref
}

// Painter turns markup into styled terminal text.
type Painter struct {
	renderer *lipgloss.Renderer
	// Footnote styles the "[n]" suffix appended after each reference.
	Footnote lipgloss.Style
	// Hyperlinks wraps reference text in OSC 8 sequences.
	Hyperlinks bool
}

// NewPainter returns a painter bound to r. A nil r uses the default renderer.
func NewPainter(r *lipgloss.Renderer) *Painter {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	return &Painter{
		renderer:   r,
		Footnote:   r.NewStyle().Faint(true),
		Hyperlinks: r.ColorProfile() != termenv.Ascii,
	}
}

type frame struct {
	tag Tag
	arg string
	ref int // footnote number of a ref frame
}

// Paint renders s. Reference numbering starts at firstRef, so several painted
// strings can share one footnote sequence.
func (p *Painter) Paint(s string, firstRef int) Painted {
	if firstRef < 1 {
		firstRef = 1
	}

	var (
		out   strings.Builder
		stack []frame
		refs  []Ref
	)
	for _, tok := range Parse(s) {
		switch tok.Kind {
		case TokenOpen:
			f := frame{tag: tok.Tag, arg: tok.Arg}
			if tok.Tag == TagRef {
				f.ref = firstRef + len(refs)
				refs = append(refs, Ref{N: f.ref, URL: tok.Arg})
			}
			stack = append(stack, f)
		case TokenClose:
			idx := -1
			for i := len(stack) - 1; i >= 0; i-- {
				if stack[i].tag == tok.Tag {
					idx = i
					break
				}
			}
			if idx < 0 {
				continue
			}
			if tok.Tag == TagRef {
				out.WriteString(p.Footnote.Render("[" + strconv.Itoa(stack[idx].ref) + "]"))
			}
			stack = append(stack[:idx], stack[idx+1:]...)
		case TokenText:
			style, url := p.styleFor(stack)
			lines := strings.Split(tok.Text, "\n")
			for i, line := range lines {
				if i > 0 {
					out.WriteByte('\n')
				}
				if line == "" {
					continue
				}
				rendered := style.Render(line)
				if url != "" && p.Hyperlinks {
					rendered = termenv.Hyperlink(url, rendered)
				}
				out.WriteString(rendered)
			}
		}
	}

	return Painted{Text: out.String(), Refs: refs}
}

func (p *Painter) styleFor(stack []frame) (lipgloss.Style, string) {
	style := p.renderer.NewStyle()
	var url string
	for _, f := range stack {
		switch f.tag {
		case TagBold:
			style = style.Bold(true)
		case TagItalic:
			style = style.Italic(true)
		case TagColor:
			hex := f.arg
			if len(hex) == 8 {
				hex = hex[:6]
			}
			style = style.Foreground(lipgloss.Color("#" + hex))
		case TagSize:
			// Terminals have one font size; the two largest tiers are underlined.
			if n, _ := strconv.Atoi(f.arg); n >= 20 {
				style = style.Underline(true)
			}
		case TagRef:
			url = f.arg
			style = style.Underline(true)
		}
	}
	return style, url
}
