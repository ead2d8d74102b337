// Package mdrender translates Markdown into display markup.
package mdrender

import (
	"strings"

	"github.com/longkey1/llmchat/internal/markup"
)

const bullet = "  • "

var headingSizes = map[int]int{1: 24, 2: 20, 3: 18}

// HeadingSize returns the size tier for a heading level. Levels 4 and
// deeper share the smallest tier.
func HeadingSize(level int) int {
	if size, ok := headingSizes[level]; ok {
		return size
	}
	return 16
}

// Render translates source into markup. Empty input yields empty output and
// a failure anywhere in the pipeline degrades to the escaped source.
func Render(source string) (out string) {
	if strings.TrimSpace(source) == "" {
		return ""
	}
	defer func() {
		if r := recover(); r != nil {
			out = markup.Escape(source)
		}
	}()
	return RenderNode(Parse(source))
}

// RenderNode is the single dispatch over node kinds.
func RenderNode(n Node) string {
	switch n.Kind {
	case KindDocument:
		return renderChildren(n)
	case KindText:
		return markup.Escape(n.Text)
	case KindStrong:
		return markup.Bold(renderChildren(n))
	case KindEmphasis:
		return markup.Italic(renderChildren(n))
	case KindLink:
		return markup.Ref(n.URL, markup.Color(markup.ColorLink, renderChildren(n)))
	case KindCodeSpan:
		return markup.Color(markup.ColorCode, markup.Escape(n.Text))
	case KindCodeBlock:
		return "\n" + markup.Color(markup.ColorCode, markup.Escape(strings.TrimSpace(n.Text))) + "\n"
	case KindParagraph:
		return renderChildren(n) + "\n"
	case KindHeading:
		return "\n" + markup.Size(HeadingSize(n.Level), markup.Bold(renderChildren(n))) + "\n"
	case KindList:
		// TODO: number ordered lists once the bullet-only behaviour is confirmed as unintended.
		return "\n" + renderChildren(n) + "\n"
	case KindListItem:
		return bullet + renderChildren(n) + "\n"
	case KindRule:
		return "\n---\n"
	default:
		return markup.Escape(n.Text)
	}
}

func renderChildren(n Node) string {
	var b strings.Builder
	for _, c := range n.Children {
		b.WriteString(RenderNode(c))
	}
	return b.String()
}
