package mdrender

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// Kind is the closed set of node variants the translator understands.
type Kind int

const (
	KindDocument Kind = iota
	KindText
	KindStrong
	KindEmphasis
	KindLink
	KindCodeSpan
	KindCodeBlock
	KindParagraph
	KindHeading
	KindList
	KindListItem
	KindRule
	KindRaw
)

// Node is one element of a parsed Markdown document.
type Node struct {
	Kind     Kind
	Text     string // literal content of Text, CodeSpan, CodeBlock and Raw
	URL      string // Link destination
	Level    int    // Heading level
	Ordered  bool   // List numbering flag, kept but not rendered
	Children []Node
}

var parser = goldmark.DefaultParser()

// Parse builds the node tree for source.
func Parse(source string) Node {
	src := []byte(source)
	doc := parser.Parse(text.NewReader(src))
	return convert(doc, src)
}

func convert(n ast.Node, src []byte) Node {
	switch v := n.(type) {
	case *ast.Document, *ast.TextBlock, *ast.Blockquote:
		return Node{Kind: KindDocument, Children: convertChildren(n, src)}
	case *ast.Paragraph:
		return Node{Kind: KindParagraph, Children: convertChildren(n, src)}
	case *ast.Heading:
		return Node{Kind: KindHeading, Level: v.Level, Children: convertChildren(n, src)}
	case *ast.List:
		return Node{Kind: KindList, Ordered: v.IsOrdered(), Children: convertChildren(n, src)}
	case *ast.ListItem:
		return Node{Kind: KindListItem, Children: convertChildren(n, src)}
	case *ast.ThematicBreak:
		return Node{Kind: KindRule}
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		return Node{Kind: KindCodeBlock, Text: lines(n, src)}
	case *ast.HTMLBlock:
		raw := lines(n, src)
		if v.HasClosure() {
			raw += string(v.ClosureLine.Value(src))
		}
		return Node{Kind: KindRaw, Text: raw}
	case *ast.Text:
		s := string(resolve(v.Segment.Value(src)))
		if v.SoftLineBreak() || v.HardLineBreak() {
			s += "\n"
		}
		return Node{Kind: KindText, Text: s}
	case *ast.String:
		return Node{Kind: KindText, Text: string(v.Value)}
	case *ast.Emphasis:
		kind := KindEmphasis
		if v.Level >= 2 {
			kind = KindStrong
		}
		return Node{Kind: kind, Children: convertChildren(n, src)}
	case *ast.Link:
		return Node{Kind: KindLink, URL: string(v.Destination), Children: convertChildren(n, src)}
	case *ast.Image:
		return Node{Kind: KindLink, URL: string(v.Destination), Children: convertChildren(n, src)}
	case *ast.AutoLink:
		label := string(v.Label(src))
		url := string(v.URL(src))
		if v.AutoLinkType == ast.AutoLinkEmail && !strings.HasPrefix(strings.ToLower(url), "mailto:") {
			url = "mailto:" + url
		}
		return Node{Kind: KindLink, URL: url, Children: []Node{{Kind: KindText, Text: label}}}
	case *ast.CodeSpan:
		return Node{Kind: KindCodeSpan, Text: inlineText(n, src)}
	case *ast.RawHTML:
		var b strings.Builder
		for i := 0; i < v.Segments.Len(); i++ {
			seg := v.Segments.At(i)
			b.Write(seg.Value(src))
		}
		return Node{Kind: KindRaw, Text: b.String()}
	}

	// Constructs outside the closed set keep their text.
	if n.HasChildren() {
		return Node{Kind: KindDocument, Children: convertChildren(n, src)}
	}
	if n.Type() == ast.TypeBlock {
		return Node{Kind: KindRaw, Text: lines(n, src)}
	}
	return Node{Kind: KindRaw}
}

func convertChildren(n ast.Node, src []byte) []Node {
	var children []Node
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		children = append(children, convert(c, src))
	}
	return children
}

func lines(n ast.Node, src []byte) string {
	var b bytes.Buffer
	l := n.Lines()
	for i := 0; i < l.Len(); i++ {
		seg := l.At(i)
		b.Write(seg.Value(src))
	}
	return b.String()
}

// inlineText concatenates the literal text below n without resolving escapes.
func inlineText(n ast.Node, src []byte) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch v := c.(type) {
		case *ast.Text:
			b.Write(v.Segment.Value(src))
		case *ast.String:
			b.Write(v.Value)
		default:
			b.WriteString(inlineText(c, src))
		}
	}
	return b.String()
}

func resolve(b []byte) []byte {
	return util.ResolveEntityNames(util.ResolveNumericReferences(util.UnescapePunctuations(b)))
}
