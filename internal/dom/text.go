package dom

import (
	"strings"
)

// blockTags break the flow of inline text. Own-text measurement stops at
// them and the serializer separates them with blank lines.
var blockTags = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"body": true, "center": true, "dd": true, "details": true, "dialog": true,
	"dir": true, "div": true, "dl": true, "dt": true, "fieldset": true,
	"figcaption": true, "figure": true, "footer": true, "form": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"header": true, "hgroup": true, "hr": true, "html": true, "li": true,
	"main": true, "menu": true, "nav": true, "ol": true, "p": true,
	"pre": true, "section": true, "summary": true, "table": true,
	"tbody": true, "td": true, "tfoot": true, "th": true, "thead": true,
	"tr": true, "ul": true,
}

// invisibleTags never contribute text.
var invisibleTags = map[string]bool{
	"script": true, "style": true, "noscript": true, "template": true, "head": true,
}

// IsBlock reports whether tag is a block-level element.
func IsBlock(tag string) bool { return blockTags[tag] }

// IsInvisible reports whether an element's text is never rendered.
func IsInvisible(tag string) bool { return invisibleTags[tag] }

// TextStats summarizes the text under a node. Lengths are in runes of
// whitespace-collapsed text.
type TextStats struct {
	Length     int
	LinkLength int
	Commas     int
}

// LinkDensity is the share of text that sits inside links.
func (s TextStats) LinkDensity() float64 {
	if s.Length == 0 {
		return 0
	}
	return float64(s.LinkLength) / float64(s.Length)
}

// InnerText returns the raw text of all visible descendant text nodes.
// Block boundaries are marked with a space.
func (n *Node) InnerText() string {
	var b strings.Builder
	collect(&b, n, false)
	return b.String()
}

// OwnText returns the raw text of n that is not inside a nested block-level
// element.
func (n *Node) OwnText() string {
	var b strings.Builder
	collect(&b, n, true)
	return b.String()
}

// InnerStats measures all visible text below n.
func (n *Node) InnerStats() TextStats {
	return Measure(n).Inner(n)
}

// OwnStats measures the own text of n.
func (n *Node) OwnStats() TextStats {
	return Measure(n).Own(n)
}

func collect(b *strings.Builder, n *Node, own bool) {
	switch n.Type {
	case TextNode:
		b.WriteString(n.Text)
		return
	case ElementNode:
		if IsInvisible(n.Tag) {
			return
		}
	}
	for _, c := range n.Children {
		if c.Type == ElementNode && c.Tag == "br" {
			b.WriteByte(' ')
			continue
		}
		if c.Type == ElementNode && IsBlock(c.Tag) {
			// keep words on either side of a block apart
			b.WriteByte(' ')
			if !own {
				collect(b, c, own)
				b.WriteByte(' ')
			}
			continue
		}
		collect(b, c, own)
	}
}

// CollapseSpace trims s and replaces every whitespace run with one space.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func isComma(r rune) bool {
	switch r {
	case ',', '\uff0c', '\u3001', '\u060c':
		return true
	}
	return false
}
