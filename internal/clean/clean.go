package clean

import (
	"strings"

	"github.com/hyperifyio/goreadable/internal/dom"
	"github.com/hyperifyio/goreadable/internal/score"
)

// DefaultProtectMinChars is the own-text length that keeps a boilerplate
// looking element in the output.
const DefaultProtectMinChars = 200

// nonTextTags never render as readable text.
var nonTextTags = map[string]bool{
	"script": true, "style": true, "noscript": true, "template": true,
	"iframe": true, "object": true, "embed": true,
}

// strippedTags are removed from a selection unconditionally.
var strippedTags = map[string]bool{
	"script": true, "style": true, "noscript": true, "template": true,
	"iframe": true, "object": true, "embed": true, "form": true, "svg": true,
}

// boilerplateTags are removed unless they hold dense text.
var boilerplateTags = map[string]bool{"nav": true, "aside": true, "footer": true}

// Cleaner turns selected nodes into plain text and a title.
type Cleaner struct {
	Weights score.Weights
	// MaxChars caps the output text in runes. Zero disables the cap.
	MaxChars int
	// ProtectMinChars is the own-text length at which boilerplate-looking
	// elements are kept. Zero means DefaultProtectMinChars.
	ProtectMinChars int
	// Stats, when set, holds measurements of the document taken earlier.
	Stats *dom.Measurements
}

// Output is the cleaned text of a selection.
type Output struct {
	Title     string
	Text      string
	Truncated bool
	Stripped  map[string]int
}

// Clean serializes nodes (the selected root and merged siblings) with
// boilerplate removed. A heading used as the title is left out of Text.
func (c Cleaner) Clean(doc *dom.Document, nodes []*dom.Node) Output {
	heading, title := pickTitle(doc, nodes)
	if c.Stats == nil && doc != nil {
		c.Stats = dom.Measure(doc.Root)
	}
	w := &walker{
		b:           &strings.Builder{},
		skip:        heading,
		strip:       strippedTags,
		boilerplate: c.isBoilerplate,
		stripped:    map[string]int{},
	}
	for i, n := range nodes {
		if i > 0 {
			w.b.WriteString("\n\n")
		}
		w.walk(n, true, false)
	}
	text, truncated := Truncate(Normalize(w.b.String()), c.MaxChars)
	return Output{Title: title, Text: text, Truncated: truncated, Stripped: w.stripped}
}

// BodyText serializes the whole <body>, dropping only non-rendered
// elements. It is the fallback when no article could be selected.
func (c Cleaner) BodyText(doc *dom.Document) Output {
	w := &walker{b: &strings.Builder{}, strip: nonTextTags, stripped: map[string]int{}}
	if body := doc.Body(); body != nil {
		w.walk(body, true, false)
	}
	text, truncated := Truncate(Normalize(w.b.String()), c.MaxChars)
	return Output{Title: doc.Title(), Text: text, Truncated: truncated, Stripped: w.stripped}
}

func (c Cleaner) isBoilerplate(n *dom.Node) bool {
	if !boilerplateTags[n.Tag] && !c.Weights.IsNegative(n) {
		return false
	}
	protect := c.ProtectMinChars
	if protect <= 0 {
		protect = DefaultProtectMinChars
	}
	own := c.Stats.Own(n)
	return own.Length < protect || own.LinkDensity() >= 0.33
}

// pickTitle prefers the first non-empty <h1> in the selection, then an
// <h2>/<h3> whose class or id mentions "title", then the document title.
func pickTitle(doc *dom.Document, nodes []*dom.Node) (*dom.Node, string) {
	for _, n := range nodes {
		for _, h := range n.FindAll("h1") {
			if t := dom.CollapseSpace(h.InnerText()); t != "" {
				return h, t
			}
		}
	}
	for _, n := range nodes {
		for _, h := range n.FindAll("h2", "h3") {
			if !titleLike(h) {
				continue
			}
			if t := dom.CollapseSpace(h.InnerText()); t != "" {
				return h, t
			}
		}
	}
	return nil, doc.Title()
}

func titleLike(n *dom.Node) bool {
	return strings.Contains(strings.ToLower(n.Attr("class")), "title") ||
		strings.Contains(strings.ToLower(n.Attr("id")), "title")
}

type walker struct {
	b           *strings.Builder
	skip        *dom.Node
	strip       map[string]bool
	boilerplate func(*dom.Node) bool
	stripped    map[string]int
}

func (w *walker) walk(n *dom.Node, root, inPre bool) {
	if n.Type == dom.TextNode {
		if inPre {
			w.b.WriteString(n.Text)
			return
		}
		// newlines in flowing text are not line breaks
		w.b.WriteString(strings.Map(func(r rune) rune {
			switch r {
			case '\n', '\r', '\t':
				return ' '
			}
			return r
		}, n.Text))
		return
	}
	if n == w.skip {
		return
	}
	if w.strip[n.Tag] {
		w.stripped[n.Tag]++
		return
	}
	if !root && w.boilerplate != nil && w.boilerplate(n) {
		w.stripped["boilerplate"]++
		return
	}

	block := dom.IsBlock(n.Tag)
	switch {
	case n.Tag == "br":
		w.b.WriteString("\n")
	case lineItem(n.Tag):
		w.b.WriteString("\n")
	case n.Tag == "pre":
		inPre = true
		w.b.WriteString("\n\n")
	case block:
		w.b.WriteString("\n\n")
	}
	for _, c := range n.Children {
		w.walk(c, false, inPre)
	}
	if block && !lineItem(n.Tag) {
		w.b.WriteString("\n\n")
	}
}

// lineItem elements start a new line but are not separated by blank lines.
func lineItem(tag string) bool {
	switch tag {
	case "li", "tr", "dt", "dd":
		return true
	}
	return false
}
