package dom

import (
	"unicode"
	"unicode/utf8"
)

// span summarizes a run of raw text as it would look after CollapseSpace.
// Spans concatenate, so a subtree is measured from its children without
// rebuilding its text.
type span struct {
	set    bool // any rune at all, whitespace included
	runes  int  // non-space runes
	words  int
	commas int
	lead   bool // starts with a non-space rune
	trail  bool // ends with a non-space rune
}

// gap is a single space: a block boundary or a <br>.
var gap = span{set: true}

func spanOf(s string) span {
	sp := span{set: s != ""}
	inWord := false
	for i, r := range s {
		if unicode.IsSpace(r) {
			inWord = false
			continue
		}
		if i == 0 {
			sp.lead = true
		}
		if !inWord {
			sp.words++
			inWord = true
		}
		sp.runes++
		if isComma(r) {
			sp.commas++
		}
	}
	if s != "" {
		last, _ := utf8.DecodeLastRuneInString(s)
		sp.trail = !unicode.IsSpace(last)
	}
	return sp
}

func (a span) cat(b span) span {
	if !a.set {
		return b
	}
	if !b.set {
		return a
	}
	out := span{
		set:    true,
		runes:  a.runes + b.runes,
		words:  a.words + b.words,
		commas: a.commas + b.commas,
		lead:   a.lead,
		trail:  b.trail,
	}
	if a.trail && b.lead {
		// the two halves join into one word
		out.words--
	}
	return out
}

// length is the rune count of the collapsed text.
func (a span) length() int {
	if a.words == 0 {
		return 0
	}
	return a.runes + a.words - 1
}

type nodeSpans struct {
	inner, own, innerLink, ownLink span
}

func (s nodeSpans) stats() (inner, own TextStats) {
	inner = TextStats{Length: s.inner.length(), LinkLength: s.innerLink.length(), Commas: s.inner.commas}
	own = TextStats{Length: s.own.length(), LinkLength: s.ownLink.length(), Commas: s.own.commas}
	return inner, own
}

// Measurements holds the inner and own TextStats of every node of a tree,
// computed bottom-up in a single pass.
type Measurements struct {
	inner map[*Node]TextStats
	own   map[*Node]TextStats
}

// Measure walks the tree under root once.
func Measure(root *Node) *Measurements {
	m := &Measurements{inner: map[*Node]TextStats{}, own: map[*Node]TextStats{}}
	if root != nil {
		m.measure(root)
	}
	return m
}

// Inner returns the stats of all visible text below n. Nodes outside the
// measured tree are measured on demand.
func (m *Measurements) Inner(n *Node) TextStats {
	if m != nil {
		if st, ok := m.inner[n]; ok {
			return st
		}
	}
	return Measure(n).inner[n]
}

// Own returns the stats of the text of n outside nested blocks.
func (m *Measurements) Own(n *Node) TextStats {
	if m != nil {
		if st, ok := m.own[n]; ok {
			return st
		}
	}
	return Measure(n).own[n]
}

func (m *Measurements) measure(n *Node) nodeSpans {
	var out nodeSpans
	switch {
	case n.Type == TextNode:
		t := spanOf(n.Text)
		out.inner, out.own = t, t
		m.record(n, out)
		return out
	case IsInvisible(n.Tag):
		m.record(n, out)
		return out
	}
	for _, c := range n.Children {
		cs := m.measure(c)
		switch {
		case c.Type == TextNode:
			out.inner = out.inner.cat(cs.inner)
			out.own = out.own.cat(cs.own)
		case IsInvisible(c.Tag):
		case c.Tag == "br":
			out.inner = out.inner.cat(gap)
			out.own = out.own.cat(gap)
			out.innerLink = out.innerLink.cat(gap)
			out.ownLink = out.ownLink.cat(gap)
		case IsBlock(c.Tag):
			out.inner = out.inner.cat(gap).cat(cs.inner).cat(gap)
			out.innerLink = out.innerLink.cat(gap).cat(cs.innerLink).cat(gap)
			out.own = out.own.cat(gap)
			out.ownLink = out.ownLink.cat(gap)
		default:
			out.inner = out.inner.cat(cs.inner)
			out.own = out.own.cat(cs.own)
			out.innerLink = out.innerLink.cat(cs.innerLink)
			out.ownLink = out.ownLink.cat(cs.ownLink)
		}
	}
	if n.Tag == "a" {
		// everything inside a link is link text
		out.innerLink = gap.cat(out.inner)
		out.ownLink = gap.cat(out.own)
	}
	m.record(n, out)
	return out
}

func (m *Measurements) record(n *Node, s nodeSpans) {
	m.inner[n], m.own[n] = s.stats()
}
