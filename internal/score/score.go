package score

import (
	"math"
	"sort"

	"github.com/hyperifyio/goreadable/internal/dom"
)

// Candidate is a scored block-level node. Node is a back-reference into the
// document being extracted.
type Candidate struct {
	Node  *dom.Node
	Order int

	TagBase      float64
	LengthPoints float64
	CommaBonus   float64
	ClassWeight  float64

	// TextLength and Commas describe the node's own text; InnerLength counts
	// everything below it.
	TextLength  int
	InnerLength int
	Commas      int
	LinkDensity float64

	OwnScore float64
	// Propagated is what the nearest candidate descendants pass up: each
	// child's own score in full plus PropagationFactor of what reached it.
	Propagated float64
	Score      float64
}

// Scoring is the outcome of one Score call.
type Scoring struct {
	Candidates []*Candidate
	byNode     map[*dom.Node]*Candidate
	stats      *dom.Measurements
}

// Stats returns the text measurements taken while scoring.
func (s *Scoring) Stats() *dom.Measurements {
	if s == nil {
		return nil
	}
	return s.stats
}

// Of returns the candidate for n, or nil if n was not scored.
func (s *Scoring) Of(n *dom.Node) *Candidate {
	if s == nil {
		return nil
	}
	return s.byNode[n]
}

// Ranked returns the candidates best first.
func (s *Scoring) Ranked() []*Candidate {
	if s == nil {
		return nil
	}
	out := make([]*Candidate, len(s.Candidates))
	copy(out, s.Candidates)
	sort.SliceStable(out, func(i, j int) bool { return Less(out[i], out[j]) })
	return out
}

// Best returns the top-ranked candidate, or nil when there is none.
func (s *Scoring) Best() *Candidate {
	if s == nil {
		return nil
	}
	var best *Candidate
	for _, c := range s.Candidates {
		if best == nil || Less(c, best) {
			best = c
		}
	}
	return best
}

// Less reports whether a ranks before b: higher score, then more text,
// then earlier in the document.
func Less(a, b *Candidate) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if a.InnerLength != b.InnerLength {
		return a.InnerLength > b.InnerLength
	}
	return a.Order < b.Order
}

// Score walks doc and scores every candidate element. <html> and <body> are
// never candidates.
func Score(doc *dom.Document, w Weights) *Scoring {
	s := &Scoring{byNode: map[*dom.Node]*Candidate{}}
	if doc == nil || doc.Root == nil {
		return s
	}
	m := dom.Measure(doc.Root)
	s.stats = m
	order := 0
	var walk func(n *dom.Node) float64
	walk = func(n *dom.Node) float64 {
		if n.Type != dom.ElementNode || dom.IsInvisible(n.Tag) {
			return 0
		}
		var c *Candidate
		if base, ok := w.TagBase[n.Tag]; ok && n.Tag != "html" && n.Tag != "body" {
			if inner := m.Inner(n); inner.Length > 0 {
				c = &Candidate{Node: n, Order: order, TagBase: base, InnerLength: inner.Length}
				order++
				s.Candidates = append(s.Candidates, c)
				s.byNode[n] = c
			}
		}
		var childSum float64
		for _, ch := range n.Children {
			childSum += walk(ch)
		}
		if c == nil {
			return childSum
		}
		c.scoreOwn(w, m.Own(n))
		c.Propagated = childSum
		c.Score = c.OwnScore + c.Propagated
		return math.Max(0, c.OwnScore+w.PropagationFactor*c.Propagated)
	}
	walk(doc.Root)
	return s
}

func (c *Candidate) scoreOwn(w Weights, own dom.TextStats) {
	c.TextLength = own.Length
	c.Commas = own.Commas
	c.LinkDensity = own.LinkDensity()

	if w.CharsPerPoint > 0 {
		c.LengthPoints = math.Min(math.Floor(float64(own.Length)/float64(w.CharsPerPoint)), w.MaxLengthPoints)
	}
	if own.Length > 0 && own.Commas >= w.CommaMinCount && own.Commas > 0 {
		if float64(own.Commas)*100/float64(own.Length) >= w.CommaDensity {
			c.CommaBonus = w.CommaBonus
		}
	}
	c.ClassWeight = w.ClassWeight(c.Node)

	c.OwnScore = c.TagBase + c.LengthPoints + c.CommaBonus + c.ClassWeight
	if c.OwnScore > 0 {
		c.OwnScore *= 1 - c.LinkDensity
	}
}
