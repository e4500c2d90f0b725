package selecter

import (
	"fmt"
	"regexp"

	"github.com/hyperifyio/goreadable/internal/dom"
	"github.com/hyperifyio/goreadable/internal/score"
)

const (
	DefaultMinScore     = 5
	DefaultSiblingRatio = 0.2
)

// Options configures selection thresholds.
type Options struct {
	// MinScore must be exceeded by the top candidate. Zero means default.
	MinScore float64
	// SiblingRatio is the fraction of the root score a scored sibling needs
	// to be merged. Zero means default.
	SiblingRatio float64
}

// Selection is the chosen article: the root candidate and the nodes to
// serialize (root plus merged siblings) in document order.
type Selection struct {
	Root  *score.Candidate
	Nodes []*dom.Node
}

// NoContentFoundError is returned when no candidate clears MinScore. Callers
// recover by falling back to whole-body text.
type NoContentFoundError struct {
	Candidates int
	BestScore  float64
	MinScore   float64
}

func (e *NoContentFoundError) Error() string {
	if e.Candidates == 0 {
		return "no content found: no candidates"
	}
	return fmt.Sprintf("no content found: best score %.2f does not exceed %.2f (%d candidates)", e.BestScore, e.MinScore, e.Candidates)
}

var sentenceEnd = regexp.MustCompile(`[.!?]( |$)`)

// Select picks the best candidate and merges qualifying siblings.
func Select(s *score.Scoring, opt Options) (Selection, error) {
	if opt.MinScore <= 0 {
		opt.MinScore = DefaultMinScore
	}
	if opt.SiblingRatio <= 0 {
		opt.SiblingRatio = DefaultSiblingRatio
	}
	best := s.Best()
	if best == nil {
		return Selection{}, &NoContentFoundError{MinScore: opt.MinScore}
	}
	if best.Score <= opt.MinScore {
		return Selection{}, &NoContentFoundError{Candidates: len(s.Candidates), BestScore: best.Score, MinScore: opt.MinScore}
	}

	sel := Selection{Root: best}
	parent := best.Node.Parent
	if parent == nil {
		sel.Nodes = []*dom.Node{best.Node}
		return sel, nil
	}
	threshold := opt.SiblingRatio * best.Score
	for _, sib := range parent.Children {
		if sib == best.Node {
			sel.Nodes = append(sel.Nodes, sib)
			continue
		}
		if sib.Type != dom.ElementNode {
			continue
		}
		if keepSibling(s.Of(sib), s.Stats().Inner(sib), sib, opt.MinScore, threshold) {
			sel.Nodes = append(sel.Nodes, sib)
		}
	}
	return sel, nil
}

func keepSibling(c *score.Candidate, st dom.TextStats, n *dom.Node, minScore, threshold float64) bool {
	if c != nil && c.Score > minScore && c.Score >= threshold {
		return true
	}
	if !n.Is("p") {
		return false
	}
	switch {
	case st.Length >= 80 && st.LinkDensity() < 0.25:
		return true
	case st.Length > 0 && st.LinkLength == 0 && sentenceEnd.MatchString(dom.CollapseSpace(n.InnerText())):
		return true
	}
	return false
}
