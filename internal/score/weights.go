package score

import (
	"sort"
	"strings"

	"github.com/hyperifyio/goreadable/internal/dom"
)

// Pattern is a class/id keyword and the weight it adds when it matches as a
// case-insensitive substring. Negative weights mark boilerplate.
type Pattern struct {
	Match  string  `yaml:"match" json:"match"`
	Weight float64 `yaml:"weight" json:"weight"`
}

// Weights holds every tunable of the scorer. The zero value scores nothing;
// start from DefaultWeights.
type Weights struct {
	// TagBase is the starting score per tag. Only tags listed here are
	// candidates.
	TagBase map[string]float64
	// Patterns are checked in order; per attribute the first negative and
	// the first positive match count.
	Patterns []Pattern

	CharsPerPoint   int
	MaxLengthPoints float64

	CommaBonus    float64
	CommaMinCount int
	// CommaDensity is the minimum number of commas per 100 runes.
	CommaDensity float64

	// PropagationFactor scales what a candidate passes on beyond its own
	// score, so each level further up gets a smaller share.
	PropagationFactor float64
}

// DefaultWeights returns the built-in heuristics.
func DefaultWeights() Weights {
	return Weights{
		TagBase: map[string]float64{
			"p":          5,
			"pre":        4,
			"blockquote": 4,
			"td":         3,
			"article":    4,
			"main":       4,
			"section":    2,
			"div":        2,
			"header":     -3,
			"address":    -3,
			"nav":        -5,
			"aside":      -5,
			"footer":     -5,
		},
		Patterns: []Pattern{
			{Match: "comment", Weight: -25},
			{Match: "sidebar", Weight: -25},
			{Match: "footer", Weight: -25},
			{Match: "footnote", Weight: -25},
			{Match: "masthead", Weight: -25},
			{Match: "banner", Weight: -25},
			{Match: "breadcrumb", Weight: -25},
			{Match: "promo", Weight: -25},
			{Match: "related", Weight: -25},
			{Match: "share", Weight: -25},
			{Match: "social", Weight: -25},
			{Match: "sponsor", Weight: -25},
			{Match: "advert", Weight: -25},
			{Match: "widget", Weight: -25},
			{Match: "subscribe", Weight: -25},
			{Match: "newsletter", Weight: -25},
			{Match: "popup", Weight: -25},
			{Match: "modal", Weight: -25},
			{Match: "menu", Weight: -25},
			{Match: "cookie", Weight: -25},
			{Match: "consent", Weight: -25},
			{Match: "gdpr", Weight: -25},
			{Match: "article", Weight: 25},
			{Match: "content", Weight: 25},
			{Match: "entry", Weight: 25},
			{Match: "main", Weight: 25},
			{Match: "post", Weight: 25},
			{Match: "story", Weight: 25},
			{Match: "text", Weight: 25},
			{Match: "body", Weight: 25},
			{Match: "blog", Weight: 25},
		},
		CharsPerPoint:     100,
		MaxLengthPoints:   3,
		CommaBonus:        25,
		CommaMinCount:     3,
		CommaDensity:      1,
		PropagationFactor: 0.5,
	}
}

// PatternsFromMap turns a pattern→weight mapping (as found in config files)
// into an ordered pattern list. Order is by match string so results do not
// depend on map iteration.
func PatternsFromMap(m map[string]float64) []Pattern {
	out := make([]Pattern, 0, len(m))
	for k, v := range m {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" || v == 0 {
			continue
		}
		out = append(out, Pattern{Match: k, Weight: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Match < out[j].Match })
	return out
}

// ClassWeight sums the pattern weights matched by the class and id of n.
func (w Weights) ClassWeight(n *dom.Node) float64 {
	var total float64
	for _, key := range []string{"class", "id"} {
		val := strings.ToLower(n.Attr(key))
		if val == "" {
			continue
		}
		var neg, pos bool
		for _, p := range w.Patterns {
			if p.Match == "" || !strings.Contains(val, strings.ToLower(p.Match)) {
				continue
			}
			switch {
			case p.Weight < 0 && !neg:
				total += p.Weight
				neg = true
			case p.Weight > 0 && !pos:
				total += p.Weight
				pos = true
			}
		}
	}
	return total
}

// IsNegative reports whether the class or id of n matches any negative
// pattern.
func (w Weights) IsNegative(n *dom.Node) bool {
	for _, key := range []string{"class", "id"} {
		val := strings.ToLower(n.Attr(key))
		if val == "" {
			continue
		}
		for _, p := range w.Patterns {
			if p.Weight < 0 && p.Match != "" && strings.Contains(val, strings.ToLower(p.Match)) {
				return true
			}
		}
	}
	return false
}
