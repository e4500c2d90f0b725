package score

import (
	"strings"
	"testing"
	"time"

	"github.com/hyperifyio/goreadable/internal/dom"
)

func mustParse(t *testing.T, s string) *dom.Document {
	t.Helper()
	doc, err := dom.Parse([]byte(s), "utf-8", "")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

func TestScore_ParentGetsChildScore(t *testing.T) {
	doc := mustParse(t, `<html><body><nav>Home About</nav><article><h1>T</h1><p>Lorem ipsum dolor sit amet, consectetur adipiscing elit.</p></article></body></html>`)
	s := Score(doc, DefaultWeights())

	p := s.Of(doc.Root.Find("p"))
	article := s.Of(doc.Root.Find("article"))
	nav := s.Of(doc.Root.Find("nav"))
	if p == nil || article == nil || nav == nil {
		t.Fatalf("expected p, article and nav to be candidates")
	}
	if p.Score != 5 {
		t.Fatalf("p score = %v, want 5", p.Score)
	}
	if article.Propagated != 5 || article.Score != 9 {
		t.Fatalf("article propagated=%v score=%v, want 5 and 9", article.Propagated, article.Score)
	}
	if nav.Score >= 0 {
		t.Fatalf("nav should score negative, got %v", nav.Score)
	}
	if best := s.Best(); best != article {
		t.Fatalf("expected article to rank first, got %q", best.Node.Tag)
	}
}

func TestScore_BodyIsNeverACandidate(t *testing.T) {
	doc := mustParse(t, `<body><p>text</p></body>`)
	s := Score(doc, DefaultWeights())
	if s.Of(doc.Body()) != nil {
		t.Fatalf("body must not be scored")
	}
	if len(s.Candidates) != 1 {
		t.Fatalf("expected one candidate, got %d", len(s.Candidates))
	}
}

func TestScore_SkipsEmptyContainers(t *testing.T) {
	doc := mustParse(t, `<body><div class="content"></div><div><script>x()</script></div></body>`)
	s := Score(doc, DefaultWeights())
	if len(s.Candidates) != 0 {
		t.Fatalf("containers without visible text should not be candidates, got %d", len(s.Candidates))
	}
}

func TestScore_ClassAndIDWeights(t *testing.T) {
	doc := mustParse(t, `<body><div class="sidebar">short</div><div id="main-content">long enough</div></body>`)
	s := Score(doc, DefaultWeights())
	divs := doc.Root.FindAll("div")
	side, main := s.Of(divs[0]), s.Of(divs[1])
	if side.ClassWeight != -25 || side.Score != -23 {
		t.Fatalf("sidebar weight=%v score=%v", side.ClassWeight, side.Score)
	}
	// "main" and "content" are both positive; only the first positive counts
	if main.ClassWeight != 25 {
		t.Fatalf("expected one positive hit, got %v", main.ClassWeight)
	}
}

func TestScore_LengthPointsAreCapped(t *testing.T) {
	long := make([]byte, 1000)
	for i := range long {
		long[i] = 'a'
	}
	doc := mustParse(t, `<body><p>`+string(long)+`</p></body>`)
	c := Score(doc, DefaultWeights()).Candidates[0]
	if c.LengthPoints != 3 {
		t.Fatalf("expected capped length points, got %v", c.LengthPoints)
	}
}

func TestScore_CommaBonus(t *testing.T) {
	doc := mustParse(t, `<body><p>red, green, blue, and more</p><p>no commas here at all</p></body>`)
	s := Score(doc, DefaultWeights())
	if got := s.Candidates[0].CommaBonus; got != 25 {
		t.Fatalf("expected comma bonus, got %v", got)
	}
	if got := s.Candidates[1].CommaBonus; got != 0 {
		t.Fatalf("expected no comma bonus, got %v", got)
	}
}

func TestScore_LinkDensityScalesOwnScore(t *testing.T) {
	doc := mustParse(t, `<body><p><a href="/a">all link text</a></p></body>`)
	c := Score(doc, DefaultWeights()).Candidates[0]
	if c.LinkDensity != 1 || c.OwnScore != 0 {
		t.Fatalf("density=%v own=%v", c.LinkDensity, c.OwnScore)
	}
}

func TestBest_TieBreaks(t *testing.T) {
	doc := mustParse(t, `<body><p>aaa</p><p>bbbbbb</p><p>cccccc</p></body>`)
	s := Score(doc, DefaultWeights())
	best := s.Best()
	if best.Node != doc.Root.FindAll("p")[1] {
		t.Fatalf("expected longer text, then earliest, to win")
	}
	ranked := s.Ranked()
	if ranked[0] != best || ranked[2].Node != doc.Root.FindAll("p")[0] {
		t.Fatalf("unexpected ranking order")
	}
}

func TestScore_Deterministic(t *testing.T) {
	src := `<body><div class="post"><p>One, two, three, four.</p><p>Five</p></div><aside>x</aside></body>`
	a := Score(mustParse(t, src), DefaultWeights())
	b := Score(mustParse(t, src), DefaultWeights())
	if len(a.Candidates) != len(b.Candidates) {
		t.Fatalf("candidate counts differ")
	}
	for i := range a.Candidates {
		if a.Candidates[i].Score != b.Candidates[i].Score || a.Candidates[i].Node.Tag != b.Candidates[i].Node.Tag {
			t.Fatalf("candidate %d differs", i)
		}
	}
}

func TestPatternsFromMap_Sorted(t *testing.T) {
	got := PatternsFromMap(map[string]float64{"Sidebar": -10, "article": 20, "zero": 0, " ": 5})
	if len(got) != 2 {
		t.Fatalf("expected 2 patterns, got %v", got)
	}
	if got[0].Match != "article" || got[1].Match != "sidebar" {
		t.Fatalf("unexpected order %v", got)
	}
}

func TestScore_GrandparentGetsHalf(t *testing.T) {
	doc := mustParse(t, `<body><div><article><p>Lorem ipsum dolor sit amet, consectetur adipiscing elit.</p></article></div></body>`)
	s := Score(doc, DefaultWeights())
	div, article := s.Of(doc.Root.Find("div")), s.Of(doc.Root.Find("article"))
	if article.Score != 9 {
		t.Fatalf("article score = %v, want 9", article.Score)
	}
	// article own 4 in full, the paragraph's 5 at half
	if div.Propagated != 6.5 || div.Score != 8.5 {
		t.Fatalf("div propagated=%v score=%v, want 6.5 and 8.5", div.Propagated, div.Score)
	}
	if s.Best() != article {
		t.Fatalf("the closer container should win")
	}
}

func TestScore_CommaParagraphDoesNotBeatItsArticle(t *testing.T) {
	doc := mustParse(t, `<body><nav>Home About</nav><article><h1>T</h1><p>Lorem ipsum, dolor sit, amet, consectetur adipiscing elit.</p></article></body>`)
	s := Score(doc, DefaultWeights())
	p, article := s.Of(doc.Root.Find("p")), s.Of(doc.Root.Find("article"))
	if p.CommaBonus != 25 || p.Score != 30 {
		t.Fatalf("p comma=%v score=%v", p.CommaBonus, p.Score)
	}
	if article.Score != 34 || s.Best() != article {
		t.Fatalf("article score=%v, best=%q", article.Score, s.Best().Node.Tag)
	}
}

func TestScore_NegativeChildIsNotPropagated(t *testing.T) {
	doc := mustParse(t, `<body><article><p>Some text here.</p><div class="sidebar">links</div></article></body>`)
	s := Score(doc, DefaultWeights())
	article := s.Of(doc.Root.Find("article"))
	if article.Propagated != 5 {
		t.Fatalf("negative children must not lower the parent, propagated=%v", article.Propagated)
	}
}

func nestedDivs(depth int) string {
	return "<body>" + strings.Repeat("<div>Some words, ", depth) + strings.Repeat("</div>", depth) + "</body>"
}

func minScoreTime(doc *dom.Document) time.Duration {
	best := time.Duration(-1)
	for i := 0; i < 3; i++ {
		start := time.Now()
		Score(doc, DefaultWeights())
		if d := time.Since(start); best < 0 || d < best {
			best = d
		}
	}
	return best
}

func TestScore_DeepNestingScalesLinearly(t *testing.T) {
	if testing.Short() {
		t.Skip("timing test")
	}
	small := minScoreTime(mustParse(t, nestedDivs(1000)))
	large := minScoreTime(mustParse(t, nestedDivs(4000)))
	if small <= 0 {
		small = time.Microsecond
	}
	// four times the nodes; quadratic work would be about 16x
	if ratio := float64(large) / float64(small); ratio > 8 {
		t.Fatalf("scoring 4x deeper tree took %.1fx longer (%v vs %v)", ratio, large, small)
	}
}

func BenchmarkScore_DeepNesting(b *testing.B) {
	doc, err := dom.Parse([]byte(nestedDivs(4000)), "utf-8", "")
	if err != nil {
		b.Fatalf("parse: %v", err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Score(doc, DefaultWeights())
	}
}
