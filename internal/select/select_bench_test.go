package selecter

import (
    "fmt"
    "math/rand"
    "strings"
    "testing"

    "github.com/hyperifyio/goreadable/internal/dom"
    "github.com/hyperifyio/goreadable/internal/score"
)

func BenchmarkSelect(b *testing.B) {
	rng := rand.New(rand.NewSource(42))
	makeDoc := func(n int) *dom.Document {
		var sb strings.Builder
		sb.WriteString(`<html><body><nav><a href="/">Home</a></nav><div class="content">`)
		for i := 0; i < n; i++ {
			// Mix of strong paragraphs, short lines and link lists
			switch rng.Intn(3) {
			case 0:
				sb.WriteString("<p>" + randSnippet(rng, 80, 400) + "</p>")
			case 1:
				sb.WriteString(sprintf("<p>Short line %d.</p>", i))
			default:
				sb.WriteString(sprintf(`<div class="related"><a href="/x/%d">Related %d</a></div>`, i, i))
			}
		}
		sb.WriteString(`</div><footer>Copyright</footer></body></html>`)
		doc, err := dom.Parse([]byte(sb.String()), "utf-8", "")
		if err != nil {
			b.Fatalf("parse: %v", err)
		}
		return doc
	}

	cases := []struct{
		name string
		n    int
		opt  Options
	}{
		{"n=50, default", 50, Options{}},
		{"n=200, default", 200, Options{}},
		{"n=200, strict", 200, Options{MinScore: 20, SiblingRatio: 0.5}},
	}

	w := score.DefaultWeights()
	for _, cs := range cases {
		b.Run(cs.name, func(b *testing.B) {
			scoring := score.Score(makeDoc(cs.n), w)
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_, _ = Select(scoring, cs.opt)
			}
		})
	}
}

func randSnippet(rng *rand.Rand, min, max int) string {
	n := rng.Intn(max-min+1) + min
	buf := make([]byte, 0, n)
	for len(buf) < n {
		buf = append(buf, sampleSnippet...)
	}
	return string(buf[:n])
}

const sampleSnippet = "This is a sample snippet, with a variety of common English words, to exercise scoring and ranking. "

func sprintf(format string, a ...any) string { return fmt.Sprintf(format, a...) }
