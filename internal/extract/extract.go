package extract

import (
	"errors"

	"github.com/hyperifyio/goreadable/internal/clean"
	"github.com/hyperifyio/goreadable/internal/dom"
	"github.com/hyperifyio/goreadable/internal/score"
	sel "github.com/hyperifyio/goreadable/internal/select"
)

// DefaultMaxChars is the output cap applied by the HTTP shell.
const DefaultMaxChars = 250000

// Input is one page to extract from.
type Input struct {
	HTML []byte
	// Encoding is the declared charset label, if any.
	Encoding string
	BaseURL  string
}

// Result is the readable content of a page.
type Result struct {
	Title     string
	Text      string
	Truncated bool
	// Fallback is set when no article was selected and Text is the whole
	// body text.
	Fallback bool
	Encoding string
	// Stripped counts removed elements by tag; "boilerplate" counts
	// keyword-matched containers.
	Stripped map[string]int
}

// Options holds the heuristics and limits of the pipeline.
type Options struct {
	Weights         score.Weights
	Select          sel.Options
	MaxChars        int
	ProtectMinChars int
}

// DefaultOptions returns the built-in weights and the default cap.
func DefaultOptions() Options {
	return Options{
		Weights:  score.DefaultWeights(),
		MaxChars: DefaultMaxChars,
	}
}

// Run parses, scores, selects and cleans in.HTML. The only error it returns
// is a *dom.MalformedMarkupError; a page without a clear article falls back
// to its body text.
func Run(in Input, opt Options) (Result, error) {
	doc, err := dom.Parse(in.HTML, in.Encoding, in.BaseURL)
	if err != nil {
		return Result{}, err
	}
	scoring := score.Score(doc, opt.Weights)
	cleaner := clean.Cleaner{Weights: opt.Weights, MaxChars: opt.MaxChars, ProtectMinChars: opt.ProtectMinChars, Stats: scoring.Stats()}

	selection, err := sel.Select(scoring, opt.Select)
	if err == nil {
		out := cleaner.Clean(doc, selection.Nodes)
		if out.Text != "" {
			return newResult(doc, out, false), nil
		}
	} else {
		var none *sel.NoContentFoundError
		if !errors.As(err, &none) {
			return Result{}, err
		}
	}
	return newResult(doc, cleaner.BodyText(doc), true), nil
}

// FromHTML extracts with default options and no declared encoding. Decoding
// failures yield an empty Result.
func FromHTML(input []byte) Result {
	res, err := Run(Input{HTML: input}, DefaultOptions())
	if err != nil {
		return Result{}
	}
	return res
}

func newResult(doc *dom.Document, out clean.Output, fallback bool) Result {
	return Result{
		Title:     out.Title,
		Text:      out.Text,
		Truncated: out.Truncated,
		Fallback:  fallback,
		Encoding:  doc.Encoding,
		Stripped:  out.Stripped,
	}
}
