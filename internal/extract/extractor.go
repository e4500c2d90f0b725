package extract

// Extractor defines a minimal interface for content extraction strategies.
// Implementations must be deterministic and free of side effects.
type Extractor interface {
	// Extract converts raw HTML bytes into a Result.
	Extract(in Input) (Result, error)
}

// ReadabilityExtractor scores block-level nodes, selects the main article
// and cleans it. A zero Options value is replaced by DefaultOptions.
type ReadabilityExtractor struct {
	Options Options
}

func (e ReadabilityExtractor) Extract(in Input) (Result, error) {
	opt := e.Options
	if opt.Weights.TagBase == nil {
		opt.Weights = DefaultOptions().Weights
	}
	return Run(in, opt)
}
