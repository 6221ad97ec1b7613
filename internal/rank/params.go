package rank

import "fmt"

// Strategy names a ranking strategy.
type Strategy string

const (
	// StrategyLevenshtein ranks by normalized edit distance.
	StrategyLevenshtein Strategy = "levenshtein"

	// StrategyEmbedding ranks by cosine similarity of embeddings.
	StrategyEmbedding Strategy = "embedding"
)

// IsValid reports whether s is a known strategy.
func (s Strategy) IsValid() bool {
	return s == StrategyLevenshtein || s == StrategyEmbedding
}

// Threshold is the minimum score a candidate needs to be kept.
// When Auto is set, Value is ignored and the cut-off is derived from the
// candidate set itself.
type Threshold struct {
	Auto  bool    `json:"auto"`
	Value float64 `json:"value,omitempty"`
}

// String renders the threshold for logs.
func (t Threshold) String() string {
	if t.Auto {
		return "auto"
	}
	return fmt.Sprintf("%.3f", t.Value)
}

// Params selects a ranking strategy and its threshold.
type Params struct {
	Strategy  Strategy  `json:"strategy"`
	Threshold Threshold `json:"threshold"`
}

// Levenshtein returns lexical ranking params with an automatic threshold.
func Levenshtein() Params {
	return Params{
		Strategy:  StrategyLevenshtein,
		Threshold: Threshold{Auto: true},
	}
}

// Embedding returns semantic ranking params that keep every candidate with a
// non-negative cosine score.
func Embedding() Params {
	return Params{
		Strategy:  StrategyEmbedding,
		Threshold: Threshold{Value: 0},
	}
}

// WithThreshold returns a copy of p with a fixed threshold.
func (p Params) WithThreshold(v float64) Params {
	p.Threshold = Threshold{Value: v}
	return p
}

// Validate checks the params before a search is issued.
func (p Params) Validate() error {
	if !p.Strategy.IsValid() {
		return fmt.Errorf("invalid rank strategy: %q", p.Strategy)
	}
	if !p.Threshold.Auto && (p.Threshold.Value < -1 || p.Threshold.Value > 1) {
		return fmt.Errorf("threshold must be between -1 and 1, got %f", p.Threshold.Value)
	}
	return nil
}
