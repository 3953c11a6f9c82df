package scoring

import "cmdpal/internal/domain"

// Scorer is anything that can rank a candidate; FZF satisfies it
type Scorer interface {
	Score(value, query string, keywords []string) float64
}

var _ Scorer = (*FZF)(nil)

// Func adapts a plain scoring function to Scorer
type Func domain.ScoreFunc

// Score implements Scorer
func (f Func) Score(value, query string, keywords []string) float64 {
	return f(value, query, keywords)
}
