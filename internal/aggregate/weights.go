package aggregate

import (
	"fmt"
	"math"

	"github.com/chaz8081/wer/internal/align"
	"github.com/chaz8081/wer/internal/errkind"
)

// Weights are the per-error multipliers used by the weighted rates.
type Weights struct {
	Insertions    float64 `yaml:"insertions" json:"insertions"`
	Deletions     float64 `yaml:"deletions" json:"deletions"`
	Substitutions float64 `yaml:"substitutions" json:"substitutions"`
}

// DefaultWeights counts every error once, which makes werp equal wer.
func DefaultWeights() Weights {
	return Weights{Insertions: 1, Deletions: 1, Substitutions: 1}
}

// Validate rejects negative, NaN and infinite weights.
func (w Weights) Validate() error {
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"insertions", w.Insertions},
		{"deletions", w.Deletions},
		{"substitutions", w.Substitutions},
	} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) || f.v < 0 {
			return fmt.Errorf("aggregate: %s weight must be a finite number >= 0, got %v: %w", f.name, f.v, errkind.ErrValue)
		}
	}
	return nil
}

// Errors returns the weighted error count of one alignment.
func (w Weights) Errors(r align.Result) float64 {
	return float64(r.Insertions)*w.Insertions +
		float64(r.Deletions)*w.Deletions +
		float64(r.Substitutions)*w.Substitutions
}
