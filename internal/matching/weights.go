// Package matching implements the scholarship eligibility filter and the
// weighted scoring engine: a catalog of open scholarships is narrowed by
// hard eligibility gates, survivors are ranked with an additive point
// system, and results are annotated with deadline and document metadata.
package matching

import (
	"embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed config/weights.yaml
var weightsYAML embed.FS

// QuickBasePercentage is added to every quick-match percentage to reflect
// that the hard eligibility gates were already passed; the remaining
// points scale with the quick score.
const QuickBasePercentage = 25

// ScoringWeights is the immutable scoring policy injected into the engine.
// Each field is the exact number of points the corresponding factor
// contributes when triggered; the maximum score is the sum of all fields.
type ScoringWeights struct {
	Version           string `yaml:"version" json:"version"`
	PriorityCourse    int    `yaml:"priority_course" json:"priority_course"`
	PublicSHS         int    `yaml:"public_shs" json:"public_shs"`
	StrandMatch       int    `yaml:"strand_match" json:"strand_match"`
	PriorityStrand    int    `yaml:"priority_strand" json:"priority_strand"`
	DocumentsComplete int    `yaml:"documents_complete" json:"documents_complete"`
	IncomeLower       int    `yaml:"income_lower" json:"income_lower"`
	GWAHigher         int    `yaml:"gwa_higher" json:"gwa_higher"`
	ResidencyMargin   int    `yaml:"residency_margin" json:"residency_margin"`
	PWD               int    `yaml:"pwd" json:"pwd"`
	SoloParentChild   int    `yaml:"solo_parent_child" json:"solo_parent_child"`
	Indigenous        int    `yaml:"indigenous" json:"indigenous"`
}

// MaxPossibleScore is the sum of every weight, the denominator of the
// full-match percentage.
func (w ScoringWeights) MaxPossibleScore() int {
	return w.PriorityCourse + w.PublicSHS + w.StrandMatch + w.PriorityStrand +
		w.DocumentsComplete + w.IncomeLower + w.GWAHigher + w.ResidencyMargin +
		w.PWD + w.SoloParentChild + w.Indigenous
}

// QuickMaxScore is the maximum for the quick variant, which only evaluates
// the course, SHS-type and strand factors.
func (w ScoringWeights) QuickMaxScore() int {
	return w.PriorityCourse + w.PublicSHS + w.StrandMatch
}

func (w ScoringWeights) validate() error {
	if w.MaxPossibleScore() <= 0 {
		return fmt.Errorf("scoring weights sum to %d, must be positive", w.MaxPossibleScore())
	}
	if w.QuickMaxScore() <= 0 {
		return fmt.Errorf("quick scoring weights sum to %d, must be positive", w.QuickMaxScore())
	}
	return nil
}

var (
	defaultWeightsOnce sync.Once
	defaultWeights     ScoringWeights
	defaultWeightsErr  error
)

// DefaultWeights loads the embedded scoring policy. The result is parsed
// once and reused.
func DefaultWeights() (ScoringWeights, error) {
	defaultWeightsOnce.Do(func() {
		raw, err := weightsYAML.ReadFile("config/weights.yaml")
		if err != nil {
			defaultWeightsErr = fmt.Errorf("failed to read embedded weights: %w", err)
			return
		}
		var w ScoringWeights
		if err := yaml.Unmarshal(raw, &w); err != nil {
			defaultWeightsErr = fmt.Errorf("failed to parse scoring weights: %w", err)
			return
		}
		if err := w.validate(); err != nil {
			defaultWeightsErr = err
			return
		}
		defaultWeights = w
	})

	if defaultWeightsErr != nil {
		return ScoringWeights{}, defaultWeightsErr
	}
	return defaultWeights, nil
}
