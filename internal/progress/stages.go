package progress

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
)

// ErrWeightSum is returned when a stage template's weights do not total 100.
var ErrWeightSum = errors.New("stage weights must sum to 100")

// Stage is one entry of the lifecycle template new projects are seeded from.
type Stage struct {
	Key       string   `validate:"required"`
	Label     string   `validate:"required"`
	Weight    float64  `validate:"gt=0,lte=100"`
	Checklist []string `validate:"min=1,dive,required"`
}

// DefaultStages is the six-stage research lifecycle.
var DefaultStages = []Stage{
	{
		Key:    "literature_review",
		Label:  "Literature review",
		Weight: 15,
		Checklist: []string{
			"Search core keywords (Google Scholar, DBpia)",
			"Select 10 key papers",
			"Identify limitations of prior work",
			"Establish the study's novelty",
		},
	},
	{
		Key:    "methodology",
		Label:  "Methodology design",
		Weight: 15,
		Checklist: []string{
			"Formulate hypotheses",
			"Define variables and measurements",
			"Choose the analysis model",
			"Plan data acquisition",
		},
	},
	{
		Key:    "data_collection",
		Label:  "Data collection",
		Weight: 15,
		Checklist: []string{
			"Acquire public datasets",
			"Preprocess and clean data",
			"Handle missing values and outliers",
			"Finish data structuring",
		},
	},
	{
		Key:    "analysis",
		Label:  "Analysis",
		Weight: 25,
		Checklist: []string{
			"Descriptive statistics",
			"Visualisation",
			"Hypothesis testing / model training",
			"Interpret results",
		},
	},
	{
		Key:    "draft_writing",
		Label:  "Draft writing",
		Weight: 20,
		Checklist: []string{
			"Introduction and background",
			"Describe methods",
			"Summarise results",
			"Conclusions and implications",
		},
	},
	{
		Key:    "submission",
		Label:  "Submission",
		Weight: 10,
		Checklist: []string{
			"Format to the target journal's author guidelines",
			"Write the cover letter",
			"Submit the manuscript",
			"Pay the review fee",
		},
	},
}

var validate = validator.New()

// ValidateTemplate checks every stage and that keys are unique and weights
// total 100.
func ValidateTemplate(stages []Stage) error {
	if len(stages) == 0 {
		return fmt.Errorf("empty stage template: %w", ErrWeightSum)
	}
	seen := make(map[string]struct{}, len(stages))
	var sum float64
	for i, s := range stages {
		if err := validate.Struct(s); err != nil {
			return fmt.Errorf("stage %d: %w", i, err)
		}
		if _, dup := seen[s.Key]; dup {
			return fmt.Errorf("duplicate stage key %q", s.Key)
		}
		seen[s.Key] = struct{}{}
		sum += s.Weight
	}
	if math.Abs(sum-100) > 1e-9 {
		return fmt.Errorf("got %.2f: %w", sum, ErrWeightSum)
	}
	return nil
}

// StageLabel returns the display label for a stage key, or the key itself
// when it is not part of DefaultStages.
func StageLabel(key string) string {
	for _, s := range DefaultStages {
		if s.Key == key {
			return s.Label
		}
	}
	return key
}
