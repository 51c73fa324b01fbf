package progress

import "math"

// Weighted is a milestone's progress paired with its weight in percentage
// points of the whole project.
type Weighted struct {
	Progress int
	Weight   float64
}

// Weigh pairs each milestone with its checklist-derived progress.
func Weigh(milestones []Milestone) []Weighted {
	out := make([]Weighted, len(milestones))
	for i, m := range milestones {
		out[i] = Weighted{Progress: m.Progress(), Weight: m.Weight}
	}
	return out
}

// OverallProgress returns sum(progress*weight)/100 rounded to one decimal.
// Weights are not normalized: if they do not total 100 the result shows it.
func OverallProgress(milestones []Weighted) float64 {
	if len(milestones) == 0 {
		return 0
	}
	var total float64
	for _, m := range milestones {
		total += float64(m.Progress) * m.Weight
	}
	return roundTenth(total / 100)
}

// ProjectProgress is OverallProgress over raw milestones.
func ProjectProgress(milestones []Milestone) float64 {
	return OverallProgress(Weigh(milestones))
}

// AverageProgress is the rounded mean of per-project overall progress values.
func AverageProgress(overall []float64) int {
	if len(overall) == 0 {
		return 0
	}
	var sum float64
	for _, v := range overall {
		sum += v
	}
	return int(math.Round(sum / float64(len(overall))))
}

// MergeByID concatenates sources in order and drops every element whose id
// was already seen. The first occurrence wins as-is; later duplicates are
// discarded, never merged field by field.
func MergeByID[T any](id func(T) string, sources ...[]T) []T {
	seen := make(map[string]struct{})
	var merged []T
	for _, src := range sources {
		for _, v := range src {
			key := id(v)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			merged = append(merged, v)
		}
	}
	return merged
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
