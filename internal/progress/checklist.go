package progress

import "math"

// MilestoneProgress returns round(100 * completed / len(items)).
// An empty checklist is 0%, so stub milestones never read as done.
func MilestoneProgress(items []ChecklistItem) int {
	if len(items) == 0 {
		return 0
	}
	completed := 0
	for _, item := range items {
		if item.Completed {
			completed++
		}
	}
	return int(math.Round(100 * float64(completed) / float64(len(items))))
}
