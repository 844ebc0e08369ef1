package roadmap

import "math"

// ComputeProgress returns the rounded percentage of the subject's tasks
// present in done. IDs in done that are not tasks of the subject are
// ignored. A subject without tasks reports 0.
func ComputeProgress(s Subject, done CompletedSet) int {
	if len(s.Tasks) == 0 {
		return 0
	}
	completed := 0
	for _, t := range s.Tasks {
		if done.Has(t.ID) {
			completed++
		}
	}
	return Percent(completed, len(s.Tasks))
}

// Percent returns round(100*part/whole), or 0 when whole is not positive.
func Percent(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(part) / float64(whole)))
}
