package analysis

import (
	"sort"

	"geyser-scheduler/internal/model"
)

// RankBySolarYield summarizes each named profile and sorts descending by total energy.
// Ties keep name order so the ranking is stable across runs.
func RankBySolarYield(byName map[string]model.PowerProfile) []ProfileSummary {
	out := make([]ProfileSummary, 0, len(byName))
	for name, p := range byName {
		s := Summarize(p)
		s.Name = name
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalKWh != out[j].TotalKWh {
			return out[i].TotalKWh > out[j].TotalKWh
		}
		return out[i].Name < out[j].Name
	})
	return out
}
