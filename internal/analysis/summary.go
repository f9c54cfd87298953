package analysis

import (
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"geyser-scheduler/internal/model"
)

// ProfileSummary is a forecast-level summary you can use for ranking sites
// or sanity-checking a forecast before scheduling against it.
type ProfileSummary struct {
	Name string `json:"name,omitempty"`

	Start time.Time `json:"start"`
	End   time.Time `json:"end"`

	Count int `json:"count"`

	PeakKW float64 `json:"peak_kw"`
	MeanKW float64 `json:"mean_kw"`
	P05KW  float64 `json:"p05_kw"`
	P95KW  float64 `json:"p95_kw"`

	TotalKWh float64 `json:"total_kwh"`
	// ProductiveHours counts the hours with any PV output.
	ProductiveHours float64 `json:"productive_hours"`
}

// Summarize computes power statistics over a profile. Mean and the
// percentiles are time-weighted so irregular steps do not skew them.
func Summarize(p model.PowerProfile) ProfileSummary {
	s := ProfileSummary{}
	if len(p) == 0 {
		return s
	}
	s.Count = len(p)
	s.Start = p.Start()
	s.End = p.End()

	vals := make([]float64, 0, len(p))
	weights := make([]float64, 0, len(p))
	hours := 0.0
	for _, sample := range p {
		dt := sample.DurationHours()
		s.PeakKW = math.Max(s.PeakKW, sample.PowerKW)
		s.TotalKWh += sample.EnergyKWh()
		if sample.PowerKW > 0 {
			s.ProductiveHours += dt
		}
		hours += dt
		vals = append(vals, sample.PowerKW)
		weights = append(weights, dt)
	}
	if hours > 0 {
		s.MeanKW = s.TotalKWh / hours
	}

	// stat.Quantile needs x sorted; keep weights paired with their values.
	idx := make([]int, len(vals))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return vals[idx[a]] < vals[idx[b]] })
	sx := make([]float64, len(idx))
	sw := make([]float64, len(idx))
	for i, k := range idx {
		sx[i] = vals[k]
		sw[i] = weights[k]
	}
	s.P05KW = stat.Quantile(0.05, stat.Empirical, sx, sw)
	s.P95KW = stat.Quantile(0.95, stat.Empirical, sx, sw)
	return s
}
