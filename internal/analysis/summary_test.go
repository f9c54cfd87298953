package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geyser-scheduler/internal/model"
)

var t0 = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func hourly(t *testing.T, powers ...float64) model.PowerProfile {
	t.Helper()
	samples := make([]model.ForecastSample, len(powers))
	for i, kw := range powers {
		samples[i] = model.ForecastSample{Timestamp: t0.Add(time.Duration(i) * time.Hour), Value: kw}
	}
	p, err := model.ProfileFromPower(samples)
	require.NoError(t, err)
	return p
}

func TestSummarize(t *testing.T) {
	p := hourly(t, 0, 0, 1, 3, 5, 3, 1, 0)
	s := Summarize(p)

	assert.Equal(t, 8, s.Count)
	assert.Equal(t, t0, s.Start)
	assert.Equal(t, t0.Add(8*time.Hour), s.End)
	assert.InDelta(t, 5.0, s.PeakKW, 1e-9)
	assert.InDelta(t, 13.0, s.TotalKWh, 1e-9)
	assert.InDelta(t, 13.0/8, s.MeanKW, 1e-9)
	assert.InDelta(t, 5.0, s.ProductiveHours, 1e-9)
	assert.InDelta(t, 0.0, s.P05KW, 1e-9)
	assert.InDelta(t, 5.0, s.P95KW, 1e-9)
	assert.LessOrEqual(t, s.P05KW, s.MeanKW)
	assert.LessOrEqual(t, s.MeanKW, s.P95KW)
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	assert.Zero(t, s.Count)
	assert.Zero(t, s.TotalKWh)
}

func TestRankBySolarYield(t *testing.T) {
	ranked := RankBySolarYield(map[string]model.PowerProfile{
		"cape-town":    hourly(t, 0, 2, 4, 2, 0),
		"johannesburg": hourly(t, 0, 3, 5, 3, 0),
		"durban":       hourly(t, 0, 1, 2, 1, 0),
		"george":       hourly(t, 0, 1, 2, 1, 0),
	})
	require.Len(t, ranked, 4)
	assert.Equal(t, "johannesburg", ranked[0].Name)
	assert.Equal(t, "cape-town", ranked[1].Name)
	assert.Equal(t, "durban", ranked[2].Name)
	assert.Equal(t, "george", ranked[3].Name)
}
