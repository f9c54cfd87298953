package schedule

import (
	"fmt"
	"strings"
	"time"

	"geyser-scheduler/internal/model"
)

// StartWindow restricts run starts to a daily clock window [From, To).
// Both fields are "HH:MM"; a window with From > To wraps across midnight.
// Leaving both empty allows any start time.
//
// Times are interpreted in each forecast timestamp's own location.
type StartWindow struct {
	From string `json:"from,omitempty" yaml:"from"`
	To   string `json:"to,omitempty" yaml:"to"`
}

type clockWindow struct {
	enabled bool
	start   int
	end     int
}

func (w StartWindow) parse() (clockWindow, error) {
	from := strings.TrimSpace(w.From)
	to := strings.TrimSpace(w.To)
	if from == "" && to == "" {
		return clockWindow{}, nil
	}
	if from == "" || to == "" {
		return clockWindow{}, &model.ParamError{Field: "scheduler.start_window", Message: "from and to must both be set"}
	}
	start, err := parseHHMM(from)
	if err != nil {
		return clockWindow{}, &model.ParamError{Field: "scheduler.start_window.from", Message: err.Error()}
	}
	end, err := parseHHMM(to)
	if err != nil {
		return clockWindow{}, &model.ParamError{Field: "scheduler.start_window.to", Message: err.Error()}
	}
	if start == end {
		return clockWindow{}, &model.ParamError{Field: "scheduler.start_window", Message: "from and to are equal, window is empty"}
	}
	return clockWindow{enabled: true, start: start, end: end}, nil
}

func (w clockWindow) allows(t time.Time) bool {
	if !w.enabled {
		return true
	}
	return inWindow(t.Hour()*60+t.Minute(), w.start, w.end)
}

func parseHHMM(s string) (int, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	var h, m int
	if _, err := fmt.Sscanf(parts[0], "%d", &h); err != nil {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	if _, err := fmt.Sscanf(parts[1], "%d", &m); err != nil {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	return h*60 + m, nil
}

// inWindow checks whether tMins is in [start, end) on a 24h clock.
// If start < end, it's a normal same-day window.
// If start > end, it wraps across midnight.
func inWindow(tMins, start, end int) bool {
	if start < end {
		return tMins >= start && tMins < end
	}
	return tMins >= start || tMins < end
}
