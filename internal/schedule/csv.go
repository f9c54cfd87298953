package schedule

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"time"
)

// WriteTimelineCSV writes the timeline to path, creating or truncating it.
func WriteTimelineCSV(path string, timeline []TimelineRow) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return EncodeTimelineCSV(f, timeline)
}

// EncodeTimelineCSV writes the timeline as CSV to w.
func EncodeTimelineCSV(w io.Writer, timeline []TimelineRow) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{
		"index",
		"start",
		"end",
		"power_kw",
		"run",
		"appliance_on",
		"action",
		"produced_kwh",
		"consumed_kwh",
		"stored_kwh",
		"curtailed_kwh",
		"discharged_kwh",
		"grid_drawn_kwh",
		"energy_start_kwh",
		"energy_end_kwh",
		"soc_start",
		"soc_end",
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, r := range timeline {
		row := []string{
			strconv.Itoa(r.Index),
			fmtTime(r.Start),
			fmtTime(r.End),
			fmtFloat(r.PowerKW),
			strconv.Itoa(r.Run),
			strconv.FormatBool(r.ApplianceOn),
			string(r.Action),
			fmtFloat(r.ProducedKWh),
			fmtFloat(r.ConsumedKWh),
			fmtFloat(r.StoredKWh),
			fmtFloat(r.CurtailedKWh),
			fmtFloat(r.DischargedKWh),
			fmtFloat(r.GridDrawnKWh),
			fmtFloat(r.EnergyStartKWh),
			fmtFloat(r.EnergyEndKWh),
			fmtFloat(r.SOCStart),
			fmtFloat(r.SOCEnd),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func fmtTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
