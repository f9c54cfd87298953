package data

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"geyser-scheduler/internal/model"
)

// LoadForecast reads a forecast file, picking the decoder from the extension.
func LoadForecast(path string) (*model.ForecastFile, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return LoadForecastJSON(path)
	case ".csv":
		return LoadForecastCSV(path)
	default:
		return nil, fmt.Errorf("unsupported forecast format: %s", path)
	}
}

func LoadForecastJSON(path string) (*model.ForecastFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	ff, err := DecodeForecastJSON(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ff, nil
}

func DecodeForecastJSON(r io.Reader) (*model.ForecastFile, error) {
	var ff model.ForecastFile
	if err := json.NewDecoder(r).Decode(&ff); err != nil {
		return nil, fmt.Errorf("failed to parse forecast: %w", err)
	}
	return &ff, nil
}

func LoadForecastCSV(path string) (*model.ForecastFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	ff, err := DecodeForecastCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ff, nil
}

// DecodeForecastCSV reads "timestamp,value" rows. The header row is required;
// a value column named "power_kw" marks the file as a power forecast,
// "ghi" or "irradiance" as irradiance. Timestamps are RFC3339.
func DecodeForecastCSV(r io.Reader) (*model.ForecastFile, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 2
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("forecast csv is empty")
		}
		return nil, err
	}
	if strings.ToLower(strings.TrimSpace(header[0])) != "timestamp" {
		return nil, fmt.Errorf("forecast csv: first column must be timestamp, got %q", header[0])
	}

	ff := &model.ForecastFile{}
	switch strings.ToLower(strings.TrimSpace(header[1])) {
	case "power_kw":
		ff.Kind = "power"
	case "ghi", "irradiance":
		ff.Kind = "irradiance"
	}

	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line++
		ts, err := time.Parse(time.RFC3339, strings.TrimSpace(rec[0]))
		if err != nil {
			return nil, fmt.Errorf("forecast csv line %d: bad timestamp: %w", line, err)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("forecast csv line %d: bad value: %w", line, err)
		}
		ff.Samples = append(ff.Samples, model.ForecastSample{Timestamp: ts, Value: v})
	}
	return ff, nil
}
