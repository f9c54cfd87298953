package data

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Site is a candidate installation with its own forecast file.
type Site struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Forecast string  `json:"forecast"` // path, relative to the site list
	PanelKW  float64 `json:"panel_kw"` // used when the forecast is irradiance
}

// SiteList represents a collection of sites
type SiteList struct {
	UpdatedAt string `json:"updated_at,omitempty"` // ISO 8601 timestamp
	Sites     []Site `json:"sites"`
}

// LoadSites loads sites from a JSON file. Forecast paths are resolved
// relative to the file's directory.
func LoadSites(filePath string) (*SiteList, error) {
	raw, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read sites file: %w", err)
	}

	var list SiteList
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("failed to parse sites file: %w", err)
	}
	dir := filepath.Dir(filePath)
	for i, s := range list.Sites {
		if s.Forecast != "" && !filepath.IsAbs(s.Forecast) {
			list.Sites[i].Forecast = filepath.Join(dir, s.Forecast)
		}
		if s.Name == "" {
			list.Sites[i].Name = s.ID
		}
	}

	return &list, nil
}
