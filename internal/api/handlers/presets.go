package handlers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"geyser-scheduler/internal/api/models"
	"geyser-scheduler/internal/config"
)

// PresetHandler serves battery presets from a directory of YAML files.
type PresetHandler struct {
	dir string
	log zerolog.Logger
}

// NewPresetHandler creates a new preset handler
func NewPresetHandler(dir string, log zerolog.Logger) *PresetHandler {
	// Convert to absolute path for reliability
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	log.Info().Str("dir", dir).Msg("using battery preset directory")
	return &PresetHandler{dir: dir, log: log}
}

// ListPresets handles GET /api/v1/presets
func (h *PresetHandler) ListPresets(c *gin.Context) {
	presets := []models.PresetInfo{}

	entries, err := os.ReadDir(h.dir)
	if err != nil {
		h.log.Warn().Err(err).Str("dir", h.dir).Msg("failed to read preset directory")
		c.JSON(http.StatusOK, gin.H{"presets": presets})
		return
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(h.dir, entry.Name())
		b, err := config.LoadBatteryFile(path)
		if err != nil {
			h.log.Warn().Err(err).Str("file", path).Msg("skipping invalid preset")
			continue
		}

		// Keep the full filename without extension as the ID
		id := strings.TrimSuffix(entry.Name(), ".yaml")
		name := b.Name
		if name == "" {
			name = id
		}
		presets = append(presets, models.PresetInfo{
			ID:   id,
			Name: name,
			File: path,
			Specs: models.PresetSpecs{
				CapacityKWh:     b.CapacityKWh,
				ReserveFraction: b.ReserveFraction,
				NominalVoltage:  b.NominalVoltage,
			},
		})
	}

	h.log.Debug().Int("count", len(presets)).Msg("listing presets")
	c.JSON(http.StatusOK, gin.H{"presets": presets})
}

// Apply loads cfg.BatteryFile (a preset ID such as "wall_10kwh") and merges
// the request's battery fields over it.
func (h *PresetHandler) Apply(cfg *config.Config) error {
	if cfg.BatteryFile == "" {
		return nil
	}
	b, err := h.Load(cfg.BatteryFile)
	if err != nil {
		return err
	}
	cfg.Battery = config.MergeBattery(b, cfg.Battery)
	return nil
}

// Load reads one preset by ID. IDs are plain file names; paths are rejected.
func (h *PresetHandler) Load(id string) (config.BatteryConfig, error) {
	id = strings.TrimSuffix(id, ".yaml")
	if id == "" || id != filepath.Base(id) || strings.HasPrefix(id, ".") {
		return config.BatteryConfig{}, fmt.Errorf("invalid battery preset %q", id)
	}
	b, err := config.LoadBatteryFile(filepath.Join(h.dir, id+".yaml"))
	if err != nil {
		if os.IsNotExist(err) {
			return config.BatteryConfig{}, fmt.Errorf("unknown battery preset %q", id)
		}
		return config.BatteryConfig{}, err
	}
	return b, nil
}
