package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"geyser-scheduler/internal/api/models"
	"geyser-scheduler/internal/config"
	"geyser-scheduler/internal/sizing"
)

// SizingHandler handles battery sizing requests
type SizingHandler struct {
	presets *PresetHandler
}

func NewSizingHandler(presets *PresetHandler) *SizingHandler {
	return &SizingHandler{presets: presets}
}

// Recommend handles POST /api/v1/sizing
//
// When a battery (inline or preset) is given, the response also carries how
// long that battery would carry the outage load.
func (h *SizingHandler) Recommend(c *gin.Context) {
	var req models.SizingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	rec, err := sizing.RecommendCapacity(req.Input)
	if err != nil {
		writeConfigError(c, err)
		return
	}
	resp := models.SizingResponse{Recommendation: rec}

	if req.Battery != nil || req.BatteryFile != "" {
		cfg := config.Config{BatteryFile: req.BatteryFile}
		if req.Battery != nil {
			cfg.Battery = *req.Battery
		}
		if err := h.presets.Apply(&cfg); err != nil {
			writeConfigError(c, err)
			return
		}
		if cfg.Battery.ReserveFraction == nil {
			cfg.Battery.ReserveFraction = &req.ReserveFraction
		}
		if cfg.Battery.InverterEfficiency == nil {
			cfg.Battery.InverterEfficiency = &req.InverterEff
		}
		cfg.ApplyDefaults()
		state, err := cfg.BatteryState()
		if err != nil {
			writeConfigError(c, err)
			return
		}
		rt, err := sizing.BackupRuntime(state, rec.LoadKW, *cfg.Battery.InverterEfficiency)
		if err != nil {
			writeConfigError(c, err)
			return
		}
		resp.Runtime = &models.RuntimeInfo{Runtime: rt, Battery: cfg.Battery.Name}
	}

	c.JSON(http.StatusOK, resp)
}
