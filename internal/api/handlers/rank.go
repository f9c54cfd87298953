package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"geyser-scheduler/internal/analysis"
	"geyser-scheduler/internal/api/models"
	"geyser-scheduler/internal/config"
	"geyser-scheduler/internal/model"
)

// RankSites handles POST /api/v1/rank
func RankSites(c *gin.Context) {
	var req models.RankRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	byName := make(map[string]model.PowerProfile, len(req.Sites))
	for _, site := range req.Sites {
		if _, dup := byName[site.Name]; dup {
			writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "duplicate site name", map[string]any{"name": site.Name})
			return
		}
		cfg := config.Config{
			Forecast: config.ForecastConfig{Kind: site.Kind},
			Panel:    config.PanelConfig{SizeKW: site.PanelKW, SystemEfficiency: site.SystemEfficiency},
		}
		if cfg.Panel.SystemEfficiency == nil {
			eff := config.DefaultSystemEfficiency
			cfg.Panel.SystemEfficiency = &eff
		}
		p, err := cfg.Profile(site.Samples, "")
		if err != nil {
			writeConfigError(c, err)
			return
		}
		byName[site.Name] = p
	}

	ranked := analysis.RankBySolarYield(byName)

	// Apply limit
	limit := req.Limit
	if limit <= 0 {
		limit = 10
	}
	if limit > len(ranked) {
		limit = len(ranked)
	}
	ranked = ranked[:limit]

	rankings := make([]models.Ranking, len(ranked))
	for i, r := range ranked {
		rankings[i] = models.Ranking{
			Rank:            i + 1,
			Name:            r.Name,
			Count:           r.Count,
			TotalKWh:        r.TotalKWh,
			PeakKW:          r.PeakKW,
			MeanKW:          r.MeanKW,
			P05KW:           r.P05KW,
			P95KW:           r.P95KW,
			ProductiveHours: r.ProductiveHours,
		}
	}

	c.JSON(http.StatusOK, models.RankResponse{Rankings: rankings})
}
