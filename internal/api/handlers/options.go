package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"geyser-scheduler/internal/api/models"
	"geyser-scheduler/internal/config"
	"geyser-scheduler/internal/schedule"
)

// ListOptions handles GET /api/v1/options
func ListOptions(c *gin.Context) {
	options := []models.OptionInfo{
		{
			Name:        "horizon",
			Type:        "duration",
			Description: "How far ahead run starts are considered (Go duration, e.g. '24h')",
			Default:     config.DefaultHorizon.String(),
		},
		{
			Name:        "now",
			Type:        "string",
			Description: "RFC3339 time scanning starts from. Defaults to the first forecast sample",
		},
		{
			Name:        "charge_during_run",
			Type:        "bool",
			Description: "Let solar surplus charge the battery while the appliance runs. When false the surplus is curtailed",
			Default:     true,
		},
		{
			Name:        "below_reserve",
			Type:        "string",
			Description: "'hold': a battery under its reserve cannot discharge but solar-covered runs are allowed. 'reject': no run may start until the battery is back above reserve",
			Default:     string(schedule.BelowReserveHold),
		},
		{
			Name:        "max_runs",
			Type:        "int",
			Description: "Number of non-overlapping runs to schedule inside the horizon",
			Default:     1,
		},
		{
			Name:        "start_window",
			Type:        "window",
			Description: "Daily clock window runs may start in, {from: 'HH:MM', to: 'HH:MM'}. Wraps midnight when from > to",
		},
	}
	c.JSON(http.StatusOK, gin.H{"options": options})
}
