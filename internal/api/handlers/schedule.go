package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"geyser-scheduler/internal/api/models"
	"geyser-scheduler/internal/config"
	"geyser-scheduler/internal/data"
	"geyser-scheduler/internal/metrics"
	"geyser-scheduler/internal/savings"
	"geyser-scheduler/internal/schedule"
)

const compareConcurrency = 4

// ScheduleHandler handles scheduling requests
type ScheduleHandler struct {
	scanner       *schedule.Scanner
	presets       *PresetHandler
	cache         *data.ResultCache
	metrics       *metrics.Recorder
	log           zerolog.Logger
	maxVariations int
}

// NewScheduleHandler creates a new schedule handler. rec may be nil.
func NewScheduleHandler(presets *PresetHandler, cache *data.ResultCache, rec *metrics.Recorder, log zerolog.Logger, maxVariations int) *ScheduleHandler {
	return &ScheduleHandler{
		scanner:       schedule.New().WithLogger(log),
		presets:       presets,
		cache:         cache,
		metrics:       rec,
		log:           log,
		maxVariations: maxVariations,
	}
}

// RunSchedule handles POST /api/v1/schedule
func (h *ScheduleHandler) RunSchedule(c *gin.Context) {
	var req models.ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	cfg := req.Config
	res, err := h.plan(&cfg, req.Forecast)
	if err != nil {
		writeConfigError(c, err)
		return
	}

	resp := buildResponse(res, &cfg)
	resp.ID = h.cache.Put(res)
	if req.Options.IncludeTimeline {
		resp.Timeline = convertTimeline(res.Timeline)
	}
	h.log.Info().
		Str("id", resp.ID).
		Str("status", resp.Status).
		Int("runs", len(res.Runs)).
		Msg("schedule computed")
	c.JSON(http.StatusOK, resp)
}

// GetTimeline handles GET /api/v1/schedule/:id/timeline
func (h *ScheduleHandler) GetTimeline(c *gin.Context) {
	id := c.Param("id")
	res, ok := h.cache.Get(id)
	if !ok {
		writeError(c, http.StatusNotFound, "NOT_FOUND", "no schedule result with this id; results expire", map[string]any{"id": id})
		return
	}
	format := c.DefaultQuery("format", "json")
	switch format {
	case "csv":
		c.Header("Content-Type", "text/csv")
		c.Header("Content-Disposition", "attachment; filename=timeline-"+id+".csv")
		c.Status(http.StatusOK)
		if err := schedule.EncodeTimelineCSV(c.Writer, res.Timeline); err != nil {
			h.log.Error().Err(err).Str("id", id).Msg("failed to write timeline csv")
		}
	case "json":
		c.JSON(http.StatusOK, models.TimelineResponse{ID: id, Timeline: convertTimeline(res.Timeline)})
	default:
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "format must be json or csv", map[string]any{"format": format})
	}
}

// CompareSchedules handles POST /api/v1/schedule/compare
func (h *ScheduleHandler) CompareSchedules(c *gin.Context) {
	var req models.CompareScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if len(req.Variations) > h.maxVariations {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "too many variations", map[string]any{"max": h.maxVariations})
		return
	}

	comparison := make([]models.ComparisonResult, len(req.Variations))
	ctx := c.Request.Context()
	var g errgroup.Group
	g.SetLimit(compareConcurrency)
	for i, variation := range req.Variations {
		i, variation := i, variation
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			cfg := mergeConfig(req.BaseConfig, variation)
			out := models.ComparisonResult{Name: variation.Name}
			res, err := h.plan(&cfg, req.Forecast)
			if err != nil {
				detail := errorDetail(err)
				out.Status = "invalid"
				out.Error = &detail
			} else {
				resp := buildResponse(res, &cfg)
				out.Status = resp.Status
				out.Decision = resp.Decision
				out.Runs = resp.Runs
				out.Summary = &resp.Summary
			}
			comparison[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		h.log.Warn().Err(err).Msg("compare aborted")
		writeError(c, http.StatusServiceUnavailable, "CANCELLED", err.Error(), nil)
		return
	}

	c.JSON(http.StatusOK, models.CompareScheduleResponse{Comparison: comparison})
}

// plan resolves presets and defaults in cfg and runs the scanner.
func (h *ScheduleHandler) plan(cfg *config.Config, fp models.ForecastPayload) (*schedule.Result, error) {
	if err := h.presets.Apply(cfg); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	profile, err := cfg.Profile(fp.Samples, fp.Kind)
	if err != nil {
		return nil, err
	}
	req, err := cfg.ScheduleRequest(profile)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	res, err := h.scanner.Plan(req)
	h.metrics.ObserveSchedule(res, time.Since(start))
	return res, err
}

// mergeConfig overlays the set fields of a variation onto the base config.
func mergeConfig(base config.Config, v models.ScheduleVariation) config.Config {
	merged := base
	if v.BatteryFile != "" {
		merged.BatteryFile = v.BatteryFile
	}
	merged.Battery = config.MergeBattery(base.Battery, v.Battery)
	if v.HouseholdLoadKW != nil {
		merged.Household.LoadKW = *v.HouseholdLoadKW
	}
	if v.Load != nil {
		merged.Load = *v.Load
	}
	if v.Scheduler != nil {
		merged.Scheduler = *v.Scheduler
	}
	return merged
}

func buildResponse(res *schedule.Result, cfg *config.Config) models.ScheduleResponse {
	resp := models.ScheduleResponse{
		Status:   "not_scheduled",
		Decision: res.First(),
		Runs:     res.Runs,
		Summary:  buildSummary(res),
	}
	if resp.Runs == nil {
		resp.Runs = []schedule.Decision{}
	}
	if len(res.Runs) > 0 {
		resp.Status = "scheduled"
	}
	if cfg.Tariff.PerKWh > 0 {
		if p, err := savings.ProjectSavings(cfg.Load, cfg.Tariff.PerKWh); err == nil {
			resp.Savings = savingsResponse(p, cfg.Tariff.Currency)
			var avoided float64
			for _, d := range res.Runs {
				avoided += d.GridAvoidedKWh
			}
			if cost, err := savings.AvoidedCost(avoided, cfg.Tariff.PerKWh); err == nil && len(res.Runs) > 0 {
				resp.Savings.Avoided = cost.StringFixed(2)
			}
		}
	}
	return resp
}

func buildSummary(res *schedule.Result) models.ScheduleSummary {
	s := models.ScheduleSummary{
		Load:             res.Load,
		Intervals:        len(res.Timeline),
		InitialEnergyKWh: res.InitialEnergyKWh,
		FinalEnergyKWh:   res.FinalEnergyKWh,
		HouseholdGridKWh: res.HouseholdGridKWh,
	}
	if len(res.Timeline) > 0 {
		s.Window = models.TimeWindow{
			Start: res.Timeline[0].Start,
			End:   res.Timeline[len(res.Timeline)-1].End,
		}
	}
	for _, d := range res.Runs {
		s.SolarDirectKWh += d.SolarDirectKWh
		s.BatteryUsedKWh += d.BatteryRequiredKWh
	}
	return s
}

func convertTimeline(rows []schedule.TimelineRow) []models.TimelineRow {
	out := make([]models.TimelineRow, len(rows))
	for i, r := range rows {
		out[i] = models.TimelineRow{
			Index:          r.Index,
			Start:          r.Start,
			End:            r.End,
			PowerKW:        r.PowerKW,
			Run:            r.Run,
			ApplianceOn:    r.ApplianceOn,
			Action:         string(r.Action),
			ProducedKWh:    r.ProducedKWh,
			ConsumedKWh:    r.ConsumedKWh,
			StoredKWh:      r.StoredKWh,
			CurtailedKWh:   r.CurtailedKWh,
			DischargedKWh:  r.DischargedKWh,
			GridDrawnKWh:   r.GridDrawnKWh,
			EnergyStartKWh: r.EnergyStartKWh,
			EnergyEndKWh:   r.EnergyEndKWh,
			SOCStart:       r.SOCStart,
			SOCEnd:         r.SOCEnd,
		}
	}
	return out
}
