package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"geyser-scheduler/internal/api/handlers"
	"geyser-scheduler/internal/api/middleware"
	"geyser-scheduler/internal/api/models"
	"geyser-scheduler/internal/config"
	"geyser-scheduler/internal/data"
	"geyser-scheduler/internal/metrics"
)

// Deps are the shared services the routes are built on.
type Deps struct {
	Config   *config.Server
	Cache    *data.ResultCache
	Metrics  *metrics.Recorder
	Gatherer prometheus.Gatherer
	Log      zerolog.Logger
}

// NewRouter builds the gin engine with middleware and all API routes.
func NewRouter(d Deps) *gin.Engine {
	router := gin.New()

	router.Use(middleware.ErrorHandler(d.Log))
	router.Use(middleware.Logger(d.Log))
	router.Use(middleware.CORS(d.Config.Origins()))
	if d.Metrics != nil {
		router.Use(d.Metrics.Middleware())
	}

	presets := handlers.NewPresetHandler(d.Config.PresetDir, d.Log)
	scheduleHandler := handlers.NewScheduleHandler(presets, d.Cache, d.Metrics, d.Log, d.Config.MaxCompareVariations)
	sizingHandler := handlers.NewSizingHandler(presets)
	siteHandler := handlers.NewSiteHandler(d.Config.SitesFile, d.Log)

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler(d.Gatherer)))

	// API routes
	v1 := router.Group("/api/v1")
	{
		v1.POST("/schedule", scheduleHandler.RunSchedule)
		v1.GET("/schedule/:id/timeline", scheduleHandler.GetTimeline)
		v1.POST("/schedule/compare", scheduleHandler.CompareSchedules)

		v1.POST("/sizing", sizingHandler.Recommend)
		v1.POST("/savings", handlers.ProjectSavings)
		v1.POST("/rank", handlers.RankSites)

		v1.GET("/presets", presets.ListPresets)
		v1.GET("/options", handlers.ListOptions)
		v1.GET("/sites", siteHandler.ListSites)
	}

	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(http.StatusNotFound, models.ErrorResponse{Error: models.ErrorDetail{Code: "NOT_FOUND", Message: "no such route"}})
			return
		}
		c.Status(http.StatusNotFound)
	})

	return router
}
