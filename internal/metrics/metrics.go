package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"geyser-scheduler/internal/schedule"
)

// Outcome labels for geyser_schedules_total.
const (
	OutcomeFeasible = "feasible"
	OutcomeInvalid  = "invalid_parameter"
)

// Recorder records scheduler and HTTP metrics in Prometheus collectors.
type Recorder struct {
	schedules   *prometheus.CounterVec
	runs        prometheus.Counter
	scanSeconds prometheus.Histogram
	requests    *prometheus.CounterVec
	reqSeconds  *prometheus.HistogramVec
}

// New registers the collectors on reg. If reg is nil, the default registerer
// is used. If the collectors are already registered, the existing ones are reused.
func New(reg prometheus.Registerer) (*Recorder, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	r := &Recorder{
		schedules: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "geyser_schedules_total",
			Help: "Scheduling requests by outcome",
		}, []string{"outcome"}),
		runs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "geyser_scheduled_runs_total",
			Help: "Appliance runs placed by the scanner",
		}),
		scanSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "geyser_scan_duration_seconds",
			Help:    "Time spent in one forward scan",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "geyser_http_requests_total",
			Help: "HTTP requests by route and status",
		}, []string{"method", "route", "status"}),
		reqSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "geyser_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	var err error
	if r.schedules, err = register(reg, r.schedules); err != nil {
		return nil, err
	}
	if r.runs, err = register(reg, r.runs); err != nil {
		return nil, err
	}
	if r.scanSeconds, err = register(reg, r.scanSeconds); err != nil {
		return nil, err
	}
	if r.requests, err = register(reg, r.requests); err != nil {
		return nil, err
	}
	if r.reqSeconds, err = register(reg, r.reqSeconds); err != nil {
		return nil, err
	}
	return r, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// ObserveSchedule records one scheduling result and how long the scan took.
// A nil result counts as an invalid request.
func (r *Recorder) ObserveSchedule(res *schedule.Result, took time.Duration) {
	if r == nil {
		return
	}
	r.scanSeconds.Observe(took.Seconds())
	r.schedules.WithLabelValues(Outcome(res)).Inc()
	if res != nil {
		r.runs.Add(float64(len(res.Runs)))
	}
}

// Outcome is the label value for a result.
func Outcome(res *schedule.Result) string {
	switch {
	case res == nil:
		return OutcomeInvalid
	case len(res.Runs) > 0:
		return OutcomeFeasible
	default:
		return string(res.Reason)
	}
}

// Middleware counts requests per matched route.
func (r *Recorder) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		r.requests.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		r.reqSeconds.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the metrics gathered by g (the default gatherer when nil).
func Handler(g prometheus.Gatherer) http.Handler {
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
