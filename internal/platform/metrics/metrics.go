// Package metrics exposes Prometheus instrumentation for the clinic
// server: standard HTTP metrics plus the clinic's own queue counters.
package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	visitsAdmittedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clinic_visits_admitted_total",
			Help: "Total number of patient visits admitted to the queue",
		},
		[]string{"priority"},
	)

	stageTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clinic_stage_transitions_total",
			Help: "Total number of visit stage transitions",
		},
		[]string{"from_stage", "to_stage"},
	)

	visitsReadmittedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "clinic_visits_readmitted_total",
			Help: "Total number of discharged visits re-admitted",
		},
	)

	queueDepth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "clinic_queue_depth",
			Help: "Number of active visits per workflow stage",
		},
		[]string{"stage"},
	)
)

// Recorder is the business-metrics sink handed to the visit service.
type Recorder struct{}

func NewRecorder() *Recorder { return &Recorder{} }

func (Recorder) VisitAdmitted(priority string) {
	visitsAdmittedTotal.WithLabelValues(priority).Inc()
}

func (Recorder) StageTransition(from, to string) {
	stageTransitionsTotal.WithLabelValues(from, to).Inc()
}

func (Recorder) VisitReadmitted() {
	visitsReadmittedTotal.Inc()
}

func (Recorder) QueueDepth(stage string, depth int) {
	queueDepth.WithLabelValues(stage).Set(float64(depth))
}

// Middleware records request count, latency and in-flight gauge for
// every request. The route pattern, not the raw path, keys the series
// so visit ids do not explode cardinality.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			httpRequestsInFlight.Inc()
			start := time.Now()

			err := next(c)

			httpRequestsInFlight.Dec()
			path := c.Path()
			if path == "" {
				path = c.Request().URL.Path
			}
			method := c.Request().Method
			httpRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
			httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(c.Response().Status)).Inc()

			return err
		}
	}
}

// Handler serves the Prometheus exposition endpoint.
func Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.Handler())
}
