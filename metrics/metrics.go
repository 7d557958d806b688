// Package metrics exposes Prometheus collectors for schedule generation,
// calendar builds and the HTTP surface. All methods are safe to call on a
// nil *Metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for schedule generation.
type Metrics struct {
	// Schedules generated by direction ("forward", "backward")
	SchedulesGenerated *prometheus.CounterVec

	// Wall time of one batch
	GenerateLatency prometheus.Histogram

	// Number of dates per generated schedule
	ScheduleLength prometheus.Histogram

	// Calendar builds by market and outcome
	CalendarBuilds *prometheus.CounterVec

	// Request errors by kind ("validation", "calendar", "decode", "internal")
	RequestErrors *prometheus.CounterVec
}

// New registers all collectors with reg. A nil reg uses the default
// registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		SchedulesGenerated: f.NewCounterVec(prometheus.CounterOpts{
			Name: "schedgen_schedules_generated_total",
			Help: "Total schedules generated by direction",
		}, []string{"direction"}),

		GenerateLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "schedgen_generate_duration_seconds",
			Help:    "Duration of a schedule batch generation",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),

		ScheduleLength: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "schedgen_schedule_length",
			Help:    "Number of dates in a generated schedule",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}),

		CalendarBuilds: f.NewCounterVec(prometheus.CounterOpts{
			Name: "schedgen_calendar_builds_total",
			Help: "Total holiday calendar builds by market and result",
		}, []string{"market", "result"}),

		RequestErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "schedgen_request_errors_total",
			Help: "Total failed requests by kind",
		}, []string{"kind"}),
	}
}

// ObserveBatch records one generated batch: its duration and the length of
// every schedule in it.
func (m *Metrics) ObserveBatch(backward bool, lengths []int, d time.Duration) {
	if m == nil {
		return
	}
	direction := "forward"
	if backward {
		direction = "backward"
	}
	m.SchedulesGenerated.WithLabelValues(direction).Add(float64(len(lengths)))
	m.GenerateLatency.Observe(d.Seconds())
	for _, n := range lengths {
		m.ScheduleLength.Observe(float64(n))
	}
}

// IncrementCalendarBuild records a calendar build attempt.
func (m *Metrics) IncrementCalendarBuild(market string, err error) {
	if m != nil {
		result := "ok"
		if err != nil {
			result = "error"
		}
		m.CalendarBuilds.WithLabelValues(market, result).Inc()
	}
}

// IncrementRequestError records a failed request.
func (m *Metrics) IncrementRequestError(kind string) {
	if m != nil {
		m.RequestErrors.WithLabelValues(kind).Inc()
	}
}
