package metricsvc

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "edumate"

// Metrics holds the Prometheus collectors of the enrollment planner.
type Metrics struct {
	EnrollmentsCreated *prometheus.CounterVec
	EstimatedClasses   prometheus.Histogram
	ScheduleEntries    *prometheus.CounterVec
	RemindersSent      *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// New registers the app metrics, plus the Go and process collectors, on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return NewWithRegistry(reg, reg)
}

func NewWithRegistry(reg prometheus.Registerer, gatherer prometheus.Gatherer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		EnrollmentsCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "enrollments_created_total",
				Help:      "Total enrollments created",
			},
			[]string{"learning_speed"},
		),
		EstimatedClasses: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "estimated_classes",
				Help:      "Estimated class count of created enrollments",
				Buckets:   []float64{1, 2, 3, 5, 8, 13, 21, 34, 55},
			},
		),
		ScheduleEntries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "schedule_entries_total",
				Help:      "Schedule entries processed, by outcome",
			},
			[]string{"status", "reason"},
		),
		RemindersSent: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reminders_sent_total",
				Help:      "Class reminder emails, by result",
			},
			[]string{"result"},
		),
		gatherer: gatherer,
	}
}

func (m *Metrics) EnrollmentCreated(speed string, classCount int) {
	m.EnrollmentsCreated.WithLabelValues(speed).Inc()
	m.EstimatedClasses.Observe(float64(classCount))
}

func (m *Metrics) ScheduleEntryProcessed(status, reason string) {
	m.ScheduleEntries.WithLabelValues(status, reason).Inc()
}

func (m *Metrics) ReminderSent(result string) {
	m.RemindersSent.WithLabelValues(result).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
