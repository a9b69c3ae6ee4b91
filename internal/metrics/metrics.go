// Package metrics exposes composer activity as Prometheus series.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tm-acme-shop/smartfold-composer/internal/models"
	"github.com/tm-acme-shop/smartfold-composer/internal/service"
)

const namespace = "smartfold_composer"

var (
	_ service.Recorder     = (*Metrics)(nil)
	_ service.SessionGauge = (*Metrics)(nil)
)

// Metrics implements service.Recorder and service.SessionGauge on its own
// registry.
type Metrics struct {
	registry *prometheus.Registry

	linesAdded         *prometheus.CounterVec
	draftsSaved        prometheus.Counter
	draftSaveFailures  prometheus.Counter
	submissions        *prometheus.CounterVec
	validationFailures *prometheus.CounterVec
	orderTotals        prometheus.Histogram
	sessions           prometheus.Gauge
}

// New creates the collectors and registers them, together with the Go and
// process collectors, on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		linesAdded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "line_items_added_total",
			Help:      "Line items added to orders, by service type.",
		}, []string{"type"}),
		draftsSaved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "drafts_saved_total",
			Help:      "Draft snapshots written.",
		}),
		draftSaveFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "draft_save_failures_total",
			Help:      "Draft snapshot writes that failed.",
		}),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_total",
			Help:      "Submission attempts, by outcome.",
		}, []string{"outcome"}),
		validationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validation_failures_total",
			Help:      "Submission validation failures, by field.",
		}, []string{"field"}),
		orderTotals: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "order_total_lkr",
			Help:      "Totals of submitted orders.",
			Buckets:   []float64{500, 1000, 2000, 3500, 5000, 7500, 10000, 20000},
		}),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_mounted",
			Help:      "Sessions with a live composer.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.linesAdded,
		m.draftsSaved,
		m.draftSaveFailures,
		m.submissions,
		m.validationFailures,
		m.orderTotals,
		m.sessions,
	)
	return m
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) LineAdded(kind models.ServiceKind) {
	m.linesAdded.WithLabelValues(string(kind)).Inc()
}

func (m *Metrics) DraftSaved(err error) {
	if err != nil {
		m.draftSaveFailures.Inc()
		return
	}
	m.draftsSaved.Inc()
}

func (m *Metrics) SubmissionValidated(ok bool, errs map[string]string) {
	if ok {
		return
	}
	m.submissions.WithLabelValues("invalid").Inc()
	for field := range errs {
		m.validationFailures.WithLabelValues(field).Inc()
	}
}

func (m *Metrics) OrderSubmitted(total int64) {
	m.submissions.WithLabelValues("submitted").Inc()
	m.orderTotals.Observe(float64(total))
}

func (m *Metrics) SubmissionDeclined() {
	m.submissions.WithLabelValues("declined").Inc()
}

func (m *Metrics) SessionsMounted(n int) {
	m.sessions.Set(float64(n))
}
