// Package metrics exposes Prometheus collectors for the analysis pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Analysis outcomes used as the error kind label.
const (
	KindScrape      = "scrape"
	KindAI          = "ai"
	KindPersistence = "persistence"
	KindSession     = "session"
)

// Metrics holds the pipeline collectors. A nil *Metrics records nothing.
type Metrics struct {
	pagesOpened      prometheus.Counter
	pagesClosed      prometheus.Counter
	pagesOpen        prometheus.Gauge
	analysesBegun    prometheus.Counter
	analysesComplete prometheus.Counter
	analysisErrors   *prometheus.CounterVec
	aiDuration       prometheus.Histogram
	candidatesAdded  prometheus.Counter
	duplicates       prometheus.Counter
}

// New registers the collectors on reg. Passing nil uses the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		pagesOpened: factory.NewCounter(prometheus.CounterOpts{
			Name: "prospector_pages_opened_total",
			Help: "Total number of browser pages opened for scraping.",
		}),
		pagesClosed: factory.NewCounter(prometheus.CounterOpts{
			Name: "prospector_pages_closed_total",
			Help: "Total number of browser pages closed after scraping.",
		}),
		pagesOpen: factory.NewGauge(prometheus.GaugeOpts{
			Name: "prospector_pages_open",
			Help: "Number of browser pages currently open.",
		}),
		analysesBegun: factory.NewCounter(prometheus.CounterOpts{
			Name: "prospector_analyses_begun_total",
			Help: "Total number of analyses started.",
		}),
		analysesComplete: factory.NewCounter(prometheus.CounterOpts{
			Name: "prospector_analyses_completed_total",
			Help: "Total number of analyses that produced a report.",
		}),
		analysisErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "prospector_analysis_errors_total",
			Help: "Total number of failed analyses, labeled by kind.",
		}, []string{"kind"}),
		aiDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "prospector_ai_request_duration_seconds",
			Help:    "Histogram of AI judgment latencies.",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40},
		}),
		candidatesAdded: factory.NewCounter(prometheus.CounterOpts{
			Name: "prospector_candidates_added_total",
			Help: "Total number of captured candidates stored as pending.",
		}),
		duplicates: factory.NewCounter(prometheus.CounterOpts{
			Name: "prospector_candidates_duplicate_total",
			Help: "Total number of captured candidates dropped as duplicates.",
		}),
	}
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// HandlerFor exposes only the collectors gathered by g.
func HandlerFor(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

func (m *Metrics) PageOpened() {
	if m == nil {
		return
	}
	m.pagesOpened.Inc()
	m.pagesOpen.Inc()
}

func (m *Metrics) PageClosed() {
	if m == nil {
		return
	}
	m.pagesClosed.Inc()
	m.pagesOpen.Dec()
}

func (m *Metrics) AnalysisBegun() {
	if m == nil {
		return
	}
	m.analysesBegun.Inc()
}

func (m *Metrics) AnalysisCompleted() {
	if m == nil {
		return
	}
	m.analysesComplete.Inc()
}

// AnalysisFailed counts a failed analysis of the given kind.
func (m *Metrics) AnalysisFailed(kind string) {
	if m == nil {
		return
	}
	m.analysisErrors.WithLabelValues(kind).Inc()
}

// ObserveAI records the duration of one AI judgment.
func (m *Metrics) ObserveAI(d time.Duration) {
	if m == nil {
		return
	}
	m.aiDuration.Observe(d.Seconds())
}

// ObserveCapture records the outcome of one capture.
func (m *Metrics) ObserveCapture(added, duplicates int) {
	if m == nil {
		return
	}
	m.candidatesAdded.Add(float64(added))
	m.duplicates.Add(float64(duplicates))
}
