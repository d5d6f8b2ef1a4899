// Package metrics provides Prometheus metrics for the detection and scoring pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager owns every metric exported by the module.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	detectLatency     *prometheus.HistogramVec
	detectionsEmitted *prometheus.CounterVec
	detectUnavailable *prometheus.CounterVec
	decodeErrors      *prometheus.CounterVec
	modelLoads        *prometheus.CounterVec
	poolOutstanding   prometheus.Gauge
	regionsExtracted  *prometheus.CounterVec
	scoreCalculations prometheus.Counter
	scoreTotals       prometheus.Histogram
	analysisLatency   prometheus.Histogram
}

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // process-wide metrics registry

var globalManager = NewManager(WithPrometheusRegistry(customRegistry)) //nolint:gochecknoglobals // singleton manager

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "faraway",
		subsystem:        "scorer",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.detectLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "detect_duration_seconds",
		Help:      "Time spent in one detect call (preprocess, inference, decode)",
		Buckets:   m.histogramBuckets,
	}, []string{"model"})

	m.detectionsEmitted = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "detections_total",
		Help:      "Detections kept after non-maximum suppression",
	}, []string{"model"})

	m.detectUnavailable = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "detect_model_unavailable_total",
		Help:      "Detect calls against a model name that was never registered",
	}, []string{"model"})

	m.decodeErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "decode_errors_total",
		Help:      "Detect calls that failed during inference or decoding",
	}, []string{"model"})

	m.modelLoads = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "model_loads_total",
		Help:      "Model load attempts by outcome",
	}, []string{"model", "outcome"})

	m.poolOutstanding = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "decode_buffers_outstanding",
		Help:      "Decode buffers currently checked out of the pool",
	})

	m.regionsExtracted = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "regions_extracted_total",
		Help:      "Cropped regions extracted from scene photos",
	}, []string{"kind"})

	m.scoreCalculations = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "score_calculations_total",
		Help:      "Score calculations performed",
	})

	m.scoreTotals = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "score_total_points",
		Help:      "Distribution of computed total scores",
		Buckets:   prometheus.LinearBuckets(0, 10, 16),
	})

	m.analysisLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "analysis_duration_seconds",
		Help:      "Time spent analysing one table photo end to end",
		Buckets:   m.histogramBuckets,
	})
}

// RecordDetect records one successful detect call.
func (m *Manager) RecordDetect(model string, seconds float64, detections int) {
	m.detectLatency.WithLabelValues(model).Observe(seconds)
	m.detectionsEmitted.WithLabelValues(model).Add(float64(detections))
}

// RecordModelUnavailable counts a detect against an unregistered model.
func (m *Manager) RecordModelUnavailable(model string) {
	m.detectUnavailable.WithLabelValues(model).Inc()
}

// RecordDecodeError counts a failed detect call.
func (m *Manager) RecordDecodeError(model string) {
	m.decodeErrors.WithLabelValues(model).Inc()
}

// RecordModelLoad counts a load attempt; outcome is "ok" or "error".
func (m *Manager) RecordModelLoad(model, outcome string) {
	m.modelLoads.WithLabelValues(model, outcome).Inc()
}

// UpdatePoolOutstanding sets the number of decode buffers checked out.
func (m *Manager) UpdatePoolOutstanding(n int) {
	m.poolOutstanding.Set(float64(n))
}

// RecordRegions counts extracted regions of one kind (card, temple).
func (m *Manager) RecordRegions(kind string, n int) {
	m.regionsExtracted.WithLabelValues(kind).Add(float64(n))
}

// RecordScore records one score calculation and its total.
func (m *Manager) RecordScore(total int) {
	m.scoreCalculations.Inc()
	m.scoreTotals.Observe(float64(total))
}

// RecordAnalysis records the duration of one photo analysis.
func (m *Manager) RecordAnalysis(seconds float64) {
	m.analysisLatency.Observe(seconds)
}

// Default returns the process-wide manager bound to the custom registry.
func Default() *Manager { return globalManager }

// GetRegistry returns the custom registry used by the default manager.
func GetRegistry() *prometheus.Registry { return customRegistry }

// Handler serves the custom registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(customRegistry, promhttp.HandlerOpts{})
}
