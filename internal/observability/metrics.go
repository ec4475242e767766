package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/daikw/angertranslator/internal/reliability"
)

// Metrics groups all Prometheus instruments used by the service.
type Metrics struct {
	registry *prometheus.Registry

	Translations        *prometheus.CounterVec
	RateLimitRejections prometheus.Counter
	ExternalErrors      *prometheus.CounterVec
	GenerationLatency   prometheus.Histogram
	SegmentsPlayed      *prometheus.CounterVec
	SegmentDuration     *prometheus.HistogramVec
	PlaybackSequences   *prometheus.CounterVec
	WSMessages          *prometheus.CounterVec
}

// NewMetrics registers the instruments on a fresh registry.
func NewMetrics(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		Translations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "translations_total",
			Help:      "Translation requests by persona and outcome.",
		}, []string{"persona", "outcome"}),
		RateLimitRejections: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limit_rejections_total",
			Help:      "Requests rejected by the rate limiter.",
		}),
		ExternalErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "external_errors_total",
			Help:      "External service errors by component and kind.",
		}, []string{"component", "kind"}),
		GenerationLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_latency_ms",
			Help:      "Text generation latency in milliseconds.",
			Buckets:   []float64{5, 50, 200, 500, 1000, 2000, 5000, 10000},
		}),
		SegmentsPlayed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "segments_played_total",
			Help:      "Played segments by kind.",
		}, []string{"kind"}),
		SegmentDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "segment_duration_ms",
			Help:      "Time to synthesize and play one segment in milliseconds.",
			Buckets:   []float64{100, 300, 500, 1000, 2000, 4000, 8000},
		}, []string{"kind"}),
		PlaybackSequences: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "playback_sequences_total",
			Help:      "Finished playback sequences by outcome.",
		}, []string{"outcome"}),
		WSMessages: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ws_messages_total",
			Help:      "WebSocket messages by direction and type.",
		}, []string{"direction", "type"}),
	}
}

// Registry exposes the registry, mainly for tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) ObserveTranslation(persona, outcome string, generation time.Duration) {
	m.Translations.WithLabelValues(persona, outcome).Inc()
	if generation > 0 {
		m.GenerationLatency.Observe(float64(generation.Milliseconds()))
	}
}

func (m *Metrics) RateLimited() {
	m.RateLimitRejections.Inc()
}

// ExternalError counts err under its reliability kind.
func (m *Metrics) ExternalError(component string, err error) {
	if err == nil {
		return
	}
	m.ExternalErrors.WithLabelValues(component, reliability.KindOf(err).String()).Inc()
}

// SegmentPlayed and SequenceFinished make Metrics a playback observer.
func (m *Metrics) SegmentPlayed(kind string, elapsed time.Duration) {
	m.SegmentsPlayed.WithLabelValues(kind).Inc()
	m.SegmentDuration.WithLabelValues(kind).Observe(float64(elapsed.Milliseconds()))
}

func (m *Metrics) SequenceFinished(outcome string) {
	m.PlaybackSequences.WithLabelValues(outcome).Inc()
}

func (m *Metrics) WSMessage(direction, msgType string) {
	m.WSMessages.WithLabelValues(direction, msgType).Inc()
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
