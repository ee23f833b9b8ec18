// Package metrics defines the Prometheus instruments exported by
// `malaykit serve`.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/minios-linux/malaykit/translator"
)

const namespace = "malaykit"

// Speech outcomes recorded by ObserveSpeech.
const (
	SpeechOK       = "ok"
	SpeechNoSpeech = "no_speech"
	SpeechError    = "error"
)

// Metrics holds every instrument, registered on one registry.
type Metrics struct {
	registry *prometheus.Registry

	translations     *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	dictionaryLength prometheus.Gauge
	speechRequests   *prometheus.CounterVec
	historyErrors    prometheus.Counter
}

// New creates the instruments on a fresh registry that also carries the
// Go runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		translations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "translations_total",
				Help:      "Translations performed, by sentence type and method",
			},
			[]string{"type", "method"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request latency by route, method and status code",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route", "method", "code"},
		),
		dictionaryLength: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "dictionary_entries",
				Help:      "Number of entries in the effective dictionary",
			},
		),
		speechRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "speech",
				Name:      "requests_total",
				Help:      "Transcription requests by outcome",
			},
			[]string{"outcome"},
		),
		historyErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "history",
				Name:      "write_errors_total",
				Help:      "History records that could not be written",
			},
		),
	}
}

// ObserveTranslation counts one translation result.
func (m *Metrics) ObserveTranslation(res translator.Result) {
	typ := "unknown"
	if res.Analysis != nil {
		typ = res.Analysis.Type.String()
	}
	m.translations.WithLabelValues(typ, string(res.Method)).Inc()
}

// ObserveRequest records the latency of one HTTP request.
func (m *Metrics) ObserveRequest(route, method string, code int, d time.Duration) {
	m.requestDuration.WithLabelValues(route, method, strconv.Itoa(code)).Observe(d.Seconds())
}

// SetDictionarySize records the effective dictionary size.
func (m *Metrics) SetDictionarySize(n int) {
	m.dictionaryLength.Set(float64(n))
}

// ObserveSpeech counts one transcription request.
func (m *Metrics) ObserveSpeech(outcome string) {
	m.speechRequests.WithLabelValues(outcome).Inc()
}

// HistoryWriteFailed counts a failed history write.
func (m *Metrics) HistoryWriteFailed() {
	m.historyErrors.Inc()
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
