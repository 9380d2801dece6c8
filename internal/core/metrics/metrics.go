package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the loading service.
type Metrics struct {
	ScanOutcomes      *prometheus.CounterVec
	ManifestsParsed   *prometheus.CounterVec
	SessionsCompleted *prometheus.CounterVec
	MirrorFailures    *prometheus.CounterVec
	MirrorQueueDepth  prometheus.Gauge
}

// New creates and registers all metrics on reg. Pass prometheus.DefaultRegisterer
// in main and a fresh prometheus.NewRegistry() in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ScanOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "dockload_scan_outcomes_total",
			Help: "Carton scans by validation outcome and loading discipline",
		}, []string{"outcome", "discipline"}),
		ManifestsParsed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "dockload_manifests_parsed_total",
			Help: "Manifest scans by detected encoding, or failed",
		}, []string{"encoding"}),
		SessionsCompleted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "dockload_sessions_completed_total",
			Help: "Loading sessions that reached the completed stage",
		}, []string{"discipline"}),
		MirrorFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "dockload_mirror_failures_total",
			Help: "Asynchronous remote mirror writes that failed, by error kind",
		}, []string{"kind"}),
		MirrorQueueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Name: "dockload_mirror_queue_depth",
			Help: "Mirror writes waiting to be applied",
		}),
	}
}

// NewNop returns metrics registered on a private registry, for callers that do
// not export them.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}

// ObserveScan counts one validated carton scan.
func (m *Metrics) ObserveScan(outcome, discipline string) {
	m.ScanOutcomes.WithLabelValues(outcome, discipline).Inc()
}

// ObserveManifest counts one manifest parse attempt.
func (m *Metrics) ObserveManifest(encoding string) {
	m.ManifestsParsed.WithLabelValues(encoding).Inc()
}

// ObserveCompletion counts a completed session.
func (m *Metrics) ObserveCompletion(discipline string) {
	m.SessionsCompleted.WithLabelValues(discipline).Inc()
}

// ObserveMirrorFailure counts a failed mirror write.
func (m *Metrics) ObserveMirrorFailure(kind string) {
	m.MirrorFailures.WithLabelValues(kind).Inc()
}
