// Package metrics exposes the daemon's Prometheus counters on a dedicated
// registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder counts engine and store activity. It satisfies the metrics
// interfaces of the ledger service and the export worker.
type Recorder struct {
	registry  *prometheus.Registry
	patches   *prometheus.CounterVec
	snapshots *prometheus.CounterVec
	exports   *prometheus.CounterVec
	reverts   prometheus.Counter
	samples   prometheus.Counter
}

// NewRecorder builds a recorder with all collectors registered.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		patches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "isolateledger",
			Name:      "patches_applied_total",
			Help:      "Field-level partial writes applied, by collection.",
		}, []string{"collection"}),
		snapshots: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "isolateledger",
			Name:      "snapshots_fanned_out_total",
			Help:      "Collection snapshots delivered to subscribers, by collection.",
		}, []string{"collection"}),
		exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "isolateledger",
			Name:      "exports_rendered_total",
			Help:      "Export artifacts rendered, by format.",
		}, []string{"format"}),
		reverts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "isolateledger",
			Name:      "reverts_taken_total",
			Help:      "Single-step reverts applied.",
		}),
		samples: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "isolateledger",
			Name:      "samples_created_total",
			Help:      "New extraction records created through intake.",
		}),
	}
	r.registry.MustRegister(r.patches, r.snapshots, r.exports, r.reverts, r.samples)
	return r
}

// PatchApplied counts one partial write.
func (r *Recorder) PatchApplied(collection string) {
	r.patches.WithLabelValues(collection).Inc()
}

// SnapshotFanned counts one snapshot delivery round.
func (r *Recorder) SnapshotFanned(collection string) {
	r.snapshots.WithLabelValues(collection).Inc()
}

// ExportRendered counts one rendered artifact.
func (r *Recorder) ExportRendered(format string) {
	r.exports.WithLabelValues(format).Inc()
}

// RevertTaken counts one consumed revert slot.
func (r *Recorder) RevertTaken() {
	r.reverts.Inc()
}

// SampleCreated counts one intake insert.
func (r *Recorder) SampleCreated() {
	r.samples.Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
