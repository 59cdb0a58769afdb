// Package metrics holds the process-wide prometheus counters.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the registry every minutes metric is registered with.
// It is separate from the default registry so the web UI only exposes ours.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var (
	// Saves counts meeting records written by the store.
	Saves = factory.NewCounter(
		prometheus.CounterOpts{
			Namespace: "minutes",
			Subsystem: "store",
			Name:      "saves_total",
			Help:      "Meeting records successfully saved.",
		},
	)

	// Deletes counts records removed by id.
	Deletes = factory.NewCounter(
		prometheus.CounterOpts{
			Namespace: "minutes",
			Subsystem: "store",
			Name:      "deletes_total",
			Help:      "Meeting records removed by id.",
		},
	)

	// StorageFailures counts persistence failures by operation ("read", "write").
	StorageFailures = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "minutes",
			Subsystem: "store",
			Name:      "storage_failures_total",
			Help:      "Persistence medium failures; reads are recovered as an empty collection.",
		},
		[]string{"op"},
	)

	// BlobRetries counts retried blob operations by backend.
	BlobRetries = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "minutes",
			Subsystem: "blob",
			Name:      "retries_total",
			Help:      "Blob operations retried after a transient failure.",
		},
		[]string{"backend"},
	)

	// DroppedFragments counts fragments that arrived while no session was recording.
	DroppedFragments = factory.NewCounter(
		prometheus.CounterOpts{
			Namespace: "minutes",
			Subsystem: "session",
			Name:      "dropped_fragments_total",
			Help:      "Transcript fragments dropped because the session was not recording.",
		},
	)

	// SourceErrors counts errors reported by fragment sources.
	SourceErrors = factory.NewCounter(
		prometheus.CounterOpts{
			Namespace: "minutes",
			Subsystem: "session",
			Name:      "source_errors_total",
			Help:      "Errors reported by transcript sources and absorbed by the session.",
		},
	)
)

// Handler serves Registry in the prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
