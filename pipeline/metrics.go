package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus counters for one pipeline instance. Each
// instance gets its own registry so two kinds can coexist in one process.
type Metrics struct {
	Registry *prometheus.Registry

	DataMessages       prometheus.Counter
	ConfigMessages     prometheus.Counter
	PauseMessages      prometheus.Counter
	SnapshotsPublished prometheus.Counter
	RepublishSent      prometheus.Counter
	RepublishDropped   prometheus.Counter
	RepublishFailed    prometheus.Counter
}

// NewMetrics creates the counter set for a pipeline kind.
func NewMetrics(kind Kind) *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	labels := prometheus.Labels{"kind": string(kind)}

	return &Metrics{
		Registry: reg,
		DataMessages: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "liveplot", Name: "data_messages_total",
			Help: "Raw measurement messages received.", ConstLabels: labels,
		}),
		ConfigMessages: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "liveplot", Name: "config_messages_total",
			Help: "Run configuration messages received.", ConstLabels: labels,
		}),
		PauseMessages: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "liveplot", Name: "pause_messages_total",
			Help: "Pause flag messages received.", ConstLabels: labels,
		}),
		SnapshotsPublished: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "liveplot", Name: "snapshots_published_total",
			Help: "Snapshot cache replacements.", ConstLabels: labels,
		}),
		RepublishSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "liveplot", Name: "republish_sent_total",
			Help: "Augmented records published back onto the bus.", ConstLabels: labels,
		}),
		RepublishDropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "liveplot", Name: "republish_dropped_total",
			Help: "Augmented records dropped because the outbound queue was full.", ConstLabels: labels,
		}),
		RepublishFailed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "liveplot", Name: "republish_failed_total",
			Help: "Publish attempts that failed or were not acknowledged.", ConstLabels: labels,
		}),
	}
}
