/*
 * AI-Shell - Natural language to shell commands
 * License: MIT
 */
package metrics

import "github.com/prometheus/client_golang/prometheus"

// SessionMetrics holds Prometheus metrics for one interactive session.
type SessionMetrics struct {
	GenerationsTotal   *prometheus.CounterVec
	ChunksTotal        prometheus.Counter
	CancellationsTotal *prometheus.CounterVec
	CommandsTotal      *prometheus.CounterVec
	WorkerRespawns     prometheus.Counter
}

// NewSessionMetrics creates and registers session metrics.
func NewSessionMetrics() *SessionMetrics {
	m := &SessionMetrics{
		GenerationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "session",
			Name:      "generations_total",
			Help:      "Total generation requests by kind (command, revision, explanation, analysis) and status.",
		}, []string{"kind", "status"}),

		ChunksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "session",
			Name:      "stream_chunks_total",
			Help:      "Total stream chunks decoded and written to the terminal.",
		}),

		CancellationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "session",
			Name:      "cancellations_total",
			Help:      "User-triggered stream cancellations by mode (keypress, interrupt).",
		}, []string{"mode"}),

		CommandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "session",
			Name:      "commands_total",
			Help:      "Shell commands executed by outcome (success, failure).",
		}, []string{"outcome"}),

		WorkerRespawns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "session",
			Name:      "worker_respawns_total",
			Help:      "Times the generation worker had to be respawned.",
		}),
	}

	Registry.MustRegister(
		m.GenerationsTotal,
		m.ChunksTotal,
		m.CancellationsTotal,
		m.CommandsTotal,
		m.WorkerRespawns,
	)

	return m
}
