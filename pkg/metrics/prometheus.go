// Package metrics provides Prometheus-based metrics recording for
// backend calls, run phases, and sandbox commands.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder records workflow metrics. All methods are safe for concurrent
// use.
type Recorder struct {
	backendRequests *prometheus.CounterVec
	backendTokens   *prometheus.CounterVec
	backendDuration *prometheus.HistogramVec
	phaseDuration   *prometheus.HistogramVec
	sandboxCommands *prometheus.CounterVec
	sandboxDuration *prometheus.HistogramVec
	runsTotal       *prometheus.CounterVec
}

// NewRecorder creates a recorder with all collectors registered against
// the default registry. Call at most once per process.
func NewRecorder() *Recorder {
	return &Recorder{
		backendRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "workbench_backend_requests_total",
				Help: "Total chat backend requests by model, phase, and status",
			},
			[]string{"model", "phase", "status"},
		),
		backendTokens: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "workbench_backend_tokens_total",
				Help: "Estimated tokens exchanged with chat backends",
			},
			[]string{"model", "phase", "direction"},
		),
		backendDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "workbench_backend_request_duration_seconds",
				Help:    "Duration of chat backend requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"model", "phase"},
		),
		phaseDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "workbench_run_phase_duration_seconds",
				Help:    "Duration of workflow phases in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"phase"},
		),
		sandboxCommands: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "workbench_sandbox_commands_total",
				Help: "Total sandbox commands by type and status",
			},
			[]string{"type", "status"},
		),
		sandboxDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "workbench_sandbox_command_duration_seconds",
				Help:    "Duration of sandbox commands in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"type"},
		),
		runsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "workbench_runs_total",
				Help: "Total workflow runs by terminal phase",
			},
			[]string{"phase"},
		),
	}
}

// ObserveBackendRequest records one completed backend call.
func (r *Recorder) ObserveBackendRequest(model, phase string, promptTokens, completionTokens int, success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "error"
	}
	r.backendRequests.WithLabelValues(model, phase, status).Inc()
	r.backendTokens.WithLabelValues(model, phase, "prompt").Add(float64(promptTokens))
	r.backendTokens.WithLabelValues(model, phase, "completion").Add(float64(completionTokens))
	r.backendDuration.WithLabelValues(model, phase).Observe(duration.Seconds())
}

// ObservePhase records the duration of one completed workflow phase.
func (r *Recorder) ObservePhase(phase string, duration time.Duration) {
	r.phaseDuration.WithLabelValues(phase).Observe(duration.Seconds())
}

// ObserveSandboxCommand records one dispatched sandbox command.
func (r *Recorder) ObserveSandboxCommand(cmdType string, success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "error"
	}
	r.sandboxCommands.WithLabelValues(cmdType, status).Inc()
	r.sandboxDuration.WithLabelValues(cmdType).Observe(duration.Seconds())
}

// ObserveRun records one run reaching a terminal phase.
func (r *Recorder) ObserveRun(phase string) {
	r.runsTotal.WithLabelValues(phase).Inc()
}
