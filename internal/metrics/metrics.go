// Package metrics provides Prometheus metrics for the MCP server.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Status labels.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Metrics holds the invocation metrics for tools and resources.
type Metrics struct {
	ToolCallsTotal    *prometheus.CounterVec
	ToolCallDuration  *prometheus.HistogramVec
	ToolCallsInFlight prometheus.Gauge

	ResourceReadsTotal   *prometheus.CounterVec
	ResourceReadDuration *prometheus.HistogramVec

	PromptRequestsTotal *prometheus.CounterVec
}

// New creates the metrics and registers them with reg. A nil reg leaves
// them unregistered.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	m := &Metrics{}

	m.ToolCallsTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatdesk_tool_calls_total",
			Help: "Total number of MCP tool calls",
		},
		[]string{"tool", "status"},
	)

	m.ToolCallDuration = f.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chatdesk_tool_call_duration_seconds",
			Help:    "Duration of MCP tool calls in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"tool"},
	)

	m.ToolCallsInFlight = f.NewGauge(
		prometheus.GaugeOpts{
			Name: "chatdesk_tool_calls_in_flight",
			Help: "Number of MCP tool calls currently being processed",
		},
	)

	m.ResourceReadsTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatdesk_resource_reads_total",
			Help: "Total number of MCP resource reads",
		},
		[]string{"resource", "status"},
	)

	m.ResourceReadDuration = f.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chatdesk_resource_read_duration_seconds",
			Help:    "Duration of MCP resource reads in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"resource"},
	)

	m.PromptRequestsTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatdesk_prompt_requests_total",
			Help: "Total number of MCP prompt requests",
		},
		[]string{"prompt"},
	)

	return m
}

// ObserveTool records one finished tool call.
func (m *Metrics) ObserveTool(tool, status string, d time.Duration) {
	m.ToolCallsTotal.WithLabelValues(tool, status).Inc()
	m.ToolCallDuration.WithLabelValues(tool).Observe(d.Seconds())
}

// ObserveResource records one finished resource read. resource is the
// registered name (e.g. chat_history), not the concrete URI.
func (m *Metrics) ObserveResource(resource, status string, d time.Duration) {
	m.ResourceReadsTotal.WithLabelValues(resource, status).Inc()
	m.ResourceReadDuration.WithLabelValues(resource).Observe(d.Seconds())
}

// ObservePrompt records one prompt request.
func (m *Metrics) ObservePrompt(prompt string) {
	m.PromptRequestsTotal.WithLabelValues(prompt).Inc()
}
