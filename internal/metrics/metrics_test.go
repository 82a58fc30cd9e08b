package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveTool(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveTool("get_user_info", StatusOK, 3*time.Millisecond)
	m.ObserveTool("get_user_info", StatusOK, time.Millisecond)
	m.ObserveTool("get_user_info", "not_found", time.Millisecond)

	if got := testutil.ToFloat64(m.ToolCallsTotal.WithLabelValues("get_user_info", StatusOK)); got != 2 {
		t.Errorf("ok calls = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.ToolCallsTotal.WithLabelValues("get_user_info", "not_found")); got != 1 {
		t.Errorf("not_found calls = %v, want 1", got)
	}
	if n := testutil.CollectAndCount(m.ToolCallDuration); n != 1 {
		t.Errorf("duration series = %d, want 1", n)
	}
}

func TestObserveResource(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveResource("chat_history", StatusOK, time.Millisecond)
	m.ObserveResource("users_list", StatusError, time.Millisecond)

	want := `
# HELP chatdesk_resource_reads_total Total number of MCP resource reads
# TYPE chatdesk_resource_reads_total counter
chatdesk_resource_reads_total{resource="chat_history",status="ok"} 1
chatdesk_resource_reads_total{resource="users_list",status="error"} 1
`
	if err := testutil.CollectAndCompare(m.ResourceReadsTotal, strings.NewReader(want)); err != nil {
		t.Error(err)
	}
}

func TestObservePrompt(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.ObservePrompt("support_greeting")

	if got := testutil.ToFloat64(m.PromptRequestsTotal.WithLabelValues("support_greeting")); got != 1 {
		t.Errorf("prompt requests = %v, want 1", got)
	}
}

func TestNew_RegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.ObserveTool("x", StatusOK, 0)
	m.ObserveResource("y", StatusOK, 0)
	m.ObservePrompt("z")
	m.ToolCallsInFlight.Inc()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	if len(families) != 6 {
		t.Errorf("registered families = %d, want 6", len(families))
	}
}

func TestNew_NilRegisterer(t *testing.T) {
	m := New(nil)
	m.ObserveTool("x", StatusOK, 0)
	if got := testutil.ToFloat64(m.ToolCallsTotal.WithLabelValues("x", StatusOK)); got != 1 {
		t.Errorf("calls = %v", got)
	}
}
