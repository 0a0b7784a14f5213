package metrics

import (
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopRecorderIsSafe(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.ObservePassDuration(time.Second)
	r.IncPassResult(ResultSuccess)
	r.ObserveDueTasks(3)
	r.IncProgramError()
	r.IncNotification(ResultFailed)
	r.ObserveRequestDuration("GET", "/health", 200, time.Millisecond)
}

func TestNilPrometheusRecorderIsSafe(t *testing.T) {
	var p *PrometheusRecorder
	p.ObservePassDuration(time.Second)
	p.IncPassResult(ResultSuccess)
	p.ObserveDueTasks(1)
	p.IncProgramError()
	p.IncNotification(ResultSuccess)
	p.ObserveRequestDuration("POST", "/programs", 201, time.Millisecond)
}

func TestPrometheusRecorderRegisters(t *testing.T) {
	reg := prom.NewRegistry()
	p := NewPrometheusRecorder(reg)
	require.NotNil(t, p)

	p.ObservePassDuration(2 * time.Second)
	p.IncPassResult(ResultSuccess)
	p.ObserveDueTasks(7)
	p.IncProgramError()
	p.IncNotification(ResultFailed)
	p.ObserveRequestDuration("GET", "/properties", 200, 5*time.Millisecond)

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["pmtrack_pass_duration_seconds"])
	assert.True(t, names["pmtrack_pass_results_total"])
	assert.True(t, names["pmtrack_due_tasks_per_pass"])
	assert.True(t, names["pmtrack_program_errors_total"])
	assert.True(t, names["pmtrack_notifications_total"])
	assert.True(t, names["pmtrack_http_request_duration_seconds"])
}
