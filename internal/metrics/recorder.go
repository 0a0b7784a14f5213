package metrics

import "time"

// ResultLabel enumerates outcome categories for counters.
type ResultLabel string

const (
	ResultSuccess ResultLabel = "success"
	ResultSkipped ResultLabel = "skipped"
	ResultFailed  ResultLabel = "failed"
)

// Recorder defines observability hooks for the daily scheduler pass and the
// HTTP API. Implementations may forward to Prometheus, OpenTelemetry, etc.
// All methods must be safe on the NoopRecorder (allowing optional injection).
type Recorder interface {
	ObservePassDuration(d time.Duration)
	IncPassResult(result ResultLabel)
	ObserveDueTasks(n int)
	IncProgramError()
	IncNotification(result ResultLabel)
	ObserveRequestDuration(method, path string, status int, d time.Duration)
}

// NoopRecorder is a Recorder that does nothing (default when metrics are not
// configured).
type NoopRecorder struct{}

func (NoopRecorder) ObservePassDuration(time.Duration)                          {}
func (NoopRecorder) IncPassResult(ResultLabel)                                  {}
func (NoopRecorder) ObserveDueTasks(int)                                        {}
func (NoopRecorder) IncProgramError()                                           {}
func (NoopRecorder) IncNotification(ResultLabel)                                {}
func (NoopRecorder) ObserveRequestDuration(string, string, int, time.Duration)  {}
