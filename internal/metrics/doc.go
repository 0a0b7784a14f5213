// Package metrics defines the Recorder abstraction for scheduler and API
// observability, with a Prometheus-backed implementation and a no-op default.
package metrics
