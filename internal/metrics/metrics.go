// Package metrics provides a small, backend-agnostic abstraction for recording
// operational metrics from an ETL run.
//
// A global backend defaults to a no-op, so instrumentation is always safe to
// call. Concrete systems (Prometheus Pushgateway, Datadog) live in
// subpackages and are installed with SetBackend at startup.
package metrics

import (
	"sync"
	"time"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Metric names emitted by this package.
const (
	PhaseTotal    = "etl_phase_total"
	PhaseDuration = "etl_phase_duration_seconds"
	RowsTotal     = "etl_rows_total"
	StepsTotal    = "etl_steps_total"
)

// Phases of a step, used as the "phase" label.
const (
	PhaseExtract   = "extract"
	PhaseTransform = "transform"
	PhaseLoad      = "load"
)

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a latency/duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it (e.g. Pushgateway).
	Flush() error
}

type nopBackend struct{}

func (nopBackend) IncCounter(name string, delta float64, labels Labels)       {}
func (nopBackend) ObserveHistogram(name string, value float64, labels Labels) {}
func (nopBackend) Flush() error                                               { return nil }

var (
	mu      sync.RWMutex
	backend Backend = nopBackend{}
)

// SetBackend installs a concrete backend. Passing nil keeps the existing backend.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	mu.Lock()
	backend = b
	mu.Unlock()
}

func current() Backend {
	mu.RLock()
	defer mu.RUnlock()
	return backend
}

// Flush delegates to the current backend.
func Flush() error {
	return current().Flush()
}

// RecordPhase counts one execution of phase for domain and records its
// latency, labelled with success or failure.
func RecordPhase(job, phase, domain string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	lbls := Labels{
		"job":    job,
		"phase":  phase,
		"domain": domain,
		"status": status,
	}
	b := current()
	b.IncCounter(PhaseTotal, 1, lbls)
	b.ObserveHistogram(PhaseDuration, d.Seconds(), lbls)
}

// RecordRows adds delta rows of the given kind ("extracted", "loaded", ...)
// for domain. Non-positive deltas are ignored.
func RecordRows(job, kind, domain string, delta int) {
	if delta <= 0 {
		return
	}
	current().IncCounter(RowsTotal, float64(delta), Labels{
		"job":    job,
		"kind":   kind,
		"domain": domain,
	})
}

// RecordStep counts a finished step.
func RecordStep(job string, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	current().IncCounter(StepsTotal, 1, Labels{"job": job, "status": status})
}
