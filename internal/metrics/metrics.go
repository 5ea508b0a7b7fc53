// Package metrics defines a minimal metrics seam for the adapter
// engine.
//
// Engine code records through package-level helpers against a
// process-global Backend; the default backend is a no-op, so library
// consumers pay nothing unless a real backend (e.g. Datadog) is
// installed at startup. Backends must be safe for concurrent use.
package metrics

import (
	"sync"
	"time"
)

// Labels are metric dimensions (e.g. {"vendor": "smsact", "op":
// "getPrices"}).
type Labels map[string]string

// Backend receives recorded metrics.
type Backend interface {
	IncCounter(name string, delta float64, labels Labels)
	ObserveHistogram(name string, value float64, labels Labels)
	Flush() error
}

var (
	mu      sync.RWMutex
	backend Backend = nopBackend{}
)

// SetBackend installs the process-global backend. Passing nil restores
// the no-op backend.
func SetBackend(b Backend) {
	mu.Lock()
	defer mu.Unlock()
	if b == nil {
		backend = nopBackend{}
		return
	}
	backend = b
}

func current() Backend {
	mu.RLock()
	defer mu.RUnlock()
	return backend
}

// IncCounter increments a counter on the installed backend.
func IncCounter(name string, delta float64, labels Labels) {
	current().IncCounter(name, delta, labels)
}

// ObserveHistogram records a distribution sample on the installed
// backend.
func ObserveHistogram(name string, value float64, labels Labels) {
	current().ObserveHistogram(name, value, labels)
}

// Flush flushes the installed backend.
func Flush() error {
	return current().Flush()
}

// RecordVendorHTTP records one outbound vendor HTTP attempt: a request
// counter keyed by status, an error counter when the attempt failed at
// the transport level, and the attempt latency.
func RecordVendorHTTP(vendor, op string, status int, attemptErr error, elapsed time.Duration) {
	labels := Labels{"vendor": vendor, "op": op, "status": statusClass(status)}
	IncCounter("vendor.http.requests", 1, labels)
	if attemptErr != nil {
		IncCounter("vendor.http.errors", 1, labels)
	}
	ObserveHistogram("vendor.http.duration_ms", float64(elapsed.Milliseconds()), labels)
}

// statusClass buckets status codes to keep label cardinality bounded.
func statusClass(status int) string {
	switch {
	case status == 0:
		return "network_error"
	case status == 429:
		return "429"
	case status >= 200 && status < 300:
		return "2xx"
	case status >= 300 && status < 400:
		return "3xx"
	case status >= 400 && status < 500:
		return "4xx"
	case status >= 500:
		return "5xx"
	default:
		return "other"
	}
}

type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels)       {}
func (nopBackend) ObserveHistogram(string, float64, Labels) {}
func (nopBackend) Flush() error                             { return nil }
