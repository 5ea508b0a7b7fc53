package metrics

import (
	"errors"
	"testing"
	"time"
)

type captureBackend struct {
	counters   map[string]float64
	histograms map[string][]float64
	labels     map[string]Labels
}

func newCaptureBackend() *captureBackend {
	return &captureBackend{
		counters:   map[string]float64{},
		histograms: map[string][]float64{},
		labels:     map[string]Labels{},
	}
}

func (c *captureBackend) IncCounter(name string, delta float64, labels Labels) {
	c.counters[name] += delta
	c.labels[name] = labels
}

func (c *captureBackend) ObserveHistogram(name string, value float64, labels Labels) {
	c.histograms[name] = append(c.histograms[name], value)
	c.labels[name] = labels
}

func (c *captureBackend) Flush() error { return nil }

func TestRecordVendorHTTP(t *testing.T) {
	cb := newCaptureBackend()
	SetBackend(cb)
	t.Cleanup(func() { SetBackend(nil) })

	RecordVendorHTTP("smsact", "getPrices", 200, nil, 120*time.Millisecond)
	RecordVendorHTTP("smsact", "getPrices", 0, errors.New("timeout"), 30*time.Second)

	if got := cb.counters["vendor.http.requests"]; got != 2 {
		t.Fatalf("requests=%v, want 2", got)
	}
	if got := cb.counters["vendor.http.errors"]; got != 1 {
		t.Fatalf("errors=%v, want 1 (only the failed attempt)", got)
	}
	if got := len(cb.histograms["vendor.http.duration_ms"]); got != 2 {
		t.Fatalf("duration samples=%v, want 2", got)
	}

	labels := cb.labels["vendor.http.errors"]
	if labels["vendor"] != "smsact" || labels["op"] != "getPrices" || labels["status"] != "network_error" {
		t.Fatalf("labels=%v", labels)
	}
}

func TestStatusClass(t *testing.T) {
	tests := []struct {
		status int
		want   string
	}{
		{0, "network_error"},
		{200, "2xx"},
		{204, "2xx"},
		{301, "3xx"},
		{404, "4xx"},
		{429, "429"},
		{500, "5xx"},
		{503, "5xx"},
	}
	for _, tc := range tests {
		if got := statusClass(tc.status); got != tc.want {
			t.Fatalf("statusClass(%d)=%q, want %q", tc.status, got, tc.want)
		}
	}
}

func TestSetBackend_NilRestoresNop(t *testing.T) {
	SetBackend(newCaptureBackend())
	SetBackend(nil)

	if _, ok := current().(nopBackend); !ok {
		t.Fatalf("backend type %T, want nopBackend", current())
	}
}
