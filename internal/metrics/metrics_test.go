package metrics

import (
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeBackend is a simple in-memory Backend implementation for tests.
type fakeBackend struct {
	mu sync.Mutex

	callsCounters   []counterCall
	callsHistograms []histCall
	flushCount      int
}

type counterCall struct {
	name   string
	delta  float64
	labels Labels
}

type histCall struct {
	name   string
	value  float64
	labels Labels
}

func (f *fakeBackend) IncCounter(name string, delta float64, labels Labels) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.callsCounters = append(f.callsCounters, counterCall{name, delta, labels})
}

func (f *fakeBackend) ObserveHistogram(name string, value float64, labels Labels) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.callsHistograms = append(f.callsHistograms, histCall{name, value, labels})
}

func (f *fakeBackend) Flush() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flushCount++
	return nil
}

func install(t *testing.T) *fakeBackend {
	t.Helper()
	orig := current()
	t.Cleanup(func() { SetBackend(orig) })
	fb := &fakeBackend{}
	SetBackend(fb)
	return fb
}

func TestRecordPhase_SuccessAndFailure(t *testing.T) {
	fb := install(t)

	RecordPhase("jobA", PhaseExtract, "lines1", nil, 2*time.Second)
	RecordPhase("jobB", PhaseLoad, "aa", errors.New("boom"), 1500*time.Millisecond)

	if len(fb.callsCounters) != 2 || len(fb.callsHistograms) != 2 {
		t.Fatalf("calls: counters=%d hists=%d, want 2/2", len(fb.callsCounters), len(fb.callsHistograms))
	}

	cc0 := fb.callsCounters[0]
	if cc0.name != PhaseTotal || cc0.delta != 1 {
		t.Fatalf("counter[0] = %#v", cc0)
	}
	want := Labels{"job": "jobA", "phase": "extract", "domain": "lines1", "status": "success"}
	for k, v := range want {
		if cc0.labels[k] != v {
			t.Fatalf("counter[0].labels[%s] = %q, want %q", k, cc0.labels[k], v)
		}
	}

	h0 := fb.callsHistograms[0]
	if h0.name != PhaseDuration || h0.value < 2.0-0.001 || h0.value > 2.0+0.001 {
		t.Fatalf("hist[0] = %#v, want ~2.0", h0)
	}

	if got := fb.callsCounters[1].labels["status"]; got != "failure" {
		t.Fatalf("counter[1].labels[status] = %q, want failure", got)
	}
	if h1 := fb.callsHistograms[1]; h1.value < 1.5-0.001 || h1.value > 1.5+0.001 {
		t.Fatalf("hist[1].value = %v, want ~1.5", h1.value)
	}
}

func TestRecordRowsAndSteps(t *testing.T) {
	fb := install(t)

	RecordRows("job", "extracted", "lines1", 3)
	RecordRows("job", "extracted", "lines1", 0) // ignored
	RecordRows("job", "loaded", "aa", 5)
	RecordStep("job", nil)

	if len(fb.callsCounters) != 3 {
		t.Fatalf("expected 3 counter calls, got %d", len(fb.callsCounters))
	}
	c0 := fb.callsCounters[0]
	if c0.name != RowsTotal || c0.delta != 3 || c0.labels["kind"] != "extracted" || c0.labels["domain"] != "lines1" {
		t.Fatalf("counter[0] = %#v", c0)
	}
	c1 := fb.callsCounters[1]
	if c1.delta != 5 || c1.labels["kind"] != "loaded" {
		t.Fatalf("counter[1] = %#v", c1)
	}
	c2 := fb.callsCounters[2]
	if c2.name != StepsTotal || c2.labels["status"] != "success" {
		t.Fatalf("counter[2] = %#v", c2)
	}
}

func TestSetBackendNilAndFlush(t *testing.T) {
	fb := install(t)

	SetBackend(nil)
	if err := Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if fb.flushCount != 1 {
		t.Fatalf("flushCount = %d, want 1 (nil must not replace backend)", fb.flushCount)
	}
}
