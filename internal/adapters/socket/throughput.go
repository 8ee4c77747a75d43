package socket

import (
	"sort"
	"sync"
	"time"
)

// Throughput collects (bytes, elapsed) samples from completed scans and
// computes the median bytes/second over a rolling window.
// Safe for concurrent use.
type Throughput struct {
	mu      sync.Mutex
	window  time.Duration
	samples []rateSample
}

type rateSample struct {
	ts          time.Time
	bytesPerSec float64
}

// minSampleBytes drops scans too small to time meaningfully.
const minSampleBytes = 4096

// NewThroughput creates a tracker with the given rolling window duration.
func NewThroughput(window time.Duration) *Throughput {
	return &Throughput{window: window}
}

// Record adds a scan sample at the current time.
func (t *Throughput) Record(bytes int, elapsed time.Duration) {
	t.RecordAt(time.Now(), bytes, elapsed)
}

// RecordAt adds a scan sample at a specific timestamp. Scans under
// minSampleBytes or with no measurable duration are skipped.
func (t *Throughput) RecordAt(ts time.Time, bytes int, elapsed time.Duration) {
	if bytes < minSampleBytes || elapsed <= 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.samples = append(t.samples, rateSample{ts: ts, bytesPerSec: float64(bytes) / elapsed.Seconds()})
	t.evict(ts)
}

// Median returns the median bytes/second and the number of samples it was
// computed from, within the window ending at now. Returns 0, 0 when empty.
func (t *Throughput) Median(now time.Time) (float64, int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.evict(now)
	if len(t.samples) == 0 {
		return 0, 0
	}
	// Copy rates for sorting (don't mutate sample order)
	rates := make([]float64, len(t.samples))
	for i, s := range t.samples {
		rates[i] = s.bytesPerSec
	}
	sort.Float64s(rates)
	return rates[len(rates)/2], len(rates)
}

// evict removes samples older than the window. Caller holds mu.
func (t *Throughput) evict(now time.Time) {
	cutoff := now.Add(-t.window)
	i := 0
	for i < len(t.samples) && t.samples[i].ts.Before(cutoff) {
		i++
	}
	if i > 0 {
		t.samples = t.samples[i:]
	}
}
