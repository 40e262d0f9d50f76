// Package perf records call counts and latencies of instrumented functions.
//
//	func Resolve(...) {
//		defer perf.Track(cfg, "property.Resolve")()
//		...
//	}
//
// Tracking is off until EnableTracking(true); a disabled Track costs one atomic load.
package perf

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"

	"github.com/cloudposse/pomgraph/pkg/schema"
)

const (
	minTrackable = int64(time.Microsecond)
	maxTrackable = int64(10 * time.Minute)
	sigFigures   = 3
)

var (
	enabled  atomic.Bool
	registry = &Registry{metrics: make(map[string]*metric)}
)

type metric struct {
	count int64
	total time.Duration
	hist  *hdrhistogram.Histogram
}

// Registry aggregates measurements per function name.
type Registry struct {
	mu      sync.Mutex
	metrics map[string]*metric
}

// Stat summarizes one tracked function.
type Stat struct {
	Name  string        `json:"name" yaml:"name"`
	Count int64         `json:"count" yaml:"count"`
	Total time.Duration `json:"total" yaml:"total"`
	P50   time.Duration `json:"p50" yaml:"p50"`
	P95   time.Duration `json:"p95" yaml:"p95"`
	Max   time.Duration `json:"max" yaml:"max"`
}

// EnableTracking turns recording on or off process-wide.
func EnableTracking(on bool) {
	enabled.Store(on)
}

// Track starts timing name and returns the function that stops it.
// cfg may be nil; a configuration with the profiler enabled turns tracking on.
func Track(cfg *schema.Configuration, name string) func() {
	if cfg != nil && cfg.Profiler.Enabled {
		enabled.Store(true)
	}
	if !enabled.Load() {
		return func() {}
	}

	start := time.Now()
	return func() {
		registry.record(name, time.Since(start))
	}
}

func (r *Registry) record(name string, d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.metrics[name]
	if !ok {
		m = &metric{hist: hdrhistogram.New(minTrackable, maxTrackable, sigFigures)}
		r.metrics[name] = m
	}
	m.count++
	m.total += d

	v := int64(d)
	if v < minTrackable {
		v = minTrackable
	}
	if v > maxTrackable {
		v = maxTrackable
	}
	_ = m.hist.RecordValue(v)
}

// Snapshot returns the stats ordered by total time, largest first.
func Snapshot() []Stat {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	stats := make([]Stat, 0, len(registry.metrics))
	for name, m := range registry.metrics {
		stats = append(stats, Stat{
			Name:  name,
			Count: m.count,
			Total: m.total,
			P50:   time.Duration(m.hist.ValueAtQuantile(50)),
			P95:   time.Duration(m.hist.ValueAtQuantile(95)),
			Max:   time.Duration(m.hist.Max()),
		})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Total == stats[j].Total {
			return stats[i].Name < stats[j].Name
		}
		return stats[i].Total > stats[j].Total
	})
	return stats
}

// Reset drops every measurement.
func Reset() {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.metrics = make(map[string]*metric)
}
