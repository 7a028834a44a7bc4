// SPDX-License-Identifier: MIT

package metrics

import (
	"sort"
	"sync"
	"time"
)

// Profiler accumulates named counters and timers for a single query.
// A nil *Profiler is valid and records nothing.
type Profiler struct {
	mu       sync.Mutex
	counters map[string]uint64
	timers   map[string]time.Duration
	progress float64
}

// NewProfiler returns an empty profiler.
func NewProfiler() *Profiler {
	return &Profiler{
		counters: make(map[string]uint64),
		timers:   make(map[string]time.Duration),
	}
}

// Add increments counter name by n.
func (p *Profiler) Add(name string, n uint64) {
	if p == nil {
		return
	}
	p.mu.Lock()
	p.counters[name] += n
	p.mu.Unlock()
}

// Observe adds d to timer name.
func (p *Profiler) Observe(name string, d time.Duration) {
	if p == nil {
		return
	}
	p.mu.Lock()
	p.timers[name] += d
	p.mu.Unlock()
}

// UpdateProgress records the fraction of work completed, clamped to [0,1].
func (p *Profiler) UpdateProgress(fraction float64) {
	if p == nil {
		return
	}
	switch {
	case fraction < 0:
		fraction = 0
	case fraction > 1:
		fraction = 1
	}
	p.mu.Lock()
	p.progress = fraction
	p.mu.Unlock()
}

// Counter returns the current value of counter name.
func (p *Profiler) Counter(name string) uint64 {
	if p == nil {
		return 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.counters[name]
}

// Timer returns the accumulated duration of timer name.
func (p *Profiler) Timer(name string) time.Duration {
	if p == nil {
		return 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.timers[name]
}

// Progress returns the last value passed to UpdateProgress.
func (p *Profiler) Progress() float64 {
	if p == nil {
		return 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.progress
}

// CounterNames returns the recorded counter names in sorted order.
func (p *Profiler) CounterNames() []string {
	if p == nil {
		return nil
	}
	p.mu.Lock()
	names := make([]string, 0, len(p.counters))
	for name := range p.counters {
		names = append(names, name)
	}
	p.mu.Unlock()
	sort.Strings(names)
	return names
}
