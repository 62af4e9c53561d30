// Package profiler - per-stage timing for batch explanation runs.
package profiler

import (
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// StageStats summarizes the observed durations of one stage.
type StageStats struct {
	Name  string
	Count int64
	Total time.Duration
	Min   time.Duration
	Max   time.Duration
}

// Mean returns the average duration, zero when nothing was observed.
func (s StageStats) Mean() time.Duration {
	if s.Count == 0 {
		return 0
	}
	return s.Total / time.Duration(s.Count)
}

// StageTimer tracks timing statistics per named stage. It is safe for concurrent use.
type StageTimer struct {
	mu     sync.Mutex
	stages map[string]*StageStats
}

// NewStageTimer returns an empty StageTimer.
func NewStageTimer() *StageTimer {
	return &StageTimer{stages: make(map[string]*StageStats)}
}

// Start begins timing a stage.
//
// Arguments:
// - name: The name of the stage to track
//
// Returns:
// - A function to call when the stage completes
func (st *StageTimer) Start(name string) func() {
	start := time.Now()
	return func() {
		st.Observe(name, time.Since(start))
	}
}

// Observe records one completed run of a stage.
func (st *StageTimer) Observe(name string, d time.Duration) {
	st.mu.Lock()
	defer st.mu.Unlock()

	s, ok := st.stages[name]
	if !ok {
		s = &StageStats{Name: name, Min: d, Max: d}
		st.stages[name] = s
	}

	s.Count++
	s.Total += d
	if d < s.Min {
		s.Min = d
	}
	if d > s.Max {
		s.Max = d
	}
}

// Snapshot returns a copy of the statistics ordered by stage name.
func (st *StageTimer) Snapshot() []StageStats {
	st.mu.Lock()
	defer st.mu.Unlock()

	out := make([]StageStats, 0, len(st.stages))
	for _, s := range st.stages {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Report logs one line per stage.
func (st *StageTimer) Report(log logrus.FieldLogger) {
	for _, s := range st.Snapshot() {
		log.WithFields(logrus.Fields{
			"stage": s.Name,
			"count": s.Count,
			"mean":  s.Mean().String(),
			"min":   s.Min.String(),
			"max":   s.Max.String(),
		}).Info("stage timing")
	}
}
