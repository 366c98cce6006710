// Package session accumulates timestamped count/density samples for one
// start-to-stop capture run and exports them as CSV.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// TimestampLayout is the wall-clock time-of-day format used in exports.
const TimestampLayout = "15:04:05"

// Sample is one observation of the monitored area. Immutable once appended.
type Sample struct {
	Time    time.Time `json:"-"`
	Count   int       `json:"personas"`
	Density float64   `json:"densidad_pers_m2"`
}

// Timestamp returns the sample time as a time-of-day string.
func (s Sample) Timestamp() string {
	return s.Time.Format(TimestampLayout)
}

// Session is an ordered, append-only sequence of samples bounded by one
// start/stop cycle.
type Session struct {
	ID        string
	StartedAt time.Time

	mu      sync.RWMutex
	samples []Sample
}

// New creates an empty session starting now.
func New() *Session {
	return &Session{
		ID:        uuid.NewString(),
		StartedAt: time.Now(),
	}
}

// Append adds one sample to the session.
func (s *Session) Append(sample Sample) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.samples = append(s.samples, sample)
}

// Len returns the number of accumulated samples.
func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.samples)
}

// Samples returns a snapshot copy of the accumulated samples.
func (s *Session) Samples() []Sample {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Sample, len(s.samples))
	copy(out, s.samples)
	return out
}

// Clear removes all samples from the session.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.samples = nil
}

// Stats summarizes a session.
type Stats struct {
	Samples     int     `json:"samples"`
	MeanCount   float64 `json:"mean_count"`
	MeanDensity float64 `json:"mean_density"`
	MaxDensity  float64 `json:"max_density"`
}

// Stats computes summary statistics over the accumulated samples.
func (s *Session) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Stats{Samples: len(s.samples)}
	if len(s.samples) == 0 {
		return st
	}

	var countSum, densitySum float64
	for _, sample := range s.samples {
		countSum += float64(sample.Count)
		densitySum += sample.Density
		if sample.Density > st.MaxDensity {
			st.MaxDensity = sample.Density
		}
	}
	n := float64(len(s.samples))
	st.MeanCount = countSum / n
	st.MeanDensity = densitySum / n
	return st
}
