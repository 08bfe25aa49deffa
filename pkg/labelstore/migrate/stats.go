package migrate

import (
	"fmt"
	"time"
)

// Outcome is the result recorded for one processed pair.
type Outcome string

const (
	OutcomeMigrated     Outcome = "migrated"
	OutcomeSkipped      Outcome = "skipped"
	OutcomeError        Outcome = "error"
	OutcomeReclassified Outcome = "reclassified"
)

// Stats accumulates counts across one run. Each processed pair records
// exactly one outcome; processing is sequential so no locking is needed.
type Stats struct {
	Total        int
	Migrated     int
	Skipped      int
	Errors       int
	Reclassified int

	StartTime time.Time
	EndTime   time.Time
}

// NewStats creates a Stats stamped with the run's start time.
func NewStats() *Stats {
	return &Stats{StartTime: time.Now()}
}

// Record counts one pair outcome.
func (s *Stats) Record(o Outcome) {
	s.Total++
	switch o {
	case OutcomeMigrated:
		s.Migrated++
	case OutcomeSkipped:
		s.Skipped++
	case OutcomeError:
		s.Errors++
	case OutcomeReclassified:
		s.Reclassified++
	}
}

// Complete stamps the run's end time.
func (s *Stats) Complete() {
	s.EndTime = time.Now()
}

// Summary renders the run counters. Reclassified appears only when
// non-zero and the duration only once the run completed.
func (s *Stats) Summary() string {
	out := fmt.Sprintf("total=%d migrated=%d skipped=%d errors=%d",
		s.Total, s.Migrated, s.Skipped, s.Errors)
	if s.Reclassified > 0 {
		out += fmt.Sprintf(" reclassified=%d", s.Reclassified)
	}
	if !s.EndTime.IsZero() {
		out += fmt.Sprintf(" duration=%s", s.EndTime.Sub(s.StartTime).Round(time.Millisecond))
	}
	return out
}
