package rollup

import (
	"math"
	"sync"
	"time"
)

// RiskAlert is a deduplicated notification that an entity's trust trajectory
// crossed an anomaly threshold.
type RiskAlert struct {
	Kind        string  `json:"kind"` // e.g. "domain-anomaly", "casino-anomaly"
	Entity      string  `json:"entity"`
	TotalDelta  float64 `json:"totalDelta,omitempty"`
	Severity    int     `json:"severity,omitempty"`
	FirstSeenTS int64   `json:"firstSeenTs"`
	LastSeenTS  int64   `json:"lastSeenTs"`
	Occurrences int     `json:"occurrences"`
}

// AlertStore keeps risk alerts with insertion-time dedup: a new alert that is
// materially equivalent to a stored one for the same (kind, entity) only
// bumps the occurrence count.
type AlertStore struct {
	mu     sync.Mutex
	alerts []*RiskAlert
}

func NewAlertStore() *AlertStore {
	return &AlertStore{}
}

// materially equivalent: same severity, and the new magnitude is not more
// than 1.5x the stored one. A genuinely larger or more severe observation
// gets its own alert.
func equivalent(existing *RiskAlert, severity int, totalDelta float64) bool {
	return existing.Severity == severity &&
		math.Abs(totalDelta) <= math.Abs(existing.TotalDelta)*1.5
}

// Add inserts an alert unless an equivalent one is already stored. Returns
// true if a new alert was appended.
func (s *AlertStore) Add(kind, entity string, totalDelta float64, severity int) bool {
	now := time.Now().UnixMilli()
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.alerts {
		if a.Kind == kind && a.Entity == entity && equivalent(a, severity, totalDelta) {
			a.Occurrences++
			a.LastSeenTS = now
			return false
		}
	}
	s.alerts = append(s.alerts, &RiskAlert{
		Kind:        kind,
		Entity:      entity,
		TotalDelta:  totalDelta,
		Severity:    severity,
		FirstSeenTS: now,
		LastSeenTS:  now,
		Occurrences: 1,
	})
	return true
}

// List returns a copy snapshot, oldest first.
func (s *AlertStore) List() []RiskAlert {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]RiskAlert, 0, len(s.alerts))
	for _, a := range s.alerts {
		out = append(out, *a)
	}
	return out
}

// Clear wipes stored alerts. Test isolation only.
func (s *AlertStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts = nil
}
