// Package scorestore persists per-entity score breakdowns for the trust
// scoring engines. Engines are the only writers for their own kind; the store
// hands out deep copies so readers can never mutate engine state.
package scorestore

import (
	"context"
)

// Kind names the scoring domain an entity belongs to.
type Kind string

const (
	KindCasino Kind = "casino"
	KindDomain Kind = "domain"
	KindDegen  Kind = "degen"
)

// HistoryEntry is one applied adjustment, kept append-only for explain
// queries. Never truncated during a process lifetime.
type HistoryEntry struct {
	Timestamp int64   `json:"timestamp"` // ms since epoch
	Category  string  `json:"category"`
	Delta     float64 `json:"delta"`
	Reason    string  `json:"reason"`
}

// Breakdown is the mutable per-entity state a scoring engine owns
// exclusively. Scores hold the engine's fixed category set, each clamped to
// [0, 100]; Meters hold observational counters (tilt events, scam flags,
// accountability bonus) that sit outside the weighted score.
type Breakdown struct {
	Kind      Kind               `json:"kind"`
	Entity    string             `json:"entity"`
	Scores    map[string]float64 `json:"scores"`
	Meters    map[string]float64 `json:"meters,omitempty"`
	History   []HistoryEntry     `json:"history,omitempty"`
	CreatedAt int64              `json:"createdAt"`
	UpdatedAt int64              `json:"updatedAt"`
}

// Clone returns a deep copy.
func (b *Breakdown) Clone() *Breakdown {
	if b == nil {
		return nil
	}
	out := &Breakdown{
		Kind:      b.Kind,
		Entity:    b.Entity,
		Scores:    make(map[string]float64, len(b.Scores)),
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
	for k, v := range b.Scores {
		out.Scores[k] = v
	}
	if b.Meters != nil {
		out.Meters = make(map[string]float64, len(b.Meters))
		for k, v := range b.Meters {
			out.Meters[k] = v
		}
	}
	if len(b.History) > 0 {
		out.History = append([]HistoryEntry{}, b.History...)
	}
	return out
}

// ScoreStore is the storage boundary for breakdowns. Get returns nil (no
// error) for entities never observed; lazy creation is the engine's job.
type ScoreStore interface {
	Get(ctx context.Context, kind Kind, entity string) (*Breakdown, error)
	Put(ctx context.Context, b *Breakdown) error
	List(ctx context.Context, kind Kind) ([]string, error)
	// Clear wipes all state for a kind. Test isolation only.
	Clear(ctx context.Context, kind Kind) error
}
