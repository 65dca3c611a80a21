package engine

import (
	"context"
	"math"
	"sort"

	"github.com/jmenichole/tiltcheck-monorepo-sub008/trust/scorestore"
)

// how many history entries an explanation surfaces
const explainTopFactors = 5

// Explanation is a human-readable account of why an entity sits at its
// current score: the most significant recent adjustments, largest first.
type Explanation struct {
	Entity     string                    `json:"entity"`
	Score      int                       `json:"score"`
	Level      Level                     `json:"level"`
	TopFactors []scorestore.HistoryEntry `json:"topFactors"`
}

// ExplainScore returns the current classification plus the recent history
// entries with the largest absolute deltas. Pure read, no side effects.
func (e *Engine) ExplainScore(ctx context.Context, entity string) (*Explanation, error) {
	b, err := e.store.Get(ctx, e.cfg.Kind, entity)
	if err != nil {
		return nil, err
	}
	if b == nil {
		b = e.newBreakdown(entity)
	}
	score := e.score(b)

	factors := append([]scorestore.HistoryEntry{}, b.History...)
	sort.SliceStable(factors, func(i, j int) bool {
		return math.Abs(factors[i].Delta) > math.Abs(factors[j].Delta)
	})
	if len(factors) > explainTopFactors {
		factors = factors[:explainTopFactors]
	}
	return &Explanation{
		Entity:     entity,
		Score:      score,
		Level:      TrustLevel(score),
		TopFactors: factors,
	}, nil
}
