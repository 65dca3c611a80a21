package event

// Category names a rollup stream. Degen scores are intentionally not rolled
// up; user-level adjustments are low-frequency enough to not need windowing.
type Category string

const (
	CategoryDomain Category = "domain"
	CategoryCasino Category = "casino"
)

// RollupType maps a category to the event type its batches are published as.
func RollupType(c Category) Type {
	if c == CategoryCasino {
		return TypeCasinoRollup
	}
	return TypeDomainRollup
}

// WindowBucket is the per-entity accumulator inside one rollup window.
type WindowBucket struct {
	TotalDelta   float64 `json:"totalDelta"`
	Events       int     `json:"events"`
	LastSeverity int     `json:"lastSeverity"`
	LastScore    float64 `json:"lastScore"`
}

// RollupBatch is one flushed window for one category: the payload of
// trust.<category>.rollup events, and the unit persisted in snapshot files.
// WindowStart <= WindowEnd always holds.
type RollupBatch struct {
	Category    Category                `json:"category"`
	WindowStart int64                   `json:"windowStart"` // ms since epoch
	WindowEnd   int64                   `json:"windowEnd"`
	Entries     map[string]WindowBucket `json:"entries"`
}
