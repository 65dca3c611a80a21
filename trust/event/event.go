// Package event defines the typed envelope and payload contracts that flow
// through the trust pipeline's router.
package event

import (
	"time"

	"github.com/google/uuid"
)

// Type identifies one of the closed set of event kinds the pipeline routes.
// The router itself accepts unknown types (it is not a schema validator), but
// nothing subscribes to them.
type Type string

const (
	// normalized score changes, published by the scoring engines
	TypeDomainUpdated Type = "trust.domain.updated"
	TypeCasinoUpdated Type = "trust.casino.updated"
	TypeDegenUpdated  Type = "trust.degen.updated"

	// windowed aggregates, published by the rollup service
	TypeCasinoRollup Type = "trust.casino.rollup"
	TypeDomainRollup Type = "trust.domain.rollup"

	// raw observations from producers
	TypeBonusNerfDetected     Type = "bonus.nerf.detected"
	TypeLinkFlagged           Type = "link.flagged"
	TypeTiltDetected          Type = "tilt.detected"
	TypeCooldownViolated      Type = "cooldown.violated"
	TypeTipCompleted          Type = "tip.completed"
	TypeScamReported          Type = "scam.reported"
	TypeAccountabilitySuccess Type = "accountability.success"
)

// Event is the atomic unit flowing through the router. Events are immutable
// once published; the router hands out copies, never live references.
type Event struct {
	ID        string `json:"id"`
	Type      Type   `json:"type"`
	Timestamp int64  `json:"timestamp"` // producer-observed, ms since epoch
	Source    string `json:"source"`
	UserID    string `json:"userId,omitempty"`
	Data      any    `json:"data,omitempty"`
}

// New constructs an event with a fresh ID and the current wall-clock time.
func New(t Type, source string, data any, userID string) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      t,
		Timestamp: time.Now().UnixMilli(),
		Source:    source,
		UserID:    userID,
		Data:      data,
	}
}
