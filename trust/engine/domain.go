package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmenichole/tiltcheck-monorepo-sub008/trust/countstore"
	"github.com/jmenichole/tiltcheck-monorepo-sub008/trust/event"
	"github.com/jmenichole/tiltcheck-monorepo-sub008/trust/router"
	"github.com/jmenichole/tiltcheck-monorepo-sub008/trust/scorestore"
)

// Domain sub-score categories.
const (
	CatSafety     = "safety"
	CatReputation = "reputation"
)

const (
	DomainBaseline    = 70.0
	domainScamPenalty = -10.0
)

var domainWeights = map[string]float64{
	CatSafety:     0.6,
	CatReputation: 0.4,
}

// NewDomainEngine wires the domain scoring engine to the router.
func NewDomainEngine(logger *slog.Logger, r *router.Router, store scorestore.ScoreStore, counters countstore.CountStore) (*Engine, error) {
	cfg := Config{
		Kind:            scorestore.KindDomain,
		SourceID:        "domain-engine",
		Baseline:        DomainBaseline,
		Weights:         domainWeights,
		UpdatedType:     event.TypeDomainUpdated,
		RollupType:      event.TypeDomainRollup,
		PrimaryCategory: CatSafety,
	}
	rules := map[event.Type]RuleFunc{
		event.TypeLinkFlagged:  domainLinkFlaggedRule,
		event.TypeScamReported: domainScamReportRule,
	}
	return newEngine(logger, r, store, counters, cfg, rules)
}

func domainLinkFlaggedRule(ctx context.Context, e *Engine, evt event.Event) []Adjustment {
	p, ok := evt.Data.(event.LinkFlagged)
	if !ok || p.Domain == "" {
		return nil
	}
	var delta float64
	var severity int
	switch p.RiskLevel {
	case event.RiskCritical:
		delta, severity = -12, 4
	case event.RiskHigh:
		delta, severity = -8, 3
	case event.RiskMedium:
		delta, severity = -4, 2
	case event.RiskLow:
		delta, severity = -1, 1
	default:
		return nil
	}
	return []Adjustment{{
		Entity:   p.Domain,
		Category: CatSafety,
		Delta:    delta,
		Severity: severity,
		Reason:   fmt.Sprintf("%s-risk link flagged", p.RiskLevel),
		Meters:   map[string]float64{"flaggedLinks": 1},
	}}
}

func domainScamReportRule(ctx context.Context, e *Engine, evt event.Event) []Adjustment {
	p, ok := evt.Data.(event.ScamReport)
	if !ok || p.Domain == "" || !p.Verified {
		return nil
	}
	return []Adjustment{{
		Entity:   p.Domain,
		Category: CatReputation,
		Delta:    domainScamPenalty,
		Severity: 3,
		Reason:   "verified scam report",
		Meters:   map[string]float64{"scamReports": 1},
	}}
}
