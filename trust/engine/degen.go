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

// Degen (user) sub-score categories.
const (
	CatBaseTrust      = "baseTrust"
	CatTiltControl    = "tiltControl"
	CatAccountability = "accountability"
)

const (
	DegenBaseline = 75.0

	tiltSeverityScale    = 2.5
	cooldownPenalty      = -4.0
	verifiedScamPenalty  = -25.0
	falseReportPenalty   = -10.0
	generosityThreshold  = 100.0
	generosityBonus      = 3.0
	generosityDailyCap   = 3
	accountabilityReward = 5.0

	counterGenerosity = "degen-generosity"
)

var degenWeights = map[string]float64{
	CatBaseTrust:      0.75,
	CatTiltControl:    0.15,
	CatAccountability: 0.10,
}

// NewDegenEngine wires the user scoring engine to the router.
func NewDegenEngine(logger *slog.Logger, r *router.Router, store scorestore.ScoreStore, counters countstore.CountStore) (*Engine, error) {
	cfg := Config{
		Kind:        scorestore.KindDegen,
		SourceID:    "degen-engine",
		Baseline:    DegenBaseline,
		Weights:     degenWeights,
		UpdatedType: event.TypeDegenUpdated,
		// degen scores are not rolled up; adjustments are low-frequency
		PrimaryCategory: CatBaseTrust,
	}
	rules := map[event.Type]RuleFunc{
		event.TypeTiltDetected:          degenTiltRule,
		event.TypeCooldownViolated:      degenCooldownRule,
		event.TypeScamReported:          degenScamReportRule,
		event.TypeTipCompleted:          degenTipRule,
		event.TypeAccountabilitySuccess: degenAccountabilityRule,
	}
	return newEngine(logger, r, store, counters, cfg, rules)
}

func degenTiltRule(ctx context.Context, e *Engine, evt event.Event) []Adjustment {
	p, ok := evt.Data.(event.TiltDetected)
	if !ok || evt.UserID == "" {
		return nil
	}
	sev := p.Severity
	if sev < 1 {
		sev = 1
	} else if sev > 5 {
		sev = 5
	}
	reason := fmt.Sprintf("tilt detected (severity %d)", sev)
	if p.Indicator != "" {
		reason = fmt.Sprintf("tilt detected: %s (severity %d)", p.Indicator, sev)
	}
	return []Adjustment{{
		Entity:   evt.UserID,
		Category: CatTiltControl,
		Delta:    -tiltSeverityScale * float64(sev),
		Severity: sev,
		Reason:   reason,
		Meters:   map[string]float64{"tiltEvents": 1},
	}}
}

func degenCooldownRule(ctx context.Context, e *Engine, evt event.Event) []Adjustment {
	if evt.UserID == "" {
		return nil
	}
	return []Adjustment{{
		Entity:   evt.UserID,
		Category: CatTiltControl,
		Delta:    cooldownPenalty,
		Severity: 2,
		Reason:   "cooldown violated",
		Meters:   map[string]float64{"cooldownViolations": 1},
	}}
}

func degenScamReportRule(ctx context.Context, e *Engine, evt event.Event) []Adjustment {
	p, ok := evt.Data.(event.ScamReport)
	if !ok {
		return nil
	}
	if p.FalseReport {
		// the accusation didn't hold up; the reporter takes the hit
		if p.ReporterID == "" {
			return nil
		}
		return []Adjustment{{
			Entity:   p.ReporterID,
			Category: CatBaseTrust,
			Delta:    falseReportPenalty,
			Severity: 2,
			Reason:   "filed false scam report",
			Meters:   map[string]float64{"falseReports": 1},
		}}
	}
	if !p.Verified || p.AccusedID == "" {
		return nil
	}
	return []Adjustment{{
		Entity:   p.AccusedID,
		Category: CatBaseTrust,
		Delta:    verifiedScamPenalty,
		Severity: 4,
		Reason:   "verified scam report",
		Meters:   map[string]float64{"scamFlags": 1},
	}}
}

func degenTipRule(ctx context.Context, e *Engine, evt event.Event) []Adjustment {
	p, ok := evt.Data.(event.TipCompleted)
	if !ok || p.FromUserID == "" || p.Amount < generosityThreshold {
		return nil
	}
	// cap how many generosity bonuses one user can farm per day
	earned, err := e.counters.GetCount(ctx, counterGenerosity, p.FromUserID, countstore.PeriodDay)
	if err != nil {
		e.logger.Warn("reading generosity counter", "user", p.FromUserID, "err", err)
		return nil
	}
	if earned >= generosityDailyCap {
		return nil
	}
	if err := e.counters.Increment(ctx, counterGenerosity, p.FromUserID); err != nil {
		e.logger.Warn("incrementing generosity counter", "user", p.FromUserID, "err", err)
	}
	return []Adjustment{{
		Entity:   p.FromUserID,
		Category: CatAccountability,
		Delta:    generosityBonus,
		Severity: 1,
		Reason:   fmt.Sprintf("generous tip of %.0f", p.Amount),
		Meters:   map[string]float64{"accountabilityBonus": generosityBonus},
	}}
}

func degenAccountabilityRule(ctx context.Context, e *Engine, evt event.Event) []Adjustment {
	if evt.UserID == "" {
		return nil
	}
	reason := "accountability check-in completed"
	if p, ok := evt.Data.(event.AccountabilitySuccess); ok && p.Streak > 1 {
		reason = fmt.Sprintf("accountability streak of %d", p.Streak)
	}
	return []Adjustment{{
		Entity:   evt.UserID,
		Category: CatAccountability,
		Delta:    accountabilityReward,
		Severity: 1,
		Reason:   reason,
		Meters:   map[string]float64{"accountabilityBonus": accountabilityReward},
	}}
}
