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

// Casino sub-score categories.
const (
	CatFairness    = "fairness"
	CatPayoutSpeed = "payoutSpeed"
	CatBonusTerms  = "bonusTerms"
	CatUserReports = "userReports"
	CatFreespin    = "freespin"
	CatCompliance  = "compliance"
	CatSupport     = "support"
)

const (
	CasinoBaseline = 70.0

	// a 40% bonus nerf costs 10 points of bonusTerms
	bonusNerfScale = 25.0

	counterCasinoNerf    = "casino-nerf"
	counterScamReporters = "casino-scam-reporters"
	casinoScamPenalty    = -10.0
)

var casinoWeights = map[string]float64{
	CatFairness:    0.25,
	CatPayoutSpeed: 0.15,
	CatBonusTerms:  0.15,
	CatUserReports: 0.15,
	CatFreespin:    0.10,
	CatCompliance:  0.10,
	CatSupport:     0.10,
}

// NewCasinoEngine wires the casino scoring engine to the router.
func NewCasinoEngine(logger *slog.Logger, r *router.Router, store scorestore.ScoreStore, counters countstore.CountStore) (*Engine, error) {
	cfg := Config{
		Kind:            scorestore.KindCasino,
		SourceID:        "casino-engine",
		Baseline:        CasinoBaseline,
		Weights:         casinoWeights,
		UpdatedType:     event.TypeCasinoUpdated,
		RollupType:      event.TypeCasinoRollup,
		PrimaryCategory: CatFairness,
	}
	rules := map[event.Type]RuleFunc{
		event.TypeBonusNerfDetected: casinoBonusNerfRule,
		event.TypeLinkFlagged:       casinoLinkFlaggedRule,
		event.TypeScamReported:      casinoScamReportRule,
	}
	return newEngine(logger, r, store, counters, cfg, rules)
}

func casinoBonusNerfRule(ctx context.Context, e *Engine, evt event.Event) []Adjustment {
	p, ok := evt.Data.(event.BonusNerf)
	if !ok || p.Casino == "" || p.PercentDrop <= 0 {
		return nil
	}
	if err := e.counters.Increment(ctx, counterCasinoNerf, p.Casino); err != nil {
		e.logger.Warn("incrementing nerf counter", "casino", p.Casino, "err", err)
	}
	severity := 2
	if p.PercentDrop >= 0.3 {
		severity = 3
	}
	return []Adjustment{{
		Entity:   p.Casino,
		Category: CatBonusTerms,
		Delta:    -bonusNerfScale * p.PercentDrop,
		Severity: severity,
		Reason:   fmt.Sprintf("bonus nerfed by %d%%", int(p.PercentDrop*100)),
		Meters:   map[string]float64{"nerfsTotal": 1},
	}}
}

func casinoLinkFlaggedRule(ctx context.Context, e *Engine, evt event.Event) []Adjustment {
	p, ok := evt.Data.(event.LinkFlagged)
	if !ok || p.Casino == "" {
		// not attributable to a casino; the domain engine still scores it
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
		delta, severity = -2, 1
	default:
		return nil
	}
	return []Adjustment{{
		Entity:   p.Casino,
		Category: CatFairness,
		Delta:    delta,
		Severity: severity,
		Reason:   fmt.Sprintf("%s-risk link flagged on %s", p.RiskLevel, p.Domain),
		Meters:   map[string]float64{"flaggedLinks": 1},
	}}
}

func casinoScamReportRule(ctx context.Context, e *Engine, evt event.Event) []Adjustment {
	p, ok := evt.Data.(event.ScamReport)
	if !ok || p.Casino == "" || !p.Verified {
		return nil
	}
	if p.ReporterID != "" {
		if err := e.counters.IncrementDistinct(ctx, counterScamReporters, p.Casino, p.ReporterID); err != nil {
			e.logger.Warn("incrementing reporter counter", "casino", p.Casino, "err", err)
		}
	}
	return []Adjustment{{
		Entity:   p.Casino,
		Category: CatUserReports,
		Delta:    casinoScamPenalty,
		Severity: 3,
		Reason:   "verified scam report",
		Meters:   map[string]float64{"scamReports": 1},
	}}
}

// casinoRiskLevel classifies a casino's short-term risk from its 24h nerf
// count and current score. Distinct from the trust band: risk reacts to
// recent behavior, the band to the accumulated score.
func casinoRiskLevel(nerfs24h, score int) string {
	switch {
	case nerfs24h >= 3 || score < 40:
		return "high"
	case nerfs24h >= 1 || score < 55:
		return "elevated"
	default:
		return "low"
	}
}
