package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmenichole/tiltcheck-monorepo-sub008/trust/event"
)

func TestDegenTiltDetected(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	s := newTestStack(t)

	s.router.Publish(ctx, event.TypeTiltDetected, "tilt-detector",
		event.TiltDetected{Severity: 4, Indicator: "loss chasing"}, "grinder")

	v, err := s.degen.GetBreakdown(ctx, "grinder")
	require.NoError(t, err)
	assert.Equal(65.0, v.Scores[CatTiltControl]) // 75 - 2.5*4
	assert.Equal(1.0, v.Meters["tiltEvents"])
	assertWeightedConsistency(t, v, degenWeights)

	// out-of-range severity clamps instead of exploding
	s.router.Publish(ctx, event.TypeTiltDetected, "tilt-detector",
		event.TiltDetected{Severity: 99}, "grinder")
	v, err = s.degen.GetBreakdown(ctx, "grinder")
	require.NoError(t, err)
	assert.Equal(52.5, v.Scores[CatTiltControl]) // further -12.5 at severity 5
}

func TestDegenCooldownViolated(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	s := newTestStack(t)

	s.router.Publish(ctx, event.TypeCooldownViolated, "cooldown-monitor",
		event.CooldownViolated{MinutesEarly: 10}, "impatient")
	v, err := s.degen.GetBreakdown(ctx, "impatient")
	require.NoError(t, err)
	assert.Equal(71.0, v.Scores[CatTiltControl])
	assert.Equal(1.0, v.Meters["cooldownViolations"])
}

func TestDegenVerifiedScamReport(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	s := newTestStack(t)

	s.router.Publish(ctx, event.TypeScamReported, "reports",
		event.ScamReport{AccusedID: "scammer", ReporterID: "victim", Verified: true}, "")

	v, err := s.degen.GetBreakdown(ctx, "scammer")
	require.NoError(t, err)
	assert.Equal(1.0, v.Meters["scamFlags"])
	assert.Less(v.Score, 60)
	assertWeightedConsistency(t, v, degenWeights)

	// the reporter is untouched by a verified report
	names, err := s.degen.Entities(ctx)
	require.NoError(t, err)
	assert.Equal([]string{"scammer"}, names)
}

func TestDegenFalseScamReport(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	s := newTestStack(t)

	s.router.Publish(ctx, event.TypeScamReported, "reports",
		event.ScamReport{AccusedID: "innocent", ReporterID: "liar", FalseReport: true}, "")

	// penalty lands on the reporter, not the accused
	v, err := s.degen.GetBreakdown(ctx, "liar")
	require.NoError(t, err)
	assert.Equal(65.0, v.Scores[CatBaseTrust])
	assert.Equal(1.0, v.Meters["falseReports"])
	names, err := s.degen.Entities(ctx)
	require.NoError(t, err)
	assert.Equal([]string{"liar"}, names)
}

func TestDegenGenerousTip(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	s := newTestStack(t)

	s.router.Publish(ctx, event.TypeTipCompleted, "tip-processor",
		event.TipCompleted{FromUserID: "generous", ToUserID: "lucky", Amount: 150}, "generous")

	v, err := s.degen.GetBreakdown(ctx, "generous")
	require.NoError(t, err)
	assert.Greater(v.Meters["accountabilityBonus"], 0.0)
	assert.Equal(78.0, v.Scores[CatAccountability])

	// small tips earn nothing
	s.router.Publish(ctx, event.TypeTipCompleted, "tip-processor",
		event.TipCompleted{FromUserID: "stingy", Amount: 5}, "stingy")
	names, err := s.degen.Entities(ctx)
	require.NoError(t, err)
	assert.Equal([]string{"generous"}, names)
}

func TestDegenGenerosityDailyCap(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	s := newTestStack(t)

	for i := 0; i < 6; i++ {
		s.router.Publish(ctx, event.TypeTipCompleted, "tip-processor",
			event.TipCompleted{FromUserID: "whale", Amount: 500}, "whale")
	}
	v, err := s.degen.GetBreakdown(ctx, "whale")
	require.NoError(t, err)
	// only the first three tips of the day count
	assert.Equal(75.0+3*generosityBonus, v.Scores[CatAccountability])
	assert.Len(v.History, generosityDailyCap)
}

func TestDegenAccountabilitySuccess(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	s := newTestStack(t)

	s.router.Publish(ctx, event.TypeAccountabilitySuccess, "accountability-bot",
		event.AccountabilitySuccess{Streak: 3}, "steady")
	v, err := s.degen.GetBreakdown(ctx, "steady")
	require.NoError(t, err)
	assert.Equal(80.0, v.Scores[CatAccountability])
	assert.Equal(5.0, v.Meters["accountabilityBonus"])
}
