package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmenichole/tiltcheck-monorepo-sub008/trust/event"
)

func TestDomainLinkFlagged(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	s := newTestStack(t)

	cases := []struct {
		risk  string
		delta float64
	}{
		{event.RiskLow, -1},
		{event.RiskMedium, -4},
		{event.RiskHigh, -8},
		{event.RiskCritical, -12},
	}
	expected := DomainBaseline
	for _, tc := range cases {
		s.router.Publish(ctx, event.TypeLinkFlagged, "scanner",
			event.LinkFlagged{Domain: "sketchy.example", URL: "https://sketchy.example/win", RiskLevel: tc.risk}, "")
		expected += tc.delta
	}

	v, err := s.domain.GetBreakdown(ctx, "sketchy.example")
	require.NoError(t, err)
	assert.Equal(expected, v.Scores[CatSafety])
	assert.Equal(4.0, v.Meters["flaggedLinks"])
	assertWeightedConsistency(t, v, domainWeights)

	// unknown risk level is skipped, not guessed at
	s.router.Publish(ctx, event.TypeLinkFlagged, "scanner",
		event.LinkFlagged{Domain: "sketchy.example", RiskLevel: "apocalyptic"}, "")
	v, err = s.domain.GetBreakdown(ctx, "sketchy.example")
	require.NoError(t, err)
	assert.Equal(expected, v.Scores[CatSafety])
}

func TestDomainVerifiedScamReport(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	s := newTestStack(t)

	s.router.Publish(ctx, event.TypeScamReported, "reports",
		event.ScamReport{Domain: "scamhub.example", Verified: true}, "")
	v, err := s.domain.GetBreakdown(ctx, "scamhub.example")
	require.NoError(t, err)
	assert.Equal(60.0, v.Scores[CatReputation])
	assert.Equal(70.0, v.Scores[CatSafety])
}
