package rollup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlertDedup(t *testing.T) {
	assert := assert.New(t)
	s := NewAlertStore()

	assert.True(s.Add("domain-anomaly", "evil.example", -60, 4))
	// materially equivalent observation: same severity, magnitude within 1.5x
	assert.False(s.Add("domain-anomaly", "evil.example", -70, 4))

	alerts := s.List()
	require.Len(t, alerts, 1)
	assert.Equal(2, alerts[0].Occurrences)
	assert.Equal(-60.0, alerts[0].TotalDelta)
	assert.GreaterOrEqual(alerts[0].LastSeenTS, alerts[0].FirstSeenTS)
}

func TestAlertNotDedupedWhenMaterial(t *testing.T) {
	assert := assert.New(t)
	s := NewAlertStore()

	assert.True(s.Add("casino-anomaly", "CasinoA", -20, 3))
	// different severity is a different observation
	assert.True(s.Add("casino-anomaly", "CasinoA", -22, 4))
	// much larger magnitude at the original severity too
	assert.True(s.Add("casino-anomaly", "CasinoA", -90, 3))
	// different entity, same kind
	assert.True(s.Add("casino-anomaly", "CasinoB", -20, 3))

	assert.Len(s.List(), 4)
}

func TestAlertListIsSnapshot(t *testing.T) {
	assert := assert.New(t)
	s := NewAlertStore()
	s.Add("domain-anomaly", "evil.example", -60, 4)

	alerts := s.List()
	alerts[0].Entity = "mutated"
	assert.Equal("evil.example", s.List()[0].Entity)

	s.Clear()
	assert.Empty(s.List())
}
