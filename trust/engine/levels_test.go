package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrustLevelBands(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(LevelVeryHigh, TrustLevel(98))
	assert.Equal(LevelHighRisk, TrustLevel(30))

	// boundaries are inclusive lower bounds
	assert.Equal(LevelVeryHigh, TrustLevel(95))
	assert.Equal(LevelHigh, TrustLevel(94))
	assert.Equal(LevelHigh, TrustLevel(80))
	assert.Equal(LevelNeutral, TrustLevel(79))
	assert.Equal(LevelNeutral, TrustLevel(55))
	assert.Equal(LevelLow, TrustLevel(54))
	assert.Equal(LevelLow, TrustLevel(35))
	assert.Equal(LevelHighRisk, TrustLevel(34))
	assert.Equal(LevelHighRisk, TrustLevel(0))
	assert.Equal(LevelVeryHigh, TrustLevel(100))
}
