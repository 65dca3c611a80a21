package rollup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBaselineColdStart(t *testing.T) {
	assert := assert.New(t)
	bs := newBaselineStat()

	// no anomaly can fire before the minimum sample count, no matter the size
	for i := 0; i < baselineMinSamples-1; i++ {
		_, anomalous := bs.Observe(5)
		assert.False(anomalous)
	}
	_, anomalous := bs.Observe(10000)
	assert.False(anomalous)
}

func TestBaselineAnomalyAndFreeze(t *testing.T) {
	assert := assert.New(t)
	bs := newBaselineStat()

	for _, m := range []float64{5, 6, 5, 4, 5} {
		_, anomalous := bs.Observe(m)
		assert.False(anomalous)
	}
	baseline, anomalous := bs.Observe(60)
	assert.True(anomalous)
	assert.InDelta(5.0, baseline, 0.01)

	// frozen until the next flush: an equally wild delta stays quiet
	_, anomalous = bs.Observe(70)
	assert.False(anomalous)

	bs.Unfreeze()
	_, anomalous = bs.Observe(500)
	assert.True(anomalous)
}

func TestBaselineRingBounded(t *testing.T) {
	assert := assert.New(t)
	bs := newBaselineStat()

	// flood with large magnitudes, then confirm the baseline follows the
	// recent window rather than all-time history
	for i := 0; i < 50; i++ {
		bs.Observe(100)
	}
	baseline, anomalous := bs.Observe(120)
	assert.False(anomalous)
	assert.InDelta(100.0, baseline, 0.01)
}

func TestBaselineZeroMeansNoAnomaly(t *testing.T) {
	assert := assert.New(t)
	bs := newBaselineStat()

	for i := 0; i < 8; i++ {
		bs.Observe(0)
	}
	_, anomalous := bs.Observe(50)
	assert.False(anomalous)
}
