package rollup

// Baseline tuning. An entity needs baselineMinSamples observations before any
// anomaly can fire for it; cold-start entities never alert.
const (
	baselineCapacity     = 10
	baselineMinSamples   = 5
	anomalyMultiplier    = 3.0
	anomalySeverityFloor = 3
)

// BaselineStat is a bounded ring of an entity's recent delta magnitudes. The
// baseline is the mean of the sample excluding the newest point. After an
// anomaly fires the stat is frozen until the next window flush, so one spike
// does not produce an alert per follow-up event.
type BaselineStat struct {
	samples []float64
	next    int
	count   int
	frozen  bool
}

func newBaselineStat() *BaselineStat {
	return &BaselineStat{samples: make([]float64, baselineCapacity)}
}

// Observe records one delta magnitude and reports whether it is anomalous
// against the baseline established by the prior samples.
func (b *BaselineStat) Observe(magnitude float64) (baseline float64, anomalous bool) {
	if b.count >= baselineMinSamples {
		sum := 0.0
		n := b.count
		if n > len(b.samples) {
			n = len(b.samples)
		}
		for i := 0; i < n; i++ {
			sum += b.samples[i]
		}
		baseline = sum / float64(n)
		if baseline > 0 && !b.frozen && magnitude > baseline*anomalyMultiplier {
			anomalous = true
			b.frozen = true
		}
	}
	b.samples[b.next] = magnitude
	b.next = (b.next + 1) % len(b.samples)
	b.count++
	return baseline, anomalous
}

// Unfreeze re-arms anomaly detection; called at window flush.
func (b *BaselineStat) Unfreeze() {
	b.frozen = false
}
