package countstore

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemCountStoreBasics(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	cs := NewMemCountStore()

	c, err := cs.GetCount(ctx, "nerf", "CasinoA", PeriodTotal)
	assert.NoError(err)
	assert.Equal(0, c)
	assert.NoError(cs.Increment(ctx, "nerf", "CasinoA"))
	assert.NoError(cs.Increment(ctx, "nerf", "CasinoA"))

	for _, period := range []string{PeriodTotal, PeriodDay, PeriodHour} {
		c, err = cs.GetCount(ctx, "nerf", "CasinoA", period)
		assert.NoError(err)
		assert.Equal(2, c)
	}

	// distinct counts dedupe values within a bucket
	assert.NoError(cs.IncrementDistinct(ctx, "reporters", "CasinoA", "u1"))
	assert.NoError(cs.IncrementDistinct(ctx, "reporters", "CasinoA", "u1"))
	assert.NoError(cs.IncrementDistinct(ctx, "reporters", "CasinoA", "u2"))
	c, err = cs.GetCountDistinct(ctx, "reporters", "CasinoA", PeriodDay)
	assert.NoError(err)
	assert.Equal(2, c)
}

func TestMemCountStoreConcurrent(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	cs := NewMemCountStore()

	var wg sync.WaitGroup
	wg.Add(4)
	for i := 0; i < 4; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				assert.NoError(cs.Increment(ctx, "tilt", "u1"))
				_, err := cs.GetCount(ctx, "tilt", "u1", PeriodTotal)
				assert.NoError(err)
			}
		}()
	}
	wg.Wait()

	c, err := cs.GetCount(ctx, "tilt", "u1", PeriodTotal)
	assert.NoError(err)
	assert.Equal(200, c)
}
