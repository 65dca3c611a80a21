package scorestore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedisScoreStoreBasics(t *testing.T) {
	t.Skip("live test, need redis running locally")
	assert := assert.New(t)
	ctx := context.Background()

	s, err := NewRedisScoreStore("redis://localhost:6379/0")
	if err != nil {
		t.Fail()
	}

	b, err := s.Get(ctx, KindCasino, "TestCasino")
	assert.NoError(err)
	assert.Nil(b)

	assert.NoError(s.Put(ctx, &Breakdown{
		Kind:   KindCasino,
		Entity: "TestCasino",
		Scores: map[string]float64{"fairness": 64},
	}))
	got, err := s.Get(ctx, KindCasino, "TestCasino")
	assert.NoError(err)
	assert.NotNil(got)
	assert.Equal(64.0, got.Scores["fairness"])

	names, err := s.List(ctx, KindCasino)
	assert.NoError(err)
	assert.Contains(names, "TestCasino")

	assert.NoError(s.Clear(ctx, KindCasino))
	gone, err := s.Get(ctx, KindCasino, "TestCasino")
	assert.NoError(err)
	assert.Nil(gone)
}
