package scorestore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemScoreStoreBasics(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	s := NewMemScoreStore()

	b, err := s.Get(ctx, KindCasino, "CasinoA")
	assert.NoError(err)
	assert.Nil(b)

	orig := &Breakdown{
		Kind:   KindCasino,
		Entity: "CasinoA",
		Scores: map[string]float64{"fairness": 70},
		Meters: map[string]float64{"nerfsTotal": 1},
		History: []HistoryEntry{
			{Timestamp: 123, Category: "fairness", Delta: -5, Reason: "flagged link"},
		},
	}
	require.NoError(t, s.Put(ctx, orig))

	got, err := s.Get(ctx, KindCasino, "CasinoA")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(70.0, got.Scores["fairness"])
	assert.Len(got.History, 1)

	// stored copies are isolated from caller mutation, both directions
	orig.Scores["fairness"] = 0
	got.Scores["fairness"] = 1
	again, err := s.Get(ctx, KindCasino, "CasinoA")
	require.NoError(t, err)
	assert.Equal(70.0, again.Scores["fairness"])

	// same entity name under a different kind is separate state
	other, err := s.Get(ctx, KindDomain, "CasinoA")
	assert.NoError(err)
	assert.Nil(other)

	names, err := s.List(ctx, KindCasino)
	assert.NoError(err)
	assert.Equal([]string{"CasinoA"}, names)

	require.NoError(t, s.Clear(ctx, KindCasino))
	gone, err := s.Get(ctx, KindCasino, "CasinoA")
	assert.NoError(err)
	assert.Nil(gone)
}

func TestMemScoreStoreRejectsEmpty(t *testing.T) {
	ctx := context.Background()
	s := NewMemScoreStore()
	assert.Error(t, s.Put(ctx, nil))
	assert.Error(t, s.Put(ctx, &Breakdown{Kind: KindDegen}))
}
