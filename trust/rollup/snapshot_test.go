package rollup

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmenichole/tiltcheck-monorepo-sub008/trust/event"
)

func testBatch(cat event.Category, entity string, delta float64) event.RollupBatch {
	return event.RollupBatch{
		Category:    cat,
		WindowStart: 1000,
		WindowEnd:   2000,
		Entries: map[string]event.WindowBucket{
			entity: {TotalDelta: delta, Events: 3, LastSeverity: 2, LastScore: 60},
		},
	}
}

func TestSnapshotAppendAndLoad(t *testing.T) {
	assert := assert.New(t)
	dir := t.TempDir()
	s, err := NewSnapshotStore(dir)
	require.NoError(t, err)

	recent, err := s.LoadRecent()
	require.NoError(t, err)
	assert.Nil(recent)

	require.NoError(t, s.Append(testBatch(event.CategoryDomain, "evil.example", -25)))
	require.NoError(t, s.Append(testBatch(event.CategoryCasino, "CasinoA", -10)))

	recent, err = s.LoadRecent()
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(event.CategoryDomain, recent[0].Category)
	assert.Equal(-25.0, recent[0].Entries["evil.example"].TotalDelta)
	assert.Equal(event.CategoryCasino, recent[1].Category)

	// no stray temp files after atomic rewrites
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(entries, 1)
}

func TestSnapshotPruneOld(t *testing.T) {
	assert := assert.New(t)
	dir := t.TempDir()
	s, err := NewSnapshotStore(dir)
	require.NoError(t, err)

	today := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	for back := 0; back < 3; back++ {
		day := today.AddDate(0, 0, -back)
		raw := []byte(`{"batches":[]}`)
		require.NoError(t, os.WriteFile(s.dayPath(day), raw, 0644))
	}

	removed, err := s.PruneOld(2, today)
	require.NoError(t, err)
	assert.Equal(1, removed)

	names, err := s.dayFiles()
	require.NoError(t, err)
	require.Len(t, names, 2)
	assert.Equal("rollups-2026-08-24.json", names[0])
	assert.Equal("rollups-2026-08-25.json", names[1])

	// pruning again is a no-op
	removed, err = s.PruneOld(2, today)
	require.NoError(t, err)
	assert.Equal(0, removed)

	_, err = s.PruneOld(0, today)
	assert.Error(err)
}

func TestSnapshotCorruptFile(t *testing.T) {
	dir := t.TempDir()
	s, err := NewSnapshotStore(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "rollups-2026-08-25.json"), []byte("not json"), 0644))
	_, err = s.LoadRecent()
	assert.Error(t, err)
}
