package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := OpenSQLite("file:" + filepath.Join(t.TempDir(), "test.db") + "?_fk=1")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, InitSchema(db))
	return NewStore(db)
}

func TestPresets(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.SavePreset("hp", "url=http%3A%2F%2Fx&value=hp", 10))
	require.NoError(t, s.SavePreset("alice", "entity=a&url=http%3A%2F%2Fx", 11))

	p, err := s.GetPreset("hp")
	require.NoError(t, err)
	assert.Equal(t, "url=http%3A%2F%2Fx&value=hp", p.Query)
	assert.Equal(t, int64(10), p.CreatedAt)

	t.Run("save overwrites", func(t *testing.T) {
		require.NoError(t, s.SavePreset("hp", "url=y&value=hp", 12))
		p, err := s.GetPreset("hp")
		require.NoError(t, err)
		assert.Equal(t, "url=y&value=hp", p.Query)
	})

	t.Run("list is sorted by name", func(t *testing.T) {
		list, err := s.ListPresets()
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "alice", list[0].Name)
		assert.Equal(t, "hp", list[1].Name)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, s.DeletePreset("alice"))
		_, err := s.GetPreset("alice")
		assert.ErrorIs(t, err, ErrPresetNotFound)
		assert.ErrorIs(t, s.DeletePreset("alice"), ErrPresetNotFound)
	})
}

func TestUsageStats(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.LogRender("hp", "png", true, 100))
	require.NoError(t, s.LogRender("hp", "png", false, 101))
	require.NoError(t, s.LogRender("hp", "svg", true, 102))
	require.NoError(t, s.LogRender("old", "png", true, 5))

	stats, err := s.UsageStats(50)
	require.NoError(t, err)
	require.Len(t, stats, 1)
	hp := stats["hp"]
	require.NotNil(t, hp)
	assert.Equal(t, 3, hp.Count)
	assert.Equal(t, 1, hp.Failed)
	assert.Equal(t, map[string]int{"png": 2, "svg": 1}, hp.Formats)
}

func TestUsageTimeSeries(t *testing.T) {
	s := openTestStore(t)
	const day = 86400

	require.NoError(t, s.LogRender("hp", "png", true, 10*day+5))
	require.NoError(t, s.LogRender("hp", "svg", false, 10*day+600))
	require.NoError(t, s.LogRender("hp", "png", true, 12*day))
	require.NoError(t, s.LogRender("xp", "png", true, 11*day+1))
	require.NoError(t, s.LogRender("old", "png", true, 2*day))

	series, err := s.UsageTimeSeries(9 * day)
	require.NoError(t, err)
	require.Len(t, series, 2)
	assert.Equal(t, []TimeSeriesPoint{{Timestamp: 10 * day, Count: 2}, {Timestamp: 12 * day, Count: 1}}, series["hp"])
	assert.Equal(t, []TimeSeriesPoint{{Timestamp: 11 * day, Count: 1}}, series["xp"])
}
