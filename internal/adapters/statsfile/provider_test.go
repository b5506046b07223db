package statsfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

func TestStatsForKnownTrader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"alice": {"historicalRoi": 0.42, "isConsistent": true, "usesHedging": true}
	}`), 0644))

	p, err := New(path, &mockLogger{})
	require.NoError(t, err)

	stats, err := p.StatsFor(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", stats.TraderID)
	assert.Equal(t, 0.42, stats.HistoricalROI)
	assert.True(t, stats.IsConsistent)
	assert.True(t, stats.UsesHedging)
}

func TestStatsForUnknownTraderDefaults(t *testing.T) {
	p, err := New("", &mockLogger{})
	require.NoError(t, err)

	stats, err := p.StatsFor(context.Background(), "bob")
	require.NoError(t, err)
	assert.Equal(t, "bob", stats.TraderID)
	assert.Equal(t, 0.0, stats.HistoricalROI)
	assert.True(t, stats.IsConsistent, "unknown traders are treated as consistent")
	assert.False(t, stats.UsesHedging)
}

func TestMissingFileUsesDefaults(t *testing.T) {
	p, err := New(filepath.Join(t.TempDir(), "missing.json"), &mockLogger{})
	require.NoError(t, err)

	stats, err := p.StatsFor(context.Background(), "carol")
	require.NoError(t, err)
	assert.True(t, stats.IsConsistent)
}

func TestMalformedFileIsAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0644))

	_, err := New(path, &mockLogger{})
	assert.Error(t, err)
}
