package jsonfeed

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"copyTradeBot/internal/domain"
)

type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

func writeFeed(t *testing.T, lines string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "events.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(lines), 0644))
	return path
}

const feedLines = `{"sourceTradeId":"t1","type":"OPEN","symbol":"BTC-USD","venue":"GMX"}
{"sourceTradeId":"t2","type":"OPEN","symbol":"ETH-USD","venue":"GMX"}
{"sourceTradeId":"t1","type":"CLOSE","symbol":"BTC-USD","venue":"GMX"}
`

func TestPollReadsAllEvents(t *testing.T) {
	src, err := New(writeFeed(t, feedLines), &mockLogger{})
	require.NoError(t, err)

	events, cursor, err := src.Poll(context.Background(), "", 100)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "3", cursor)
	assert.Equal(t, "t1", events[0].SourceTradeID)
	assert.Equal(t, domain.EventClose, events[2].Type)
}

func TestPollResumesFromCursor(t *testing.T) {
	src, err := New(writeFeed(t, feedLines), &mockLogger{})
	require.NoError(t, err)
	ctx := context.Background()

	events, cursor, err := src.Poll(ctx, "", 2)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "2", cursor)

	events, cursor, err = src.Poll(ctx, cursor, 2)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "3", cursor)
	assert.Equal(t, domain.EventClose, events[0].Type)

	events, cursor, err = src.Poll(ctx, cursor, 2)
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.Equal(t, "3", cursor)
}

func TestPollSkipsMalformedLines(t *testing.T) {
	feed := `{"sourceTradeId":"t1","type":"OPEN","symbol":"BTC-USD"}
not json at all
{"sourceTradeId":"t2","type":"OPEN","symbol":"ETH-USD"}
`
	src, err := New(writeFeed(t, feed), &mockLogger{})
	require.NoError(t, err)

	events, cursor, err := src.Poll(context.Background(), "", 100)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "3", cursor, "malformed line is consumed, not retried")
}

func TestPollMissingFileIsEmptyBatch(t *testing.T) {
	src, err := New(filepath.Join(t.TempDir(), "missing.jsonl"), &mockLogger{})
	require.NoError(t, err)

	events, cursor, err := src.Poll(context.Background(), "5", 10)
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.Equal(t, "5", cursor, "cursor is held until the feed appears")
}

func TestPollRejectsMalformedCursor(t *testing.T) {
	src, err := New(writeFeed(t, feedLines), &mockLogger{})
	require.NoError(t, err)

	_, _, err = src.Poll(context.Background(), "abc", 10)
	assert.Error(t, err)
}
