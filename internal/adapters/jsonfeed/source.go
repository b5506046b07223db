// Package jsonfeed implements the EventSource port over a JSON-lines file:
// one SourceTradeEvent object per line, appended by the upstream exporter.
package jsonfeed

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"copyTradeBot/internal/domain"
	"copyTradeBot/internal/ports"
)

// Source reads trade events from a JSON-lines file. The poll cursor is the
// number of lines already consumed, encoded as a decimal string, so a
// restarted process can resume from a persisted cursor or safely replay from
// the start and let the idempotency gate absorb the overlap.
type Source struct {
	path   string
	logger ports.Logger
}

// New creates a file-backed event source.
func New(path string, logger ports.Logger) (*Source, error) {
	if path == "" {
		return nil, fmt.Errorf("feed path is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for JSON feed source")
	}
	return &Source{path: path, logger: logger}, nil
}

// Poll returns up to limit events after the cursor plus the advanced cursor.
// A missing feed file is not an error; the exporter may not have produced it
// yet, so Poll reports an empty batch and leaves the cursor unchanged.
func (s *Source) Poll(ctx context.Context, cursor string, limit int) ([]*domain.SourceTradeEvent, string, error) {
	offset, err := parseCursor(cursor)
	if err != nil {
		return nil, cursor, err
	}

	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Debug(ctx, "Feed file does not exist yet", map[string]interface{}{"path": s.path})
			return nil, cursor, nil
		}
		return nil, cursor, fmt.Errorf("failed to open feed file '%s': %w", s.path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var events []*domain.SourceTradeEvent
	line := 0
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil, cursor, ctx.Err()
		}
		line++
		if line <= offset {
			continue
		}
		if len(events) >= limit {
			// Leave the rest for the next poll; the cursor stops at the last
			// line actually handed out.
			line--
			break
		}

		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue // Blank lines are consumed but produce nothing
		}
		ev := &domain.SourceTradeEvent{}
		if err := json.Unmarshal(raw, ev); err != nil {
			// A malformed line is consumed and dropped so it cannot wedge the
			// feed. The pipeline never sees it.
			s.logger.Warn(ctx, "Dropping malformed feed line", map[string]interface{}{
				"path":  s.path,
				"line":  line,
				"error": err.Error(),
			})
			continue
		}
		events = append(events, ev)
	}
	if err := scanner.Err(); err != nil {
		return nil, cursor, fmt.Errorf("failed to read feed file '%s': %w", s.path, err)
	}

	return events, strconv.Itoa(line), nil
}

func parseCursor(cursor string) (int, error) {
	if cursor == "" {
		return 0, nil
	}
	offset, err := strconv.Atoi(cursor)
	if err != nil || offset < 0 {
		return 0, fmt.Errorf("malformed feed cursor %q", cursor)
	}
	return offset, nil
}
