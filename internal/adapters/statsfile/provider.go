// Package statsfile implements the TraderStatsProvider port over a JSON file
// exported alongside the event feed, keyed by trader id.
package statsfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"copyTradeBot/internal/domain"
	"copyTradeBot/internal/ports"
)

// Provider serves trader statistics from a snapshot file. Traders absent from
// the file get neutral defaults (consistent, no hedging, zero ROI) so a
// missing stats export never blocks copying unless the operator has raised
// the ROI floor.
type Provider struct {
	path   string
	logger ports.Logger

	mu    sync.RWMutex
	stats map[string]domain.TraderStats
}

// New creates a stats provider and eagerly loads the snapshot. An empty path
// or a missing file yields an empty snapshot, not an error.
func New(path string, logger ports.Logger) (*Provider, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required for stats provider")
	}
	p := &Provider{path: path, logger: logger, stats: map[string]domain.TraderStats{}}
	if err := p.Reload(context.Background()); err != nil {
		return nil, err
	}
	return p, nil
}

// Reload re-reads the snapshot file, replacing the in-memory view.
func (p *Provider) Reload(ctx context.Context) error {
	if p.path == "" {
		return nil
	}
	raw, err := os.ReadFile(p.path)
	if err != nil {
		if os.IsNotExist(err) {
			p.logger.Warn(ctx, "Trader stats file does not exist, using defaults", map[string]interface{}{"path": p.path})
			return nil
		}
		return fmt.Errorf("failed to read stats file '%s': %w", p.path, err)
	}

	loaded := map[string]domain.TraderStats{}
	if err := json.Unmarshal(raw, &loaded); err != nil {
		return fmt.Errorf("failed to parse stats file '%s': %w", p.path, err)
	}

	p.mu.Lock()
	p.stats = loaded
	p.mu.Unlock()
	p.logger.Info(ctx, "Trader stats loaded", map[string]interface{}{"path": p.path, "traders": len(loaded)})
	return nil
}

// StatsFor returns the stats for a trader, or neutral defaults when the
// trader is not in the snapshot.
func (p *Provider) StatsFor(ctx context.Context, traderID string) (domain.TraderStats, error) {
	p.mu.RLock()
	stats, ok := p.stats[traderID]
	p.mu.RUnlock()
	if ok {
		stats.TraderID = traderID
		return stats, nil
	}
	p.logger.Debug(ctx, "No stats for trader, using defaults", map[string]interface{}{"traderId": traderID})
	return domain.TraderStats{
		TraderID:     traderID,
		IsConsistent: true,
		UsesHedging:  false,
	}, nil
}
