package ports

import (
	"context"

	"copyTradeBot/internal/domain"
)

// EventSource produces a lazy, finite batch of source events per poll.
// The cursor is opaque to the caller and advances monotonically; passing the
// returned cursor back yields only events after it, so the same feed can be
// re-read safely after a restart. Transport-level dedup is best effort; the
// pipeline's own idempotency key is the final authority.
type EventSource interface {
	// Poll returns up to limit events after the given cursor, plus the
	// cursor to use on the next call. An empty batch with an unchanged
	// cursor means no new events.
	Poll(ctx context.Context, cursor string, limit int) ([]*domain.SourceTradeEvent, string, error)
}

// TraderStatsProvider supplies trader-level aggregates for eligibility
// checks. Called once per event; the pipeline never caches the result.
type TraderStatsProvider interface {
	// StatsFor returns the aggregates for a trader. Implementations should
	// return permissive defaults rather than an error when the trader is
	// unknown, so missing data never silently blocks copying.
	StatsFor(ctx context.Context, traderID string) (domain.TraderStats, error)
}
