package ports

import (
	"context"

	"copyTradeBot/internal/domain"
)

// EventRepository stores the processed-event facts that back the idempotency
// gate. The UNIQUE constraint on the idempotency key at the storage layer,
// not the HasProcessedEvent pre-check, is the final authority for
// at-most-once processing.
type EventRepository interface {
	// HasProcessedEvent reports whether a record with the key exists,
	// regardless of its stored status. A prior FAILED or SKIPPED attempt
	// blocks reprocessing just like a SUCCESS does.
	HasProcessedEvent(ctx context.Context, key string) (bool, error)
	// RecordProcessedEvent persists the terminal outcome for an event.
	// Called exactly once per event after the outcome is known.
	// Returns ErrDuplicateEntry if the key was already recorded.
	RecordProcessedEvent(ctx context.Context, rec *domain.ProcessedEventRecord) error
	// CountByStatus returns processed-event counts keyed by status.
	// Read accessor for the status/metrics collaborator.
	CountByStatus(ctx context.Context) (map[domain.ExecutionStatus]int, error)
	// FindRecent retrieves the most recent processed events, up to a limit.
	FindRecent(ctx context.Context, limit int) ([]*domain.ProcessedEventRecord, error)
}

// MappingRepository stores source-trade to venue-object links.
type MappingRepository interface {
	// UpsertTradeMapping overwrites any prior mapping for the same
	// (source trade id, venue) pair rather than appending.
	UpsertTradeMapping(ctx context.Context, m *domain.TradeMapping) error
	// FindMapping retrieves the mapping for a (source trade id, venue) pair.
	// Returns nil, nil if no mapping exists.
	FindMapping(ctx context.Context, sourceTradeID string, venue domain.Venue) (*domain.TradeMapping, error)
	// FindAllMappings retrieves all mappings, ordered by update time descending.
	FindAllMappings(ctx context.Context) ([]*domain.TradeMapping, error)
}
