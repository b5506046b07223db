package domain

import "time"

// ProcessedEventRecord is the persisted fact that a processing attempt
// occurred for an idempotency key, regardless of its outcome. The key is
// unique across all time; a second attempt for the same key must be rejected
// before any venue call.
type ProcessedEventRecord struct {
	ID             int64
	IdempotencyKey string
	SourceTradeID  string
	Status         ExecutionStatus
	Error          string // Empty when the outcome carried no detail
	CreatedAt      time.Time
}

// TradeMapping is the durable link between a source trade and its venue-side
// identifiers. One logical mapping exists per (SourceTradeID, Venue); later
// intents overwrite it, never duplicate it.
type TradeMapping struct {
	ID              int64
	SourceTradeID   string
	Venue           Venue
	VenueOrderID    string
	VenuePositionID string
	LastIntentType  IntentType
	UpdatedAt       time.Time
}
