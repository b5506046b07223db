package ports

import (
	"context"
	"time"

	"copyTradeBot/internal/domain"
)

// PriceSnapshot is the venue-specific price/context view handed to an adapter
// alongside an intent. The router builds it from the normalized event;
// adapters may enrich it with live quotes internally.
type PriceSnapshot struct {
	Symbol    string
	Price     float64 // Source-side price at event time; 0 if the feed omitted it
	Timestamp time.Time
}

// VenueAdapter is the capability set every execution venue exposes.
// Implementations may be dry-run stubs or live clients; the router is
// oblivious to the distinction. Every method must resolve to a terminal
// ExecutionResult rather than hanging indefinitely, and should return an
// error only for faults the adapter could not express as a FAILED result.
type VenueAdapter interface {
	// Venue returns the venue this adapter executes against.
	Venue() domain.Venue

	// OpenPosition opens or increases a position.
	OpenPosition(ctx context.Context, intent *domain.ExecutionIntent, snapshot PriceSnapshot) (*domain.ExecutionResult, error)

	// ClosePosition closes or decreases a position.
	ClosePosition(ctx context.Context, intent *domain.ExecutionIntent, snapshot PriceSnapshot) (*domain.ExecutionResult, error)

	// UpdateTpSl replaces the take-profit/stop-loss levels on a position.
	UpdateTpSl(ctx context.Context, intent *domain.ExecutionIntent, snapshot PriceSnapshot) (*domain.ExecutionResult, error)

	// CancelOrder cancels a pending venue order.
	CancelOrder(ctx context.Context, intent *domain.ExecutionIntent, snapshot PriceSnapshot) (*domain.ExecutionResult, error)
}
