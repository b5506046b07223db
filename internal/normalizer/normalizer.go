// Package normalizer converts raw OTMO feed events into canonical,
// venue-agnostic records. It is pure: no I/O, no state.
package normalizer

import (
	"fmt"

	"copyTradeBot/internal/domain"
	"copyTradeBot/internal/ports"
)

// IdempotencyKey derives the processing key for an event. It is a pure
// function of its three inputs: recomputing it for the same triple yields the
// same string across processes and restarts.
func IdempotencyKey(sourceTradeID string, eventType domain.EventType, venue domain.Venue) string {
	return fmt.Sprintf("%s:%s:%s", sourceTradeID, eventType, venue)
}

// Normalize validates a raw event and produces a NormalizedTradeEvent.
// Events missing their identity fields (source trade id, type) fail with
// ErrValidation and must not enter the idempotency gate. An event without an
// explicit venue resolves to defaultVenue. Missing optional numeric fields
// stay zero; they are never inferred from other fields.
func Normalize(raw *domain.SourceTradeEvent, defaultVenue domain.Venue) (*domain.NormalizedTradeEvent, error) {
	if raw == nil {
		return nil, fmt.Errorf("%w: event is nil", ports.ErrValidation)
	}
	if raw.SourceTradeID == "" {
		return nil, fmt.Errorf("%w: missing source trade id", ports.ErrValidation)
	}
	if raw.Type == "" {
		return nil, fmt.Errorf("%w: missing event type", ports.ErrValidation)
	}
	if !domain.IsKnownEventType(raw.Type) {
		return nil, fmt.Errorf("%w: unknown event type %q", ports.ErrValidation, raw.Type)
	}

	normalized := &domain.NormalizedTradeEvent{SourceTradeEvent: *raw}
	if normalized.Venue == "" {
		normalized.Venue = defaultVenue
	}
	if normalized.Side == "" {
		normalized.Side = domain.Long
	}
	// Negative numerics from a malformed feed are clamped to "absent" rather
	// than guessed at.
	if normalized.SizeUsd < 0 {
		normalized.SizeUsd = 0
	}
	if normalized.Leverage < 0 {
		normalized.Leverage = 0
	}
	if normalized.TakeProfit < 0 {
		normalized.TakeProfit = 0
	}
	if normalized.StopLoss < 0 {
		normalized.StopLoss = 0
	}

	normalized.IdempotencyKey = IdempotencyKey(normalized.SourceTradeID, normalized.Type, normalized.Venue)
	return normalized, nil
}
