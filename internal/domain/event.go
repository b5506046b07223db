package domain

import "time"

// SourceTradeEvent is a raw record from the OTMO signal feed. It is immutable
// once read; its identity is (SourceTradeID, Type).
type SourceTradeEvent struct {
	SourceTradeID string       `json:"sourceTradeId"` // Trade identifier assigned by the source
	TraderID      string       `json:"traderId"`      // Trader whose action is being mirrored
	Type          EventType    `json:"type"`          // OPEN, INCREASE, DECREASE, CLOSE, UPDATE_TP_SL, CANCEL_ORDER
	Symbol        string       `json:"symbol"`        // Market symbol (e.g., "BTC-USD")
	Side          PositionSide `json:"side"`          // LONG or SHORT
	SizeUsd       float64      `json:"sizeUsd"`       // Position size in quote currency
	Price         float64      `json:"price"`         // Source-side price at event time
	Leverage      float64      `json:"leverage"`      // Leverage used by the trader
	TakeProfit    float64      `json:"takeProfit"`    // Optional; 0 means absent
	StopLoss      float64      `json:"stopLoss"`      // Optional; 0 means absent
	Venue         Venue        `json:"venue"`         // Optional explicit venue; empty means use the configured default
	Timestamp     time.Time    `json:"timestamp"`     // Source event time
}

// NormalizedTradeEvent is a SourceTradeEvent with the venue resolved, numeric
// fields defaulted, and the idempotency key computed. The key is a pure
// function of (SourceTradeID, Type, Venue) and is stable across restarts.
type NormalizedTradeEvent struct {
	SourceTradeEvent

	IdempotencyKey string
}
