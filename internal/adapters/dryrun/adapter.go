// Package dryrun provides a VenueAdapter that simulates executions instead of
// reaching a real venue. Every intent is logged and acknowledged with
// synthetic identifiers, which keeps the rest of the pipeline, including the
// mapping bookkeeping, fully exercised without placing orders.
package dryrun

import (
	"context"
	"fmt"
	"sync/atomic"

	"copyTradeBot/internal/domain"
	"copyTradeBot/internal/ports"
)

// Adapter implements ports.VenueAdapter for a single configured venue.
// Construct one per venue to simulate a multi-venue deployment.
type Adapter struct {
	venue  domain.Venue
	logger ports.Logger
	seq    atomic.Int64
}

// New creates a dry-run adapter for the given venue.
func New(venue domain.Venue, logger ports.Logger) (*Adapter, error) {
	if venue == "" {
		return nil, fmt.Errorf("venue is required for dry-run adapter")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for dry-run adapter")
	}
	return &Adapter{venue: venue, logger: logger}, nil
}

// Venue returns the venue this adapter simulates.
func (a *Adapter) Venue() domain.Venue { return a.venue }

func (a *Adapter) OpenPosition(ctx context.Context, intent *domain.ExecutionIntent, snapshot ports.PriceSnapshot) (*domain.ExecutionResult, error) {
	return a.simulate(ctx, intent, snapshot)
}

func (a *Adapter) ClosePosition(ctx context.Context, intent *domain.ExecutionIntent, snapshot ports.PriceSnapshot) (*domain.ExecutionResult, error) {
	return a.simulate(ctx, intent, snapshot)
}

func (a *Adapter) UpdateTpSl(ctx context.Context, intent *domain.ExecutionIntent, snapshot ports.PriceSnapshot) (*domain.ExecutionResult, error) {
	return a.simulate(ctx, intent, snapshot)
}

func (a *Adapter) CancelOrder(ctx context.Context, intent *domain.ExecutionIntent, snapshot ports.PriceSnapshot) (*domain.ExecutionResult, error) {
	return a.simulate(ctx, intent, snapshot)
}

// simulate logs the would-be execution and returns SUCCESS with synthetic
// linkage. Prior linkage from the mapping is reused so repeated intents on
// the same source trade stay attached to one simulated position.
func (a *Adapter) simulate(ctx context.Context, intent *domain.ExecutionIntent, snapshot ports.PriceSnapshot) (*domain.ExecutionResult, error) {
	n := a.seq.Add(1)
	orderID := fmt.Sprintf("dry-%s-order-%d", a.venue, n)
	positionID := intent.VenuePositionID
	if positionID == "" {
		positionID = fmt.Sprintf("dry-%s-pos-%s", a.venue, intent.Event.SourceTradeID)
	}

	a.logger.Info(ctx, "Dry-run execution", map[string]interface{}{
		"venue":         a.venue,
		"intentType":    intent.Type,
		"sourceTradeId": intent.Event.SourceTradeID,
		"symbol":        snapshot.Symbol,
		"side":          intent.Event.Side,
		"sizeUsd":       intent.Event.SizeUsd,
		"price":         snapshot.Price,
		"orderID":       orderID,
		"positionID":    positionID,
	})
	return domain.Success(orderID, positionID), nil
}
