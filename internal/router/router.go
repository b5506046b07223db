// Package router maps gated events to execution intents and dispatches them
// to the adapter registered for the resolved venue. Adapter faults of any
// kind, including panics, are normalized into FAILED results and never
// propagate to the pipeline.
package router

import (
	"context"
	"fmt"

	"copyTradeBot/internal/domain"
	"copyTradeBot/internal/ports"
)

// Error details persisted on FAILED outcomes produced by the router itself.
const (
	ErrDetailUnknownVenue = "unknown_venue"
)

// Router selects a venue adapter for a normalized event and invokes it.
type Router struct {
	adapters map[domain.Venue]ports.VenueAdapter
	mappings ports.MappingRepository
	logger   ports.Logger
}

// Config holds the router's dependencies. The adapter table is static:
// adding a venue means registering another adapter, not changing control flow.
type Config struct {
	Adapters []ports.VenueAdapter
	Mappings ports.MappingRepository
	Logger   ports.Logger
}

// New creates a router over a statically configured venue → adapter table.
func New(cfg Config) (*Router, error) {
	if cfg.Logger == nil || cfg.Mappings == nil {
		return nil, fmt.Errorf("missing required dependencies for Router")
	}
	adapters := make(map[domain.Venue]ports.VenueAdapter, len(cfg.Adapters))
	for _, adapter := range cfg.Adapters {
		if adapter == nil {
			continue
		}
		if _, dup := adapters[adapter.Venue()]; dup {
			return nil, fmt.Errorf("duplicate adapter registered for venue %s", adapter.Venue())
		}
		adapters[adapter.Venue()] = adapter
	}
	return &Router{adapters: adapters, mappings: cfg.Mappings, logger: cfg.Logger}, nil
}

// Execute derives the intent for a gated event, invokes the venue adapter,
// and returns a terminal ExecutionResult. It never returns an error and
// never panics: every fault becomes a FAILED result.
func (r *Router) Execute(ctx context.Context, ev *domain.NormalizedTradeEvent) *domain.ExecutionResult {
	adapter, ok := r.adapters[ev.Venue]
	if !ok {
		r.logger.Warn(ctx, "No adapter registered for venue", map[string]interface{}{
			"venue":         ev.Venue,
			"sourceTradeId": ev.SourceTradeID,
		})
		return domain.Failed(ErrDetailUnknownVenue)
	}

	intent, err := r.buildIntent(ctx, ev)
	if err != nil {
		r.logger.Error(ctx, err, "Failed to resolve venue linkage for intent", map[string]interface{}{
			"sourceTradeId": ev.SourceTradeID,
			"venue":         ev.Venue,
		})
		return domain.Failed(fmt.Sprintf("mapping_lookup: %v", err))
	}

	snapshot := ports.PriceSnapshot{
		Symbol:    ev.Symbol,
		Price:     ev.Price,
		Timestamp: ev.Timestamp,
	}

	result := r.invoke(ctx, adapter, intent, snapshot)
	r.logger.Debug(ctx, "Adapter invocation finished", map[string]interface{}{
		"venue":         ev.Venue,
		"intentType":    intent.Type,
		"sourceTradeId": ev.SourceTradeID,
		"status":        result.Status,
	})
	return result
}

// buildIntent derives the intent type and resolves venue-side linkage for
// intents acting on existing state.
func (r *Router) buildIntent(ctx context.Context, ev *domain.NormalizedTradeEvent) (*domain.ExecutionIntent, error) {
	intent := &domain.ExecutionIntent{
		Type:  ev.Type.Intent(),
		Event: ev,
	}
	// OPEN creates fresh venue state; everything else acts on a prior
	// mapping when one exists.
	if ev.Type == domain.EventOpen {
		return intent, nil
	}
	mapping, err := r.mappings.FindMapping(ctx, ev.SourceTradeID, ev.Venue)
	if err != nil {
		return nil, err
	}
	if mapping != nil {
		intent.VenueOrderID = mapping.VenueOrderID
		intent.VenuePositionID = mapping.VenuePositionID
	}
	return intent, nil
}

// invoke dispatches to the adapter capability for the intent type, containing
// panics and normalizing errors into FAILED results.
func (r *Router) invoke(ctx context.Context, adapter ports.VenueAdapter, intent *domain.ExecutionIntent, snapshot ports.PriceSnapshot) (result *domain.ExecutionResult) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error(ctx, fmt.Errorf("adapter panic: %v", rec), "Venue adapter panicked", map[string]interface{}{
				"venue":      adapter.Venue(),
				"intentType": intent.Type,
			})
			result = domain.Failed(fmt.Sprintf("adapter_panic: %v", rec))
		}
	}()

	var err error
	switch intent.Type {
	case domain.IntentOpen, domain.IntentIncrease:
		result, err = adapter.OpenPosition(ctx, intent, snapshot)
	case domain.IntentDecrease, domain.IntentClose:
		result, err = adapter.ClosePosition(ctx, intent, snapshot)
	case domain.IntentUpdateTpSl:
		result, err = adapter.UpdateTpSl(ctx, intent, snapshot)
	case domain.IntentCancelOrder:
		result, err = adapter.CancelOrder(ctx, intent, snapshot)
	default:
		// Unreachable for events that passed normalization.
		return domain.Failed(fmt.Sprintf("unsupported_intent_type: %s", intent.Type))
	}

	if err != nil {
		return domain.Failed(err.Error())
	}
	if result == nil {
		return domain.Failed("adapter returned no result")
	}
	return result
}
