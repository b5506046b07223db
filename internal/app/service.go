package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"copyTradeBot/config"
	"copyTradeBot/internal/domain"
	"copyTradeBot/internal/normalizer"
	"copyTradeBot/internal/ports"
	"copyTradeBot/internal/router"
	"copyTradeBot/internal/rules"
)

// CopyService orchestrates the trade-copy pipeline: it polls the event
// source and runs each event through normalization, the idempotency gate,
// the rule and eligibility evaluators, the execution router, and finally the
// repository write. Events are processed one at a time, end-to-end, in
// arrival order.
type CopyService struct {
	cfg         *config.Config
	logger      ports.Logger
	source      ports.EventSource
	stats       ports.TraderStatsProvider
	events      ports.EventRepository
	mappings    ports.MappingRepository
	router      *router.Router
	engine      *rules.Engine
	eligibility *rules.EligibilityEvaluator

	// Transport cursor for the driving loop. Advances monotonically;
	// holds no idempotency or mapping state, which lives in the repository.
	cursor string
}

// NewCopyService creates the application service instance.
func NewCopyService(
	cfg *config.Config,
	logger ports.Logger,
	source ports.EventSource,
	stats ports.TraderStatsProvider,
	events ports.EventRepository,
	mappings ports.MappingRepository,
	rtr *router.Router,
) (*CopyService, error) {
	if cfg == nil || logger == nil || source == nil || stats == nil || events == nil || mappings == nil || rtr == nil {
		return nil, fmt.Errorf("missing required dependencies for CopyService")
	}
	if cfg.PollInterval <= 0 {
		return nil, fmt.Errorf("configuration PollInterval must be positive")
	}
	if cfg.PollBatchSize <= 0 {
		return nil, fmt.Errorf("configuration PollBatchSize must be positive")
	}

	return &CopyService{
		cfg:         cfg,
		logger:      logger,
		source:      source,
		stats:       stats,
		events:      events,
		mappings:    mappings,
		router:      rtr,
		engine:      rules.NewEngine(cfg.Rules),
		eligibility: rules.NewEligibilityEvaluator(cfg.Rules),
	}, nil
}

// Start runs the polling loop until the context is cancelled or a shutdown
// signal arrives.
func (s *CopyService) Start(ctx context.Context) error {
	s.logger.Info(ctx, "Starting copy service...", map[string]interface{}{
		"defaultVenue": s.cfg.DefaultVenue,
		"pollInterval": s.cfg.PollInterval.String(),
		"batchSize":    s.cfg.PollBatchSize,
	})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		s.logger.Info(ctx, "Received shutdown signal", map[string]interface{}{"signal": sig.String()})
		cancel()
	}()

	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	// First poll immediately rather than waiting a full interval.
	s.pollOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info(ctx, "Copy service stopped.")
			return nil
		case <-ticker.C:
			s.pollOnce(ctx)
		}
	}
}

// pollOnce retrieves one bounded batch of new events and processes them
// sequentially in arrival order. The cursor only advances after the whole
// batch has been handled, so a crash mid-batch re-reads the batch and the
// idempotency gate absorbs the overlap.
func (s *CopyService) pollOnce(ctx context.Context) {
	batch, next, err := s.source.Poll(ctx, s.cursor, s.cfg.PollBatchSize)
	if err != nil {
		s.logger.Error(ctx, err, "Event source poll failed", map[string]interface{}{"cursor": s.cursor})
		return
	}
	if len(batch) == 0 {
		return
	}
	s.logger.Debug(ctx, "Polled event batch", map[string]interface{}{
		"count":  len(batch),
		"cursor": s.cursor,
	})

	for _, raw := range batch {
		if ctx.Err() != nil {
			return
		}
		if _, err := s.ProcessEvent(ctx, raw); err != nil {
			if errors.Is(err, ports.ErrValidation) {
				// Malformed events are logged and dropped; one bad event
				// must not stall the feed.
				continue
			}
			// Infrastructure failure: the event has no persisted record yet,
			// so abort the batch without advancing the cursor. The next poll
			// re-reads it and the idempotency gate absorbs any overlap with
			// events that did complete.
			s.logger.Warn(ctx, "Aborting batch on infrastructure error, cursor held", map[string]interface{}{
				"cursor": s.cursor,
			})
			return
		}
	}
	s.cursor = next
}

// ProcessEvent runs a single raw event through the full pipeline and returns
// its terminal result. Events that fail validation are dropped before the
// idempotency gate: logged, not persisted, and the returned error wraps
// ports.ErrValidation. Every event that passes normalization yields exactly
// one persisted ProcessedEventRecord across all time for its key.
func (s *CopyService) ProcessEvent(ctx context.Context, raw *domain.SourceTradeEvent) (*domain.ExecutionResult, error) {
	ev, err := normalizer.Normalize(raw, s.cfg.DefaultVenue)
	if err != nil {
		s.logger.Warn(ctx, "Dropping malformed source event", map[string]interface{}{"error": err.Error()})
		return nil, err
	}

	fields := map[string]interface{}{
		"key":           ev.IdempotencyKey,
		"sourceTradeId": ev.SourceTradeID,
		"type":          ev.Type,
		"venue":         ev.Venue,
	}

	// Idempotency gate: any prior attempt for this key, whatever its
	// outcome, blocks reprocessing. Venue calls are not guaranteed
	// idempotent, so a previously attempted key is never re-sent.
	seen, err := s.events.HasProcessedEvent(ctx, ev.IdempotencyKey)
	if err != nil {
		s.logger.Error(ctx, err, "Idempotency check failed", fields)
		return nil, err
	}
	if seen {
		s.logger.Info(ctx, "Duplicate event skipped", fields)
		// The record from the first attempt stands; inserting a second one
		// would violate the key's uniqueness.
		return domain.Skipped("duplicate"), nil
	}

	if ok, reason := s.engine.Evaluate(ev); !ok {
		s.logger.Info(ctx, "Event skipped by copy rule", withReason(fields, reason))
		return s.finish(ctx, ev, domain.Skipped(reason))
	}

	traderStats, err := s.stats.StatsFor(ctx, ev.TraderID)
	if err != nil {
		// An attempt occurred; record it as FAILED so the key is burned
		// rather than silently retried against a non-idempotent venue.
		s.logger.Error(ctx, err, "Trader stats lookup failed", fields)
		return s.finish(ctx, ev, domain.Failed(fmt.Sprintf("stats_lookup: %v", err)))
	}
	if ok, reason := s.eligibility.Evaluate(traderStats); !ok {
		s.logger.Info(ctx, "Event skipped by eligibility policy", withReason(fields, reason))
		return s.finish(ctx, ev, domain.Skipped(reason))
	}

	result := s.router.Execute(ctx, ev)
	return s.finish(ctx, ev, result)
}

// finish persists the terminal outcome: exactly one ProcessedEventRecord,
// plus a mapping upsert when a SUCCESS produced venue linkage.
func (s *CopyService) finish(ctx context.Context, ev *domain.NormalizedTradeEvent, result *domain.ExecutionResult) (*domain.ExecutionResult, error) {
	record := &domain.ProcessedEventRecord{
		IdempotencyKey: ev.IdempotencyKey,
		SourceTradeID:  ev.SourceTradeID,
		Status:         result.Status,
		Error:          result.Error,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.events.RecordProcessedEvent(ctx, record); err != nil {
		if errors.Is(err, ports.ErrDuplicateEntry) {
			// A concurrent worker won the key. The constraint, not our
			// pre-check, is the at-most-once authority; treat as duplicate.
			s.logger.Warn(ctx, "Lost idempotency race on record write", map[string]interface{}{"key": ev.IdempotencyKey})
			return domain.Skipped("duplicate"), nil
		}
		s.logger.Error(ctx, err, "Failed to persist processed event record", map[string]interface{}{"key": ev.IdempotencyKey})
		return nil, err
	}

	if result.Status == domain.StatusSuccess && (result.VenueOrderID != "" || result.VenuePositionID != "") {
		mapping := &domain.TradeMapping{
			SourceTradeID:   ev.SourceTradeID,
			Venue:           ev.Venue,
			VenueOrderID:    result.VenueOrderID,
			VenuePositionID: result.VenuePositionID,
			LastIntentType:  ev.Type.Intent(),
			UpdatedAt:       time.Now().UTC(),
		}
		if err := s.mappings.UpsertTradeMapping(ctx, mapping); err != nil {
			s.logger.Error(ctx, err, "Failed to upsert trade mapping", map[string]interface{}{
				"sourceTradeId": ev.SourceTradeID,
				"venue":         ev.Venue,
			})
			return result, err
		}
	}

	s.logger.Info(ctx, "Event processed", map[string]interface{}{
		"key":    ev.IdempotencyKey,
		"status": result.Status,
		"detail": result.Error,
	})
	return result, nil
}

// withReason copies the log fields and adds the skip reason. The base map is
// reused across log calls for the same event, so it must not be mutated.
func withReason(fields map[string]interface{}, reason string) map[string]interface{} {
	out := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		out[k] = v
	}
	out["reason"] = reason
	return out
}
