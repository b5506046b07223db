package normalizer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"copyTradeBot/internal/domain"
	"copyTradeBot/internal/ports"
)

func TestIdempotencyKeyDeterminism(t *testing.T) {
	first := IdempotencyKey("t1", domain.EventOpen, domain.VenueGMX)
	second := IdempotencyKey("t1", domain.EventOpen, domain.VenueGMX)
	assert.Equal(t, first, second)
	assert.Equal(t, "t1:OPEN:GMX", first)

	// Any change to the triple changes the key.
	assert.NotEqual(t, first, IdempotencyKey("t2", domain.EventOpen, domain.VenueGMX))
	assert.NotEqual(t, first, IdempotencyKey("t1", domain.EventClose, domain.VenueGMX))
	assert.NotEqual(t, first, IdempotencyKey("t1", domain.EventOpen, domain.VenueOstium))
}

func TestNormalize(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name    string
		raw     *domain.SourceTradeEvent
		wantErr bool
		check   func(t *testing.T, got *domain.NormalizedTradeEvent)
	}{
		{
			name: "valid event with explicit venue",
			raw: &domain.SourceTradeEvent{
				SourceTradeID: "t1",
				TraderID:      "trader-1",
				Type:          domain.EventOpen,
				Symbol:        "BTC-USD",
				Side:          domain.Short,
				SizeUsd:       1000,
				Price:         65000,
				Leverage:      5,
				Venue:         domain.VenueOstium,
				Timestamp:     now,
			},
			check: func(t *testing.T, got *domain.NormalizedTradeEvent) {
				assert.Equal(t, domain.VenueOstium, got.Venue)
				assert.Equal(t, domain.Short, got.Side)
				assert.Equal(t, "t1:OPEN:OSTIUM", got.IdempotencyKey)
			},
		},
		{
			name: "venue defaults when absent",
			raw: &domain.SourceTradeEvent{
				SourceTradeID: "t2",
				Type:          domain.EventClose,
				Symbol:        "ETH-USD",
			},
			check: func(t *testing.T, got *domain.NormalizedTradeEvent) {
				assert.Equal(t, domain.VenueGMX, got.Venue)
				assert.Equal(t, "t2:CLOSE:GMX", got.IdempotencyKey)
			},
		},
		{
			name: "negative optionals clamp to absent",
			raw: &domain.SourceTradeEvent{
				SourceTradeID: "t3",
				Type:          domain.EventOpen,
				SizeUsd:       -5,
				Leverage:      -1,
				TakeProfit:    -100,
				StopLoss:      -100,
			},
			check: func(t *testing.T, got *domain.NormalizedTradeEvent) {
				assert.Zero(t, got.SizeUsd)
				assert.Zero(t, got.Leverage)
				assert.Zero(t, got.TakeProfit)
				assert.Zero(t, got.StopLoss)
				assert.Equal(t, domain.Long, got.Side)
			},
		},
		{
			name:    "missing source trade id",
			raw:     &domain.SourceTradeEvent{Type: domain.EventOpen},
			wantErr: true,
		},
		{
			name:    "missing event type",
			raw:     &domain.SourceTradeEvent{SourceTradeID: "t4"},
			wantErr: true,
		},
		{
			name:    "unknown event type",
			raw:     &domain.SourceTradeEvent{SourceTradeID: "t5", Type: "LIQUIDATE"},
			wantErr: true,
		},
		{
			name:    "nil event",
			raw:     nil,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.raw, domain.VenueGMX)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ports.ErrValidation)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, got)
			tt.check(t, got)
		})
	}
}

func TestNormalizeDoesNotMutateInput(t *testing.T) {
	raw := &domain.SourceTradeEvent{
		SourceTradeID: "t1",
		Type:          domain.EventOpen,
		SizeUsd:       -10,
	}
	_, err := Normalize(raw, domain.VenueGMX)
	require.NoError(t, err)
	assert.Equal(t, float64(-10), raw.SizeUsd)
	assert.Empty(t, raw.Venue)
}
