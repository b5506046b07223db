package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"copyTradeBot/internal/domain"
)

func event(symbol string, sizeUsd, leverage float64) *domain.NormalizedTradeEvent {
	return &domain.NormalizedTradeEvent{
		SourceTradeEvent: domain.SourceTradeEvent{
			SourceTradeID: "t1",
			Type:          domain.EventOpen,
			Symbol:        symbol,
			SizeUsd:       sizeUsd,
			Leverage:      leverage,
		},
	}
}

func TestEngineEvaluate(t *testing.T) {
	cfg := CopyRuleConfig{
		MarketAllowlist:    []string{"BTC-USD", "ETH-USD"},
		MaxPositionSizeUsd: 5000,
		MaxLeverage:        10,
	}
	engine := NewEngine(cfg)

	tests := []struct {
		name       string
		ev         *domain.NormalizedTradeEvent
		wantOK     bool
		wantReason string
	}{
		{
			name:   "passes all rules",
			ev:     event("BTC-USD", 1000, 5),
			wantOK: true,
		},
		{
			name:       "symbol not in allowlist",
			ev:         event("DOGE-USD", 1000, 5),
			wantOK:     false,
			wantReason: ReasonAllowlist,
		},
		{
			name:       "size above cap",
			ev:         event("BTC-USD", 10000, 5),
			wantOK:     false,
			wantReason: ReasonMaxSize,
		},
		{
			name:       "leverage above cap",
			ev:         event("BTC-USD", 1000, 20),
			wantOK:     false,
			wantReason: ReasonMaxLeverage,
		},
		{
			name:       "allowlist checked before size",
			ev:         event("DOGE-USD", 10000, 20),
			wantOK:     false,
			wantReason: ReasonAllowlist,
		},
		{
			name:       "size checked before leverage",
			ev:         event("BTC-USD", 10000, 20),
			wantOK:     false,
			wantReason: ReasonMaxSize,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, reason := engine.Evaluate(tt.ev)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantReason, reason)
		})
	}
}

func TestEngineEmptyAllowlistPermitsAllMarkets(t *testing.T) {
	engine := NewEngine(CopyRuleConfig{MaxPositionSizeUsd: 5000, MaxLeverage: 10})
	ok, reason := engine.Evaluate(event("ANY-USD", 100, 2))
	assert.True(t, ok)
	assert.Empty(t, reason)
}

func TestEngineZeroCapsDisableChecks(t *testing.T) {
	engine := NewEngine(CopyRuleConfig{})
	ok, _ := engine.Evaluate(event("BTC-USD", 1e9, 500))
	assert.True(t, ok)
}
