package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"copyTradeBot/internal/domain"
)

func TestEligibilityEvaluate(t *testing.T) {
	cfg := CopyRuleConfig{
		MinROI:             0.1,
		RequireConsistency: true,
		DisallowHedge:      true,
	}
	eval := NewEligibilityEvaluator(cfg)

	tests := []struct {
		name       string
		stats      domain.TraderStats
		wantOK     bool
		wantReason string
	}{
		{
			name:   "eligible trader",
			stats:  domain.TraderStats{HistoricalROI: 0.2, IsConsistent: true},
			wantOK: true,
		},
		{
			name:       "roi below minimum",
			stats:      domain.TraderStats{HistoricalROI: 0.05, IsConsistent: true},
			wantOK:     false,
			wantReason: ReasonMinROI,
		},
		{
			name:       "inconsistent trader",
			stats:      domain.TraderStats{HistoricalROI: 0.2, IsConsistent: false},
			wantOK:     false,
			wantReason: ReasonConsistency,
		},
		{
			name:       "hedging trader",
			stats:      domain.TraderStats{HistoricalROI: 0.2, IsConsistent: true, UsesHedging: true},
			wantOK:     false,
			wantReason: ReasonHedge,
		},
		{
			name:       "roi checked before consistency and hedge",
			stats:      domain.TraderStats{HistoricalROI: 0.05, IsConsistent: false, UsesHedging: true},
			wantOK:     false,
			wantReason: ReasonMinROI,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, reason := eval.Evaluate(tt.stats)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantReason, reason)
		})
	}
}

func TestEligibilityFlagsOffPermitEverything(t *testing.T) {
	eval := NewEligibilityEvaluator(CopyRuleConfig{MinROI: 0})
	ok, reason := eval.Evaluate(domain.TraderStats{HistoricalROI: 0, IsConsistent: false, UsesHedging: true})
	assert.True(t, ok)
	assert.Empty(t, reason)
}
