package rules

import (
	"copyTradeBot/internal/domain"
)

// EligibilityEvaluator checks trader-level aggregates against the configured
// thresholds. Stateless per call: the stats must be supplied fresh by the
// caller; this package never computes or caches them.
type EligibilityEvaluator struct {
	cfg CopyRuleConfig
}

// NewEligibilityEvaluator creates an evaluator for the given thresholds.
func NewEligibilityEvaluator(cfg CopyRuleConfig) *EligibilityEvaluator {
	return &EligibilityEvaluator{cfg: cfg}
}

// Evaluate checks the trader in fixed order (ROI, consistency, hedging) so
// the reported reason is deterministic. The returned reason is empty when
// the trader is eligible.
func (e *EligibilityEvaluator) Evaluate(stats domain.TraderStats) (bool, string) {
	if stats.HistoricalROI < e.cfg.MinROI {
		return false, ReasonMinROI
	}
	if e.cfg.RequireConsistency && !stats.IsConsistent {
		return false, ReasonConsistency
	}
	if e.cfg.DisallowHedge && stats.UsesHedging {
		return false, ReasonHedge
	}
	return true, ""
}
