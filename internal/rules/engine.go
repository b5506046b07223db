// Package rules holds the stateless policy gates evaluated before any venue
// call: static copy rules and trader eligibility. Both evaluate in a fixed
// order so the reported skip reason is deterministic for a given input.
package rules

import (
	"copyTradeBot/internal/domain"
)

// Skip reasons, persisted verbatim on SKIPPED outcomes.
const (
	ReasonAllowlist   = "rule:market_allowlist"
	ReasonMaxSize     = "rule:max_size"
	ReasonMaxLeverage = "rule:max_leverage"

	ReasonMinROI      = "eligibility:min_roi"
	ReasonConsistency = "eligibility:consistency"
	ReasonHedge       = "eligibility:hedge"
)

// CopyRuleConfig is the static, configuration-driven policy for copied
// trades. A nil/empty allowlist permits all markets; a zero cap disables
// that cap.
type CopyRuleConfig struct {
	MarketAllowlist    []string
	MaxPositionSizeUsd float64
	MaxLeverage        float64

	// Eligibility thresholds
	MinROI             float64
	RequireConsistency bool
	DisallowHedge      bool
}

// Engine evaluates static copy rules against normalized events. Pure and
// stateless; safe for reuse across events.
type Engine struct {
	cfg       CopyRuleConfig
	allowlist map[string]struct{}
}

// NewEngine creates a rule engine for the given policy.
func NewEngine(cfg CopyRuleConfig) *Engine {
	var allowlist map[string]struct{}
	if len(cfg.MarketAllowlist) > 0 {
		allowlist = make(map[string]struct{}, len(cfg.MarketAllowlist))
		for _, symbol := range cfg.MarketAllowlist {
			allowlist[symbol] = struct{}{}
		}
	}
	return &Engine{cfg: cfg, allowlist: allowlist}
}

// Evaluate checks the event against the configured rules in fixed order
// (allowlist, size, leverage). The first failing rule short-circuits;
// the returned reason is empty when the event passes.
func (e *Engine) Evaluate(ev *domain.NormalizedTradeEvent) (bool, string) {
	if e.allowlist != nil {
		if _, ok := e.allowlist[ev.Symbol]; !ok {
			return false, ReasonAllowlist
		}
	}
	if e.cfg.MaxPositionSizeUsd > 0 && ev.SizeUsd > e.cfg.MaxPositionSizeUsd {
		return false, ReasonMaxSize
	}
	if e.cfg.MaxLeverage > 0 && ev.Leverage > e.cfg.MaxLeverage {
		return false, ReasonMaxLeverage
	}
	return true, ""
}
