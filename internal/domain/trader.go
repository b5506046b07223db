package domain

// TraderStats holds trader-level aggregates used by the eligibility
// evaluator. The pipeline never computes or caches these; a provider supplies
// them fresh for every event.
type TraderStats struct {
	TraderID      string  `json:"traderId"`
	HistoricalROI float64 `json:"historicalRoi"` // e.g., 0.2 for 20%
	IsConsistent  bool    `json:"isConsistent"`  // Trader passes the source's consistency screen
	UsesHedging   bool    `json:"usesHedging"`   // Trader holds offsetting positions
}
