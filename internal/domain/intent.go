package domain

// ExecutionIntent is the unit passed to a venue adapter: the normalized event
// plus any venue-side linkage resolved from the mapping table.
type ExecutionIntent struct {
	Type  IntentType
	Event *NormalizedTradeEvent

	// Venue-side linkage for intents that act on existing state.
	// Empty for OPEN intents with no prior mapping.
	VenueOrderID    string
	VenuePositionID string
}

// ExecutionResult is the terminal outcome of attempting an intent.
// Never mutated after creation, only persisted.
type ExecutionResult struct {
	Status          ExecutionStatus
	VenueOrderID    string // Set by the adapter on success, if applicable
	VenuePositionID string // Set by the adapter on success, if applicable
	Error           string // Detail for FAILED, reason for SKIPPED
}

// Success builds a SUCCESS result carrying venue linkage.
func Success(orderID, positionID string) *ExecutionResult {
	return &ExecutionResult{Status: StatusSuccess, VenueOrderID: orderID, VenuePositionID: positionID}
}

// Failed builds a FAILED result with an error detail.
func Failed(detail string) *ExecutionResult {
	return &ExecutionResult{Status: StatusFailed, Error: detail}
}

// Skipped builds a SKIPPED result with a human-readable reason.
func Skipped(reason string) *ExecutionResult {
	return &ExecutionResult{Status: StatusSkipped, Error: reason}
}
