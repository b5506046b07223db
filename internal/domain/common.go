package domain

// Venue identifies an execution destination for copied trades.
type Venue string

const (
	VenueGMX     Venue = "GMX"
	VenueOstium  Venue = "OSTIUM"
	VenueBinance Venue = "BINANCE"
)

// PositionSide represents the direction of a position (LONG or SHORT).
type PositionSide string

const (
	Long  PositionSide = "LONG"
	Short PositionSide = "SHORT"
)

// EventType classifies a source trade event.
type EventType string

const (
	EventOpen        EventType = "OPEN"
	EventIncrease    EventType = "INCREASE"
	EventDecrease    EventType = "DECREASE"
	EventClose       EventType = "CLOSE"
	EventUpdateTpSl  EventType = "UPDATE_TP_SL"
	EventCancelOrder EventType = "CANCEL_ORDER"
)

// IsKnownEventType reports whether t is an event type the pipeline accepts.
func IsKnownEventType(t EventType) bool {
	switch t {
	case EventOpen, EventIncrease, EventDecrease, EventClose, EventUpdateTpSl, EventCancelOrder:
		return true
	}
	return false
}

// IntentType is the canonical action derived from an event, about to be sent
// to a venue. It mirrors EventType one-to-one today but is kept separate so
// venue-facing semantics can diverge from feed semantics.
type IntentType string

const (
	IntentOpen        IntentType = "OPEN"
	IntentIncrease    IntentType = "INCREASE"
	IntentDecrease    IntentType = "DECREASE"
	IntentClose       IntentType = "CLOSE"
	IntentUpdateTpSl  IntentType = "UPDATE_TP_SL"
	IntentCancelOrder IntentType = "CANCEL_ORDER"
)

// Intent maps an event type onto the venue-facing intent type. This is the
// only conversion path; the router and the mapping bookkeeping both use it.
func (t EventType) Intent() IntentType {
	switch t {
	case EventOpen:
		return IntentOpen
	case EventIncrease:
		return IntentIncrease
	case EventDecrease:
		return IntentDecrease
	case EventClose:
		return IntentClose
	case EventUpdateTpSl:
		return IntentUpdateTpSl
	case EventCancelOrder:
		return IntentCancelOrder
	default:
		return IntentType(t)
	}
}

// ExecutionStatus is the terminal status of a processed event.
type ExecutionStatus string

const (
	StatusSuccess ExecutionStatus = "SUCCESS"
	StatusFailed  ExecutionStatus = "FAILED"
	StatusSkipped ExecutionStatus = "SKIPPED"
)
