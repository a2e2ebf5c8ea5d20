package orders

// CheckoutState tracks a single pass through the order-placement workflow.
type CheckoutState string

const (
	StateIdle       CheckoutState = "IDLE"
	StateValidating CheckoutState = "VALIDATING"
	StatePersisting CheckoutState = "PERSISTING"
	StateNotifying  CheckoutState = "NOTIFYING"
	StateCleared    CheckoutState = "CLEARED"
	StateRejected   CheckoutState = "REJECTED"
	StateFailed     CheckoutState = "FAILED"
)

var validNext = map[CheckoutState]map[CheckoutState]bool{
	StateIdle:       {StateValidating: true, StateRejected: true},
	StateValidating: {StatePersisting: true, StateRejected: true, StateFailed: true},
	StatePersisting: {StateNotifying: true, StateFailed: true},
	StateNotifying:  {StateCleared: true},
	StateCleared:    {},
	StateRejected:   {},
	StateFailed:     {},
}

func CanTransition(from, to CheckoutState) bool {
	return validNext[from][to]
}
