package checkout

type State string

const (
	StateEditing             State = "EDITING"
	StatePaymentPending      State = "PAYMENT_PENDING"
	StateConfirming          State = "CONFIRMING"
	StateSucceeded           State = "SUCCEEDED"
	StateFailed              State = "FAILED"
	StateOrderWriteAttempted State = "ORDER_WRITE_ATTEMPTED"
	StateOrderWriteSucceeded State = "ORDER_WRITE_SUCCEEDED"
	StateOrderWriteFailed    State = "ORDER_WRITE_FAILED"
)

var transitions = map[State][]State{
	StateEditing:             {StatePaymentPending},
	StatePaymentPending:      {StateConfirming, StateFailed},
	StateConfirming:          {StateSucceeded, StateFailed},
	StateSucceeded:           {StateOrderWriteAttempted},
	StateOrderWriteAttempted: {StateOrderWriteSucceeded, StateOrderWriteFailed},
	StateFailed:              {StateEditing},
}

func CanTransitionTo(from, to State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the flow has ended. Failed is not terminal since
// the shopper may go back to editing and retry.
func (s State) IsTerminal() bool {
	return s == StateOrderWriteSucceeded || s == StateOrderWriteFailed
}

// PaymentCaptured reports whether money has been taken in this state.
func (s State) PaymentCaptured() bool {
	switch s {
	case StateSucceeded, StateOrderWriteAttempted, StateOrderWriteSucceeded, StateOrderWriteFailed:
		return true
	}
	return false
}

// String representation (for logging)
func (s State) String() string {
	return string(s)
}
