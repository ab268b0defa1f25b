package domain

import "testing"

func TestCanTransition(t *testing.T) {
	legal := []struct{ from, to OrderState }{
		{StatePending, StateEligibilityFailed},
		{StatePending, StateStockFailed},
		{StatePending, StatePaymentAuthorized},
		{StatePending, StatePaymentFailed},
		{StatePending, StateCancelled},
		{StatePaymentAuthorized, StatePaymentCaptured},
		{StatePaymentAuthorized, StatePaymentFailed},
		{StatePaymentAuthorized, StateCancelled},
		{StatePaymentFailed, StatePaymentAuthorized},
		{StatePaymentFailed, StateCancelled},
		{StatePaymentCaptured, StateCompleted},
		{StatePaymentCaptured, StateStockFailed},
	}
	for _, tc := range legal {
		if !CanTransition(tc.from, tc.to) {
			t.Errorf("%s -> %s should be legal", tc.from, tc.to)
		}
	}

	illegal := []struct{ from, to OrderState }{
		{StatePending, StatePaymentCaptured}, // cannot skip authorization
		{StatePending, StateCompleted},
		{StatePaymentCaptured, StatePending},
		{StateCompleted, StateCancelled},
		{StateCancelled, StatePending},
		{StateEligibilityFailed, StatePaymentAuthorized},
		{StateStockFailed, StatePending},
	}
	for _, tc := range illegal {
		if CanTransition(tc.from, tc.to) {
			t.Errorf("%s -> %s should be illegal", tc.from, tc.to)
		}
	}
}

func TestTerminalStates(t *testing.T) {
	for _, s := range []OrderState{StateCompleted, StateCancelled, StateEligibilityFailed, StateStockFailed} {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	// payment_failed may still retry back to payment_authorized
	for _, s := range []OrderState{StatePending, StatePaymentAuthorized, StatePaymentCaptured, StatePaymentFailed} {
		if s.Terminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}
