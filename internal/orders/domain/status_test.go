package domain

import "testing"

func TestOrderPipelineMovesForwardOnly(t *testing.T) {
	pipeline := []OrderStatus{OrderPending, OrderConfirmed, OrderInProgress, OrderReady, OrderDelivered}

	for i := 0; i < len(pipeline)-1; i++ {
		if !CanTransitionOrder(pipeline[i], pipeline[i+1]) {
			t.Errorf("%s -> %s should be allowed", pipeline[i], pipeline[i+1])
		}
		if CanTransitionOrder(pipeline[i+1], pipeline[i]) {
			t.Errorf("%s -> %s must not move backwards", pipeline[i+1], pipeline[i])
		}
	}

	// No stage skipping.
	if CanTransitionOrder(OrderPending, OrderInProgress) {
		t.Error("pending must not skip straight to in_progress")
	}
	if CanTransitionOrder(OrderConfirmed, OrderReady) {
		t.Error("confirmed must not skip straight to ready")
	}
}

func TestCancellationAllowedFromNonTerminalOnly(t *testing.T) {
	for from, allowed := range map[OrderStatus]bool{
		OrderPending:    true,
		OrderConfirmed:  true,
		OrderInProgress: true,
		OrderReady:      true,
		OrderDelivered:  false,
		OrderCancelled:  false,
	} {
		if got := CanTransitionOrder(from, OrderCancelled); got != allowed {
			t.Errorf("cancel from %s: got %v, want %v", from, got, allowed)
		}
	}
}

func TestTerminalStatuses(t *testing.T) {
	for _, s := range []OrderStatus{OrderDelivered, OrderCancelled} {
		if !s.IsTerminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	for _, s := range []OrderStatus{OrderPending, OrderConfirmed, OrderInProgress, OrderReady} {
		if s.IsTerminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}

func TestIsValidOrderStatus(t *testing.T) {
	if !IsValidOrderStatus(OrderReady) {
		t.Error("ready must be valid")
	}
	if IsValidOrderStatus("washed") {
		t.Error("unknown status must be invalid")
	}
}
