package notification

import (
	"strings"
	"testing"
)

func TestOrderStatusMessageSkipsInternalStages(t *testing.T) {
	for _, status := range []string{"pending", "confirmed"} {
		if _, ok := orderStatusMessage("es", status); ok {
			t.Errorf("customers must not be notified about %s", status)
		}
	}
	for _, status := range []string{"in_progress", "ready", "delivered", "cancelled"} {
		if _, ok := orderStatusMessage("es", status); !ok {
			t.Errorf("expected a customer message for %s", status)
		}
	}
}

func TestMessagesFallBackToSpanish(t *testing.T) {
	got, ok := orderStatusMessage("fr", "ready")
	if !ok {
		t.Fatal("expected a message")
	}
	want, _ := orderStatusMessage("es", "ready")
	if got != want {
		t.Errorf("unknown language must fall back to spanish, got %q", got)
	}

	if followUpMessage("") != followUpMessages["es"] {
		t.Error("empty language must fall back to spanish")
	}
	if escalationResolvedMessage("EN") != escalationResolvedMessages["en"] {
		t.Error("language matching must be case insensitive")
	}
}

func TestPickupReminderIncludesDaysWaiting(t *testing.T) {
	msg := pickupReminderMessage("es", 3)
	if !strings.Contains(msg, "3") {
		t.Errorf("reminder must mention days waiting, got %q", msg)
	}
}

func TestOrderCreatedIncludesTotal(t *testing.T) {
	msg := orderCreatedMessage("en", 8.475)
	if !strings.Contains(msg, "8.47") && !strings.Contains(msg, "8.48") {
		t.Errorf("confirmation must mention the total, got %q", msg)
	}
}
