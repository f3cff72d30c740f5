package domain

import "testing"

func TestConversationTransitions(t *testing.T) {
	cases := []struct {
		from, to ConversationStatus
		want     bool
	}{
		{ConversationActive, ConversationEscalated, true},
		{ConversationActive, ConversationResolved, true},
		{ConversationEscalated, ConversationActive, true},
		{ConversationEscalated, ConversationResolved, true},
		{ConversationResolved, ConversationActive, false},
		{ConversationResolved, ConversationEscalated, false},
		{ConversationClosed, ConversationActive, false},
		{ConversationActive, ConversationActive, false},
	}

	for _, tc := range cases {
		if got := CanTransitionConversation(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransitionConversation(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestEscalationTransitions(t *testing.T) {
	cases := []struct {
		from, to EscalationStatus
		want     bool
	}{
		{EscalationPending, EscalationClaimed, true},
		{EscalationPending, EscalationResolved, true},
		{EscalationPending, EscalationCancelled, true},
		{EscalationClaimed, EscalationResolved, true},
		{EscalationClaimed, EscalationCancelled, true},
		{EscalationClaimed, EscalationClaimed, false},
		{EscalationResolved, EscalationCancelled, false},
		{EscalationResolved, EscalationClaimed, false},
		{EscalationCancelled, EscalationClaimed, false},
	}

	for _, tc := range cases {
		if got := CanTransitionEscalation(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransitionEscalation(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestConversationStatusAfterEscalation(t *testing.T) {
	if got := ConversationStatusAfter(EscalationPending); got != ConversationEscalated {
		t.Errorf("after pending: got %s, want escalated", got)
	}
	if got := ConversationStatusAfter(EscalationCancelled); got != ConversationActive {
		t.Errorf("after cancelled: got %s, want active", got)
	}
	if got := ConversationStatusAfter(EscalationResolved); got != ConversationResolved {
		t.Errorf("after resolved: got %s, want resolved", got)
	}
}

func TestEscalationOpen(t *testing.T) {
	if !EscalationPending.IsOpen() || !EscalationClaimed.IsOpen() {
		t.Error("pending and claimed escalations must count as open")
	}
	if EscalationResolved.IsOpen() || EscalationCancelled.IsOpen() {
		t.Error("resolved and cancelled escalations must not count as open")
	}
}

func TestPriorityRank(t *testing.T) {
	if !(PriorityUrgent.Rank() < PriorityHigh.Rank() &&
		PriorityHigh.Rank() < PriorityMedium.Rank() &&
		PriorityMedium.Rank() < PriorityLow.Rank()) {
		t.Error("priority rank must order urgent < high < medium < low")
	}
}
