// Package domain defines the conversation/escalation workflow aggregate:
// statuses, priorities, and the transition rules that govern them.
// All status changes in this bounded context go through these functions so
// the conditional-write discipline lives in one place.
package domain

// ConversationStatus is the lifecycle state of a customer conversation.
type ConversationStatus string

const (
	ConversationActive    ConversationStatus = "active"
	ConversationEscalated ConversationStatus = "escalated"
	ConversationResolved  ConversationStatus = "resolved"
	ConversationClosed    ConversationStatus = "closed"
)

// IsValid reports whether the status is a known conversation status.
func (s ConversationStatus) IsValid() bool {
	switch s {
	case ConversationActive, ConversationEscalated, ConversationResolved, ConversationClosed:
		return true
	}
	return false
}

// conversationTransitions lists the allowed conversation status moves.
// Resolved and closed conversations accept no further transitions; a new
// inbound message opens a new conversation instead.
var conversationTransitions = map[ConversationStatus][]ConversationStatus{
	ConversationActive:    {ConversationEscalated, ConversationResolved, ConversationClosed},
	ConversationEscalated: {ConversationActive, ConversationResolved, ConversationClosed},
	ConversationResolved:  {},
	ConversationClosed:    {},
}

// CanTransitionConversation reports whether a conversation may move from one
// status to another.
func CanTransitionConversation(from, to ConversationStatus) bool {
	for _, allowed := range conversationTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// EscalationStatus is the lifecycle state of an escalation ticket.
type EscalationStatus string

const (
	EscalationPending   EscalationStatus = "pending"
	EscalationClaimed   EscalationStatus = "claimed"
	EscalationResolved  EscalationStatus = "resolved"
	EscalationCancelled EscalationStatus = "cancelled"
)

// IsValid reports whether the status is a known escalation status.
func (s EscalationStatus) IsValid() bool {
	switch s {
	case EscalationPending, EscalationClaimed, EscalationResolved, EscalationCancelled:
		return true
	}
	return false
}

// IsOpen reports whether the escalation still needs human attention.
// A conversation may have at most one open escalation at a time.
func (s EscalationStatus) IsOpen() bool {
	return s == EscalationPending || s == EscalationClaimed
}

var escalationTransitions = map[EscalationStatus][]EscalationStatus{
	EscalationPending:   {EscalationClaimed, EscalationResolved, EscalationCancelled},
	EscalationClaimed:   {EscalationResolved, EscalationCancelled},
	EscalationResolved:  {},
	EscalationCancelled: {},
}

// CanTransitionEscalation reports whether an escalation may move from one
// status to another.
func CanTransitionEscalation(from, to EscalationStatus) bool {
	for _, allowed := range escalationTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// ConversationStatusAfter returns the conversation status implied by an
// escalation reaching the given status. Cancelling returns the conversation
// to automated handling; resolving closes the episode out.
func ConversationStatusAfter(escalation EscalationStatus) ConversationStatus {
	switch escalation {
	case EscalationPending, EscalationClaimed:
		return ConversationEscalated
	case EscalationCancelled:
		return ConversationActive
	case EscalationResolved:
		return ConversationResolved
	}
	return ConversationActive
}

// Priority is the triage priority of an escalation.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// IsValid reports whether the priority is a known value.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Rank orders priorities for queue views: lower rank means more urgent.
func (p Priority) Rank() int {
	switch p {
	case PriorityUrgent:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	}
	return 4
}

// MessageDirection distinguishes customer messages from replies.
type MessageDirection string

const (
	DirectionInbound  MessageDirection = "inbound"
	DirectionOutbound MessageDirection = "outbound"
)
