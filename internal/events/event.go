// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"lavanderia_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Conversation Domain Events
// =============================================================================

// InboundMessageReceived is published after an inbound WhatsApp message has
// been persisted on its conversation.
type InboundMessageReceived struct {
	BaseEvent
	ConversationID uuid.UUID `json:"conversationId"`
	CustomerID     uuid.UUID `json:"customerId"`
	MessageID      uuid.UUID `json:"messageId"`
	Phone          string    `json:"phone"`
	Body           string    `json:"body"`
}

func (e InboundMessageReceived) EventName() string { return "conversations.message.received" }

// ConversationEscalated is published when a conversation moves to human
// handling and an escalation ticket is opened.
type ConversationEscalated struct {
	BaseEvent
	ConversationID uuid.UUID `json:"conversationId"`
	EscalationID   uuid.UUID `json:"escalationId"`
	CustomerID     uuid.UUID `json:"customerId"`
	Phone          string    `json:"phone"`
	Reason         string    `json:"reason"`
	Priority       string    `json:"priority"`
}

func (e ConversationEscalated) EventName() string { return "conversations.escalated" }

// EscalationClaimed is published when a human agent takes ownership of an
// escalation ticket.
type EscalationClaimed struct {
	BaseEvent
	EscalationID   uuid.UUID `json:"escalationId"`
	ConversationID uuid.UUID `json:"conversationId"`
	AgentID        uuid.UUID `json:"agentId"`
	AgentName      string    `json:"agentName"`
}

func (e EscalationClaimed) EventName() string { return "escalations.claimed" }

// EscalationResolved is published when an agent closes an escalation and the
// conversation returns to automated handling.
type EscalationResolved struct {
	BaseEvent
	EscalationID   uuid.UUID `json:"escalationId"`
	ConversationID uuid.UUID `json:"conversationId"`
	CustomerID     uuid.UUID `json:"customerId"`
	Phone          string    `json:"phone"`
	AgentID        uuid.UUID `json:"agentId"`
	Resolution     string    `json:"resolution"`
}

func (e EscalationResolved) EventName() string { return "escalations.resolved" }

// EscalationCancelled is published when an open escalation is withdrawn
// without resolution.
type EscalationCancelled struct {
	BaseEvent
	EscalationID   uuid.UUID `json:"escalationId"`
	ConversationID uuid.UUID `json:"conversationId"`
	AgentID        uuid.UUID `json:"agentId"`
}

func (e EscalationCancelled) EventName() string { return "escalations.cancelled" }

// =============================================================================
// Order Domain Events
// =============================================================================

// OrderCreated is published when a new order is registered for a customer.
// ConversationID is set when the order originated from a conversation.
type OrderCreated struct {
	BaseEvent
	OrderID        uuid.UUID  `json:"orderId"`
	CustomerID     uuid.UUID  `json:"customerId"`
	ConversationID *uuid.UUID `json:"conversationId,omitempty"`
	Phone          string     `json:"phone"`
	Language       string     `json:"language"`
	Total          float64    `json:"total"`
}

func (e OrderCreated) EventName() string { return "orders.created" }

// OrderStatusChanged is published on every successful order status
// transition, including cancellation.
type OrderStatusChanged struct {
	BaseEvent
	OrderID        uuid.UUID  `json:"orderId"`
	CustomerID     uuid.UUID  `json:"customerId"`
	ConversationID *uuid.UUID `json:"conversationId,omitempty"`
	Phone          string     `json:"phone"`
	Language       string     `json:"language"`
	OldStatus      string     `json:"oldStatus"`
	NewStatus      string     `json:"newStatus"`
	Total          float64    `json:"total"`
}

func (e OrderStatusChanged) EventName() string { return "orders.status.changed" }
