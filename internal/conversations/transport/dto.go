package transport

import (
	"time"

	"github.com/google/uuid"
)

// InboundMessageRequest is the webhook payload for an inbound WhatsApp message.
type InboundMessageRequest struct {
	From              string  `json:"from" validate:"required"`
	Body              string  `json:"body" validate:"required"`
	ProviderMessageID *string `json:"providerMessageId,omitempty"`
}

// UpdateConversationRequest patches a conversation's status or assignee.
type UpdateConversationRequest struct {
	Status        *string    `json:"status,omitempty" validate:"omitempty,oneof=active escalated resolved closed"`
	AssignedAgent *uuid.UUID `json:"assignedAgent,omitempty"`
}

// EscalateRequest opens an escalation on a conversation.
type EscalateRequest struct {
	Reason   string `json:"reason" validate:"required,min=1,max=500"`
	Priority string `json:"priority" validate:"required,oneof=low medium high urgent"`
}

// EscalationActionRequest applies a queue transition to an escalation.
type EscalationActionRequest struct {
	Action          string  `json:"action" validate:"required,oneof=claim resolve cancel"`
	ResolutionNotes *string `json:"resolutionNotes,omitempty" validate:"omitempty,max=2000"`
}

// AgentMessageRequest is a human reply sent from the agent console.
type AgentMessageRequest struct {
	Body string `json:"body" validate:"required,min=1,max=4000"`
}

// ListConversationsRequest contains query parameters for listing conversations.
type ListConversationsRequest struct {
	Status   string `form:"status"`
	Page     int    `form:"page"`
	PageSize int    `form:"pageSize"`
}

// ListQueueRequest contains query parameters for the escalation queue.
type ListQueueRequest struct {
	Page     int `form:"page"`
	PageSize int `form:"pageSize"`
}

// KnowledgeEntryRequest creates or updates a knowledge base entry.
type KnowledgeEntryRequest struct {
	Category string `json:"category" validate:"required,min=1,max=100"`
	Title    string `json:"title" validate:"required,min=1,max=200"`
	Content  string `json:"content" validate:"required,min=1,max=4000"`
	Language string `json:"language" validate:"required,oneof=es en"`
	IsActive bool   `json:"isActive"`
}

// MessageResponse represents a transcript message in API responses.
type MessageResponse struct {
	ID                uuid.UUID `json:"id"`
	ConversationID    uuid.UUID `json:"conversationId"`
	Direction         string    `json:"direction"`
	Body              string    `json:"body"`
	AIGenerated       bool      `json:"aiGenerated"`
	ProviderMessageID *string   `json:"providerMessageId,omitempty"`
	CreatedAt         string    `json:"createdAt"`
}

// ConversationCustomer is the owning customer embedded in conversation views.
type ConversationCustomer struct {
	ID       uuid.UUID `json:"id"`
	Phone    string    `json:"phone"`
	Name     *string   `json:"name,omitempty"`
	Language string    `json:"language"`
}

// ConversationResponse represents a conversation in API responses.
type ConversationResponse struct {
	ID            uuid.UUID  `json:"id"`
	CustomerID    uuid.UUID  `json:"customerId"`
	Channel       string     `json:"channel"`
	Status        string     `json:"status"`
	MessageCount  int        `json:"messageCount"`
	AssignedAgent *uuid.UUID `json:"assignedAgent,omitempty"`
	AIHandled     bool       `json:"aiHandled"`
	LastMessageAt *time.Time `json:"lastMessageAt,omitempty"`
	CreatedAt     string     `json:"createdAt"`
	UpdatedAt     string     `json:"updatedAt"`
}

// ConversationDetailResponse is a conversation with its customer and transcript.
type ConversationDetailResponse struct {
	ConversationResponse
	Customer ConversationCustomer `json:"customer"`
	Messages []MessageResponse    `json:"messages"`
}

// ConversationListResponse wraps a paginated list of conversations.
type ConversationListResponse struct {
	Items    []ConversationResponse `json:"items"`
	Total    int                    `json:"total"`
	Page     int                    `json:"page"`
	PageSize int                    `json:"pageSize"`
}

// EscalationResponse represents an escalation in API responses.
type EscalationResponse struct {
	ID              uuid.UUID  `json:"id"`
	ConversationID  uuid.UUID  `json:"conversationId"`
	Reason          string     `json:"reason"`
	Priority        string     `json:"priority"`
	Status          string     `json:"status"`
	ClaimedBy       *uuid.UUID `json:"claimedBy,omitempty"`
	ClaimedAt       *time.Time `json:"claimedAt,omitempty"`
	ResolvedAt      *time.Time `json:"resolvedAt,omitempty"`
	ResolutionNotes *string    `json:"resolutionNotes,omitempty"`
	CreatedAt       string     `json:"createdAt"`
	UpdatedAt       string     `json:"updatedAt"`
}

// EscalationListResponse wraps the escalation queue view.
type EscalationListResponse struct {
	Items    []EscalationResponse `json:"items"`
	Total    int                  `json:"total"`
	Page     int                  `json:"page"`
	PageSize int                  `json:"pageSize"`
}

// KnowledgeEntryResponse represents a knowledge base entry in API responses.
type KnowledgeEntryResponse struct {
	ID       uuid.UUID `json:"id"`
	Category string    `json:"category"`
	Title    string    `json:"title"`
	Content  string    `json:"content"`
	Language string    `json:"language"`
	IsActive bool      `json:"isActive"`
}
