package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"lavanderia_backend/internal/conversations/domain"
)

// Conversation is one customer service episode over a single channel.
type Conversation struct {
	ID            uuid.UUID                 `db:"id"`
	CustomerID    uuid.UUID                 `db:"customer_id"`
	Channel       string                    `db:"channel"`
	Status        domain.ConversationStatus `db:"status"`
	MessageCount  int                       `db:"message_count"`
	AssignedAgent *uuid.UUID                `db:"assigned_agent"`
	AIHandled     bool                      `db:"ai_handled"`
	LastMessageAt *time.Time                `db:"last_message_at"`
	CreatedAt     string                    `db:"created_at"`
	UpdatedAt     string                    `db:"updated_at"`
}

// Message is an immutable entry in a conversation's transcript.
type Message struct {
	ID                uuid.UUID               `db:"id"`
	ConversationID    uuid.UUID               `db:"conversation_id"`
	Direction         domain.MessageDirection `db:"direction"`
	Body              string                  `db:"body"`
	AIGenerated       bool                    `db:"ai_generated"`
	ProviderMessageID *string                 `db:"provider_message_id"`
	CreatedAt         string                  `db:"created_at"`
}

// Escalation is a request for human attention on a conversation.
type Escalation struct {
	ID              uuid.UUID               `db:"id"`
	ConversationID  uuid.UUID               `db:"conversation_id"`
	Reason          string                  `db:"reason"`
	Priority        domain.Priority         `db:"priority"`
	Status          domain.EscalationStatus `db:"status"`
	ClaimedBy       *uuid.UUID              `db:"claimed_by"`
	ClaimedAt       *time.Time              `db:"claimed_at"`
	ResolvedAt      *time.Time              `db:"resolved_at"`
	ResolutionNotes *string                 `db:"resolution_notes"`
	CreatedAt       string                  `db:"created_at"`
	UpdatedAt       string                  `db:"updated_at"`
}

// KnowledgeEntry is a curated answer snippet fed to the AI responder.
type KnowledgeEntry struct {
	ID       uuid.UUID `db:"id"`
	Category string    `db:"category"`
	Title    string    `db:"title"`
	Content  string    `db:"content"`
	Language string    `db:"language"`
	IsActive bool      `db:"is_active"`
}

// AppendMessageParams contains parameters for appending a message.
type AppendMessageParams struct {
	ConversationID    uuid.UUID
	Direction         domain.MessageDirection
	Body              string
	AIGenerated       bool
	ProviderMessageID *string
}

// CreateEscalationParams contains parameters for opening an escalation.
type CreateEscalationParams struct {
	ConversationID uuid.UUID
	Reason         string
	Priority       domain.Priority
}

// ListConversationsParams contains filters for listing conversations.
type ListConversationsParams struct {
	Status *domain.ConversationStatus
	Limit  int
	Offset int
}

// KnowledgeQuery selects knowledge entries for a reply context.
type KnowledgeQuery struct {
	Category string
	Language string
	Limit    int
}

// ConversationRepository provides persistence for conversations.
type ConversationRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (Conversation, error)
	FindCurrentActive(ctx context.Context, customerID uuid.UUID, channel string) (Conversation, error)
	Create(ctx context.Context, customerID uuid.UUID, channel string) (Conversation, error)
	List(ctx context.Context, params ListConversationsParams) ([]Conversation, int, error)
	// UpdateStatus applies a conditional transition: the write only succeeds
	// when the stored status still equals from. Returns Conflict otherwise.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.ConversationStatus, assignedAgent *uuid.UUID) error
	Assign(ctx context.Context, id uuid.UUID, agentID *uuid.UUID) error
	TouchMessage(ctx context.Context, id uuid.UUID, at time.Time) error
}

// MessageRepository provides persistence for the append-only message log.
type MessageRepository interface {
	Append(ctx context.Context, params AppendMessageParams) (Message, error)
	ListRecent(ctx context.Context, conversationID uuid.UUID, limit int) ([]Message, error)
	ListByConversation(ctx context.Context, conversationID uuid.UUID) ([]Message, error)
}

// EscalationRepository provides persistence for escalation tickets.
type EscalationRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (Escalation, error)
	FindOpenByConversation(ctx context.Context, conversationID uuid.UUID) (Escalation, error)
	Create(ctx context.Context, params CreateEscalationParams) (Escalation, error)
	ListQueue(ctx context.Context, limit, offset int) ([]Escalation, int, error)
	Claim(ctx context.Context, id, agentID uuid.UUID, at time.Time) (Escalation, error)
	Resolve(ctx context.Context, id uuid.UUID, notes *string, at time.Time) (Escalation, error)
	Cancel(ctx context.Context, id uuid.UUID) (Escalation, error)
}

// KnowledgeRepository provides persistence for knowledge base entries.
type KnowledgeRepository interface {
	ListRelevant(ctx context.Context, q KnowledgeQuery) ([]KnowledgeEntry, error)
	List(ctx context.Context) ([]KnowledgeEntry, error)
	Create(ctx context.Context, e KnowledgeEntry) (KnowledgeEntry, error)
	Update(ctx context.Context, e KnowledgeEntry) (KnowledgeEntry, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
