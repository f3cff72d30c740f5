// Package service implements the conversation workflow: inbound handling,
// AI reply generation, escalation lifecycle, and the agent-facing queries.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"lavanderia_backend/internal/conversations/agent"
	"lavanderia_backend/internal/conversations/domain"
	"lavanderia_backend/internal/conversations/repository"
	"lavanderia_backend/internal/conversations/transport"
	"lavanderia_backend/internal/events"
	"lavanderia_backend/platform/apperr"
	"lavanderia_backend/platform/logger"
)

// CustomerRef is the slice of customer data this context needs.
type CustomerRef struct {
	ID       uuid.UUID
	Phone    string
	Name     *string
	Language string
}

// CustomerDirectory resolves customers for inbound messages and views.
type CustomerDirectory interface {
	ResolveByPhone(ctx context.Context, phone string) (CustomerRef, error)
	GetByID(ctx context.Context, id uuid.UUID) (CustomerRef, error)
}

// MessageSender delivers outbound messages to the customer's channel.
type MessageSender interface {
	SendMessage(ctx context.Context, phone, message string) error
}

// ResponseEngine produces AI replies. Implemented by agent.Responder; faked
// in tests.
type ResponseEngine interface {
	Generate(ctx context.Context, input agent.GenerateInput) (agent.Reply, error)
}

// Config tunes the workflow behavior.
type Config struct {
	AITimeout       time.Duration
	HistoryWindow   int
	KnowledgeLimit  int
	DefaultLanguage string
}

// Service provides the conversation workflow business logic.
type Service struct {
	conversations repository.ConversationRepository
	messages      repository.MessageRepository
	escalations   repository.EscalationRepository
	knowledge     repository.KnowledgeRepository
	customers     CustomerDirectory
	sender        MessageSender
	engine        ResponseEngine
	keywords      *agent.KeywordDetector
	bus           events.Bus
	cfg           Config
	log           *logger.Logger
}

// New creates a new conversation workflow service.
func New(
	conversations repository.ConversationRepository,
	messages repository.MessageRepository,
	escalations repository.EscalationRepository,
	knowledge repository.KnowledgeRepository,
	customers CustomerDirectory,
	sender MessageSender,
	engine ResponseEngine,
	keywords *agent.KeywordDetector,
	bus events.Bus,
	cfg Config,
	log *logger.Logger,
) *Service {
	if cfg.HistoryWindow <= 0 {
		cfg.HistoryWindow = 20
	}
	if cfg.KnowledgeLimit <= 0 {
		cfg.KnowledgeLimit = 5
	}
	if cfg.AITimeout <= 0 {
		cfg.AITimeout = 25 * time.Second
	}
	if cfg.DefaultLanguage == "" {
		cfg.DefaultLanguage = "es"
	}

	return &Service{
		conversations: conversations,
		messages:      messages,
		escalations:   escalations,
		knowledge:     knowledge,
		customers:     customers,
		sender:        sender,
		engine:        engine,
		keywords:      keywords,
		bus:           bus,
		cfg:           cfg,
		log:           log,
	}
}

// GetConversation returns a conversation with its customer and full transcript.
func (s *Service) GetConversation(ctx context.Context, id uuid.UUID) (transport.ConversationDetailResponse, error) {
	conv, err := s.conversations.GetByID(ctx, id)
	if err != nil {
		return transport.ConversationDetailResponse{}, err
	}

	customer, err := s.customers.GetByID(ctx, conv.CustomerID)
	if err != nil {
		return transport.ConversationDetailResponse{}, err
	}

	msgs, err := s.messages.ListByConversation(ctx, id)
	if err != nil {
		return transport.ConversationDetailResponse{}, err
	}

	detail := transport.ConversationDetailResponse{
		ConversationResponse: toConversationResponse(conv),
		Customer: transport.ConversationCustomer{
			ID:       customer.ID,
			Phone:    customer.Phone,
			Name:     customer.Name,
			Language: customer.Language,
		},
		Messages: make([]transport.MessageResponse, 0, len(msgs)),
	}
	for _, m := range msgs {
		detail.Messages = append(detail.Messages, toMessageResponse(m))
	}

	return detail, nil
}

// ListConversations returns conversations with optional status filter.
func (s *Service) ListConversations(ctx context.Context, req transport.ListConversationsRequest) (transport.ConversationListResponse, error) {
	page, pageSize := normalizePage(req.Page, req.PageSize)

	var status *domain.ConversationStatus
	if req.Status != "" {
		st := domain.ConversationStatus(req.Status)
		if !st.IsValid() {
			return transport.ConversationListResponse{}, apperr.Validation("invalid conversation status filter")
		}
		status = &st
	}

	items, total, err := s.conversations.List(ctx, repository.ListConversationsParams{
		Status: status,
		Limit:  pageSize,
		Offset: (page - 1) * pageSize,
	})
	if err != nil {
		return transport.ConversationListResponse{}, err
	}

	responses := make([]transport.ConversationResponse, 0, len(items))
	for _, c := range items {
		responses = append(responses, toConversationResponse(c))
	}

	return transport.ConversationListResponse{
		Items:    responses,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// UpdateConversation applies a manual status/assignee patch from an agent.
// Status changes go through the same transition table as automated ones.
func (s *Service) UpdateConversation(ctx context.Context, id uuid.UUID, req transport.UpdateConversationRequest) (transport.ConversationResponse, error) {
	conv, err := s.conversations.GetByID(ctx, id)
	if err != nil {
		return transport.ConversationResponse{}, err
	}

	if req.Status != nil {
		target := domain.ConversationStatus(*req.Status)
		if !target.IsValid() {
			return transport.ConversationResponse{}, apperr.Validation("invalid conversation status")
		}
		if err := s.conversations.UpdateStatus(ctx, id, conv.Status, target, req.AssignedAgent); err != nil {
			return transport.ConversationResponse{}, err
		}
	} else if req.AssignedAgent != nil {
		if err := s.conversations.Assign(ctx, id, req.AssignedAgent); err != nil {
			return transport.ConversationResponse{}, err
		}
	}

	updated, err := s.conversations.GetByID(ctx, id)
	if err != nil {
		return transport.ConversationResponse{}, err
	}

	return toConversationResponse(updated), nil
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}

func toConversationResponse(c repository.Conversation) transport.ConversationResponse {
	return transport.ConversationResponse{
		ID:            c.ID,
		CustomerID:    c.CustomerID,
		Channel:       c.Channel,
		Status:        string(c.Status),
		MessageCount:  c.MessageCount,
		AssignedAgent: c.AssignedAgent,
		AIHandled:     c.AIHandled,
		LastMessageAt: c.LastMessageAt,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

func toMessageResponse(m repository.Message) transport.MessageResponse {
	return transport.MessageResponse{
		ID:                m.ID,
		ConversationID:    m.ConversationID,
		Direction:         string(m.Direction),
		Body:              m.Body,
		AIGenerated:       m.AIGenerated,
		ProviderMessageID: m.ProviderMessageID,
		CreatedAt:         m.CreatedAt,
	}
}

func toEscalationResponse(e repository.Escalation) transport.EscalationResponse {
	return transport.EscalationResponse{
		ID:              e.ID,
		ConversationID:  e.ConversationID,
		Reason:          e.Reason,
		Priority:        string(e.Priority),
		Status:          string(e.Status),
		ClaimedBy:       e.ClaimedBy,
		ClaimedAt:       e.ClaimedAt,
		ResolvedAt:      e.ResolvedAt,
		ResolutionNotes: e.ResolutionNotes,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}
}
