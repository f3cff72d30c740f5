package service

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"lavanderia_backend/internal/conversations/domain"
	"lavanderia_backend/internal/conversations/repository"
	"lavanderia_backend/internal/conversations/transport"
	"lavanderia_backend/internal/events"
	"lavanderia_backend/platform/apperr"
)

// Escalate opens an escalation on the conversation and moves it to escalated.
// Conflict when the conversation already has an open escalation or is already
// escalated from another one.
func (s *Service) Escalate(ctx context.Context, conversationID uuid.UUID, req transport.EscalateRequest) (transport.EscalationResponse, error) {
	priority := domain.Priority(req.Priority)
	if !priority.IsValid() {
		return transport.EscalationResponse{}, apperr.Validation("invalid escalation priority")
	}

	conv, err := s.conversations.GetByID(ctx, conversationID)
	if err != nil {
		return transport.EscalationResponse{}, err
	}
	if conv.Status == domain.ConversationEscalated {
		return transport.EscalationResponse{}, apperr.Conflict("conversation is already escalated")
	}

	esc, err := s.escalations.Create(ctx, repository.CreateEscalationParams{
		ConversationID: conversationID,
		Reason:         req.Reason,
		Priority:       priority,
	})
	if err != nil {
		return transport.EscalationResponse{}, err
	}

	if err := s.conversations.UpdateStatus(ctx, conversationID, conv.Status, domain.ConversationEscalated, nil); err != nil {
		// The ticket exists but the conversation lost a status race. The open
		// escalation still wins the queue; log and surface the conflict.
		s.log.Error("conversation escalation status race", "conversation", conversationID, "escalation", esc.ID, "error", err)
		return transport.EscalationResponse{}, err
	}

	customer, custErr := s.customers.GetByID(ctx, conv.CustomerID)
	if custErr != nil {
		s.log.Warn("escalation event without customer details", "conversation", conversationID, "error", custErr)
	}

	s.bus.Publish(ctx, events.ConversationEscalated{
		BaseEvent:      events.NewBaseEvent(),
		ConversationID: conversationID,
		EscalationID:   esc.ID,
		CustomerID:     conv.CustomerID,
		Phone:          customer.Phone,
		Reason:         esc.Reason,
		Priority:       string(esc.Priority),
	})

	s.log.Info("conversation escalated", "conversation", conversationID, "escalation", esc.ID, "priority", esc.Priority)
	return toEscalationResponse(esc), nil
}

// ListQueue returns open escalations in triage order.
func (s *Service) ListQueue(ctx context.Context, req transport.ListQueueRequest) (transport.EscalationListResponse, error) {
	page, pageSize := normalizePage(req.Page, req.PageSize)

	items, total, err := s.escalations.ListQueue(ctx, pageSize, (page-1)*pageSize)
	if err != nil {
		return transport.EscalationListResponse{}, err
	}

	// Triage order is a correctness requirement for queue consumers, so it is
	// enforced here as well as in the query: urgent first, newest first within
	// the same priority.
	sort.SliceStable(items, func(i, j int) bool {
		ri, rj := items[i].Priority.Rank(), items[j].Priority.Rank()
		if ri != rj {
			return ri < rj
		}
		return parseCreatedAt(items[i].CreatedAt).After(parseCreatedAt(items[j].CreatedAt))
	})

	responses := make([]transport.EscalationResponse, 0, len(items))
	for _, e := range items {
		responses = append(responses, toEscalationResponse(e))
	}

	return transport.EscalationListResponse{
		Items:    responses,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// GetEscalation retrieves one escalation.
func (s *Service) GetEscalation(ctx context.Context, id uuid.UUID) (transport.EscalationResponse, error) {
	e, err := s.escalations.GetByID(ctx, id)
	if err != nil {
		return transport.EscalationResponse{}, err
	}
	return toEscalationResponse(e), nil
}

// Claim assigns a pending escalation to the acting agent and mirrors the
// assignment onto the conversation.
func (s *Service) Claim(ctx context.Context, id, agentID uuid.UUID, agentName string) (transport.EscalationResponse, error) {
	esc, err := s.escalations.Claim(ctx, id, agentID, time.Now())
	if err != nil {
		return transport.EscalationResponse{}, err
	}

	if err := s.conversations.Assign(ctx, esc.ConversationID, &agentID); err != nil {
		s.log.Warn("failed to mirror claim onto conversation", "conversation", esc.ConversationID, "error", err)
	}

	s.bus.Publish(ctx, events.EscalationClaimed{
		BaseEvent:      events.NewBaseEvent(),
		EscalationID:   esc.ID,
		ConversationID: esc.ConversationID,
		AgentID:        agentID,
		AgentName:      agentName,
	})

	s.log.Info("escalation claimed", "escalation", esc.ID, "agent", agentID)
	return toEscalationResponse(esc), nil
}

// Resolve closes an escalation and moves the conversation to resolved.
func (s *Service) Resolve(ctx context.Context, id, agentID uuid.UUID, notes *string) (transport.EscalationResponse, error) {
	esc, err := s.escalations.Resolve(ctx, id, notes, time.Now())
	if err != nil {
		return transport.EscalationResponse{}, err
	}

	if err := s.moveConversation(ctx, esc.ConversationID, domain.ConversationStatusAfter(domain.EscalationResolved)); err != nil {
		s.log.Warn("failed to move conversation after resolution", "conversation", esc.ConversationID, "error", err)
	}

	conv, convErr := s.conversations.GetByID(ctx, esc.ConversationID)
	var phone string
	var customerID uuid.UUID
	if convErr == nil {
		customerID = conv.CustomerID
		if customer, err := s.customers.GetByID(ctx, conv.CustomerID); err == nil {
			phone = customer.Phone
		}
	}

	resolution := ""
	if esc.ResolutionNotes != nil {
		resolution = *esc.ResolutionNotes
	}
	s.bus.Publish(ctx, events.EscalationResolved{
		BaseEvent:      events.NewBaseEvent(),
		EscalationID:   esc.ID,
		ConversationID: esc.ConversationID,
		CustomerID:     customerID,
		Phone:          phone,
		AgentID:        agentID,
		Resolution:     resolution,
	})

	s.log.Info("escalation resolved", "escalation", esc.ID, "agent", agentID)
	return toEscalationResponse(esc), nil
}

// Cancel withdraws an escalation and returns the conversation to automated
// handling.
func (s *Service) Cancel(ctx context.Context, id, agentID uuid.UUID) (transport.EscalationResponse, error) {
	esc, err := s.escalations.Cancel(ctx, id)
	if err != nil {
		return transport.EscalationResponse{}, err
	}

	if err := s.moveConversation(ctx, esc.ConversationID, domain.ConversationStatusAfter(domain.EscalationCancelled)); err != nil {
		s.log.Warn("failed to move conversation after cancellation", "conversation", esc.ConversationID, "error", err)
	}

	s.bus.Publish(ctx, events.EscalationCancelled{
		BaseEvent:      events.NewBaseEvent(),
		EscalationID:   esc.ID,
		ConversationID: esc.ConversationID,
		AgentID:        agentID,
	})

	s.log.Info("escalation cancelled", "escalation", esc.ID, "agent", agentID)
	return toEscalationResponse(esc), nil
}

// parseCreatedAt normalizes stored timestamps for comparison. Rows can carry
// different UTC offsets, so string order is not time order.
func parseCreatedAt(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// moveConversation applies the status implied by an escalation transition,
// re-reading the current status so the conditional write has a prior state.
func (s *Service) moveConversation(ctx context.Context, conversationID uuid.UUID, to domain.ConversationStatus) error {
	conv, err := s.conversations.GetByID(ctx, conversationID)
	if err != nil {
		return err
	}
	if conv.Status == to {
		return nil
	}
	return s.conversations.UpdateStatus(ctx, conversationID, conv.Status, to, nil)
}
