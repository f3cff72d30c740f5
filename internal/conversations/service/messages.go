package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"lavanderia_backend/internal/conversations/domain"
	"lavanderia_backend/internal/conversations/repository"
	"lavanderia_backend/internal/conversations/transport"
	"lavanderia_backend/platform/apperr"
)

// SendAgentMessage delivers a human reply to the customer and records it in
// the transcript. Unlike the AI path, a delivery failure surfaces to the
// caller: the agent needs to know their message did not go out.
func (s *Service) SendAgentMessage(ctx context.Context, conversationID uuid.UUID, req transport.AgentMessageRequest) (transport.MessageResponse, error) {
	conv, err := s.conversations.GetByID(ctx, conversationID)
	if err != nil {
		return transport.MessageResponse{}, err
	}
	if conv.Status == domain.ConversationClosed {
		return transport.MessageResponse{}, apperr.Conflict("conversation is closed")
	}

	customer, err := s.customers.GetByID(ctx, conv.CustomerID)
	if err != nil {
		return transport.MessageResponse{}, err
	}

	if err := s.sender.SendMessage(ctx, customer.Phone, req.Body); err != nil {
		return transport.MessageResponse{}, apperr.Wrap(apperr.KindUnavailable, "message delivery failed", err).WithOp("service.SendAgentMessage")
	}

	msg, err := s.messages.Append(ctx, repository.AppendMessageParams{
		ConversationID: conversationID,
		Direction:      domain.DirectionOutbound,
		Body:           req.Body,
		AIGenerated:    false,
	})
	if err != nil {
		return transport.MessageResponse{}, err
	}

	if err := s.conversations.TouchMessage(ctx, conversationID, time.Now()); err != nil {
		s.log.Warn("failed to touch conversation counters", "conversation", conversationID, "error", err)
	}

	return toMessageResponse(msg), nil
}

// RecordOutbound appends an already-delivered outbound message to a
// conversation's transcript. Used to mirror notification sends into the log.
func (s *Service) RecordOutbound(ctx context.Context, conversationID uuid.UUID, body string) error {
	_, err := s.messages.Append(ctx, repository.AppendMessageParams{
		ConversationID: conversationID,
		Direction:      domain.DirectionOutbound,
		Body:           body,
		AIGenerated:    false,
	})
	if err != nil {
		return err
	}

	if err := s.conversations.TouchMessage(ctx, conversationID, time.Now()); err != nil {
		s.log.Warn("failed to touch conversation counters", "conversation", conversationID, "error", err)
	}

	return nil
}
