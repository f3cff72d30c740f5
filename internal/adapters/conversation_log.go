package adapters

import (
	"context"

	"github.com/google/uuid"

	convservice "lavanderia_backend/internal/conversations/service"
	"lavanderia_backend/internal/notification"
)

// ConversationLog adapts the conversations service so the notification
// dispatcher can mirror delivered messages into the transcript.
type ConversationLog struct {
	conversations *convservice.Service
}

// NewConversationLog creates a new conversation log adapter.
func NewConversationLog(conversations *convservice.Service) *ConversationLog {
	return &ConversationLog{conversations: conversations}
}

// RecordOutbound appends a delivered message to the conversation transcript.
func (a *ConversationLog) RecordOutbound(ctx context.Context, conversationID uuid.UUID, body string) error {
	return a.conversations.RecordOutbound(ctx, conversationID, body)
}

// Compile-time check that ConversationLog satisfies the notification port.
var _ notification.ConversationLog = (*ConversationLog)(nil)
