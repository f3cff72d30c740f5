package service

import (
	"context"
	"testing"

	"lavanderia_backend/internal/conversations/domain"
	"lavanderia_backend/internal/conversations/transport"
	"lavanderia_backend/platform/apperr"
)

func TestSendAgentMessageDeliversAndRecords(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	customer, _ := env.directory.ResolveByPhone(ctx, "+50688887777")
	conv, _ := env.conversations.Create(ctx, customer.ID, "whatsapp")

	msg, err := env.svc.SendAgentMessage(ctx, conv.ID, transport.AgentMessageRequest{Body: "Su pedido ya casi está"})
	if err != nil {
		t.Fatalf("SendAgentMessage: %v", err)
	}

	if msg.Direction != "outbound" || msg.AIGenerated {
		t.Errorf("unexpected message record: %+v", msg)
	}
	if len(env.sender.sent) != 1 || env.sender.sent[0] != "Su pedido ya casi está" {
		t.Errorf("message not delivered: %v", env.sender.sent)
	}

	stored, _ := env.messages.ListByConversation(ctx, conv.ID)
	if len(stored) != 1 {
		t.Fatalf("expected 1 transcript entry, got %d", len(stored))
	}
}

func TestSendAgentMessageSurfacesDeliveryFailure(t *testing.T) {
	env := newTestEnv()
	env.sender.fail = true
	ctx := context.Background()

	customer, _ := env.directory.ResolveByPhone(ctx, "+50688887777")
	conv, _ := env.conversations.Create(ctx, customer.ID, "whatsapp")

	_, err := env.svc.SendAgentMessage(ctx, conv.ID, transport.AgentMessageRequest{Body: "hola"})
	if err == nil {
		t.Fatal("expected an error when the gateway is down")
	}

	// Nothing lands in the transcript for a message the customer never got.
	stored, _ := env.messages.ListByConversation(ctx, conv.ID)
	if len(stored) != 0 {
		t.Errorf("expected empty transcript, got %d entries", len(stored))
	}
}

func TestSendAgentMessageRejectsClosedConversation(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	customer, _ := env.directory.ResolveByPhone(ctx, "+50688887777")
	conv, _ := env.conversations.Create(ctx, customer.ID, "whatsapp")
	c := env.conversations.items[conv.ID]
	c.Status = domain.ConversationClosed
	env.conversations.items[conv.ID] = c

	_, err := env.svc.SendAgentMessage(ctx, conv.ID, transport.AgentMessageRequest{Body: "hola"})
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected Conflict, got %v", err)
	}
}

func TestRecordOutboundAppendsTranscript(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	customer, _ := env.directory.ResolveByPhone(ctx, "+50688887777")
	conv, _ := env.conversations.Create(ctx, customer.ID, "whatsapp")

	if err := env.svc.RecordOutbound(ctx, conv.ID, "Tu consulta fue resuelta"); err != nil {
		t.Fatalf("RecordOutbound: %v", err)
	}

	stored, _ := env.messages.ListByConversation(ctx, conv.ID)
	if len(stored) != 1 || stored[0].Direction != domain.DirectionOutbound {
		t.Fatalf("unexpected transcript: %+v", stored)
	}
	// RecordOutbound mirrors an already-delivered message; nothing goes out.
	if len(env.sender.sent) != 0 {
		t.Errorf("mirror must not send, sent: %v", env.sender.sent)
	}
}
