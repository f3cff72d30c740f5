package service

import (
	"context"
	"errors"
	"testing"

	"lavanderia_backend/internal/conversations/domain"
	"lavanderia_backend/internal/conversations/transport"
)

func TestHandleInboundHappyPath(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	err := env.svc.HandleInbound(ctx, transport.InboundMessageRequest{
		From: "+50688887777",
		Body: "hola, cuanto cuesta lavar?",
	})
	if err != nil {
		t.Fatalf("HandleInbound: %v", err)
	}

	if len(env.messages.items) != 2 {
		t.Fatalf("expected inbound + outbound messages, got %d", len(env.messages.items))
	}
	if env.messages.items[0].Direction != domain.DirectionInbound {
		t.Errorf("first message should be inbound, got %s", env.messages.items[0].Direction)
	}
	if env.messages.items[1].Direction != domain.DirectionOutbound || !env.messages.items[1].AIGenerated {
		t.Errorf("second message should be an AI outbound reply")
	}
	if len(env.sender.sent) != 1 || env.sender.sent[0] != "con gusto" {
		t.Errorf("reply was not sent: %v", env.sender.sent)
	}

	for _, c := range env.conversations.items {
		if c.Status != domain.ConversationActive {
			t.Errorf("conversation should stay active, got %s", c.Status)
		}
	}
}

func TestHandleInboundReusesActiveConversation(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := env.svc.HandleInbound(ctx, transport.InboundMessageRequest{
			From: "+50688887777",
			Body: "hola",
		}); err != nil {
			t.Fatalf("HandleInbound: %v", err)
		}
	}

	if len(env.conversations.items) != 1 {
		t.Fatalf("expected a single conversation, got %d", len(env.conversations.items))
	}
	for _, c := range env.conversations.items {
		if c.MessageCount != 6 {
			t.Errorf("expected 6 counted messages, got %d", c.MessageCount)
		}
	}
}

func TestHandleInboundAIFailureFallsBackAndEscalates(t *testing.T) {
	env := newTestEnv()
	env.engine.err = errors.New("model timeout")
	ctx := context.Background()

	err := env.svc.HandleInbound(ctx, transport.InboundMessageRequest{
		From: "+50688887777",
		Body: "hola",
	})
	if err != nil {
		t.Fatalf("HandleInbound must not fail when only the AI fails: %v", err)
	}

	if len(env.messages.items) != 2 {
		t.Fatalf("fallback reply must still be persisted, got %d messages", len(env.messages.items))
	}
	if env.messages.items[1].Body != fallbackReplies["es"] {
		t.Errorf("expected spanish fallback reply, got %q", env.messages.items[1].Body)
	}

	for _, c := range env.conversations.items {
		if c.Status != domain.ConversationEscalated {
			t.Errorf("AI failure must force escalation, conversation status is %s", c.Status)
		}
	}
	if len(env.escalations.items) != 1 {
		t.Fatalf("expected one escalation, got %d", len(env.escalations.items))
	}
}

func TestHandleInboundKeywordOverridesModelSignal(t *testing.T) {
	env := newTestEnv()
	env.engine.reply.ShouldEscalate = false
	ctx := context.Background()

	err := env.svc.HandleInbound(ctx, transport.InboundMessageRequest{
		From: "+50688887777",
		Body: "quiero hablar con un agente",
	})
	if err != nil {
		t.Fatalf("HandleInbound: %v", err)
	}

	if len(env.escalations.items) != 1 {
		t.Fatalf("keyword signal must escalate even when the model says no")
	}
	for _, e := range env.escalations.items {
		if e.Status != domain.EscalationPending {
			t.Errorf("new escalation should be pending, got %s", e.Status)
		}
	}
	for _, c := range env.conversations.items {
		if c.Status != domain.ConversationEscalated {
			t.Errorf("conversation should be escalated, got %s", c.Status)
		}
	}
}

func TestHandleInboundSendFailureDoesNotFailWebhook(t *testing.T) {
	env := newTestEnv()
	env.sender.fail = true
	ctx := context.Background()

	err := env.svc.HandleInbound(ctx, transport.InboundMessageRequest{
		From: "+50688887777",
		Body: "hola",
	})
	if err != nil {
		t.Fatalf("send failure must not fail the webhook: %v", err)
	}

	if len(env.messages.items) != 2 {
		t.Fatalf("messages must be persisted regardless of delivery, got %d", len(env.messages.items))
	}
}
