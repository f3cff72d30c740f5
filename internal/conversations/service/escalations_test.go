package service

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"lavanderia_backend/internal/conversations/domain"
	"lavanderia_backend/internal/conversations/transport"
	"lavanderia_backend/platform/apperr"
)

func seedConversation(t *testing.T, env *testEnv) uuid.UUID {
	t.Helper()
	customer, err := env.directory.ResolveByPhone(context.Background(), "+50612345678")
	if err != nil {
		t.Fatalf("seed customer: %v", err)
	}
	conv, err := env.conversations.Create(context.Background(), customer.ID, "whatsapp")
	if err != nil {
		t.Fatalf("seed conversation: %v", err)
	}
	return conv.ID
}

func TestEscalateExclusivity(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	convID := seedConversation(t, env)

	first, err := env.svc.Escalate(ctx, convID, transport.EscalateRequest{Reason: "payment issue", Priority: "high"})
	if err != nil {
		t.Fatalf("first escalation: %v", err)
	}
	if first.Status != string(domain.EscalationPending) {
		t.Errorf("new escalation should be pending, got %s", first.Status)
	}

	_, err = env.svc.Escalate(ctx, convID, transport.EscalateRequest{Reason: "again", Priority: "low"})
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("second escalation must conflict, got %v", err)
	}
}

func TestEscalateUnknownConversation(t *testing.T) {
	env := newTestEnv()

	_, err := env.svc.Escalate(context.Background(), uuid.New(), transport.EscalateRequest{Reason: "x", Priority: "low"})
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDoubleClaim(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	convID := seedConversation(t, env)

	esc, err := env.svc.Escalate(ctx, convID, transport.EscalateRequest{Reason: "help", Priority: "urgent"})
	if err != nil {
		t.Fatalf("escalate: %v", err)
	}

	agentA := uuid.New()
	agentB := uuid.New()

	claimed, err := env.svc.Claim(ctx, esc.ID, agentA, "Ana")
	if err != nil {
		t.Fatalf("first claim: %v", err)
	}
	if claimed.ClaimedBy == nil || *claimed.ClaimedBy != agentA {
		t.Fatalf("claim should record agent A")
	}

	_, err = env.svc.Claim(ctx, esc.ID, agentB, "Beto")
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("second claim must conflict, got %v", err)
	}

	stored := env.escalations.items[esc.ID]
	if stored.ClaimedBy == nil || *stored.ClaimedBy != agentA {
		t.Errorf("claimed_by must remain agent A after the failed second claim")
	}
}

func TestResolveMovesConversationToResolved(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	convID := seedConversation(t, env)

	esc, err := env.svc.Escalate(ctx, convID, transport.EscalateRequest{Reason: "help", Priority: "medium"})
	if err != nil {
		t.Fatalf("escalate: %v", err)
	}

	agentID := uuid.New()
	notes := "called the customer"
	resolved, err := env.svc.Resolve(ctx, esc.ID, agentID, &notes)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved.Status != string(domain.EscalationResolved) {
		t.Errorf("expected resolved, got %s", resolved.Status)
	}

	conv := env.conversations.items[convID]
	if conv.Status != domain.ConversationResolved {
		t.Errorf("conversation should be resolved, got %s", conv.Status)
	}

	// Resolving again is a conflict, never a silent success.
	if _, err := env.svc.Resolve(ctx, esc.ID, agentID, nil); !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("double resolve must conflict, got %v", err)
	}
}

func TestCancelReturnsConversationToActive(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	convID := seedConversation(t, env)

	esc, err := env.svc.Escalate(ctx, convID, transport.EscalateRequest{Reason: "help", Priority: "low"})
	if err != nil {
		t.Fatalf("escalate: %v", err)
	}

	if _, err := env.svc.Cancel(ctx, esc.ID, uuid.New()); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	conv := env.conversations.items[convID]
	if conv.Status != domain.ConversationActive {
		t.Errorf("cancelled escalation should reactivate the conversation, got %s", conv.Status)
	}

	// A new escalation is allowed after cancellation.
	if _, err := env.svc.Escalate(ctx, convID, transport.EscalateRequest{Reason: "new issue", Priority: "high"}); err != nil {
		t.Fatalf("escalate after cancel: %v", err)
	}
}

func TestQueueTriageOrdering(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	priorities := []string{"low", "urgent", "medium", "urgent"}
	ids := make([]uuid.UUID, 0, len(priorities))
	for _, p := range priorities {
		convID := seedConversation(t, env)
		esc, err := env.svc.Escalate(ctx, convID, transport.EscalateRequest{Reason: "r", Priority: p})
		if err != nil {
			t.Fatalf("escalate %s: %v", p, err)
		}
		ids = append(ids, esc.ID)
	}

	queue, err := env.svc.ListQueue(ctx, transport.ListQueueRequest{})
	if err != nil {
		t.Fatalf("ListQueue: %v", err)
	}
	if len(queue.Items) != 4 {
		t.Fatalf("expected 4 queue items, got %d", len(queue.Items))
	}

	// Both urgents first with the newest leading, then medium, then low.
	if queue.Items[0].ID != ids[3] || queue.Items[1].ID != ids[1] {
		t.Errorf("urgent escalations must lead the queue, newest first")
	}
	if queue.Items[2].Priority != "medium" || queue.Items[3].Priority != "low" {
		t.Errorf("expected medium then low, got %s then %s", queue.Items[2].Priority, queue.Items[3].Priority)
	}
}

func TestQueueOrdersByInstantAcrossOffsets(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	var ids []uuid.UUID
	for i := 0; i < 2; i++ {
		convID := seedConversation(t, env)
		esc, err := env.svc.Escalate(ctx, convID, transport.EscalateRequest{Reason: "r", Priority: "high"})
		if err != nil {
			t.Fatalf("escalate: %v", err)
		}
		ids = append(ids, esc.ID)
	}

	// The older escalation carries a local-time offset whose wall clock reads
	// later than the newer one's UTC stamp, so string order is misleading.
	older := env.escalations.items[ids[0]]
	older.CreatedAt = "2026-08-27T23:00:00+06:00" // 17:00 UTC
	env.escalations.items[ids[0]] = older

	newer := env.escalations.items[ids[1]]
	newer.CreatedAt = "2026-08-27T20:00:00Z"
	env.escalations.items[ids[1]] = newer

	queue, err := env.svc.ListQueue(ctx, transport.ListQueueRequest{})
	if err != nil {
		t.Fatalf("ListQueue: %v", err)
	}
	if len(queue.Items) != 2 {
		t.Fatalf("expected 2 queue items, got %d", len(queue.Items))
	}
	if queue.Items[0].ID != ids[1] {
		t.Errorf("the later instant must lead regardless of its stored offset")
	}
}
