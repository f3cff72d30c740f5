package service

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"lavanderia_backend/internal/conversations/agent"
	"lavanderia_backend/internal/conversations/domain"
	"lavanderia_backend/internal/conversations/repository"
	"lavanderia_backend/internal/conversations/transport"
	"lavanderia_backend/internal/events"
	"lavanderia_backend/platform/apperr"
)

const whatsappChannel = "whatsapp"

// fallbackReplies are sent when AI generation fails. The customer never sees
// a raw error; the conversation is force-escalated instead.
var fallbackReplies = map[string]string{
	"es": "Estamos teniendo dificultades técnicas. Un agente se pondrá en contacto contigo en breve.",
	"en": "We are having technical difficulties. An agent will reach out to you shortly.",
}

// HandleInbound processes one inbound customer message end to end: resolve
// customer and conversation, persist the message, generate a reply, send it,
// and escalate when either signal says so.
//
// Message persistence takes priority over everything downstream: once the
// inbound message is stored, reply and escalation failures are logged but do
// not fail the webhook.
func (s *Service) HandleInbound(ctx context.Context, req transport.InboundMessageRequest) error {
	customer, err := s.customers.ResolveByPhone(ctx, req.From)
	if err != nil {
		return err
	}

	conv, err := s.conversations.FindCurrentActive(ctx, customer.ID, whatsappChannel)
	if err != nil {
		if !apperr.Is(err, apperr.KindNotFound) {
			return err
		}
		conv, err = s.conversations.Create(ctx, customer.ID, whatsappChannel)
		if err != nil {
			return err
		}
	}

	inbound, err := s.messages.Append(ctx, repository.AppendMessageParams{
		ConversationID:    conv.ID,
		Direction:         domain.DirectionInbound,
		Body:              req.Body,
		AIGenerated:       false,
		ProviderMessageID: req.ProviderMessageID,
	})
	if err != nil {
		return err
	}

	if err := s.conversations.TouchMessage(ctx, conv.ID, time.Now()); err != nil {
		s.log.Warn("failed to touch conversation counters", "conversation", conv.ID, "error", err)
	}

	s.bus.Publish(ctx, events.InboundMessageReceived{
		BaseEvent:      events.NewBaseEvent(),
		ConversationID: conv.ID,
		CustomerID:     customer.ID,
		MessageID:      inbound.ID,
		Phone:          customer.Phone,
		Body:           req.Body,
	})

	// The webhook is already satisfiable at this point; respond-and-escalate
	// failures must not bubble up as a storage failure.
	if err := s.respond(ctx, conv, customer, req.Body); err != nil {
		s.log.Error("inbound response flow failed", "conversation", conv.ID, "error", err)
	}

	return nil
}

// respond runs the AI engine over the conversation context and handles the
// two-signal escalation policy: local keywords OR model signal, union wins.
func (s *Service) respond(ctx context.Context, conv repository.Conversation, customer CustomerRef, body string) error {
	reply := s.generateWithFallback(ctx, conv, customer, body)

	keyword, keywordHit := s.keywords.Match(body)
	shouldEscalate := reply.ShouldEscalate || keywordHit

	outbound, err := s.messages.Append(ctx, repository.AppendMessageParams{
		ConversationID: conv.ID,
		Direction:      domain.DirectionOutbound,
		Body:           reply.Response,
		AIGenerated:    true,
	})
	if err != nil {
		return err
	}
	if err := s.conversations.TouchMessage(ctx, conv.ID, time.Now()); err != nil {
		s.log.Warn("failed to touch conversation counters", "conversation", conv.ID, "error", err)
	}

	if err := s.sender.SendMessage(ctx, customer.Phone, reply.Response); err != nil {
		s.log.Error("outbound send failed", "conversation", conv.ID, "message", outbound.ID, "error", err)
	}

	if shouldEscalate {
		reason := reply.Intent
		if reason == "" && keywordHit {
			reason = "escalation keyword detected: " + keyword
		}
		if reason == "" {
			reason = "ai requested human handoff"
		}

		_, err := s.Escalate(ctx, conv.ID, transport.EscalateRequest{
			Reason:   reason,
			Priority: string(domain.PriorityHigh),
		})
		if err != nil && !apperr.Is(err, apperr.KindConflict) {
			return err
		}
	}

	return nil
}

// generateWithFallback calls the engine under a timeout. Any failure yields
// the locale fallback reply with a forced escalation signal.
func (s *Service) generateWithFallback(ctx context.Context, conv repository.Conversation, customer CustomerRef, body string) agent.Reply {
	aiCtx, cancel := context.WithTimeout(ctx, s.cfg.AITimeout)
	defer cancel()

	input, err := s.buildEngineInput(aiCtx, conv, customer, body)
	if err == nil {
		var reply agent.Reply
		reply, err = s.engine.Generate(aiCtx, input)
		if err == nil {
			return reply
		}
	}

	s.log.Error("ai generation failed, using fallback", "conversation", conv.ID, "error", err)

	return agent.Reply{
		Response:       fallbackReply(customer.Language),
		ShouldEscalate: true,
		Intent:         "ai engine failure",
	}
}

// buildEngineInput gathers the model context. History and knowledge live in
// different tables, so both reads run concurrently under the AI timeout.
func (s *Service) buildEngineInput(ctx context.Context, conv repository.Conversation, customer CustomerRef, body string) (agent.GenerateInput, error) {
	var (
		history []repository.Message
		entries []repository.KnowledgeEntry
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		history, err = s.messages.ListRecent(gctx, conv.ID, s.cfg.HistoryWindow)
		return err
	})
	g.Go(func() error {
		var err error
		entries, err = s.knowledge.ListRelevant(gctx, repository.KnowledgeQuery{
			Language: customer.Language,
			Limit:    s.cfg.KnowledgeLimit,
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return agent.GenerateInput{}, err
	}

	input := agent.GenerateInput{
		Message:  body,
		Language: customer.Language,
		History:  make([]agent.HistoryEntry, 0, len(history)),
		Snippets: make([]agent.Snippet, 0, len(entries)),
	}
	for _, m := range history {
		role := "customer"
		if m.Direction == domain.DirectionOutbound {
			role = "assistant"
		}
		input.History = append(input.History, agent.HistoryEntry{Role: role, Body: m.Body})
	}
	for _, e := range entries {
		input.Snippets = append(input.Snippets, agent.Snippet{
			Category: e.Category,
			Title:    e.Title,
			Content:  e.Content,
		})
	}

	return input, nil
}

func fallbackReply(language string) string {
	if reply, ok := fallbackReplies[language]; ok {
		return reply
	}
	return fallbackReplies["es"]
}
