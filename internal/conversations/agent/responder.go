// Package agent hosts the AI responder that answers customer messages and
// signals when a conversation needs a human.
package agent

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/adk/agent"
	"google.golang.org/adk/agent/llmagent"
	"google.golang.org/adk/runner"
	"google.golang.org/adk/session"
	"google.golang.org/adk/tool"
	"google.golang.org/adk/tool/functiontool"
	"google.golang.org/genai"

	"github.com/google/uuid"

	"lavanderia_backend/platform/ai/moonshot"
	"lavanderia_backend/platform/logger"
)

const escalateToolName = "EscalateToHuman"

// HistoryEntry is one prior message in the conversation, role-tagged for the
// model ("customer" or "assistant").
type HistoryEntry struct {
	Role string
	Body string
}

// Snippet is a knowledge base excerpt supplied as grounding context.
type Snippet struct {
	Category string
	Title    string
	Content  string
}

// GenerateInput is everything the responder needs to produce a reply.
type GenerateInput struct {
	Message  string
	History  []HistoryEntry
	Language string
	Snippets []Snippet
}

// Reply is the responder's output. ShouldEscalate reflects only the model's
// own signal; the keyword check is applied separately by the caller.
type Reply struct {
	Response       string
	ShouldEscalate bool
	Intent         string
}

// Responder runs an ADK agent backed by the Kimi model. The model can raise
// the EscalateToHuman tool to flag conversations it cannot handle.
type Responder struct {
	runner         *runner.Runner
	sessionService session.Service
	appName        string
	log            *logger.Logger
}

// NewResponder builds the ADK agent with the Kimi model and the escalation tool.
func NewResponder(apiKey string, log *logger.Logger) (*Responder, error) {
	kimi := moonshot.NewModel(moonshot.Config{APIKey: apiKey})

	type escalateInput struct {
		Reason string `json:"reason"`
		Intent string `json:"intent"`
	}
	type escalateOutput struct {
		Message string `json:"message"`
	}
	escalateTool, err := functiontool.New(functiontool.Config{
		Name:        escalateToolName,
		Description: "Escalates the conversation to a human agent when the customer is upset, asks for a person, reports a payment problem, or the request cannot be resolved automatically.",
	}, func(ctx tool.Context, input escalateInput) (escalateOutput, error) {
		return escalateOutput{Message: "escalation noted"}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("create escalate tool: %w", err)
	}

	adkAgent, err := llmagent.New(llmagent.Config{
		Name:        "LaundryAssistant",
		Model:       kimi,
		Description: "Customer service assistant for a laundry business on WhatsApp.",
		Instruction: `You are the WhatsApp customer service assistant of a laundry business.
Answer in the customer's language, briefly and warmly, using only the knowledge
snippets provided for prices and policies.

PROTOCOL:
1. If the customer asks for a human, complains, or reports a payment problem,
   call the 'EscalateToHuman' tool with a short reason, then tell the customer
   an agent will contact them shortly.
2. If you cannot answer from the provided knowledge, call 'EscalateToHuman'
   rather than inventing an answer.
3. Otherwise answer the question directly.`,
		Tools: []tool.Tool{escalateTool},
	})
	if err != nil {
		return nil, fmt.Errorf("create llm agent: %w", err)
	}

	appName := "laundry_assistant"
	sessionService := session.InMemoryService()
	r, err := runner.New(runner.Config{
		AppName:        appName,
		Agent:          adkAgent,
		SessionService: sessionService,
	})
	if err != nil {
		return nil, fmt.Errorf("create agent runner: %w", err)
	}

	return &Responder{
		runner:         r,
		sessionService: sessionService,
		appName:        appName,
		log:            log,
	}, nil
}

// Generate produces a reply for the latest customer message. An EscalateToHuman
// tool call anywhere in the run marks the reply as an escalation.
func (r *Responder) Generate(ctx context.Context, input GenerateInput) (Reply, error) {
	userMessage := &genai.Content{
		Role: "user",
		Parts: []*genai.Part{
			{Text: buildPrompt(input)},
		},
	}

	userID := "customer"
	sessionID := uuid.New().String()

	if _, err := r.sessionService.Create(ctx, &session.CreateRequest{
		AppName:   r.appName,
		UserID:    userID,
		SessionID: sessionID,
	}); err != nil {
		return Reply{}, fmt.Errorf("create agent session: %w", err)
	}

	var reply Reply
	for event, err := range r.runner.Run(ctx, userID, sessionID, userMessage, agent.RunConfig{StreamingMode: agent.StreamingModeNone}) {
		if err != nil {
			return Reply{}, fmt.Errorf("agent run: %w", err)
		}
		if event.Content == nil {
			continue
		}
		for _, part := range event.Content.Parts {
			if part == nil {
				continue
			}
			if part.FunctionCall != nil && part.FunctionCall.Name == escalateToolName {
				reply.ShouldEscalate = true
				if reason, ok := part.FunctionCall.Args["reason"].(string); ok && reply.Intent == "" {
					reply.Intent = reason
				}
				if intent, ok := part.FunctionCall.Args["intent"].(string); ok && intent != "" {
					reply.Intent = intent
				}
				continue
			}
			reply.Response += part.Text
		}
	}

	final, err := finalizeReply(reply, input.Language)
	if err != nil {
		return Reply{}, err
	}

	r.log.Info("ai reply generated", "escalate", final.ShouldEscalate, "chars", len(final.Response))
	return final, nil
}

// finalizeReply trims the model output. The model may raise the escalation
// tool without writing any text; the customer still gets told a human is
// taking over.
func finalizeReply(reply Reply, language string) (Reply, error) {
	reply.Response = strings.TrimSpace(reply.Response)
	if reply.Response == "" {
		if !reply.ShouldEscalate {
			return Reply{}, fmt.Errorf("agent returned empty response")
		}
		reply.Response = handoffMessage(language)
	}
	return reply, nil
}

var handoffMessages = map[string]string{
	"es": "Un agente te atenderá en breve. Gracias por tu paciencia.",
	"en": "An agent will be with you shortly. Thank you for your patience.",
}

func handoffMessage(language string) string {
	if msg, ok := handoffMessages[language]; ok {
		return msg
	}
	return handoffMessages["es"]
}

func buildPrompt(input GenerateInput) string {
	var b strings.Builder

	b.WriteString("Customer language: " + input.Language + "\n\n")

	if len(input.Snippets) > 0 {
		b.WriteString("Knowledge base:\n")
		for _, s := range input.Snippets {
			fmt.Fprintf(&b, "- [%s] %s: %s\n", s.Category, s.Title, s.Content)
		}
		b.WriteString("\n")
	}

	if len(input.History) > 0 {
		b.WriteString("Conversation so far:\n")
		for _, h := range input.History {
			fmt.Fprintf(&b, "%s: %s\n", h.Role, h.Body)
		}
		b.WriteString("\n")
	}

	b.WriteString("Customer message: " + input.Message)
	return b.String()
}
