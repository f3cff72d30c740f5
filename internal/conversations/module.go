// Package conversations provides the conversation/escalation workflow bounded
// context: inbound message handling, AI responses, and the escalation queue.
package conversations

import (
	"context"
	"errors"

	"lavanderia_backend/internal/conversations/agent"
	"lavanderia_backend/internal/conversations/handler"
	"lavanderia_backend/internal/conversations/repository"
	"lavanderia_backend/internal/conversations/service"
	"lavanderia_backend/internal/events"
	apphttp "lavanderia_backend/internal/http"
	"lavanderia_backend/platform/config"
	"lavanderia_backend/platform/logger"
	"lavanderia_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the conversations bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// ModuleConfig combines the config interfaces this module needs.
type ModuleConfig interface {
	config.AIConfig
	config.WorkflowConfig
}

// NewModule creates and initializes the conversations module. The AI engine
// is optional: when disabled, every inbound message takes the fallback path
// and escalates, which keeps the business reachable without a model key.
func NewModule(
	pool *pgxpool.Pool,
	customers service.CustomerDirectory,
	sender service.MessageSender,
	bus events.Bus,
	cfg ModuleConfig,
	val *validator.Validator,
	log *logger.Logger,
) (*Module, error) {
	conversationRepo := repository.NewConversations(pool)
	messageRepo := repository.NewMessages(pool)
	escalationRepo := repository.NewEscalations(pool)
	knowledgeRepo := repository.NewKnowledge(pool)

	var engine service.ResponseEngine
	if cfg.IsAIEnabled() {
		responder, err := agent.NewResponder(cfg.GetMoonshotAPIKey(), log)
		if err != nil {
			return nil, err
		}
		engine = responder
	} else {
		engine = disabledEngine{}
		log.Warn("ai responder disabled; all inbound messages will escalate")
	}

	keywords := agent.NewKeywordDetector(cfg.GetEscalationKeywords())

	svc := service.New(
		conversationRepo,
		messageRepo,
		escalationRepo,
		knowledgeRepo,
		customers,
		sender,
		engine,
		keywords,
		bus,
		service.Config{
			AITimeout:       cfg.GetAIResponseTimeout(),
			DefaultLanguage: cfg.GetDefaultLanguage(),
		},
		log,
	)
	h := handler.New(svc, val)

	return &Module{handler: h, service: svc}, nil
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "conversations"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts conversation, escalation, and knowledge routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	conversations := ctx.Protected.Group("/conversations")
	conversations.GET("", m.handler.ListConversations)
	conversations.GET("/:id", m.handler.GetConversation)
	conversations.PATCH("/:id", m.handler.UpdateConversation)
	conversations.POST("/:id/messages", m.handler.PostMessage)
	conversations.POST("/:id/escalate", m.handler.Escalate)

	escalations := ctx.Protected.Group("/escalations")
	escalations.GET("", m.handler.ListQueue)
	escalations.GET("/:id", m.handler.GetEscalation)
	escalations.PATCH("/:id", m.handler.ActOnEscalation)

	knowledge := ctx.Protected.Group("/knowledge")
	knowledge.GET("", m.handler.ListKnowledge)
	knowledge.POST("", m.handler.CreateKnowledge)
	knowledge.PUT("/:id", m.handler.UpdateKnowledge)
	knowledge.DELETE("/:id", m.handler.DeleteKnowledge)
}

// disabledEngine always fails, which routes every inbound message through the
// fallback-reply-and-escalate path.
type disabledEngine struct{}

func (disabledEngine) Generate(ctx context.Context, input agent.GenerateInput) (agent.Reply, error) {
	return agent.Reply{}, errors.New("ai responder is disabled")
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
