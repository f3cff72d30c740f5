// Package webhook receives provider callbacks for inbound WhatsApp messages
// and feeds them into the conversation workflow.
package webhook

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"lavanderia_backend/internal/conversations/transport"
	apphttp "lavanderia_backend/internal/http"
	"lavanderia_backend/platform/config"
	"lavanderia_backend/platform/httpkit"
	"lavanderia_backend/platform/logger"
	"lavanderia_backend/platform/validator"
)

// InboundProcessor is the conversation workflow entry point for new messages.
type InboundProcessor interface {
	HandleInbound(ctx context.Context, req transport.InboundMessageRequest) error
}

// Module is the webhook intake module implementing http.Module.
type Module struct {
	processor InboundProcessor
	cfg       config.WebhookConfig
	val       *validator.Validator
	log       *logger.Logger
}

// NewModule creates the webhook module.
func NewModule(processor InboundProcessor, cfg config.WebhookConfig, val *validator.Validator, log *logger.Logger) *Module {
	return &Module{processor: processor, cfg: cfg, val: val, log: log}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "webhook"
}

// RegisterRoutes mounts the provider callback endpoints.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Webhooks.Group("")
	group.Use(APIKeyRequired(m.cfg))
	group.POST("/whatsapp", m.handleWhatsApp)
}

// handleWhatsApp accepts an inbound message delivery. The provider gets a 2xx
// once the message is durably stored; AI and outbound failures never surface
// here.
// POST /webhooks/whatsapp
func (m *Module) handleWhatsApp(c *gin.Context) {
	var req transport.InboundMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid payload", nil)
		return
	}
	if err := m.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	if err := m.processor.HandleInbound(c.Request.Context(), req); err != nil {
		m.log.Error("inbound message storage failed", "from", req.From, "error", err)
		httpkit.Error(c, http.StatusInternalServerError, "failed to store message", nil)
		return
	}

	httpkit.OK(c, gin.H{"status": "received"})
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
