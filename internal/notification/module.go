// Package notification turns domain events into outbound messages. Customer
// messages go over WhatsApp; urgent escalations additionally alert staff by
// email. Every attempt lands in the notifications audit table.
package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"lavanderia_backend/internal/email"
	"lavanderia_backend/internal/events"
	apphttp "lavanderia_backend/internal/http"
	"lavanderia_backend/internal/notification/repository"
	"lavanderia_backend/platform/logger"
)

const (
	kindOrderCreated       = "order_created"
	kindOrderStatus        = "order_status"
	kindEscalationCreated  = "escalation_created"
	kindEscalationResolved = "escalation_resolved"
	kindUrgentEscalation   = "urgent_escalation_alert"
	kindPickupReminder     = "pickup_reminder"
	kindFollowUp           = "follow_up"

	channelWhatsApp = "whatsapp"
	channelEmail    = "email"
	channelInternal = "internal"
)

// WhatsAppSender sends a WhatsApp message to a phone number.
type WhatsAppSender interface {
	SendMessage(ctx context.Context, phoneNumber string, message string) error
}

// ConversationLog mirrors delivered customer messages into a conversation
// transcript so agents see what the system sent.
type ConversationLog interface {
	RecordOutbound(ctx context.Context, conversationID uuid.UUID, body string) error
}

// Module dispatches notifications in response to domain events.
type Module struct {
	whatsapp      WhatsAppSender
	email         email.Sender
	audit         repository.AuditLog
	conversations ConversationLog
	log           *logger.Logger
}

// New creates the notification module.
func New(whatsapp WhatsAppSender, emailSender email.Sender, audit repository.AuditLog, log *logger.Logger) *Module {
	return &Module{
		whatsapp: whatsapp,
		email:    emailSender,
		audit:    audit,
		log:      log,
	}
}

// SetConversationLog wires the optional transcript mirror.
func (m *Module) SetConversationLog(log ConversationLog) {
	m.conversations = log
}

// Name returns the module identifier.
func (m *Module) Name() string { return "notification" }

// RegisterRoutes is a no-op; this module only reacts to events.
func (m *Module) RegisterRoutes(_ *apphttp.RouterContext) {}

// RegisterHandlers subscribes to the domain events that trigger messages.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.OrderCreated{}.EventName(), m)
	bus.Subscribe(events.OrderStatusChanged{}.EventName(), m)
	bus.Subscribe(events.ConversationEscalated{}.EventName(), m)
	bus.Subscribe(events.EscalationResolved{}.EventName(), m)

	m.log.Info("notification module registered event handlers")
}

// Handle routes events to the appropriate handler method.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.OrderCreated:
		return m.handleOrderCreated(ctx, e)
	case events.OrderStatusChanged:
		return m.handleOrderStatusChanged(ctx, e)
	case events.ConversationEscalated:
		return m.handleConversationEscalated(ctx, e)
	case events.EscalationResolved:
		return m.handleEscalationResolved(ctx, e)
	default:
		m.log.Warn("unhandled event type", "event", event.EventName())
		return nil
	}
}

func (m *Module) handleOrderCreated(ctx context.Context, e events.OrderCreated) error {
	if e.Phone == "" {
		return nil
	}
	orderID := e.OrderID
	message := orderCreatedMessage(e.Language, e.Total)
	if err := m.sendWhatsApp(ctx, kindOrderCreated, e.Phone, &orderID, message); err != nil {
		return err
	}
	if e.ConversationID != nil {
		m.mirror(ctx, *e.ConversationID, message)
	}
	return nil
}

func (m *Module) handleOrderStatusChanged(ctx context.Context, e events.OrderStatusChanged) error {
	message, notify := orderStatusMessage(e.Language, e.NewStatus)
	if !notify || e.Phone == "" {
		return nil
	}
	orderID := e.OrderID
	if err := m.sendWhatsApp(ctx, kindOrderStatus, e.Phone, &orderID, message); err != nil {
		return err
	}
	if e.ConversationID != nil {
		m.mirror(ctx, *e.ConversationID, message)
	}
	return nil
}

func (m *Module) handleConversationEscalated(ctx context.Context, e events.ConversationEscalated) error {
	// Every new escalation leaves a trace in the audit table, whatever its
	// priority. Only urgent ones page the ops inbox on top of that.
	m.record(ctx, repository.InsertParams{
		Kind:      kindEscalationCreated,
		Channel:   channelInternal,
		Recipient: e.Phone,
		RefID:     &e.EscalationID,
		Body:      e.Reason,
		Success:   true,
	})

	if e.Priority != "urgent" {
		return nil
	}

	alert := email.UrgentEscalationAlert{
		EscalationID:   e.EscalationID.String(),
		ConversationID: e.ConversationID.String(),
		CustomerPhone:  e.Phone,
		Reason:         e.Reason,
		Priority:       e.Priority,
	}

	err := m.email.SendUrgentEscalationAlert(ctx, alert)
	m.record(ctx, repository.InsertParams{
		Kind:      kindUrgentEscalation,
		Channel:   channelEmail,
		Recipient: "ops",
		RefID:     &e.EscalationID,
		Body:      e.Reason,
		Success:   err == nil,
	})
	m.log.NotificationEvent(kindUrgentEscalation, "ops", err == nil, errReason(err))

	return err
}

func (m *Module) handleEscalationResolved(ctx context.Context, e events.EscalationResolved) error {
	if e.Phone == "" {
		return nil
	}
	escalationID := e.EscalationID
	// Resolution notes are internal; the customer only gets a closing line.
	message := escalationResolvedMessage("")
	if err := m.sendWhatsApp(ctx, kindEscalationResolved, e.Phone, &escalationID, message); err != nil {
		return err
	}
	m.mirror(ctx, e.ConversationID, message)
	return nil
}

// mirror copies a delivered message into the conversation transcript.
func (m *Module) mirror(ctx context.Context, conversationID uuid.UUID, body string) {
	if m.conversations == nil {
		return
	}
	if err := m.conversations.RecordOutbound(ctx, conversationID, body); err != nil {
		m.log.Warn("failed to mirror notification into conversation", "conversation", conversationID, "error", err)
	}
}

// PickupReminder is one reminder the scheduler wants delivered.
type PickupReminder struct {
	OrderID     uuid.UUID
	Phone       string
	Language    string
	DaysWaiting int
}

// SendPickupReminder messages a customer whose order has been waiting in
// ready. At most one reminder per order per day; returns false when the
// reminder was suppressed by dedup.
func (m *Module) SendPickupReminder(ctx context.Context, reminder PickupReminder) (bool, error) {
	startOfDay := time.Now().UTC().Truncate(24 * time.Hour)
	sent, err := m.audit.SentSince(ctx, kindPickupReminder, reminder.OrderID, startOfDay)
	if err != nil {
		return false, err
	}
	if sent {
		return false, nil
	}

	orderID := reminder.OrderID
	message := pickupReminderMessage(reminder.Language, reminder.DaysWaiting)
	if err := m.sendWhatsApp(ctx, kindPickupReminder, reminder.Phone, &orderID, message); err != nil {
		return false, err
	}
	return true, nil
}

// FollowUp is one win-back message the scheduler wants delivered.
type FollowUp struct {
	CustomerID uuid.UUID
	Phone      string
	Language   string
}

// SendFollowUp messages an inactive customer. At most one follow-up per
// customer per window; returns false when suppressed by dedup.
func (m *Module) SendFollowUp(ctx context.Context, followUp FollowUp, window time.Duration) (bool, error) {
	sent, err := m.audit.SentSince(ctx, kindFollowUp, followUp.CustomerID, time.Now().Add(-window))
	if err != nil {
		return false, err
	}
	if sent {
		return false, nil
	}

	customerID := followUp.CustomerID
	if err := m.sendWhatsApp(ctx, kindFollowUp, followUp.Phone, &customerID, followUpMessage(followUp.Language)); err != nil {
		return false, err
	}
	return true, nil
}

// sendWhatsApp delivers one message and records the attempt.
func (m *Module) sendWhatsApp(ctx context.Context, kind, phone string, refID *uuid.UUID, message string) error {
	err := m.whatsapp.SendMessage(ctx, phone, message)

	m.record(ctx, repository.InsertParams{
		Kind:      kind,
		Channel:   channelWhatsApp,
		Recipient: phone,
		RefID:     refID,
		Body:      message,
		Success:   err == nil,
	})
	m.log.NotificationEvent(kind, phone, err == nil, errReason(err))

	if err != nil {
		return fmt.Errorf("send %s notification: %w", kind, err)
	}
	return nil
}

// record writes the audit row. Audit failures are logged, never propagated;
// the message already went out (or failed) on its own merits.
func (m *Module) record(ctx context.Context, params repository.InsertParams) {
	if err := m.audit.Insert(ctx, params); err != nil {
		m.log.Error("failed to record notification", "kind", params.Kind, "error", err)
	}
}

func errReason(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
