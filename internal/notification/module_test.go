package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"lavanderia_backend/internal/email"
	"lavanderia_backend/internal/events"
	"lavanderia_backend/internal/notification/repository"
	"lavanderia_backend/platform/logger"
)

type sentMessage struct {
	phone   string
	message string
}

type fakeWhatsApp struct {
	sent []sentMessage
	fail bool
}

func (f *fakeWhatsApp) SendMessage(_ context.Context, phone, message string) error {
	if f.fail {
		return errors.New("gateway down")
	}
	f.sent = append(f.sent, sentMessage{phone: phone, message: message})
	return nil
}

type fakeEmail struct {
	alerts []email.UrgentEscalationAlert
}

func (f *fakeEmail) SendUrgentEscalationAlert(_ context.Context, a email.UrgentEscalationAlert) error {
	f.alerts = append(f.alerts, a)
	return nil
}

type auditRow struct {
	repository.InsertParams
	at time.Time
}

type fakeAudit struct {
	rows []auditRow
}

func (f *fakeAudit) Insert(_ context.Context, params repository.InsertParams) error {
	f.rows = append(f.rows, auditRow{InsertParams: params, at: time.Now()})
	return nil
}

func (f *fakeAudit) SentSince(_ context.Context, kind string, refID uuid.UUID, since time.Time) (bool, error) {
	for _, row := range f.rows {
		if row.Kind == kind && row.RefID != nil && *row.RefID == refID && row.Success && !row.at.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

type fakeConversationLog struct {
	mirrored map[uuid.UUID][]string
}

func (f *fakeConversationLog) RecordOutbound(_ context.Context, conversationID uuid.UUID, body string) error {
	f.mirrored[conversationID] = append(f.mirrored[conversationID], body)
	return nil
}

type moduleEnv struct {
	module     *Module
	whatsapp   *fakeWhatsApp
	email      *fakeEmail
	audit      *fakeAudit
	transcript *fakeConversationLog
}

func newModuleEnv() *moduleEnv {
	env := &moduleEnv{
		whatsapp:   &fakeWhatsApp{},
		email:      &fakeEmail{},
		audit:      &fakeAudit{},
		transcript: &fakeConversationLog{mirrored: make(map[uuid.UUID][]string)},
	}
	env.module = New(env.whatsapp, env.email, env.audit, logger.New("test"))
	env.module.SetConversationLog(env.transcript)
	return env
}

func TestOrderReadyNotifiesCustomer(t *testing.T) {
	env := newModuleEnv()

	err := env.module.Handle(context.Background(), events.OrderStatusChanged{
		BaseEvent: events.NewBaseEvent(),
		OrderID:   uuid.New(),
		Phone:     "+50688887777",
		Language:  "es",
		OldStatus: "in_progress",
		NewStatus: "ready",
	})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}

	if len(env.whatsapp.sent) != 1 {
		t.Fatalf("expected one message, got %d", len(env.whatsapp.sent))
	}
	if env.whatsapp.sent[0].phone != "+50688887777" {
		t.Errorf("message went to %s", env.whatsapp.sent[0].phone)
	}
	if len(env.audit.rows) != 1 || !env.audit.rows[0].Success {
		t.Errorf("audit row must record the successful send")
	}
}

func TestOrderNotificationMirroredIntoConversation(t *testing.T) {
	env := newModuleEnv()
	conversationID := uuid.New()

	err := env.module.Handle(context.Background(), events.OrderStatusChanged{
		BaseEvent:      events.NewBaseEvent(),
		OrderID:        uuid.New(),
		ConversationID: &conversationID,
		Phone:          "+50688887777",
		Language:       "es",
		OldStatus:      "in_progress",
		NewStatus:      "ready",
	})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}

	bodies := env.transcript.mirrored[conversationID]
	if len(bodies) != 1 {
		t.Fatalf("expected one mirrored transcript entry, got %d", len(bodies))
	}
	if bodies[0] != env.whatsapp.sent[0].message {
		t.Errorf("transcript entry must match the delivered message")
	}
}

func TestOrderNotificationWithoutConversationSkipsMirror(t *testing.T) {
	env := newModuleEnv()

	err := env.module.Handle(context.Background(), events.OrderCreated{
		BaseEvent: events.NewBaseEvent(),
		OrderID:   uuid.New(),
		Phone:     "+50688887777",
		Language:  "es",
		Total:     8.475,
	})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}

	if len(env.whatsapp.sent) != 1 {
		t.Fatalf("expected one delivered message, got %d", len(env.whatsapp.sent))
	}
	if len(env.transcript.mirrored) != 0 {
		t.Errorf("orders without a conversation must not touch any transcript")
	}
}

func TestFailedOrderNotificationNotMirrored(t *testing.T) {
	env := newModuleEnv()
	env.whatsapp.fail = true
	conversationID := uuid.New()

	err := env.module.Handle(context.Background(), events.OrderStatusChanged{
		BaseEvent:      events.NewBaseEvent(),
		OrderID:        uuid.New(),
		ConversationID: &conversationID,
		Phone:          "+50688887777",
		NewStatus:      "ready",
	})
	if err == nil {
		t.Fatal("expected a send failure")
	}

	if len(env.transcript.mirrored) != 0 {
		t.Errorf("undelivered messages must not land in the transcript")
	}
}

func TestInternalStagesAreSilent(t *testing.T) {
	env := newModuleEnv()

	err := env.module.Handle(context.Background(), events.OrderStatusChanged{
		BaseEvent: events.NewBaseEvent(),
		OrderID:   uuid.New(),
		Phone:     "+50688887777",
		OldStatus: "pending",
		NewStatus: "confirmed",
	})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}

	if len(env.whatsapp.sent) != 0 {
		t.Errorf("confirmed must not message the customer")
	}
}

func TestUrgentEscalationAlertsStaffByEmail(t *testing.T) {
	env := newModuleEnv()

	escalated := events.ConversationEscalated{
		BaseEvent:      events.NewBaseEvent(),
		ConversationID: uuid.New(),
		EscalationID:   uuid.New(),
		Phone:          "+50688887777",
		Reason:         "payment dispute",
		Priority:       "urgent",
	}
	if err := env.module.Handle(context.Background(), escalated); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if len(env.email.alerts) != 1 {
		t.Fatalf("urgent escalation must email staff, got %d alerts", len(env.email.alerts))
	}
	if env.email.alerts[0].Reason != "payment dispute" {
		t.Errorf("alert must carry the reason")
	}

	escalated.Priority = "high"
	escalated.EscalationID = uuid.New()
	if err := env.module.Handle(context.Background(), escalated); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if len(env.email.alerts) != 1 {
		t.Errorf("non-urgent escalations must not email staff")
	}
}

func TestEveryEscalationLeavesAnAuditRecord(t *testing.T) {
	env := newModuleEnv()
	escalationID := uuid.New()

	err := env.module.Handle(context.Background(), events.ConversationEscalated{
		BaseEvent:      events.NewBaseEvent(),
		ConversationID: uuid.New(),
		EscalationID:   escalationID,
		Phone:          "+50688887777",
		Reason:         "asked for a human",
		Priority:       "medium",
	})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}

	if len(env.audit.rows) != 1 {
		t.Fatalf("a non-urgent escalation must still be audited, got %d rows", len(env.audit.rows))
	}
	row := env.audit.rows[0]
	if row.Kind != "escalation_created" || row.RefID == nil || *row.RefID != escalationID {
		t.Errorf("unexpected audit row: %+v", row.InsertParams)
	}
	if len(env.email.alerts) != 0 {
		t.Errorf("non-urgent escalations must not email staff")
	}

	err = env.module.Handle(context.Background(), events.ConversationEscalated{
		BaseEvent:      events.NewBaseEvent(),
		ConversationID: uuid.New(),
		EscalationID:   uuid.New(),
		Phone:          "+50688887777",
		Reason:         "payment dispute",
		Priority:       "urgent",
	})
	if err != nil {
		t.Fatalf("Handle urgent: %v", err)
	}

	// Urgent adds the staff alert on top of the creation record.
	if len(env.audit.rows) != 3 {
		t.Fatalf("urgent escalations must audit both records, got %d rows", len(env.audit.rows))
	}
	if len(env.email.alerts) != 1 {
		t.Errorf("urgent escalations must email staff")
	}
}

func TestSendFailureIsAudited(t *testing.T) {
	env := newModuleEnv()
	env.whatsapp.fail = true

	err := env.module.Handle(context.Background(), events.OrderStatusChanged{
		BaseEvent: events.NewBaseEvent(),
		OrderID:   uuid.New(),
		Phone:     "+50688887777",
		NewStatus: "ready",
	})
	if err == nil {
		t.Fatal("expected a send failure")
	}

	if len(env.audit.rows) != 1 || env.audit.rows[0].Success {
		t.Errorf("failed sends must be audited with success=false")
	}
}

func TestPickupReminderDedupsPerDay(t *testing.T) {
	env := newModuleEnv()
	reminder := PickupReminder{
		OrderID:     uuid.New(),
		Phone:       "+50688887777",
		Language:    "es",
		DaysWaiting: 2,
	}

	sent, err := env.module.SendPickupReminder(context.Background(), reminder)
	if err != nil || !sent {
		t.Fatalf("first reminder should send, got sent=%v err=%v", sent, err)
	}

	sent, err = env.module.SendPickupReminder(context.Background(), reminder)
	if err != nil {
		t.Fatalf("second reminder: %v", err)
	}
	if sent {
		t.Error("a second reminder on the same day must be suppressed")
	}
	if len(env.whatsapp.sent) != 1 {
		t.Errorf("expected one delivered message, got %d", len(env.whatsapp.sent))
	}
}

func TestFollowUpDedupsPerWindow(t *testing.T) {
	env := newModuleEnv()
	followUp := FollowUp{
		CustomerID: uuid.New(),
		Phone:      "+50688887777",
		Language:   "en",
	}
	window := 7 * 24 * time.Hour

	sent, err := env.module.SendFollowUp(context.Background(), followUp, window)
	if err != nil || !sent {
		t.Fatalf("first follow-up should send, got sent=%v err=%v", sent, err)
	}

	sent, err = env.module.SendFollowUp(context.Background(), followUp, window)
	if err != nil {
		t.Fatalf("second follow-up: %v", err)
	}
	if sent {
		t.Error("a repeat follow-up inside the window must be suppressed")
	}
}
