package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"lavanderia_backend/internal/conversations/agent"
	"lavanderia_backend/internal/conversations/domain"
	"lavanderia_backend/internal/conversations/repository"
	"lavanderia_backend/internal/events"
	"lavanderia_backend/platform/apperr"
	"lavanderia_backend/platform/logger"
)

// ---- fakes ----

type fakeConversations struct {
	mu    sync.Mutex
	items map[uuid.UUID]repository.Conversation
}

func newFakeConversations() *fakeConversations {
	return &fakeConversations{items: make(map[uuid.UUID]repository.Conversation)}
}

func (f *fakeConversations) GetByID(ctx context.Context, id uuid.UUID) (repository.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.items[id]
	if !ok {
		return repository.Conversation{}, apperr.NotFound("conversation not found")
	}
	return c, nil
}

func (f *fakeConversations) FindCurrentActive(ctx context.Context, customerID uuid.UUID, channel string) (repository.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var found *repository.Conversation
	for _, c := range f.items {
		if c.CustomerID == customerID && c.Channel == channel && c.Status == domain.ConversationActive {
			if found == nil || c.CreatedAt > found.CreatedAt {
				copy := c
				found = &copy
			}
		}
	}
	if found == nil {
		return repository.Conversation{}, apperr.NotFound("conversation not found")
	}
	return *found, nil
}

func (f *fakeConversations) Create(ctx context.Context, customerID uuid.UUID, channel string) (repository.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := repository.Conversation{
		ID:         uuid.New(),
		CustomerID: customerID,
		Channel:    channel,
		Status:     domain.ConversationActive,
		AIHandled:  true,
		CreatedAt:  time.Now().Format(time.RFC3339Nano),
		UpdatedAt:  time.Now().Format(time.RFC3339Nano),
	}
	f.items[c.ID] = c
	return c, nil
}

func (f *fakeConversations) List(ctx context.Context, params repository.ListConversationsParams) ([]repository.Conversation, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []repository.Conversation
	for _, c := range f.items {
		if params.Status == nil || c.Status == *params.Status {
			out = append(out, c)
		}
	}
	return out, len(out), nil
}

func (f *fakeConversations) UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.ConversationStatus, assignedAgent *uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.items[id]
	if !ok {
		return apperr.NotFound("conversation not found")
	}
	if !domain.CanTransitionConversation(from, to) {
		return apperr.Conflict(fmt.Sprintf("conversation cannot move from %s to %s", from, to))
	}
	if c.Status != from {
		return apperr.Conflict(fmt.Sprintf("conversation status is %s, expected %s", c.Status, from))
	}
	c.Status = to
	if assignedAgent != nil {
		c.AssignedAgent = assignedAgent
	}
	f.items[id] = c
	return nil
}

func (f *fakeConversations) Assign(ctx context.Context, id uuid.UUID, agentID *uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.items[id]
	if !ok {
		return apperr.NotFound("conversation not found")
	}
	c.AssignedAgent = agentID
	f.items[id] = c
	return nil
}

func (f *fakeConversations) TouchMessage(ctx context.Context, id uuid.UUID, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.items[id]
	if !ok {
		return apperr.NotFound("conversation not found")
	}
	c.MessageCount++
	c.LastMessageAt = &at
	f.items[id] = c
	return nil
}

type fakeMessages struct {
	mu    sync.Mutex
	items []repository.Message
}

func (f *fakeMessages) Append(ctx context.Context, params repository.AppendMessageParams) (repository.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := repository.Message{
		ID:                uuid.New(),
		ConversationID:    params.ConversationID,
		Direction:         params.Direction,
		Body:              params.Body,
		AIGenerated:       params.AIGenerated,
		ProviderMessageID: params.ProviderMessageID,
		CreatedAt:         time.Now().Format(time.RFC3339Nano),
	}
	f.items = append(f.items, m)
	return m, nil
}

func (f *fakeMessages) ListRecent(ctx context.Context, conversationID uuid.UUID, limit int) ([]repository.Message, error) {
	all, _ := f.ListByConversation(ctx, conversationID)
	if len(all) > limit {
		all = all[len(all)-limit:]
	}
	return all, nil
}

func (f *fakeMessages) ListByConversation(ctx context.Context, conversationID uuid.UUID) ([]repository.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []repository.Message
	for _, m := range f.items {
		if m.ConversationID == conversationID {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakeEscalations struct {
	mu    sync.Mutex
	items map[uuid.UUID]repository.Escalation
	order []uuid.UUID
}

func newFakeEscalations() *fakeEscalations {
	return &fakeEscalations{items: make(map[uuid.UUID]repository.Escalation)}
}

func (f *fakeEscalations) GetByID(ctx context.Context, id uuid.UUID) (repository.Escalation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.items[id]
	if !ok {
		return repository.Escalation{}, apperr.NotFound("escalation not found")
	}
	return e, nil
}

func (f *fakeEscalations) FindOpenByConversation(ctx context.Context, conversationID uuid.UUID) (repository.Escalation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.items {
		if e.ConversationID == conversationID && e.Status.IsOpen() {
			return e, nil
		}
	}
	return repository.Escalation{}, apperr.NotFound("escalation not found")
}

func (f *fakeEscalations) Create(ctx context.Context, params repository.CreateEscalationParams) (repository.Escalation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.items {
		if e.ConversationID == params.ConversationID && e.Status.IsOpen() {
			return repository.Escalation{}, apperr.Conflict("conversation already has an open escalation")
		}
	}
	e := repository.Escalation{
		ID:             uuid.New(),
		ConversationID: params.ConversationID,
		Reason:         params.Reason,
		Priority:       params.Priority,
		Status:         domain.EscalationPending,
		CreatedAt:      time.Now().Format(time.RFC3339Nano),
		UpdatedAt:      time.Now().Format(time.RFC3339Nano),
	}
	f.items[e.ID] = e
	f.order = append(f.order, e.ID)
	return e, nil
}

// ListQueue intentionally returns items in insertion order; triage ordering
// is the service's contract.
func (f *fakeEscalations) ListQueue(ctx context.Context, limit, offset int) ([]repository.Escalation, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []repository.Escalation
	for _, id := range f.order {
		if e := f.items[id]; e.Status.IsOpen() {
			out = append(out, e)
		}
	}
	total := len(out)
	if offset < len(out) {
		out = out[offset:]
	} else {
		out = nil
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, total, nil
}

func (f *fakeEscalations) Claim(ctx context.Context, id, agentID uuid.UUID, at time.Time) (repository.Escalation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.items[id]
	if !ok {
		return repository.Escalation{}, apperr.NotFound("escalation not found")
	}
	if e.Status != domain.EscalationPending {
		return repository.Escalation{}, apperr.Conflict(fmt.Sprintf("escalation status is %s, expected pending", e.Status))
	}
	e.Status = domain.EscalationClaimed
	e.ClaimedBy = &agentID
	e.ClaimedAt = &at
	f.items[id] = e
	return e, nil
}

func (f *fakeEscalations) Resolve(ctx context.Context, id uuid.UUID, notes *string, at time.Time) (repository.Escalation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.items[id]
	if !ok {
		return repository.Escalation{}, apperr.NotFound("escalation not found")
	}
	if !e.Status.IsOpen() {
		return repository.Escalation{}, apperr.Conflict(fmt.Sprintf("escalation status is %s, expected pending or claimed", e.Status))
	}
	e.Status = domain.EscalationResolved
	e.ResolvedAt = &at
	if notes != nil {
		e.ResolutionNotes = notes
	}
	f.items[id] = e
	return e, nil
}

func (f *fakeEscalations) Cancel(ctx context.Context, id uuid.UUID) (repository.Escalation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.items[id]
	if !ok {
		return repository.Escalation{}, apperr.NotFound("escalation not found")
	}
	if !e.Status.IsOpen() {
		return repository.Escalation{}, apperr.Conflict(fmt.Sprintf("escalation status is %s, expected pending or claimed", e.Status))
	}
	e.Status = domain.EscalationCancelled
	f.items[id] = e
	return e, nil
}

type fakeKnowledge struct {
	entries []repository.KnowledgeEntry
}

func (f *fakeKnowledge) ListRelevant(ctx context.Context, q repository.KnowledgeQuery) ([]repository.KnowledgeEntry, error) {
	return f.entries, nil
}
func (f *fakeKnowledge) List(ctx context.Context) ([]repository.KnowledgeEntry, error) {
	return f.entries, nil
}
func (f *fakeKnowledge) Create(ctx context.Context, e repository.KnowledgeEntry) (repository.KnowledgeEntry, error) {
	e.ID = uuid.New()
	f.entries = append(f.entries, e)
	return e, nil
}
func (f *fakeKnowledge) Update(ctx context.Context, e repository.KnowledgeEntry) (repository.KnowledgeEntry, error) {
	return e, nil
}
func (f *fakeKnowledge) Delete(ctx context.Context, id uuid.UUID) error { return nil }

type fakeDirectory struct {
	mu    sync.Mutex
	byID  map[uuid.UUID]CustomerRef
	phone map[string]CustomerRef
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{byID: make(map[uuid.UUID]CustomerRef), phone: make(map[string]CustomerRef)}
}

func (f *fakeDirectory) ResolveByPhone(ctx context.Context, phone string) (CustomerRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.phone[phone]; ok {
		return c, nil
	}
	c := CustomerRef{ID: uuid.New(), Phone: phone, Language: "es"}
	f.phone[phone] = c
	f.byID[c.ID] = c
	return c, nil
}

func (f *fakeDirectory) GetByID(ctx context.Context, id uuid.UUID) (CustomerRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.byID[id]; ok {
		return c, nil
	}
	return CustomerRef{}, apperr.NotFound("customer not found")
}

type fakeSender struct {
	mu   sync.Mutex
	sent []string
	fail bool
}

func (f *fakeSender) SendMessage(ctx context.Context, phone, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("gateway down")
	}
	f.sent = append(f.sent, message)
	return nil
}

type fakeEngine struct {
	reply agent.Reply
	err   error
}

func (f *fakeEngine) Generate(ctx context.Context, input agent.GenerateInput) (agent.Reply, error) {
	if f.err != nil {
		return agent.Reply{}, f.err
	}
	return f.reply, nil
}

type fakeBus struct {
	mu     sync.Mutex
	events []events.Event
}

func (f *fakeBus) Publish(ctx context.Context, event events.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

func (f *fakeBus) PublishSync(ctx context.Context, event events.Event) error {
	f.Publish(ctx, event)
	return nil
}

func (f *fakeBus) Subscribe(eventName string, handler events.Handler) {}

// ---- harness ----

type testEnv struct {
	svc           *Service
	conversations *fakeConversations
	messages      *fakeMessages
	escalations   *fakeEscalations
	directory     *fakeDirectory
	sender        *fakeSender
	engine        *fakeEngine
	bus           *fakeBus
}

func newTestEnv() *testEnv {
	env := &testEnv{
		conversations: newFakeConversations(),
		messages:      &fakeMessages{},
		escalations:   newFakeEscalations(),
		directory:     newFakeDirectory(),
		sender:        &fakeSender{},
		engine:        &fakeEngine{reply: agent.Reply{Response: "con gusto"}},
		bus:           &fakeBus{},
	}

	keywords := agent.NewKeywordDetector([]string{"hablar con un agente", "queja", "problema con el pago"})

	env.svc = New(
		env.conversations,
		env.messages,
		env.escalations,
		&fakeKnowledge{},
		env.directory,
		env.sender,
		env.engine,
		keywords,
		env.bus,
		Config{AITimeout: time.Second},
		logger.New("test"),
	)

	return env
}
