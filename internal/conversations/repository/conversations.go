package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"lavanderia_backend/internal/conversations/domain"
	"lavanderia_backend/platform/apperr"
)

const conversationNotFoundMessage = "conversation not found"

const conversationColumns = `id, customer_id, channel, status, message_count, assigned_agent, ai_handled, last_message_at, created_at, updated_at`

// ConversationRepo implements ConversationRepository with PostgreSQL.
type ConversationRepo struct {
	pool *pgxpool.Pool
}

// NewConversations creates a new conversation repository.
func NewConversations(pool *pgxpool.Pool) *ConversationRepo {
	return &ConversationRepo{pool: pool}
}

var _ ConversationRepository = (*ConversationRepo)(nil)

// GetByID retrieves a conversation by its ID.
func (r *ConversationRepo) GetByID(ctx context.Context, id uuid.UUID) (Conversation, error) {
	query := `SELECT ` + conversationColumns + ` FROM conversations WHERE id = $1`

	c, err := scanConversation(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Conversation{}, apperr.NotFound(conversationNotFoundMessage)
		}
		return Conversation{}, fmt.Errorf("get conversation by id: %w", err)
	}

	return c, nil
}

// FindCurrentActive resolves the customer's current conversation: the most
// recently created active one on the given channel.
func (r *ConversationRepo) FindCurrentActive(ctx context.Context, customerID uuid.UUID, channel string) (Conversation, error) {
	query := `
		SELECT ` + conversationColumns + `
		FROM conversations
		WHERE customer_id = $1 AND channel = $2 AND status = 'active'
		ORDER BY created_at DESC
		LIMIT 1`

	c, err := scanConversation(r.pool.QueryRow(ctx, query, customerID, channel))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Conversation{}, apperr.NotFound(conversationNotFoundMessage)
		}
		return Conversation{}, fmt.Errorf("find active conversation: %w", err)
	}

	return c, nil
}

// Create opens a new active, AI-handled conversation for the customer.
func (r *ConversationRepo) Create(ctx context.Context, customerID uuid.UUID, channel string) (Conversation, error) {
	query := `
		INSERT INTO conversations (customer_id, channel, status, ai_handled)
		VALUES ($1, $2, 'active', true)
		RETURNING ` + conversationColumns

	c, err := scanConversation(r.pool.QueryRow(ctx, query, customerID, channel))
	if err != nil {
		return Conversation{}, fmt.Errorf("create conversation: %w", err)
	}

	return c, nil
}

// List retrieves conversations, newest activity first.
func (r *ConversationRepo) List(ctx context.Context, params ListConversationsParams) ([]Conversation, int, error) {
	var statusParam interface{}
	if params.Status != nil {
		statusParam = string(*params.Status)
	}

	countQuery := `
		SELECT COUNT(*)
		FROM conversations
		WHERE ($1::text IS NULL OR status = $1)`

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, statusParam).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count conversations: %w", err)
	}

	query := `
		SELECT ` + conversationColumns + `
		FROM conversations
		WHERE ($1::text IS NULL OR status = $1)
		ORDER BY COALESCE(last_message_at, created_at) DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, statusParam, params.Limit, params.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	var results []Conversation
	for rows.Next() {
		c, err := scanConversationRow(rows)
		if err != nil {
			return nil, 0, err
		}
		results = append(results, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate conversations: %w", err)
	}

	return results, total, nil
}

// UpdateStatus applies a conditional status transition. The WHERE clause
// re-checks the prior status at write time, so two concurrent transitions
// cannot both succeed from the same assumption.
func (r *ConversationRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.ConversationStatus, assignedAgent *uuid.UUID) error {
	if !domain.CanTransitionConversation(from, to) {
		return apperr.Conflict(fmt.Sprintf("conversation cannot move from %s to %s", from, to))
	}

	query := `
		UPDATE conversations SET
			status = $3,
			assigned_agent = COALESCE($4, assigned_agent),
			updated_at = now()
		WHERE id = $1 AND status = $2`

	result, err := r.pool.Exec(ctx, query, id, string(from), string(to), assignedAgent)
	if err != nil {
		return fmt.Errorf("update conversation status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return r.classifyMissedWrite(ctx, id, from)
	}

	return nil
}

// Assign sets or clears the conversation's assigned agent without touching
// its status.
func (r *ConversationRepo) Assign(ctx context.Context, id uuid.UUID, agentID *uuid.UUID) error {
	query := `UPDATE conversations SET assigned_agent = $2, updated_at = now() WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id, agentID)
	if err != nil {
		return fmt.Errorf("assign conversation: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(conversationNotFoundMessage)
	}

	return nil
}

// TouchMessage bumps the derived message counters. Drift under failure is
// tolerated; the message log is the source of truth.
func (r *ConversationRepo) TouchMessage(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `
		UPDATE conversations SET
			message_count = message_count + 1,
			last_message_at = $2,
			updated_at = now()
		WHERE id = $1`

	if _, err := r.pool.Exec(ctx, query, id, at); err != nil {
		return fmt.Errorf("touch conversation: %w", err)
	}

	return nil
}

// classifyMissedWrite distinguishes a vanished row from a lost transition race.
func (r *ConversationRepo) classifyMissedWrite(ctx context.Context, id uuid.UUID, expected domain.ConversationStatus) error {
	var current string
	err := r.pool.QueryRow(ctx, `SELECT status FROM conversations WHERE id = $1`, id).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFound(conversationNotFoundMessage)
		}
		return fmt.Errorf("check conversation status: %w", err)
	}

	return apperr.Conflict(fmt.Sprintf("conversation status is %s, expected %s", current, expected))
}

func scanConversation(row pgx.Row) (Conversation, error) {
	var c Conversation
	var status string
	var createdAt, updatedAt time.Time

	err := row.Scan(
		&c.ID, &c.CustomerID, &c.Channel, &status, &c.MessageCount,
		&c.AssignedAgent, &c.AIHandled, &c.LastMessageAt, &createdAt, &updatedAt,
	)
	if err != nil {
		return Conversation{}, err
	}

	c.Status = domain.ConversationStatus(status)
	c.CreatedAt = createdAt.Format(time.RFC3339)
	c.UpdatedAt = updatedAt.Format(time.RFC3339)

	return c, nil
}

func scanConversationRow(rows pgx.Rows) (Conversation, error) {
	c, err := scanConversation(rows)
	if err != nil {
		return Conversation{}, fmt.Errorf("scan conversation: %w", err)
	}
	return c, nil
}
