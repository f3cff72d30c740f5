package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"lavanderia_backend/internal/conversations/domain"
)

const messageColumns = `id, conversation_id, direction, body, ai_generated, provider_message_id, created_at`

// MessageRepo implements MessageRepository with PostgreSQL.
type MessageRepo struct {
	pool *pgxpool.Pool
}

// NewMessages creates a new message repository.
func NewMessages(pool *pgxpool.Pool) *MessageRepo {
	return &MessageRepo{pool: pool}
}

var _ MessageRepository = (*MessageRepo)(nil)

// Append writes a message to the conversation transcript. Messages are never
// updated or deleted after this point.
func (r *MessageRepo) Append(ctx context.Context, params AppendMessageParams) (Message, error) {
	query := `
		INSERT INTO messages (conversation_id, direction, body, ai_generated, provider_message_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + messageColumns

	m, err := scanMessage(r.pool.QueryRow(ctx, query,
		params.ConversationID, string(params.Direction), params.Body, params.AIGenerated, params.ProviderMessageID,
	))
	if err != nil {
		return Message{}, fmt.Errorf("append message: %w", err)
	}

	return m, nil
}

// ListRecent returns the most recent messages in chronological order, bounded
// by limit. This is the AI context window.
func (r *MessageRepo) ListRecent(ctx context.Context, conversationID uuid.UUID, limit int) ([]Message, error) {
	query := `
		SELECT ` + messageColumns + ` FROM (
			SELECT ` + messageColumns + `
			FROM messages
			WHERE conversation_id = $1
			ORDER BY created_at DESC
			LIMIT $2
		) recent
		ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, conversationID, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent messages: %w", err)
	}
	defer rows.Close()

	return scanMessages(rows)
}

// ListByConversation returns the full transcript in chronological order.
func (r *MessageRepo) ListByConversation(ctx context.Context, conversationID uuid.UUID) ([]Message, error) {
	query := `
		SELECT ` + messageColumns + `
		FROM messages
		WHERE conversation_id = $1
		ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, conversationID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	return scanMessages(rows)
}

func scanMessage(row pgx.Row) (Message, error) {
	var m Message
	var direction string
	var createdAt time.Time

	err := row.Scan(&m.ID, &m.ConversationID, &direction, &m.Body, &m.AIGenerated, &m.ProviderMessageID, &createdAt)
	if err != nil {
		return Message{}, err
	}

	m.Direction = domain.MessageDirection(direction)
	m.CreatedAt = createdAt.Format(time.RFC3339)

	return m, nil
}

func scanMessages(rows pgx.Rows) ([]Message, error) {
	var results []Message

	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		results = append(results, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}

	return results, nil
}
