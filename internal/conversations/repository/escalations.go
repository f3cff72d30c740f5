package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"lavanderia_backend/internal/conversations/domain"
	"lavanderia_backend/platform/apperr"
)

const (
	escalationNotFoundMessage = "escalation not found"
	uniqueViolationCode       = "23505"
)

const escalationColumns = `id, conversation_id, reason, priority, status, claimed_by, claimed_at, resolved_at, resolution_notes, created_at, updated_at`

// EscalationRepo implements EscalationRepository with PostgreSQL.
type EscalationRepo struct {
	pool *pgxpool.Pool
}

// NewEscalations creates a new escalation repository.
func NewEscalations(pool *pgxpool.Pool) *EscalationRepo {
	return &EscalationRepo{pool: pool}
}

var _ EscalationRepository = (*EscalationRepo)(nil)

// GetByID retrieves an escalation by its ID.
func (r *EscalationRepo) GetByID(ctx context.Context, id uuid.UUID) (Escalation, error) {
	query := `SELECT ` + escalationColumns + ` FROM escalations WHERE id = $1`

	e, err := scanEscalation(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Escalation{}, apperr.NotFound(escalationNotFoundMessage)
		}
		return Escalation{}, fmt.Errorf("get escalation by id: %w", err)
	}

	return e, nil
}

// FindOpenByConversation returns the conversation's open (pending or claimed)
// escalation, if any.
func (r *EscalationRepo) FindOpenByConversation(ctx context.Context, conversationID uuid.UUID) (Escalation, error) {
	query := `
		SELECT ` + escalationColumns + `
		FROM escalations
		WHERE conversation_id = $1 AND status IN ('pending', 'claimed')
		LIMIT 1`

	e, err := scanEscalation(r.pool.QueryRow(ctx, query, conversationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Escalation{}, apperr.NotFound(escalationNotFoundMessage)
		}
		return Escalation{}, fmt.Errorf("find open escalation: %w", err)
	}

	return e, nil
}

// Create opens a pending escalation. A partial unique index on open
// escalations per conversation turns concurrent double-creates into a
// Conflict instead of two open tickets.
func (r *EscalationRepo) Create(ctx context.Context, params CreateEscalationParams) (Escalation, error) {
	query := `
		INSERT INTO escalations (conversation_id, reason, priority, status)
		VALUES ($1, $2, $3, 'pending')
		RETURNING ` + escalationColumns

	e, err := scanEscalation(r.pool.QueryRow(ctx, query,
		params.ConversationID, params.Reason, string(params.Priority),
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return Escalation{}, apperr.Conflict("conversation already has an open escalation")
		}
		return Escalation{}, fmt.Errorf("create escalation: %w", err)
	}

	return e, nil
}

// ListQueue returns open escalations in triage order: most urgent priority
// first, newest first within the same priority.
func (r *EscalationRepo) ListQueue(ctx context.Context, limit, offset int) ([]Escalation, int, error) {
	countQuery := `SELECT COUNT(*) FROM escalations WHERE status IN ('pending', 'claimed')`

	var total int
	if err := r.pool.QueryRow(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count queue escalations: %w", err)
	}

	query := `
		SELECT ` + escalationColumns + `
		FROM escalations
		WHERE status IN ('pending', 'claimed')
		ORDER BY
			CASE priority
				WHEN 'urgent' THEN 0
				WHEN 'high' THEN 1
				WHEN 'medium' THEN 2
				WHEN 'low' THEN 3
				ELSE 4
			END ASC,
			created_at DESC
		LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list queue escalations: %w", err)
	}
	defer rows.Close()

	var results []Escalation
	for rows.Next() {
		e, err := scanEscalation(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan escalation: %w", err)
		}
		results = append(results, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate escalations: %w", err)
	}

	return results, total, nil
}

// Claim assigns a pending escalation to an agent. The status check is part of
// the write, so the second of two racing claims loses with a Conflict.
func (r *EscalationRepo) Claim(ctx context.Context, id, agentID uuid.UUID, at time.Time) (Escalation, error) {
	query := `
		UPDATE escalations SET
			status = 'claimed',
			claimed_by = $2,
			claimed_at = $3,
			updated_at = now()
		WHERE id = $1 AND status = 'pending'
		RETURNING ` + escalationColumns

	e, err := scanEscalation(r.pool.QueryRow(ctx, query, id, agentID, at))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Escalation{}, r.classifyMissedWrite(ctx, id, "pending")
		}
		return Escalation{}, fmt.Errorf("claim escalation: %w", err)
	}

	return e, nil
}

// Resolve closes an open escalation with optional notes.
func (r *EscalationRepo) Resolve(ctx context.Context, id uuid.UUID, notes *string, at time.Time) (Escalation, error) {
	query := `
		UPDATE escalations SET
			status = 'resolved',
			resolved_at = $3,
			resolution_notes = COALESCE($2, resolution_notes),
			updated_at = now()
		WHERE id = $1 AND status IN ('pending', 'claimed')
		RETURNING ` + escalationColumns

	e, err := scanEscalation(r.pool.QueryRow(ctx, query, id, notes, at))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Escalation{}, r.classifyMissedWrite(ctx, id, "pending or claimed")
		}
		return Escalation{}, fmt.Errorf("resolve escalation: %w", err)
	}

	return e, nil
}

// Cancel withdraws an open escalation without resolution.
func (r *EscalationRepo) Cancel(ctx context.Context, id uuid.UUID) (Escalation, error) {
	query := `
		UPDATE escalations SET
			status = 'cancelled',
			updated_at = now()
		WHERE id = $1 AND status IN ('pending', 'claimed')
		RETURNING ` + escalationColumns

	e, err := scanEscalation(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Escalation{}, r.classifyMissedWrite(ctx, id, "pending or claimed")
		}
		return Escalation{}, fmt.Errorf("cancel escalation: %w", err)
	}

	return e, nil
}

func (r *EscalationRepo) classifyMissedWrite(ctx context.Context, id uuid.UUID, expected string) error {
	var current string
	err := r.pool.QueryRow(ctx, `SELECT status FROM escalations WHERE id = $1`, id).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFound(escalationNotFoundMessage)
		}
		return fmt.Errorf("check escalation status: %w", err)
	}

	return apperr.Conflict(fmt.Sprintf("escalation status is %s, expected %s", current, expected))
}

func scanEscalation(row pgx.Row) (Escalation, error) {
	var e Escalation
	var priority, status string
	var createdAt, updatedAt time.Time

	err := row.Scan(
		&e.ID, &e.ConversationID, &e.Reason, &priority, &status,
		&e.ClaimedBy, &e.ClaimedAt, &e.ResolvedAt, &e.ResolutionNotes, &createdAt, &updatedAt,
	)
	if err != nil {
		return Escalation{}, err
	}

	e.Priority = domain.Priority(priority)
	e.Status = domain.EscalationStatus(status)
	e.CreatedAt = createdAt.Format(time.RFC3339)
	e.UpdatedAt = updatedAt.Format(time.RFC3339)

	return e, nil
}
