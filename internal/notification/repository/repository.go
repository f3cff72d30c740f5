// Package repository persists an audit trail of every outbound notification.
// The sweepers consult it so a customer is never reminded twice for the same
// thing in one window.
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// InsertParams describes one notification attempt, successful or not.
type InsertParams struct {
	Kind      string
	Channel   string
	Recipient string
	RefID     *uuid.UUID
	Body      string
	Success   bool
}

// AuditLog records notification attempts and answers dedup queries.
type AuditLog interface {
	Insert(ctx context.Context, params InsertParams) error

	// SentSince reports whether a successful notification of this kind was
	// already sent for the referenced entity after since.
	SentSince(ctx context.Context, kind string, refID uuid.UUID, since time.Time) (bool, error)
}

// Repo implements AuditLog with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new notification audit repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var _ AuditLog = (*Repo)(nil)

// Insert records a notification attempt.
func (r *Repo) Insert(ctx context.Context, params InsertParams) error {
	query := `
		INSERT INTO notifications (kind, channel, recipient, ref_id, body, success)
		VALUES ($1, $2, $3, $4, $5, $6)`

	if _, err := r.pool.Exec(ctx, query,
		params.Kind, params.Channel, params.Recipient, params.RefID, params.Body, params.Success,
	); err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

// SentSince reports whether a successful send of kind for refID exists after
// since.
func (r *Repo) SentSince(ctx context.Context, kind string, refID uuid.UUID, since time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM notifications
			WHERE kind = $1 AND ref_id = $2 AND success = true AND created_at >= $3
		)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, kind, refID, since).Scan(&exists); err != nil {
		return false, fmt.Errorf("check notification history: %w", err)
	}
	return exists, nil
}
