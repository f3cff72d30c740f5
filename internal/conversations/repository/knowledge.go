package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"lavanderia_backend/platform/apperr"
)

const knowledgeNotFoundMessage = "knowledge entry not found"

const knowledgeColumns = `id, category, title, content, language, is_active`

// KnowledgeRepo implements KnowledgeRepository with PostgreSQL.
type KnowledgeRepo struct {
	pool *pgxpool.Pool
}

// NewKnowledge creates a new knowledge base repository.
func NewKnowledge(pool *pgxpool.Pool) *KnowledgeRepo {
	return &KnowledgeRepo{pool: pool}
}

var _ KnowledgeRepository = (*KnowledgeRepo)(nil)

// ListRelevant returns active entries for the reply context, preferring the
// requested category and language.
func (r *KnowledgeRepo) ListRelevant(ctx context.Context, q KnowledgeQuery) ([]KnowledgeEntry, error) {
	var categoryParam interface{}
	if q.Category != "" {
		categoryParam = q.Category
	}

	query := `
		SELECT ` + knowledgeColumns + `
		FROM knowledge_base_entries
		WHERE is_active = true
			AND ($1::text IS NULL OR category = $1)
			AND language IN ($2, 'es')
		ORDER BY (language = $2) DESC, category ASC
		LIMIT $3`

	rows, err := r.pool.Query(ctx, query, categoryParam, q.Language, q.Limit)
	if err != nil {
		return nil, fmt.Errorf("list relevant knowledge: %w", err)
	}
	defer rows.Close()

	return scanKnowledgeEntries(rows)
}

// List returns all knowledge entries for the admin surface.
func (r *KnowledgeRepo) List(ctx context.Context) ([]KnowledgeEntry, error) {
	query := `SELECT ` + knowledgeColumns + ` FROM knowledge_base_entries ORDER BY category ASC, title ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list knowledge: %w", err)
	}
	defer rows.Close()

	return scanKnowledgeEntries(rows)
}

// Create inserts a new knowledge entry.
func (r *KnowledgeRepo) Create(ctx context.Context, e KnowledgeEntry) (KnowledgeEntry, error) {
	query := `
		INSERT INTO knowledge_base_entries (category, title, content, language, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + knowledgeColumns

	created, err := scanKnowledgeEntry(r.pool.QueryRow(ctx, query, e.Category, e.Title, e.Content, e.Language, e.IsActive))
	if err != nil {
		return KnowledgeEntry{}, fmt.Errorf("create knowledge entry: %w", err)
	}

	return created, nil
}

// Update replaces a knowledge entry's content.
func (r *KnowledgeRepo) Update(ctx context.Context, e KnowledgeEntry) (KnowledgeEntry, error) {
	query := `
		UPDATE knowledge_base_entries SET
			category = $2, title = $3, content = $4, language = $5, is_active = $6
		WHERE id = $1
		RETURNING ` + knowledgeColumns

	updated, err := scanKnowledgeEntry(r.pool.QueryRow(ctx, query, e.ID, e.Category, e.Title, e.Content, e.Language, e.IsActive))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return KnowledgeEntry{}, apperr.NotFound(knowledgeNotFoundMessage)
		}
		return KnowledgeEntry{}, fmt.Errorf("update knowledge entry: %w", err)
	}

	return updated, nil
}

// Delete removes a knowledge entry.
func (r *KnowledgeRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM knowledge_base_entries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete knowledge entry: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(knowledgeNotFoundMessage)
	}

	return nil
}

func scanKnowledgeEntry(row pgx.Row) (KnowledgeEntry, error) {
	var e KnowledgeEntry
	err := row.Scan(&e.ID, &e.Category, &e.Title, &e.Content, &e.Language, &e.IsActive)
	if err != nil {
		return KnowledgeEntry{}, err
	}
	return e, nil
}

func scanKnowledgeEntries(rows pgx.Rows) ([]KnowledgeEntry, error) {
	var results []KnowledgeEntry

	for rows.Next() {
		e, err := scanKnowledgeEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan knowledge entry: %w", err)
		}
		results = append(results, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate knowledge entries: %w", err)
	}

	return results, nil
}
