package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"lavanderia_backend/platform/apperr"
)

const customerNotFoundMessage = "customer not found"

const customerColumns = `id, phone, name, language, notes, total_orders, total_spent, last_order_at, created_at, updated_at`

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new customers repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// GetByID retrieves a customer by its ID.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`

	c, err := scanCustomer(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Customer{}, apperr.NotFound(customerNotFoundMessage)
		}
		return Customer{}, fmt.Errorf("get customer by id: %w", err)
	}

	return c, nil
}

// GetByPhone retrieves a customer by normalized phone number.
func (r *Repo) GetByPhone(ctx context.Context, phone string) (Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE phone = $1`

	c, err := scanCustomer(r.pool.QueryRow(ctx, query, phone))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Customer{}, apperr.NotFound(customerNotFoundMessage)
		}
		return Customer{}, fmt.Errorf("get customer by phone: %w", err)
	}

	return c, nil
}

// GetOrCreateByPhone resolves the customer for a phone number, inserting a
// fresh record on first contact. The upsert keeps concurrent first messages
// from the same number from racing into duplicate rows.
func (r *Repo) GetOrCreateByPhone(ctx context.Context, phone, language string) (Customer, error) {
	query := `
		INSERT INTO customers (phone, language)
		VALUES ($1, $2)
		ON CONFLICT (phone) DO UPDATE SET phone = EXCLUDED.phone
		RETURNING ` + customerColumns

	c, err := scanCustomer(r.pool.QueryRow(ctx, query, phone, language))
	if err != nil {
		return Customer{}, fmt.Errorf("get or create customer: %w", err)
	}

	return c, nil
}

// List retrieves customers with optional search over phone and name.
func (r *Repo) List(ctx context.Context, params ListParams) ([]Customer, int, error) {
	var searchParam interface{}
	if params.Search != "" {
		searchParam = "%" + params.Search + "%"
	}

	countQuery := `
		SELECT COUNT(*)
		FROM customers
		WHERE ($1::text IS NULL OR phone ILIKE $1 OR name ILIKE $1)`

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, searchParam).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count customers: %w", err)
	}

	query := `
		SELECT ` + customerColumns + `
		FROM customers
		WHERE ($1::text IS NULL OR phone ILIKE $1 OR name ILIKE $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, searchParam, params.Limit, params.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	items, err := scanCustomers(rows)
	if err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

// ListInactiveSince retrieves customers whose last order predates the cutoff
// and who have ordered at least once. Used by the follow-up sweeper.
func (r *Repo) ListInactiveSince(ctx context.Context, cutoff time.Time, limit int) ([]Customer, error) {
	query := `
		SELECT ` + customerColumns + `
		FROM customers
		WHERE total_orders > 0 AND last_order_at IS NOT NULL AND last_order_at < $1
		ORDER BY last_order_at ASC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("list inactive customers: %w", err)
	}
	defer rows.Close()

	return scanCustomers(rows)
}

// Update mutates the customer's profile fields.
func (r *Repo) Update(ctx context.Context, params UpdateParams) (Customer, error) {
	query := `
		UPDATE customers SET
			name = COALESCE($2, name),
			language = COALESCE($3, language),
			notes = COALESCE($4, notes),
			updated_at = now()
		WHERE id = $1
		RETURNING ` + customerColumns

	c, err := scanCustomer(r.pool.QueryRow(ctx, query, params.ID, params.Name, params.Language, params.Notes))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Customer{}, apperr.NotFound(customerNotFoundMessage)
		}
		return Customer{}, fmt.Errorf("update customer: %w", err)
	}

	return c, nil
}

// RecordOrder bumps the customer's lifetime aggregates after an order is
// created. The increment is atomic at the statement level; the surrounding
// order creation is not wrapped in the same transaction.
func (r *Repo) RecordOrder(ctx context.Context, id uuid.UUID, amount float64, at time.Time) error {
	query := `
		UPDATE customers SET
			total_orders = total_orders + 1,
			total_spent = total_spent + $2,
			last_order_at = $3,
			updated_at = now()
		WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id, amount, at)
	if err != nil {
		return fmt.Errorf("record customer order: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(customerNotFoundMessage)
	}

	return nil
}

func scanCustomer(row pgx.Row) (Customer, error) {
	var c Customer
	var createdAt, updatedAt time.Time

	err := row.Scan(
		&c.ID, &c.Phone, &c.Name, &c.Language, &c.Notes,
		&c.TotalOrders, &c.TotalSpent, &c.LastOrderAt, &createdAt, &updatedAt,
	)
	if err != nil {
		return Customer{}, err
	}

	c.CreatedAt = createdAt.Format(time.RFC3339)
	c.UpdatedAt = updatedAt.Format(time.RFC3339)

	return c, nil
}

func scanCustomers(rows pgx.Rows) ([]Customer, error) {
	var results []Customer

	for rows.Next() {
		var c Customer
		var createdAt, updatedAt time.Time

		err := rows.Scan(
			&c.ID, &c.Phone, &c.Name, &c.Language, &c.Notes,
			&c.TotalOrders, &c.TotalSpent, &c.LastOrderAt, &createdAt, &updatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}

		c.CreatedAt = createdAt.Format(time.RFC3339)
		c.UpdatedAt = updatedAt.Format(time.RFC3339)

		results = append(results, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate customers: %w", err)
	}

	return results, nil
}
