package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"lavanderia_backend/internal/orders/domain"
	"lavanderia_backend/platform/apperr"
)

const orderNotFoundMessage = "order not found"

const orderColumns = `id, customer_id, location_id, conversation_id, status, subtotal, tax, total, notes, ready_at, delivered_at, created_at, updated_at`

const itemColumns = `id, order_id, service_id, service_name, quantity, unit_price, subtotal`

// Repo implements OrderRepository with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new order repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var _ OrderRepository = (*Repo)(nil)

// GetByID retrieves an order by its ID.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	o, err := scanOrder(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Order{}, apperr.NotFound(orderNotFoundMessage)
		}
		return Order{}, fmt.Errorf("get order by id: %w", err)
	}

	return o, nil
}

// GetItems returns the order's line items in insertion order.
func (r *Repo) GetItems(ctx context.Context, orderID uuid.UUID) ([]OrderItem, error) {
	query := `SELECT ` + itemColumns + ` FROM order_items WHERE order_id = $1 ORDER BY created_at ASC, id ASC`

	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()

	var items []OrderItem
	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ServiceID, &it.ServiceName, &it.Quantity, &it.UnitPrice, &it.Subtotal); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order items: %w", err)
	}

	return items, nil
}

// Create inserts the order header and its line items in one transaction.
func (r *Repo) Create(ctx context.Context, params CreateParams) (Order, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Order{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO orders (customer_id, location_id, conversation_id, status, subtotal, tax, total, notes)
		VALUES ($1, $2, $3, 'pending', $4, $5, $6, $7)
		RETURNING ` + orderColumns

	o, err := scanOrder(tx.QueryRow(ctx, query,
		params.CustomerID, params.LocationID, params.ConversationID,
		params.Subtotal, params.Tax, params.Total, params.Notes,
	))
	if err != nil {
		return Order{}, fmt.Errorf("insert order: %w", err)
	}

	if err := insertItems(ctx, tx, o.ID, params.Items); err != nil {
		return Order{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Order{}, fmt.Errorf("commit order: %w", err)
	}

	return o, nil
}

// List returns orders with optional status and customer filters, newest first.
func (r *Repo) List(ctx context.Context, params ListParams) ([]Order, int, error) {
	where := ` WHERE ($1::text IS NULL OR status = $1) AND ($2::uuid IS NULL OR customer_id = $2)`

	var status *string
	if params.Status != nil {
		s := string(*params.Status)
		status = &s
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM orders`+where, status, params.CustomerID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	query := `SELECT ` + orderColumns + ` FROM orders` + where + `
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`

	rows, err := r.pool.Query(ctx, query, status, params.CustomerID, params.Limit, params.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders, err := scanOrders(rows)
	if err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

// UpdateStatus moves an order along the pipeline. The stored status must
// still equal from or the write misses and is classified as a Conflict.
func (r *Repo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.OrderStatus) (Order, error) {
	if !domain.CanTransitionOrder(from, to) {
		return Order{}, apperr.Conflict(fmt.Sprintf("cannot move order from %s to %s", from, to))
	}

	query := `
		UPDATE orders SET
			status = $3,
			ready_at = CASE WHEN $3 = 'ready' THEN now() ELSE ready_at END,
			delivered_at = CASE WHEN $3 = 'delivered' THEN now() ELSE delivered_at END,
			updated_at = now()
		WHERE id = $1 AND status = $2
		RETURNING ` + orderColumns

	o, err := scanOrder(r.pool.QueryRow(ctx, query, id, string(from), string(to)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Order{}, r.classifyMissedWrite(ctx, id, string(from))
		}
		return Order{}, fmt.Errorf("update order status: %w", err)
	}

	return o, nil
}

// ReplaceItems swaps the line items and rewrites the money fields. Only
// editable orders (pending or confirmed) accept the write.
func (r *Repo) ReplaceItems(ctx context.Context, id uuid.UUID, params ReplaceItemsParams) (Order, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Order{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE orders SET
			subtotal = $2,
			tax = $3,
			total = $4,
			updated_at = now()
		WHERE id = $1 AND status IN ('pending', 'confirmed')
		RETURNING ` + orderColumns

	o, err := scanOrder(tx.QueryRow(ctx, query, id, params.Subtotal, params.Tax, params.Total))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Order{}, r.classifyMissedWrite(ctx, id, "pending or confirmed")
		}
		return Order{}, fmt.Errorf("update order money: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM order_items WHERE order_id = $1`, id); err != nil {
		return Order{}, fmt.Errorf("delete old order items: %w", err)
	}
	if err := insertItems(ctx, tx, id, params.Items); err != nil {
		return Order{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Order{}, fmt.Errorf("commit item replacement: %w", err)
	}

	return o, nil
}

// UpdateNotes rewrites the free-form notes on an order.
func (r *Repo) UpdateNotes(ctx context.Context, id uuid.UUID, notes *string) (Order, error) {
	query := `UPDATE orders SET notes = $2, updated_at = now() WHERE id = $1 RETURNING ` + orderColumns

	o, err := scanOrder(r.pool.QueryRow(ctx, query, id, notes))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Order{}, apperr.NotFound(orderNotFoundMessage)
		}
		return Order{}, fmt.Errorf("update order notes: %w", err)
	}

	return o, nil
}

// ListReadyBefore returns orders waiting for pickup since before cutoff,
// oldest first.
func (r *Repo) ListReadyBefore(ctx context.Context, cutoff time.Time, limit int) ([]Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE status = 'ready' AND ready_at IS NOT NULL AND ready_at < $1
		ORDER BY ready_at ASC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("list ready orders: %w", err)
	}
	defer rows.Close()

	return scanOrders(rows)
}

func (r *Repo) classifyMissedWrite(ctx context.Context, id uuid.UUID, expected string) error {
	var current string
	err := r.pool.QueryRow(ctx, `SELECT status FROM orders WHERE id = $1`, id).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFound(orderNotFoundMessage)
		}
		return fmt.Errorf("check order status: %w", err)
	}

	return apperr.Conflict(fmt.Sprintf("order status is %s, expected %s", current, expected))
}

func insertItems(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, items []ItemParams) error {
	query := `
		INSERT INTO order_items (order_id, service_id, service_name, quantity, unit_price, subtotal)
		VALUES ($1, $2, $3, $4, $5, $6)`

	for _, item := range items {
		if _, err := tx.Exec(ctx, query,
			orderID, item.ServiceID, item.ServiceName, item.Quantity, item.UnitPrice, item.Subtotal,
		); err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}
	return nil
}

func scanOrder(row pgx.Row) (Order, error) {
	var o Order
	var status string
	var createdAt, updatedAt time.Time

	err := row.Scan(
		&o.ID, &o.CustomerID, &o.LocationID, &o.ConversationID, &status,
		&o.Subtotal, &o.Tax, &o.Total,
		&o.Notes, &o.ReadyAt, &o.DeliveredAt, &createdAt, &updatedAt,
	)
	if err != nil {
		return Order{}, err
	}

	o.Status = domain.OrderStatus(status)
	o.CreatedAt = createdAt.Format(time.RFC3339)
	o.UpdatedAt = updatedAt.Format(time.RFC3339)

	return o, nil
}

func scanOrders(rows pgx.Rows) ([]Order, error) {
	var orders []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}
	return orders, nil
}
