package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Customer is a laundry customer keyed by WhatsApp phone number.
// Customers are never hard-deleted; aggregates track lifetime order activity.
type Customer struct {
	ID          uuid.UUID  `db:"id"`
	Phone       string     `db:"phone"`
	Name        *string    `db:"name"`
	Language    string     `db:"language"`
	Notes       *string    `db:"notes"`
	TotalOrders int        `db:"total_orders"`
	TotalSpent  float64    `db:"total_spent"`
	LastOrderAt *time.Time `db:"last_order_at"`
	CreatedAt   string     `db:"created_at"`
	UpdatedAt   string     `db:"updated_at"`
}

// UpdateParams contains the mutable profile fields of a customer.
type UpdateParams struct {
	ID       uuid.UUID
	Name     *string
	Language *string
	Notes    *string
}

// ListParams contains filters for listing customers.
type ListParams struct {
	Search string
	Limit  int
	Offset int
}

// CustomerReader provides read operations for customers.
type CustomerReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (Customer, error)
	GetByPhone(ctx context.Context, phone string) (Customer, error)
	List(ctx context.Context, params ListParams) ([]Customer, int, error)
	ListInactiveSince(ctx context.Context, cutoff time.Time, limit int) ([]Customer, error)
}

// CustomerWriter provides write operations for customers.
type CustomerWriter interface {
	GetOrCreateByPhone(ctx context.Context, phone, language string) (Customer, error)
	Update(ctx context.Context, params UpdateParams) (Customer, error)
	RecordOrder(ctx context.Context, id uuid.UUID, amount float64, at time.Time) error
}

// Repository combines all customer repository operations.
type Repository interface {
	CustomerReader
	CustomerWriter
}
