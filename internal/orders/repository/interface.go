// Package repository provides database access for orders and their line items.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"lavanderia_backend/internal/orders/domain"
)

// Order is the database model for an order header. Money fields are always
// derived from the line items plus the tax rate captured at write time.
type Order struct {
	ID             uuid.UUID
	CustomerID     uuid.UUID
	LocationID     *uuid.UUID
	ConversationID *uuid.UUID
	Status         domain.OrderStatus
	Subtotal       float64
	Tax            float64
	Total          float64
	Notes          *string
	ReadyAt        *time.Time
	DeliveredAt    *time.Time
	CreatedAt      string
	UpdatedAt      string
}

// OrderItem is a line item with the service name and unit price snapshotted
// at the moment the item was written. Later catalog edits never change it.
type OrderItem struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	ServiceID   uuid.UUID
	ServiceName string
	Quantity    int
	UnitPrice   float64
	Subtotal    float64
}

// CreateParams carries a fully priced order ready for insertion.
type CreateParams struct {
	CustomerID     uuid.UUID
	LocationID     *uuid.UUID
	ConversationID *uuid.UUID
	Notes          *string
	Subtotal       float64
	Tax            float64
	Total          float64
	Items          []ItemParams
}

// ItemParams is one priced line item for insertion.
type ItemParams struct {
	ServiceID   uuid.UUID
	ServiceName string
	Quantity    int
	UnitPrice   float64
	Subtotal    float64
}

// ReplaceItemsParams swaps an order's line items and rewrites its money
// fields in the same transaction.
type ReplaceItemsParams struct {
	Subtotal float64
	Tax      float64
	Total    float64
	Items    []ItemParams
}

// ListParams contains parameters for listing orders.
type ListParams struct {
	Status     *domain.OrderStatus
	CustomerID *uuid.UUID
	Limit      int
	Offset     int
}

// OrderRepository defines persistence for orders.
type OrderRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (Order, error)
	GetItems(ctx context.Context, orderID uuid.UUID) ([]OrderItem, error)
	Create(ctx context.Context, params CreateParams) (Order, error)
	List(ctx context.Context, params ListParams) ([]Order, int, error)

	// UpdateStatus performs a conditional write that only succeeds when the
	// stored status still equals from. It stamps ready_at and delivered_at
	// when entering those stages.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.OrderStatus) (Order, error)

	// ReplaceItems swaps the line items and money fields while the order is
	// still editable (pending or confirmed).
	ReplaceItems(ctx context.Context, id uuid.UUID, params ReplaceItemsParams) (Order, error)

	UpdateNotes(ctx context.Context, id uuid.UUID, notes *string) (Order, error)

	// ListReadyBefore returns orders sitting in ready since before cutoff,
	// oldest first. Used by the pickup reminder sweep.
	ListReadyBefore(ctx context.Context, cutoff time.Time, limit int) ([]Order, error)
}
