package adapters

import (
	"context"
	"time"

	"github.com/google/uuid"

	customerservice "lavanderia_backend/internal/customers/service"
	orderservice "lavanderia_backend/internal/orders/service"
)

// CustomerAccounts adapts the customers service for the order workflow.
type CustomerAccounts struct {
	customers *customerservice.Service
}

// NewCustomerAccounts creates a new customer accounts adapter.
func NewCustomerAccounts(customers *customerservice.Service) *CustomerAccounts {
	return &CustomerAccounts{customers: customers}
}

// GetByID returns the order-facing view of a customer.
func (a *CustomerAccounts) GetByID(ctx context.Context, id uuid.UUID) (orderservice.CustomerRef, error) {
	customer, err := a.customers.GetByID(ctx, id)
	if err != nil {
		return orderservice.CustomerRef{}, err
	}
	return orderservice.CustomerRef{
		ID:       customer.ID,
		Phone:    customer.Phone,
		Language: customer.Language,
	}, nil
}

// RecordOrder bumps the customer's lifetime order aggregates.
func (a *CustomerAccounts) RecordOrder(ctx context.Context, id uuid.UUID, amount float64, at time.Time) error {
	return a.customers.RecordOrder(ctx, id, amount, at)
}

// Compile-time check that CustomerAccounts satisfies the orders port.
var _ orderservice.CustomerAccounts = (*CustomerAccounts)(nil)
