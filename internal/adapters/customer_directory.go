// Package adapters wires module-local interfaces to the services that
// implement them, keeping the domain modules free of cross-imports.
package adapters

import (
	"context"

	"github.com/google/uuid"

	convservice "lavanderia_backend/internal/conversations/service"
	customerservice "lavanderia_backend/internal/customers/service"
)

// CustomerDirectory adapts the customers service for the conversation
// workflow, which only needs phone resolution and a thin customer view.
type CustomerDirectory struct {
	customers *customerservice.Service
}

// NewCustomerDirectory creates a new customer directory adapter.
func NewCustomerDirectory(customers *customerservice.Service) *CustomerDirectory {
	return &CustomerDirectory{customers: customers}
}

// ResolveByPhone finds or creates the customer behind a phone number.
func (a *CustomerDirectory) ResolveByPhone(ctx context.Context, phone string) (convservice.CustomerRef, error) {
	customer, err := a.customers.ResolveByPhone(ctx, phone)
	if err != nil {
		return convservice.CustomerRef{}, err
	}
	return convservice.CustomerRef{
		ID:       customer.ID,
		Phone:    customer.Phone,
		Name:     customer.Name,
		Language: customer.Language,
	}, nil
}

// GetByID returns the conversation-facing view of a customer.
func (a *CustomerDirectory) GetByID(ctx context.Context, id uuid.UUID) (convservice.CustomerRef, error) {
	customer, err := a.customers.GetByID(ctx, id)
	if err != nil {
		return convservice.CustomerRef{}, err
	}
	return convservice.CustomerRef{
		ID:       customer.ID,
		Phone:    customer.Phone,
		Name:     customer.Name,
		Language: customer.Language,
	}, nil
}

// Compile-time check that CustomerDirectory satisfies the conversations port.
var _ convservice.CustomerDirectory = (*CustomerDirectory)(nil)
