package transport

import (
	"time"

	"github.com/google/uuid"
)

// UpdateCustomerRequest contains data for updating a customer profile.
type UpdateCustomerRequest struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,min=1,max=120"`
	Language *string `json:"language,omitempty" validate:"omitempty,oneof=es en"`
	Notes    *string `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

// ListCustomersRequest contains query parameters for listing customers.
type ListCustomersRequest struct {
	Search   string `form:"search"`
	Page     int    `form:"page"`
	PageSize int    `form:"pageSize"`
}

// CustomerResponse represents a customer in API responses.
type CustomerResponse struct {
	ID          uuid.UUID  `json:"id"`
	Phone       string     `json:"phone"`
	Name        *string    `json:"name,omitempty"`
	Language    string     `json:"language"`
	Notes       *string    `json:"notes,omitempty"`
	TotalOrders int        `json:"totalOrders"`
	TotalSpent  float64    `json:"totalSpent"`
	LastOrderAt *time.Time `json:"lastOrderAt,omitempty"`
	CreatedAt   string     `json:"createdAt"`
	UpdatedAt   string     `json:"updatedAt"`
}

// CustomerListResponse wraps a paginated list of customers.
type CustomerListResponse struct {
	Items    []CustomerResponse `json:"items"`
	Total    int                `json:"total"`
	Page     int                `json:"page"`
	PageSize int                `json:"pageSize"`
}
