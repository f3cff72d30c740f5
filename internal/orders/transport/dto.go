// Package transport defines request and response DTOs for the orders API.
package transport

import (
	"time"

	"github.com/google/uuid"
)

// OrderItemRequest is one requested line item. Pricing always comes from the
// catalog, never from the client.
type OrderItemRequest struct {
	ServiceID uuid.UUID `json:"serviceId" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1,max=999"`
}

// CreateOrderRequest registers a new order for a customer. Location and the
// originating conversation are optional links recorded as-is.
type CreateOrderRequest struct {
	CustomerID     uuid.UUID          `json:"customerId" validate:"required"`
	LocationID     *uuid.UUID         `json:"locationId,omitempty"`
	ConversationID *uuid.UUID         `json:"conversationId,omitempty"`
	Items          []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
	Notes          *string            `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

// UpdateOrderRequest patches an order. A status change cannot be combined
// with an item edit in the same request.
type UpdateOrderRequest struct {
	Status *string            `json:"status,omitempty" validate:"omitempty,oneof=pending confirmed in_progress ready delivered cancelled"`
	Items  []OrderItemRequest `json:"items,omitempty" validate:"omitempty,min=1,dive"`
	Notes  *string            `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

// ListOrdersRequest contains query parameters for listing orders.
type ListOrdersRequest struct {
	Status     string `form:"status" validate:"omitempty,oneof=pending confirmed in_progress ready delivered cancelled"`
	CustomerID string `form:"customerId" validate:"omitempty,uuid"`
	Page       int    `form:"page"`
	PageSize   int    `form:"pageSize"`
}

// OrderItemResponse is a snapshotted line item in API responses.
type OrderItemResponse struct {
	ID          uuid.UUID `json:"id"`
	ServiceID   uuid.UUID `json:"serviceId"`
	ServiceName string    `json:"serviceName"`
	Quantity    int       `json:"quantity"`
	UnitPrice   float64   `json:"unitPrice"`
	Subtotal    float64   `json:"subtotal"`
}

// OrderResponse represents an order header in API responses.
type OrderResponse struct {
	ID             uuid.UUID  `json:"id"`
	CustomerID     uuid.UUID  `json:"customerId"`
	LocationID     *uuid.UUID `json:"locationId,omitempty"`
	ConversationID *uuid.UUID `json:"conversationId,omitempty"`
	Status         string     `json:"status"`
	Subtotal       float64    `json:"subtotal"`
	Tax            float64    `json:"tax"`
	Total          float64    `json:"total"`
	Notes          *string    `json:"notes,omitempty"`
	ReadyAt        *time.Time `json:"readyAt,omitempty"`
	DeliveredAt    *time.Time `json:"deliveredAt,omitempty"`
	CreatedAt      string     `json:"createdAt"`
	UpdatedAt      string     `json:"updatedAt"`
}

// OrderDetailResponse is an order with its line items.
type OrderDetailResponse struct {
	OrderResponse
	Items []OrderItemResponse `json:"items"`
}

// OrderListResponse wraps a paginated list of orders.
type OrderListResponse struct {
	Items    []OrderResponse `json:"items"`
	Total    int             `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"pageSize"`
}
