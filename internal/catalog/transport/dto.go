package transport

import "github.com/google/uuid"

// CreateServiceRequest contains data for creating a new laundry service.
// At least one price tier must be provided.
type CreateServiceRequest struct {
	Name          string   `json:"name" validate:"required,min=1,max=120"`
	Description   *string  `json:"description,omitempty" validate:"omitempty,max=500"`
	PriceWashDry  *float64 `json:"priceWashDry,omitempty" validate:"omitempty,gt=0"`
	PriceWashOnly *float64 `json:"priceWashOnly,omitempty" validate:"omitempty,gt=0"`
	PriceDryOnly  *float64 `json:"priceDryOnly,omitempty" validate:"omitempty,gt=0"`
}

// UpdateServiceRequest contains data for updating a laundry service.
type UpdateServiceRequest struct {
	Name          *string  `json:"name,omitempty" validate:"omitempty,min=1,max=120"`
	Description   *string  `json:"description,omitempty" validate:"omitempty,max=500"`
	PriceWashDry  *float64 `json:"priceWashDry,omitempty" validate:"omitempty,gt=0"`
	PriceWashOnly *float64 `json:"priceWashOnly,omitempty" validate:"omitempty,gt=0"`
	PriceDryOnly  *float64 `json:"priceDryOnly,omitempty" validate:"omitempty,gt=0"`
}

// ServiceResponse represents a laundry service in API responses.
type ServiceResponse struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Description   *string   `json:"description,omitempty"`
	PriceWashDry  *float64  `json:"priceWashDry,omitempty"`
	PriceWashOnly *float64  `json:"priceWashOnly,omitempty"`
	PriceDryOnly  *float64  `json:"priceDryOnly,omitempty"`
	DisplayPrice  *float64  `json:"displayPrice,omitempty"`
	IsActive      bool      `json:"isActive"`
	CreatedAt     string    `json:"createdAt"`
	UpdatedAt     string    `json:"updatedAt"`
}

// ServiceListResponse wraps a list of laundry services.
type ServiceListResponse struct {
	Items []ServiceResponse `json:"items"`
	Total int               `json:"total"`
}
