package repository

import (
	"context"

	"github.com/google/uuid"
)

// LaundryService is a priced service offered by the laundry. Each service can
// carry up to three price tiers; the effective price is the first tier set,
// checked in order: wash+dry, wash only, dry only.
type LaundryService struct {
	ID            uuid.UUID `db:"id"`
	Name          string    `db:"name"`
	Description   *string   `db:"description"`
	PriceWashDry  *float64  `db:"price_wash_dry"`
	PriceWashOnly *float64  `db:"price_wash_only"`
	PriceDryOnly  *float64  `db:"price_dry_only"`
	IsActive      bool      `db:"is_active"`
	CreatedAt     string    `db:"created_at"`
	UpdatedAt     string    `db:"updated_at"`
}

// EffectivePrice returns the display price tier for the service, or false if
// no tier is configured.
func (s LaundryService) EffectivePrice() (float64, bool) {
	switch {
	case s.PriceWashDry != nil:
		return *s.PriceWashDry, true
	case s.PriceWashOnly != nil:
		return *s.PriceWashOnly, true
	case s.PriceDryOnly != nil:
		return *s.PriceDryOnly, true
	default:
		return 0, false
	}
}

// CreateParams contains parameters for creating a laundry service.
type CreateParams struct {
	Name          string
	Description   *string
	PriceWashDry  *float64
	PriceWashOnly *float64
	PriceDryOnly  *float64
}

// UpdateParams contains parameters for updating a laundry service.
type UpdateParams struct {
	ID            uuid.UUID
	Name          *string
	Description   *string
	PriceWashDry  *float64
	PriceWashOnly *float64
	PriceDryOnly  *float64
}

// ServiceReader provides read operations for laundry services.
type ServiceReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (LaundryService, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]LaundryService, error)
	List(ctx context.Context) ([]LaundryService, error)
	ListActive(ctx context.Context) ([]LaundryService, error)
}

// ServiceWriter provides write operations for laundry services.
type ServiceWriter interface {
	Create(ctx context.Context, params CreateParams) (LaundryService, error)
	Update(ctx context.Context, params UpdateParams) (LaundryService, error)
	SetActive(ctx context.Context, id uuid.UUID, isActive bool) error
}

// Repository combines all laundry service repository operations.
type Repository interface {
	ServiceReader
	ServiceWriter
}
