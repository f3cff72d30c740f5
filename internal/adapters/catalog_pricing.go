package adapters

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	catrepo "lavanderia_backend/internal/catalog/repository"
	orderservice "lavanderia_backend/internal/orders/service"
)

// CatalogPricing adapts the catalog repository for order pricing. Services
// without a configured price tier are omitted, which the pricing layer
// reports as a validation failure.
type CatalogPricing struct {
	repo catrepo.Repository
}

// NewCatalogPricing creates a new catalog pricing adapter.
func NewCatalogPricing(repo catrepo.Repository) *CatalogPricing {
	return &CatalogPricing{repo: repo}
}

// ResolveServices returns priced catalog entries for the given IDs.
func (a *CatalogPricing) ResolveServices(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]orderservice.CatalogItem, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]orderservice.CatalogItem{}, nil
	}

	services, err := a.repo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("catalog adapter: get services: %w", err)
	}

	result := make(map[uuid.UUID]orderservice.CatalogItem, len(services))
	for id, svc := range services {
		price, ok := svc.EffectivePrice()
		if !ok {
			continue
		}
		result[id] = orderservice.CatalogItem{
			ID:       svc.ID,
			Name:     svc.Name,
			Price:    price,
			IsActive: svc.IsActive,
		}
	}

	return result, nil
}

// Compile-time check that CatalogPricing satisfies the orders port.
var _ orderservice.ServiceCatalog = (*CatalogPricing)(nil)
