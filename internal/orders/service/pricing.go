package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"lavanderia_backend/internal/orders/repository"
	"lavanderia_backend/internal/orders/transport"
	"lavanderia_backend/platform/apperr"
)

// CatalogItem is a priced catalog entry as the order workflow sees it.
type CatalogItem struct {
	ID       uuid.UUID
	Name     string
	Price    float64
	IsActive bool
}

// ServiceCatalog resolves catalog entries for pricing. Entries without a
// configured price tier are absent from the result.
type ServiceCatalog interface {
	ResolveServices(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]CatalogItem, error)
}

// pricing is the derived money state for one set of line items.
type pricing struct {
	Subtotal float64
	Tax      float64
	Total    float64
	Items    []repository.ItemParams
}

// priceItems prices the requested items against the resolved catalog. Any
// unknown or inactive service fails the whole computation; an order is never
// priced partially.
func priceItems(items []transport.OrderItemRequest, catalog map[uuid.UUID]CatalogItem, taxRate float64) (pricing, error) {
	var p pricing
	for _, req := range items {
		entry, ok := catalog[req.ServiceID]
		if !ok {
			return pricing{}, apperr.Validation(fmt.Sprintf("service %s does not exist or has no price", req.ServiceID))
		}
		if !entry.IsActive {
			return pricing{}, apperr.Validation(fmt.Sprintf("service %q is not currently offered", entry.Name))
		}

		line := float64(req.Quantity) * entry.Price
		p.Items = append(p.Items, repository.ItemParams{
			ServiceID:   entry.ID,
			ServiceName: entry.Name,
			Quantity:    req.Quantity,
			UnitPrice:   entry.Price,
			Subtotal:    line,
		})
		p.Subtotal += line
	}

	p.Tax = p.Subtotal * taxRate
	p.Total = p.Subtotal + p.Tax

	return p, nil
}

// price resolves the catalog entries for the requested items and computes
// the money fields.
func (s *Service) price(ctx context.Context, items []transport.OrderItemRequest) (pricing, error) {
	seen := make(map[uuid.UUID]struct{}, len(items))
	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.ServiceID]; ok {
			continue
		}
		seen[item.ServiceID] = struct{}{}
		ids = append(ids, item.ServiceID)
	}

	catalog, err := s.catalog.ResolveServices(ctx, ids)
	if err != nil {
		return pricing{}, fmt.Errorf("resolve services: %w", err)
	}

	return priceItems(items, catalog, s.taxRate)
}
