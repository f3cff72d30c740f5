package service

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"lavanderia_backend/internal/events"
	"lavanderia_backend/internal/orders/domain"
	"lavanderia_backend/internal/orders/repository"
	"lavanderia_backend/platform/apperr"
	"lavanderia_backend/platform/logger"
)

// fakeOrders keeps orders in memory and mirrors the conditional write
// behavior of the real repository.
type fakeOrders struct {
	orders map[uuid.UUID]repository.Order
	items  map[uuid.UUID][]repository.OrderItem
}

var _ repository.OrderRepository = (*fakeOrders)(nil)

func newFakeOrders() *fakeOrders {
	return &fakeOrders{
		orders: make(map[uuid.UUID]repository.Order),
		items:  make(map[uuid.UUID][]repository.OrderItem),
	}
}

func (f *fakeOrders) GetByID(_ context.Context, id uuid.UUID) (repository.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return repository.Order{}, apperr.NotFound("order not found")
	}
	return o, nil
}

func (f *fakeOrders) GetItems(_ context.Context, orderID uuid.UUID) ([]repository.OrderItem, error) {
	return f.items[orderID], nil
}

func (f *fakeOrders) Create(_ context.Context, params repository.CreateParams) (repository.Order, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	o := repository.Order{
		ID:             uuid.New(),
		CustomerID:     params.CustomerID,
		LocationID:     params.LocationID,
		ConversationID: params.ConversationID,
		Status:         domain.OrderPending,
		Subtotal:       params.Subtotal,
		Tax:            params.Tax,
		Total:          params.Total,
		Notes:          params.Notes,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	f.orders[o.ID] = o
	f.items[o.ID] = buildItems(o.ID, params.Items)
	return o, nil
}

func (f *fakeOrders) List(_ context.Context, params repository.ListParams) ([]repository.Order, int, error) {
	var results []repository.Order
	for _, o := range f.orders {
		if params.Status != nil && o.Status != *params.Status {
			continue
		}
		if params.CustomerID != nil && o.CustomerID != *params.CustomerID {
			continue
		}
		results = append(results, o)
	}
	return results, len(results), nil
}

func (f *fakeOrders) UpdateStatus(_ context.Context, id uuid.UUID, from, to domain.OrderStatus) (repository.Order, error) {
	if !domain.CanTransitionOrder(from, to) {
		return repository.Order{}, apperr.Conflict(fmt.Sprintf("cannot move order from %s to %s", from, to))
	}
	o, ok := f.orders[id]
	if !ok {
		return repository.Order{}, apperr.NotFound("order not found")
	}
	if o.Status != from {
		return repository.Order{}, apperr.Conflict(fmt.Sprintf("order status is %s, expected %s", o.Status, from))
	}
	o.Status = to
	now := time.Now()
	if to == domain.OrderReady {
		o.ReadyAt = &now
	}
	if to == domain.OrderDelivered {
		o.DeliveredAt = &now
	}
	f.orders[id] = o
	return o, nil
}

func (f *fakeOrders) ReplaceItems(_ context.Context, id uuid.UUID, params repository.ReplaceItemsParams) (repository.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return repository.Order{}, apperr.NotFound("order not found")
	}
	if o.Status != domain.OrderPending && o.Status != domain.OrderConfirmed {
		return repository.Order{}, apperr.Conflict(fmt.Sprintf("order status is %s, expected pending or confirmed", o.Status))
	}
	o.Subtotal = params.Subtotal
	o.Tax = params.Tax
	o.Total = params.Total
	f.orders[id] = o
	f.items[id] = buildItems(id, params.Items)
	return o, nil
}

func (f *fakeOrders) UpdateNotes(_ context.Context, id uuid.UUID, notes *string) (repository.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return repository.Order{}, apperr.NotFound("order not found")
	}
	o.Notes = notes
	f.orders[id] = o
	return o, nil
}

func (f *fakeOrders) ListReadyBefore(_ context.Context, cutoff time.Time, limit int) ([]repository.Order, error) {
	var results []repository.Order
	for _, o := range f.orders {
		if o.Status == domain.OrderReady && o.ReadyAt != nil && o.ReadyAt.Before(cutoff) {
			results = append(results, o)
		}
		if len(results) == limit {
			break
		}
	}
	return results, nil
}

func buildItems(orderID uuid.UUID, params []repository.ItemParams) []repository.OrderItem {
	items := make([]repository.OrderItem, 0, len(params))
	for _, p := range params {
		items = append(items, repository.OrderItem{
			ID:          uuid.New(),
			OrderID:     orderID,
			ServiceID:   p.ServiceID,
			ServiceName: p.ServiceName,
			Quantity:    p.Quantity,
			UnitPrice:   p.UnitPrice,
			Subtotal:    p.Subtotal,
		})
	}
	return items
}

type fakeCatalog struct {
	entries map[uuid.UUID]CatalogItem
}

func (f *fakeCatalog) ResolveServices(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]CatalogItem, error) {
	result := make(map[uuid.UUID]CatalogItem)
	for _, id := range ids {
		if entry, ok := f.entries[id]; ok {
			result[id] = entry
		}
	}
	return result, nil
}

type fakeCustomers struct {
	customers map[uuid.UUID]CustomerRef
	recorded  []float64
}

func (f *fakeCustomers) GetByID(_ context.Context, id uuid.UUID) (CustomerRef, error) {
	c, ok := f.customers[id]
	if !ok {
		return CustomerRef{}, apperr.NotFound("customer not found")
	}
	return c, nil
}

func (f *fakeCustomers) RecordOrder(_ context.Context, _ uuid.UUID, amount float64, _ time.Time) error {
	f.recorded = append(f.recorded, amount)
	return nil
}

// fakeBus records published events synchronously.
type fakeBus struct {
	mu     sync.Mutex
	events []events.Event
}

func (f *fakeBus) Publish(_ context.Context, event events.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

func (f *fakeBus) PublishSync(ctx context.Context, event events.Event) error {
	f.Publish(ctx, event)
	return nil
}

func (f *fakeBus) Subscribe(string, events.Handler) {}

type testEnv struct {
	svc       *Service
	orders    *fakeOrders
	catalog   *fakeCatalog
	customers *fakeCustomers
	bus       *fakeBus

	washFold uuid.UUID
	ironing  uuid.UUID
	retired  uuid.UUID
	customer uuid.UUID
}

func newTestEnv() *testEnv {
	env := &testEnv{
		orders:    newFakeOrders(),
		catalog:   &fakeCatalog{entries: make(map[uuid.UUID]CatalogItem)},
		customers: &fakeCustomers{customers: make(map[uuid.UUID]CustomerRef)},
		bus:       &fakeBus{},
		washFold:  uuid.New(),
		ironing:   uuid.New(),
		retired:   uuid.New(),
		customer:  uuid.New(),
	}

	env.catalog.entries[env.washFold] = CatalogItem{ID: env.washFold, Name: "Lavado y secado", Price: 3.25, IsActive: true}
	env.catalog.entries[env.ironing] = CatalogItem{ID: env.ironing, Name: "Planchado", Price: 1.00, IsActive: true}
	env.catalog.entries[env.retired] = CatalogItem{ID: env.retired, Name: "Tintoreria", Price: 5.00, IsActive: false}

	env.customers.customers[env.customer] = CustomerRef{ID: env.customer, Phone: "+50688887777", Language: "es"}

	env.svc = New(env.orders, env.catalog, env.customers, env.bus, 0.13, logger.New("test"))
	return env
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
