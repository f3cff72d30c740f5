// Package service implements the order fulfillment workflow.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"lavanderia_backend/internal/events"
	"lavanderia_backend/internal/orders/domain"
	"lavanderia_backend/internal/orders/repository"
	"lavanderia_backend/internal/orders/transport"
	"lavanderia_backend/platform/apperr"
	"lavanderia_backend/platform/logger"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// CustomerRef is the slice of a customer the order workflow needs.
type CustomerRef struct {
	ID       uuid.UUID
	Phone    string
	Language string
}

// CustomerAccounts is the customer context as seen from orders.
type CustomerAccounts interface {
	GetByID(ctx context.Context, id uuid.UUID) (CustomerRef, error)
	RecordOrder(ctx context.Context, id uuid.UUID, amount float64, at time.Time) error
}

// Service implements order operations.
type Service struct {
	orders    repository.OrderRepository
	catalog   ServiceCatalog
	customers CustomerAccounts
	bus       events.Bus
	taxRate   float64
	log       *logger.Logger
}

// New creates the order service.
func New(
	orders repository.OrderRepository,
	catalog ServiceCatalog,
	customers CustomerAccounts,
	bus events.Bus,
	taxRate float64,
	log *logger.Logger,
) *Service {
	return &Service{
		orders:    orders,
		catalog:   catalog,
		customers: customers,
		bus:       bus,
		taxRate:   taxRate,
		log:       log,
	}
}

// CreateOrder prices the requested items against the catalog and registers a
// pending order for the customer.
func (s *Service) CreateOrder(ctx context.Context, req transport.CreateOrderRequest) (transport.OrderDetailResponse, error) {
	customer, err := s.customers.GetByID(ctx, req.CustomerID)
	if err != nil {
		return transport.OrderDetailResponse{}, err
	}

	priced, err := s.price(ctx, req.Items)
	if err != nil {
		return transport.OrderDetailResponse{}, err
	}

	order, err := s.orders.Create(ctx, repository.CreateParams{
		CustomerID:     customer.ID,
		LocationID:     req.LocationID,
		ConversationID: req.ConversationID,
		Notes:          req.Notes,
		Subtotal:       priced.Subtotal,
		Tax:            priced.Tax,
		Total:          priced.Total,
		Items:          priced.Items,
	})
	if err != nil {
		return transport.OrderDetailResponse{}, fmt.Errorf("create order: %w", err)
	}

	if err := s.customers.RecordOrder(ctx, customer.ID, order.Total, time.Now()); err != nil {
		s.log.Warn("failed to record order on customer aggregate",
			"order_id", order.ID, "customer_id", customer.ID, "error", err)
	}

	s.bus.Publish(ctx, events.OrderCreated{
		BaseEvent:      events.NewBaseEvent(),
		OrderID:        order.ID,
		CustomerID:     customer.ID,
		ConversationID: order.ConversationID,
		Phone:          customer.Phone,
		Language:       customer.Language,
		Total:          order.Total,
	})

	return s.detail(ctx, order)
}

// GetOrder returns an order with its line items.
func (s *Service) GetOrder(ctx context.Context, id uuid.UUID) (transport.OrderDetailResponse, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return transport.OrderDetailResponse{}, err
	}
	return s.detail(ctx, order)
}

// ListOrders returns orders with optional status and customer filters.
func (s *Service) ListOrders(ctx context.Context, req transport.ListOrdersRequest) (transport.OrderListResponse, error) {
	page, pageSize := normalizePage(req.Page, req.PageSize)

	params := repository.ListParams{
		Limit:  pageSize,
		Offset: (page - 1) * pageSize,
	}
	if req.Status != "" {
		status := domain.OrderStatus(req.Status)
		params.Status = &status
	}
	if req.CustomerID != "" {
		customerID, err := uuid.Parse(req.CustomerID)
		if err != nil {
			return transport.OrderListResponse{}, apperr.Validation("invalid customer id")
		}
		params.CustomerID = &customerID
	}

	orders, total, err := s.orders.List(ctx, params)
	if err != nil {
		return transport.OrderListResponse{}, err
	}

	items := make([]transport.OrderResponse, 0, len(orders))
	for _, o := range orders {
		items = append(items, toOrderResponse(o))
	}

	return transport.OrderListResponse{
		Items:    items,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// UpdateOrder patches an order: a status transition, an item edit with money
// recomputation, or a notes change. Status and items are mutually exclusive
// in one request because the transition and the reprice are separate
// conditional writes.
func (s *Service) UpdateOrder(ctx context.Context, id uuid.UUID, req transport.UpdateOrderRequest) (transport.OrderDetailResponse, error) {
	if req.Status != nil && len(req.Items) > 0 {
		return transport.OrderDetailResponse{}, apperr.Validation("cannot change status and items in the same request")
	}

	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return transport.OrderDetailResponse{}, err
	}

	if len(req.Items) > 0 {
		priced, err := s.price(ctx, req.Items)
		if err != nil {
			return transport.OrderDetailResponse{}, err
		}
		order, err = s.orders.ReplaceItems(ctx, id, repository.ReplaceItemsParams{
			Subtotal: priced.Subtotal,
			Tax:      priced.Tax,
			Total:    priced.Total,
			Items:    priced.Items,
		})
		if err != nil {
			return transport.OrderDetailResponse{}, err
		}
	}

	if req.Notes != nil {
		order, err = s.orders.UpdateNotes(ctx, id, req.Notes)
		if err != nil {
			return transport.OrderDetailResponse{}, err
		}
	}

	if req.Status != nil {
		order, err = s.transition(ctx, order, domain.OrderStatus(*req.Status))
		if err != nil {
			return transport.OrderDetailResponse{}, err
		}
	}

	return s.detail(ctx, order)
}

// transition moves the order to the requested status and announces the
// change. The conditional write guarantees the event fires at most once per
// actual transition.
func (s *Service) transition(ctx context.Context, order repository.Order, to domain.OrderStatus) (repository.Order, error) {
	if !domain.IsValidOrderStatus(to) {
		return repository.Order{}, apperr.Validation(fmt.Sprintf("unknown order status %q", to))
	}

	from := order.Status
	updated, err := s.orders.UpdateStatus(ctx, order.ID, from, to)
	if err != nil {
		return repository.Order{}, err
	}

	event := events.OrderStatusChanged{
		BaseEvent:      events.NewBaseEvent(),
		OrderID:        updated.ID,
		CustomerID:     updated.CustomerID,
		ConversationID: updated.ConversationID,
		OldStatus:      string(from),
		NewStatus:      string(to),
		Total:          updated.Total,
	}
	if customer, err := s.customers.GetByID(ctx, updated.CustomerID); err != nil {
		s.log.Warn("failed to load customer for status event",
			"order_id", updated.ID, "customer_id", updated.CustomerID, "error", err)
	} else {
		event.Phone = customer.Phone
		event.Language = customer.Language
	}

	s.bus.Publish(ctx, event)

	return updated, nil
}

// ListReadyForPickup returns orders that have been waiting in ready since
// before cutoff, oldest first. The pickup reminder sweep is the caller.
func (s *Service) ListReadyForPickup(ctx context.Context, cutoff time.Time, limit int) ([]transport.OrderResponse, error) {
	orders, err := s.orders.ListReadyBefore(ctx, cutoff, limit)
	if err != nil {
		return nil, err
	}

	results := make([]transport.OrderResponse, 0, len(orders))
	for _, o := range orders {
		results = append(results, toOrderResponse(o))
	}
	return results, nil
}

func (s *Service) detail(ctx context.Context, order repository.Order) (transport.OrderDetailResponse, error) {
	items, err := s.orders.GetItems(ctx, order.ID)
	if err != nil {
		return transport.OrderDetailResponse{}, err
	}

	resp := transport.OrderDetailResponse{
		OrderResponse: toOrderResponse(order),
		Items:         make([]transport.OrderItemResponse, 0, len(items)),
	}
	for _, it := range items {
		resp.Items = append(resp.Items, transport.OrderItemResponse{
			ID:          it.ID,
			ServiceID:   it.ServiceID,
			ServiceName: it.ServiceName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Subtotal:    it.Subtotal,
		})
	}

	return resp, nil
}

func toOrderResponse(o repository.Order) transport.OrderResponse {
	return transport.OrderResponse{
		ID:             o.ID,
		CustomerID:     o.CustomerID,
		LocationID:     o.LocationID,
		ConversationID: o.ConversationID,
		Status:         string(o.Status),
		Subtotal:       o.Subtotal,
		Tax:            o.Tax,
		Total:          o.Total,
		Notes:          o.Notes,
		ReadyAt:        o.ReadyAt,
		DeliveredAt:    o.DeliveredAt,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}
