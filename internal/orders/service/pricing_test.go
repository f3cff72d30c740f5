package service

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"lavanderia_backend/internal/orders/transport"
	"lavanderia_backend/platform/apperr"
)

func TestPriceItemsComputesMoneyFields(t *testing.T) {
	env := newTestEnv()

	priced, err := priceItems([]transport.OrderItemRequest{
		{ServiceID: env.washFold, Quantity: 2},
		{ServiceID: env.ironing, Quantity: 1},
	}, env.catalog.entries, 0.13)
	if err != nil {
		t.Fatalf("priceItems: %v", err)
	}

	if !almostEqual(priced.Subtotal, 7.50) {
		t.Errorf("subtotal: got %v, want 7.50", priced.Subtotal)
	}
	if !almostEqual(priced.Tax, 0.975) {
		t.Errorf("tax: got %v, want 0.975", priced.Tax)
	}
	if !almostEqual(priced.Total, 8.475) {
		t.Errorf("total: got %v, want 8.475", priced.Total)
	}
	if !almostEqual(priced.Subtotal+priced.Tax, priced.Total) {
		t.Errorf("subtotal + tax must equal total")
	}

	if len(priced.Items) != 2 {
		t.Fatalf("expected 2 priced items, got %d", len(priced.Items))
	}
	if priced.Items[0].ServiceName != "Lavado y secado" || !almostEqual(priced.Items[0].UnitPrice, 3.25) {
		t.Errorf("first item must snapshot the catalog name and price")
	}
	if !almostEqual(priced.Items[0].Subtotal, 6.50) {
		t.Errorf("line subtotal: got %v, want 6.50", priced.Items[0].Subtotal)
	}
}

func TestPriceItemsRejectsUnknownService(t *testing.T) {
	env := newTestEnv()

	_, err := priceItems([]transport.OrderItemRequest{
		{ServiceID: env.washFold, Quantity: 1},
		{ServiceID: uuid.New(), Quantity: 1},
	}, env.catalog.entries, 0.13)
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("unknown service must fail the whole computation, got %v", err)
	}
}

func TestPriceItemsRejectsInactiveService(t *testing.T) {
	env := newTestEnv()

	_, err := priceItems([]transport.OrderItemRequest{
		{ServiceID: env.retired, Quantity: 1},
	}, env.catalog.entries, 0.13)
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("inactive service must fail pricing, got %v", err)
	}
}

func TestUpdateItemsRecomputesMoney(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	created, err := env.svc.CreateOrder(ctx, transport.CreateOrderRequest{
		CustomerID: env.customer,
		Items:      []transport.OrderItemRequest{{ServiceID: env.washFold, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	updated, err := env.svc.UpdateOrder(ctx, created.ID, transport.UpdateOrderRequest{
		Items: []transport.OrderItemRequest{
			{ServiceID: env.washFold, Quantity: 2},
			{ServiceID: env.ironing, Quantity: 1},
		},
	})
	if err != nil {
		t.Fatalf("UpdateOrder: %v", err)
	}

	if !almostEqual(updated.Subtotal, 7.50) || !almostEqual(updated.Tax, 0.975) || !almostEqual(updated.Total, 8.475) {
		t.Errorf("money fields must be recomputed, got subtotal=%v tax=%v total=%v",
			updated.Subtotal, updated.Tax, updated.Total)
	}
	if len(updated.Items) != 2 {
		t.Errorf("items must be replaced, got %d", len(updated.Items))
	}
}

func TestUpdateItemsFailsWholeOnUnknownService(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	created, err := env.svc.CreateOrder(ctx, transport.CreateOrderRequest{
		CustomerID: env.customer,
		Items:      []transport.OrderItemRequest{{ServiceID: env.washFold, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	_, err = env.svc.UpdateOrder(ctx, created.ID, transport.UpdateOrderRequest{
		Items: []transport.OrderItemRequest{
			{ServiceID: env.washFold, Quantity: 3},
			{ServiceID: uuid.New(), Quantity: 1},
		},
	})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation failure, got %v", err)
	}

	// The stored order keeps its original items and money.
	current, err := env.svc.GetOrder(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetOrder: %v", err)
	}
	if !almostEqual(current.Subtotal, created.Subtotal) || len(current.Items) != 1 {
		t.Errorf("failed reprice must leave the order untouched")
	}
}
