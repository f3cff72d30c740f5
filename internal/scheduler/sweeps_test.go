package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	customerrepo "lavanderia_backend/internal/customers/repository"
	customertransport "lavanderia_backend/internal/customers/transport"
	"lavanderia_backend/internal/notification"
	ordertransport "lavanderia_backend/internal/orders/transport"
	"lavanderia_backend/platform/logger"
)

type fakeReadyOrders struct {
	orders []ordertransport.OrderResponse
	cutoff time.Time
}

func (f *fakeReadyOrders) ListReadyForPickup(_ context.Context, cutoff time.Time, _ int) ([]ordertransport.OrderResponse, error) {
	f.cutoff = cutoff
	return f.orders, nil
}

type fakeCustomerSource struct {
	customers map[uuid.UUID]customertransport.CustomerResponse
}

func (f *fakeCustomerSource) GetByID(_ context.Context, id uuid.UUID) (customertransport.CustomerResponse, error) {
	c, ok := f.customers[id]
	if !ok {
		return customertransport.CustomerResponse{}, errors.New("customer not found")
	}
	return c, nil
}

type fakeReminderSender struct {
	reminders  []notification.PickupReminder
	suppressed map[uuid.UUID]bool
	fail       bool
}

func (f *fakeReminderSender) SendPickupReminder(_ context.Context, r notification.PickupReminder) (bool, error) {
	if f.fail {
		return false, errors.New("gateway down")
	}
	if f.suppressed[r.OrderID] {
		return false, nil
	}
	f.reminders = append(f.reminders, r)
	return true, nil
}

func readyOrder(customerID uuid.UUID, readySince time.Duration) ordertransport.OrderResponse {
	readyAt := time.Now().Add(-readySince)
	return ordertransport.OrderResponse{
		ID:         uuid.New(),
		CustomerID: customerID,
		Status:     "ready",
		ReadyAt:    &readyAt,
	}
}

func TestPickupReminderSweepSendsForWaitingOrders(t *testing.T) {
	customerID := uuid.New()
	orders := &fakeReadyOrders{orders: []ordertransport.OrderResponse{
		readyOrder(customerID, 30*time.Hour),
		readyOrder(customerID, 75*time.Hour),
	}}
	customers := &fakeCustomerSource{customers: map[uuid.UUID]customertransport.CustomerResponse{
		customerID: {ID: customerID, Phone: "+50688887777", Language: "es"},
	}}
	sender := &fakeReminderSender{}

	sweep := NewPickupReminderSweep(orders, customers, sender, 24*time.Hour, logger.New("test"))
	result, err := sweep.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.Processed != 2 || result.Successful != 2 || result.Failed != 0 {
		t.Errorf("unexpected result: %+v", result)
	}
	if len(sender.reminders) != 2 {
		t.Fatalf("expected 2 reminders, got %d", len(sender.reminders))
	}
	if sender.reminders[0].DaysWaiting != 1 || sender.reminders[1].DaysWaiting != 3 {
		t.Errorf("days waiting: got %d and %d, want 1 and 3",
			sender.reminders[0].DaysWaiting, sender.reminders[1].DaysWaiting)
	}

	// Cutoff must reflect the configured age.
	wantCutoff := time.Now().Add(-24 * time.Hour)
	if orders.cutoff.Sub(wantCutoff) > time.Minute || wantCutoff.Sub(orders.cutoff) > time.Minute {
		t.Errorf("cutoff %v not near %v", orders.cutoff, wantCutoff)
	}
}

func TestPickupReminderSweepCountsSkipsAndFailures(t *testing.T) {
	knownCustomer := uuid.New()
	unknownCustomer := uuid.New()
	suppressedOrder := readyOrder(knownCustomer, 30*time.Hour)

	orders := &fakeReadyOrders{orders: []ordertransport.OrderResponse{
		suppressedOrder,
		readyOrder(unknownCustomer, 30*time.Hour),
		readyOrder(knownCustomer, 30*time.Hour),
	}}
	customers := &fakeCustomerSource{customers: map[uuid.UUID]customertransport.CustomerResponse{
		knownCustomer: {ID: knownCustomer, Phone: "+50688887777", Language: "es"},
	}}
	sender := &fakeReminderSender{suppressed: map[uuid.UUID]bool{suppressedOrder.ID: true}}

	sweep := NewPickupReminderSweep(orders, customers, sender, 24*time.Hour, logger.New("test"))
	result, err := sweep.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.Processed != 3 || result.Successful != 1 || result.Skipped != 1 || result.Failed != 1 {
		t.Errorf("unexpected result: %+v", result)
	}
}

type fakeInactiveCustomers struct {
	customers []customerrepo.Customer
	limit     int
}

func (f *fakeInactiveCustomers) ListInactiveSince(_ context.Context, _ time.Time, limit int) ([]customerrepo.Customer, error) {
	f.limit = limit
	if len(f.customers) > limit {
		return f.customers[:limit], nil
	}
	return f.customers, nil
}

type fakeFollowUpSender struct {
	followUps []notification.FollowUp
	window    time.Duration
}

func (f *fakeFollowUpSender) SendFollowUp(_ context.Context, followUp notification.FollowUp, window time.Duration) (bool, error) {
	f.window = window
	f.followUps = append(f.followUps, followUp)
	return true, nil
}

func TestFollowUpSweepHonorsBatchCap(t *testing.T) {
	var inactive []customerrepo.Customer
	for i := 0; i < 5; i++ {
		inactive = append(inactive, customerrepo.Customer{
			ID:       uuid.New(),
			Phone:    "+5068888000" + string(rune('0'+i)),
			Language: "es",
		})
	}
	customers := &fakeInactiveCustomers{customers: inactive}
	sender := &fakeFollowUpSender{}

	window := 7 * 24 * time.Hour
	sweep := NewFollowUpSweep(customers, sender, 30*24*time.Hour, window, 3, logger.New("test"))
	result, err := sweep.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if customers.limit != 3 {
		t.Errorf("batch cap must be passed to the repository, got %d", customers.limit)
	}
	if result.Processed != 3 || result.Successful != 3 {
		t.Errorf("unexpected result: %+v", result)
	}
	if sender.window != window {
		t.Errorf("dedup window must be forwarded, got %v", sender.window)
	}
}
