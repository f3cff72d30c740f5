package scheduler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	customertransport "lavanderia_backend/internal/customers/transport"
	"lavanderia_backend/internal/notification"
	ordertransport "lavanderia_backend/internal/orders/transport"
	"lavanderia_backend/platform/logger"
)

const (
	sweepBatchSize = 200

	// Outbound WhatsApp pacing so a large sweep does not hammer the gateway.
	sendsPerSecond = 5
)

// ReadyOrderSource lists orders waiting for pickup.
type ReadyOrderSource interface {
	ListReadyForPickup(ctx context.Context, cutoff time.Time, limit int) ([]ordertransport.OrderResponse, error)
}

// CustomerSource resolves customers for outbound messages.
type CustomerSource interface {
	GetByID(ctx context.Context, id uuid.UUID) (customertransport.CustomerResponse, error)
}

// PickupReminderSender delivers deduplicated pickup reminders.
type PickupReminderSender interface {
	SendPickupReminder(ctx context.Context, reminder notification.PickupReminder) (bool, error)
}

// SweepResult summarizes one sweep run.
type SweepResult struct {
	Processed  int
	Successful int
	Skipped    int
	Failed     int
}

// PickupReminderSweep reminds customers whose orders have been sitting in
// ready for longer than the configured age.
type PickupReminderSweep struct {
	orders    ReadyOrderSource
	customers CustomerSource
	sender    PickupReminderSender
	age       time.Duration
	limiter   *rate.Limiter
	log       *logger.Logger
}

// NewPickupReminderSweep creates the sweep.
func NewPickupReminderSweep(
	orders ReadyOrderSource,
	customers CustomerSource,
	sender PickupReminderSender,
	age time.Duration,
	log *logger.Logger,
) *PickupReminderSweep {
	return &PickupReminderSweep{
		orders:    orders,
		customers: customers,
		sender:    sender,
		age:       age,
		limiter:   rate.NewLimiter(rate.Limit(sendsPerSecond), 1),
		log:       log,
	}
}

// Run executes one sweep. Per-order failures are counted, not fatal; the
// sweep always works through the whole batch.
func (s *PickupReminderSweep) Run(ctx context.Context) (SweepResult, error) {
	now := time.Now()
	cutoff := now.Add(-s.age)

	orders, err := s.orders.ListReadyForPickup(ctx, cutoff, sweepBatchSize)
	if err != nil {
		return SweepResult{}, err
	}

	var result SweepResult
	for _, order := range orders {
		result.Processed++

		if err := s.limiter.Wait(ctx); err != nil {
			return result, err
		}

		customer, err := s.customers.GetByID(ctx, order.CustomerID)
		if err != nil {
			s.log.Warn("pickup reminder: customer lookup failed",
				"order_id", order.ID, "customer_id", order.CustomerID, "error", err)
			result.Failed++
			continue
		}

		sent, err := s.sender.SendPickupReminder(ctx, notification.PickupReminder{
			OrderID:     order.ID,
			Phone:       customer.Phone,
			Language:    customer.Language,
			DaysWaiting: daysWaiting(order, now),
		})
		switch {
		case err != nil:
			s.log.Warn("pickup reminder failed", "order_id", order.ID, "error", err)
			result.Failed++
		case !sent:
			result.Skipped++
		default:
			result.Successful++
		}
	}

	s.log.Info("pickup reminder sweep finished",
		"processed", result.Processed,
		"successful", result.Successful,
		"skipped", result.Skipped,
		"failed", result.Failed,
	)

	return result, nil
}

func daysWaiting(order ordertransport.OrderResponse, now time.Time) int {
	if order.ReadyAt == nil {
		return 1
	}
	days := int(now.Sub(*order.ReadyAt).Hours() / 24)
	if days < 1 {
		days = 1
	}
	return days
}
