package scheduler

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	customerrepo "lavanderia_backend/internal/customers/repository"
	"lavanderia_backend/internal/notification"
	"lavanderia_backend/platform/logger"
)

// InactiveCustomerSource lists customers without recent orders.
type InactiveCustomerSource interface {
	ListInactiveSince(ctx context.Context, cutoff time.Time, limit int) ([]customerrepo.Customer, error)
}

// FollowUpSender delivers deduplicated win-back messages.
type FollowUpSender interface {
	SendFollowUp(ctx context.Context, followUp notification.FollowUp, window time.Duration) (bool, error)
}

// FollowUpSweep messages customers who have not ordered in a while. The
// batch size caps how many go out per run; the window keeps repeat runs
// from nagging the same customer.
type FollowUpSweep struct {
	customers InactiveCustomerSource
	sender    FollowUpSender
	age       time.Duration
	window    time.Duration
	batchSize int
	limiter   *rate.Limiter
	log       *logger.Logger
}

// NewFollowUpSweep creates the sweep.
func NewFollowUpSweep(
	customers InactiveCustomerSource,
	sender FollowUpSender,
	age time.Duration,
	window time.Duration,
	batchSize int,
	log *logger.Logger,
) *FollowUpSweep {
	if batchSize < 1 {
		batchSize = sweepBatchSize
	}
	return &FollowUpSweep{
		customers: customers,
		sender:    sender,
		age:       age,
		window:    window,
		batchSize: batchSize,
		limiter:   rate.NewLimiter(rate.Limit(sendsPerSecond), 1),
		log:       log,
	}
}

// Run executes one sweep.
func (s *FollowUpSweep) Run(ctx context.Context) (SweepResult, error) {
	cutoff := time.Now().Add(-s.age)

	customers, err := s.customers.ListInactiveSince(ctx, cutoff, s.batchSize)
	if err != nil {
		return SweepResult{}, err
	}

	var result SweepResult
	for _, customer := range customers {
		result.Processed++

		if err := s.limiter.Wait(ctx); err != nil {
			return result, err
		}

		sent, err := s.sender.SendFollowUp(ctx, notification.FollowUp{
			CustomerID: customer.ID,
			Phone:      customer.Phone,
			Language:   customer.Language,
		}, s.window)
		switch {
		case err != nil:
			s.log.Warn("follow-up failed", "customer_id", customer.ID, "error", err)
			result.Failed++
		case !sent:
			result.Skipped++
		default:
			result.Successful++
		}
	}

	s.log.Info("follow-up sweep finished",
		"processed", result.Processed,
		"successful", result.Successful,
		"skipped", result.Skipped,
		"failed", result.Failed,
	)

	return result, nil
}
