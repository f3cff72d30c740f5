package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"lavanderia_backend/platform/config"
	"lavanderia_backend/platform/logger"
)

const (
	defaultPickupSweepInterval   = time.Hour
	defaultFollowUpSweepInterval = 24 * time.Hour
)

// Worker consumes sweep tasks from the queue and executes them.
type Worker struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	pickups   *PickupReminderSweep
	followUps *FollowUpSweep
	log       *logger.Logger
}

// NewWorker builds an asynq server wired to the sweeps.
func NewWorker(cfg config.SchedulerConfig, pickups *PickupReminderSweep, followUps *FollowUpSweep, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:    server,
		mux:       mux,
		pickups:   pickups,
		followUps: followUps,
		log:       log,
	}

	mux.HandleFunc(TaskPickupReminderSweep, w.handlePickupReminderSweep)
	mux.HandleFunc(TaskFollowUpSweep, w.handleFollowUpSweep)

	return w, nil
}

func (w *Worker) handlePickupReminderSweep(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseSweepPayload(task)
	if err != nil {
		return err
	}

	w.log.Info("running pickup reminder sweep", "requested_at", payload.RequestedAt)
	_, err = w.pickups.Run(ctx)
	return err
}

func (w *Worker) handleFollowUpSweep(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseSweepPayload(task)
	if err != nil {
		return err
	}

	w.log.Info("running follow-up sweep", "requested_at", payload.RequestedAt)
	_, err = w.followUps.Run(ctx)
	return err
}

// Run serves tasks until the context is cancelled.
func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

// Enqueuer periodically queues the sweeps.
type Enqueuer struct {
	client           *Client
	pickupInterval   time.Duration
	followUpInterval time.Duration
	log              *logger.Logger
}

// NewEnqueuer creates the periodic enqueuer. Non-positive intervals fall
// back to the defaults: hourly pickup sweeps, daily follow-up sweeps.
func NewEnqueuer(client *Client, pickupInterval, followUpInterval time.Duration, log *logger.Logger) *Enqueuer {
	if pickupInterval <= 0 {
		pickupInterval = defaultPickupSweepInterval
	}
	if followUpInterval <= 0 {
		followUpInterval = defaultFollowUpSweepInterval
	}
	return &Enqueuer{
		client:           client,
		pickupInterval:   pickupInterval,
		followUpInterval: followUpInterval,
		log:              log,
	}
}

// Run enqueues both sweeps immediately and then on their intervals.
func (e *Enqueuer) Run(ctx context.Context) {
	if e == nil || e.client == nil {
		return
	}

	e.enqueuePickup(ctx)
	e.enqueueFollowUp(ctx)

	pickupTicker := time.NewTicker(e.pickupInterval)
	defer pickupTicker.Stop()
	followUpTicker := time.NewTicker(e.followUpInterval)
	defer followUpTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-pickupTicker.C:
			e.enqueuePickup(ctx)
		case <-followUpTicker.C:
			e.enqueueFollowUp(ctx)
		}
	}
}

func (e *Enqueuer) enqueuePickup(ctx context.Context) {
	if err := e.client.EnqueuePickupReminderSweep(ctx); err != nil {
		e.log.Warn("failed to enqueue pickup reminder sweep", "error", err)
	}
}

func (e *Enqueuer) enqueueFollowUp(ctx context.Context) {
	if err := e.client.EnqueueFollowUpSweep(ctx); err != nil {
		e.log.Warn("failed to enqueue follow-up sweep", "error", err)
	}
}
