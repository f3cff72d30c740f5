package scheduler

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const TaskPickupReminderSweep = "orders.pickup_reminders.sweep"

const TaskFollowUpSweep = "customers.follow_ups.sweep"

// SweepPayload carries when a sweep was requested, for tracing slow queues.
type SweepPayload struct {
	RequestedAt time.Time `json:"requestedAt"`
}

func NewPickupReminderSweepTask(payload SweepPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPickupReminderSweep, data), nil
}

func NewFollowUpSweepTask(payload SweepPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskFollowUpSweep, data), nil
}

func ParseSweepPayload(task *asynq.Task) (SweepPayload, error) {
	var payload SweepPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return SweepPayload{}, err
	}
	return payload, nil
}
