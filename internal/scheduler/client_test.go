package scheduler

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

type fakeSchedulerConfig struct {
	redisURL string
}

func (f fakeSchedulerConfig) GetRedisURL() string                 { return f.redisURL }
func (f fakeSchedulerConfig) GetRedisTLSInsecure() bool           { return false }
func (f fakeSchedulerConfig) GetAsynqQueueName() string           { return "laundry" }
func (f fakeSchedulerConfig) GetAsynqConcurrency() int            { return 1 }
func (f fakeSchedulerConfig) GetPickupReminderAge() time.Duration { return 24 * time.Hour }
func (f fakeSchedulerConfig) GetFollowUpAge() time.Duration       { return 30 * 24 * time.Hour }
func (f fakeSchedulerConfig) GetFollowUpBatchSize() int           { return 100 }
func (f fakeSchedulerConfig) GetFollowUpWindow() time.Duration    { return 7 * 24 * time.Hour }

func TestNewClientRequiresRedisURL(t *testing.T) {
	if _, err := NewClient(fakeSchedulerConfig{}); err == nil {
		t.Fatal("expected an error without a redis url")
	}
}

func TestClientEnqueuesSweepTasks(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewClient(fakeSchedulerConfig{redisURL: "redis://" + mr.Addr()})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer func() { _ = client.Close() }()

	ctx := context.Background()
	if err := client.EnqueuePickupReminderSweep(ctx); err != nil {
		t.Fatalf("EnqueuePickupReminderSweep: %v", err)
	}
	if err := client.EnqueueFollowUpSweep(ctx); err != nil {
		t.Fatalf("EnqueueFollowUpSweep: %v", err)
	}

	var queued bool
	for _, key := range mr.Keys() {
		if strings.HasPrefix(key, "asynq:") && strings.Contains(key, "laundry") {
			queued = true
			break
		}
	}
	if !queued {
		t.Errorf("expected tasks on the laundry queue, keys: %v", mr.Keys())
	}
}
