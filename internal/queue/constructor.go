package queue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Enqueuer is the part of *asynq.Client the scheduler needs.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// LapseScheduler enqueues a subscription:lapse task to run when a
// subscription window ends.
type LapseScheduler struct {
	client Enqueuer
	log    *zap.Logger
}

func NewLapseScheduler(client Enqueuer, log *zap.Logger) *LapseScheduler {
	return &LapseScheduler{client: client, log: log}
}

func NewSubscriptionLapseTask(userID string) (*asynq.Task, error) {
	payload, err := json.Marshal(SubscriptionLapsePayload{UserID: userID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSubscriptionLapse, payload), nil
}

func (s *LapseScheduler) ScheduleLapse(ctx context.Context, userID string, at time.Time) error {
	task, err := NewSubscriptionLapseTask(userID)
	if err != nil {
		return err
	}

	info, err := s.client.EnqueueContext(ctx, task, asynq.ProcessAt(at), asynq.MaxRetry(5))
	if err != nil {
		return err
	}

	s.log.Info("subscription lapse scheduled",
		zap.String("user_id", userID),
		zap.String("task_id", info.ID),
		zap.Time("process_at", at))
	return nil
}
