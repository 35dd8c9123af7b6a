package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

func (j *Queue) HandleSubscriptionLapseTask(ctx context.Context, task *asynq.Task) error {
	var payload SubscriptionLapsePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	if payload.UserID == "" {
		return fmt.Errorf("empty user id: %w", asynq.SkipRetry)
	}

	return j.ExpireSubscription(ctx, payload.UserID, time.Now())
}

// ExpireSubscription clears the subscribed flag once the window has ended.
// A renewal that moved the end date forward makes this a no-op.
func (j *Queue) ExpireSubscription(ctx context.Context, userID string, now time.Time) error {
	changed, err := j.ur.DeactivateLapsed(ctx, userID, now)
	if err != nil {
		j.log.Error("expire subscription", zap.String("user_id", userID), zap.Error(err))
		return err
	}
	if changed {
		j.log.Info("subscription expired", zap.String("user_id", userID))
	}
	return nil
}

// Register attaches the queue's handlers to an asynq mux.
func (j *Queue) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TaskTypeSubscriptionLapse, j.HandleSubscriptionLapseTask)
}
