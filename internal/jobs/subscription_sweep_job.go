package job

import (
	"context"
	"time"

	"github.com/maheshrc27/todo-api/internal/repository"
	"github.com/robfig/cron"
	"go.uber.org/zap"
)

type SubscriptionSweepJob struct {
	ur  repository.UserRepository
	log *zap.Logger
	now func() time.Time
}

func NewSubscriptionSweepJob(ur repository.UserRepository, log *zap.Logger) *SubscriptionSweepJob {
	return &SubscriptionSweepJob{
		ur:  ur,
		log: log,
		now: time.Now,
	}
}

// Sweep clears the subscribed flag on every user whose window has ended.
// End dates are left in place.
func (c *SubscriptionSweepJob) Sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	n, err := c.ur.DeactivateAllLapsed(ctx, c.now())
	if err != nil {
		c.log.Error("subscription sweep", zap.Error(err))
		return
	}
	if n > 0 {
		c.log.Info("subscription sweep", zap.Int64("deactivated", n))
	}
}

// Schedule registers the sweep on a new cron runner. An empty spec disables it.
func (c *SubscriptionSweepJob) Schedule(spec string) (*cron.Cron, error) {
	if spec == "" {
		return nil, nil
	}
	cr := cron.New()
	if err := cr.AddFunc(spec, c.Sweep); err != nil {
		return nil, err
	}
	return cr, nil
}
