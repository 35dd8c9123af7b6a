package service

import (
	"context"
	"errors"
	"time"

	"github.com/maheshrc27/todo-api/internal/models"
	"github.com/maheshrc27/todo-api/internal/repository"
	"github.com/maheshrc27/todo-api/internal/transfer"
	"go.uber.org/zap"
)

// LapseScheduler arranges for a subscription flag to be cleared once its
// window ends.
type LapseScheduler interface {
	ScheduleLapse(ctx context.Context, userID string, at time.Time) error
}

type SubscriptionService interface {
	Status(ctx context.Context, userID string) (*transfer.SubscriptionStatus, error)
	Subscribe(ctx context.Context, userID string) (*transfer.SubscriptionUpdate, error)
}

type subscriptionService struct {
	u     repository.UserRepository
	lapse LapseScheduler
	log   *zap.Logger
	now   func() time.Time
}

// NewSubscriptionService builds the service. lapse may be nil, in which case
// expiry is only applied lazily on read.
func NewSubscriptionService(u repository.UserRepository, lapse LapseScheduler, log *zap.Logger) SubscriptionService {
	return &subscriptionService{
		u:     u,
		lapse: lapse,
		log:   log,
		now:   time.Now,
	}
}

func (s *subscriptionService) Status(ctx context.Context, userID string) (*transfer.SubscriptionStatus, error) {
	user, isExist, err := s.u.GetByID(ctx, userID)
	if err != nil {
		s.log.Error("get user", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	if !isExist {
		return nil, ErrUserNotFound
	}

	now := s.now()
	if user.SubscriptionEnds != nil && user.SubscriptionEnds.After(now) {
		return &transfer.SubscriptionStatus{
			IsSubscribed:     user.IsSubscribed,
			SubscriptionEnds: user.SubscriptionEnds,
		}, nil
	}

	if user.SubscriptionLapsed(now) {
		if _, err := s.u.ClearLapsedSubscription(ctx, userID, now); err != nil {
			s.log.Error("clear lapsed subscription", zap.String("user_id", userID), zap.Error(err))
			return nil, err
		}
		s.log.Info("subscription lapsed", zap.String("user_id", userID), zap.Time("ended", *user.SubscriptionEnds))
	}

	return &transfer.SubscriptionStatus{IsSubscribed: false, SubscriptionEnds: nil}, nil
}

func (s *subscriptionService) Subscribe(ctx context.Context, userID string) (*transfer.SubscriptionUpdate, error) {
	user, isExist, err := s.u.GetByID(ctx, userID)
	if err != nil {
		s.log.Error("get user", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	if !isExist {
		return nil, ErrUserNotFound
	}

	now := s.now()
	if user.SubscriptionEnds != nil && user.SubscriptionEnds.After(now) {
		return nil, ErrAlreadySubscribed
	}

	next := models.NextSubscriptionEnd(user.SubscriptionEnds, now)
	updated, err := s.u.UpdateSubscriptionWindow(ctx, userID, user.SubscriptionEnds, next)
	if errors.Is(err, repository.ErrWindowConflict) {
		return nil, s.classifyConflict(ctx, userID, now)
	}
	if err != nil {
		s.log.Error("update subscription window", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	if s.lapse != nil && updated.SubscriptionEnds != nil {
		if err := s.lapse.ScheduleLapse(ctx, userID, *updated.SubscriptionEnds); err != nil {
			s.log.Warn("schedule subscription lapse", zap.String("user_id", userID), zap.Error(err))
		}
	}

	s.log.Info("subscribed", zap.String("user_id", userID), zap.Timep("ends", updated.SubscriptionEnds))
	return &transfer.SubscriptionUpdate{
		ID:               updated.ID,
		IsSubscribed:     updated.IsSubscribed,
		SubscriptionEnds: updated.SubscriptionEnds,
	}, nil
}

// classifyConflict decides what a lost renewal race means for the caller.
func (s *subscriptionService) classifyConflict(ctx context.Context, userID string, now time.Time) error {
	user, isExist, err := s.u.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !isExist {
		return ErrUserNotFound
	}
	if user.SubscriptionEnds != nil && user.SubscriptionEnds.After(now) {
		return ErrAlreadySubscribed
	}
	return ErrSubscriptionConflict
}
