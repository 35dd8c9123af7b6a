package queue

import (
	"github.com/maheshrc27/todo-api/internal/repository"
	"go.uber.org/zap"
)

type Queue struct {
	ur  repository.UserRepository
	log *zap.Logger
}

func NewQueue(ur repository.UserRepository, log *zap.Logger) *Queue {
	return &Queue{
		ur:  ur,
		log: log,
	}
}

const TaskTypeSubscriptionLapse = "subscription:lapse"

type SubscriptionLapsePayload struct {
	UserID string `json:"user_id"`
}
