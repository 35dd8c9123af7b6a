package service

import (
	"context"

	"github.com/maheshrc27/todo-api/internal/models"
	"github.com/maheshrc27/todo-api/internal/repository"
	"github.com/maheshrc27/todo-api/internal/transfer"
	"go.uber.org/zap"
)

type UserService interface {
	RegisterUser(ctx context.Context, data *transfer.UserCreatedData) error
}

type userService struct {
	u   repository.UserRepository
	log *zap.Logger
}

func NewUserService(u repository.UserRepository, log *zap.Logger) UserService {
	return &userService{
		u:   u,
		log: log,
	}
}

// RegisterUser stores the user announced by a "user created" event, keyed by
// the provider's id with the primary email as username.
func (s *userService) RegisterUser(ctx context.Context, data *transfer.UserCreatedData) error {
	if data.ID == "" || len(data.EmailAddresses) == 0 || data.PrimaryEmailAddressID == "" {
		return ErrMissingPrimaryEmail
	}

	email, ok := data.PrimaryEmail()
	if !ok || email == "" {
		return ErrMissingPrimaryEmail
	}

	created, err := s.u.Create(ctx, &models.User{
		ID:           data.ID,
		Username:     email,
		IsSubscribed: false,
	})
	if err != nil {
		s.log.Error("insert user", zap.String("user_id", data.ID), zap.Error(err))
		return err
	}

	if !created {
		s.log.Info("user already registered", zap.String("user_id", data.ID))
		return nil
	}
	s.log.Info("user registered", zap.String("user_id", data.ID))
	return nil
}
