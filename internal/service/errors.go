package service

import (
	"errors"

	"github.com/maheshrc27/todo-api/internal/repository"
)

var (
	ErrUserNotFound          = repository.ErrUserNotFound
	ErrQuotaExceeded         = repository.ErrQuotaExceeded
	ErrTodoNotFound          = errors.New("todo not found")
	ErrInvalidInput          = errors.New("invalid input")
	ErrAlreadySubscribed     = errors.New("already subscribed")
	ErrSubscriptionConflict  = errors.New("subscription changed concurrently")
	ErrWebhookSecretMissing  = errors.New("webhook secret is not configured")
	ErrMissingWebhookHeaders = errors.New("missing svix headers")
	ErrInvalidSignature      = errors.New("invalid signature")
	ErrInvalidPayload        = errors.New("invalid webhook payload")
	ErrMissingPrimaryEmail   = errors.New("missing primary email address")
	ErrIdentityUnavailable   = errors.New("identity provider request failed")
)
