package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/maheshrc27/todo-api/internal/transfer"
	svix "github.com/svix/svix-webhooks/go"
	"go.uber.org/zap"
)

const (
	HeaderSvixID        = "svix-id"
	HeaderSvixTimestamp = "svix-timestamp"
	HeaderSvixSignature = "svix-signature"
)

type WebhookService interface {
	HandleEvent(ctx context.Context, payload []byte, headers http.Header) error
}

type webhookService struct {
	secret string
	users  UserService
	log    *zap.Logger
}

func NewWebhookService(secret string, users UserService, log *zap.Logger) WebhookService {
	return &webhookService{
		secret: secret,
		users:  users,
		log:    log,
	}
}

// HandleEvent verifies a signed identity provider event and applies it.
// Event types other than user.created are accepted and ignored.
func (s *webhookService) HandleEvent(ctx context.Context, payload []byte, headers http.Header) error {
	if s.secret == "" {
		return ErrWebhookSecretMissing
	}
	if headers.Get(HeaderSvixID) == "" || headers.Get(HeaderSvixTimestamp) == "" || headers.Get(HeaderSvixSignature) == "" {
		return ErrMissingWebhookHeaders
	}

	wh, err := svix.NewWebhook(s.secret)
	if err != nil {
		s.log.Error("invalid webhook secret", zap.Error(err))
		return ErrWebhookSecretMissing
	}
	if err := wh.Verify(payload, headers); err != nil {
		s.log.Warn("webhook signature rejected", zap.String("svix_id", headers.Get(HeaderSvixID)), zap.Error(err))
		return ErrInvalidSignature
	}

	var event transfer.WebhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	s.log.Info("webhook received", zap.String("type", event.Type), zap.String("svix_id", headers.Get(HeaderSvixID)))

	switch event.Type {
	case transfer.EventUserCreated:
		var data transfer.UserCreatedData
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
		return s.users.RegisterUser(ctx, &data)
	}

	return nil
}
