package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/todo-api/internal/service"
	"go.uber.org/zap"
)

type WebhookHandler struct {
	s   service.WebhookService
	log *zap.Logger
}

func NewWebhookHandler(service service.WebhookService, log *zap.Logger) *WebhookHandler {
	return &WebhookHandler{s: service, log: log}
}

func (h *WebhookHandler) RegisterWebhook(c *fiber.Ctx) error {
	headers := http.Header{}
	for _, name := range []string{service.HeaderSvixID, service.HeaderSvixTimestamp, service.HeaderSvixSignature} {
		if v := c.Get(name); v != "" {
			headers.Set(name, v)
		}
	}

	// The body must be verified byte for byte, so copy it out of fiber's buffer.
	payload := append([]byte(nil), c.Body()...)

	err := h.s.HandleEvent(c.UserContext(), payload, headers)
	switch {
	case err == nil:
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"received": true})
	case errors.Is(err, service.ErrWebhookSecretMissing),
		errors.Is(err, service.ErrMissingWebhookHeaders),
		errors.Is(err, service.ErrInvalidSignature),
		errors.Is(err, service.ErrInvalidPayload),
		errors.Is(err, service.ErrMissingPrimaryEmail):
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	}

	h.log.Error("webhook", zap.Error(err))
	return errorJSON(c, fiber.StatusInternalServerError, "Error occurred")
}
