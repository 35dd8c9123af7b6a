package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/todo-api/internal/service"
	"go.uber.org/zap"
)

type SubscriptionHandler struct {
	s   service.SubscriptionService
	log *zap.Logger
}

func NewSubscriptionHandler(service service.SubscriptionService, log *zap.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{s: service, log: log}
}

func (h *SubscriptionHandler) GetSubscription(c *fiber.Ctx) error {
	userID := GetUserID(c)

	status, err := h.s.Status(c.UserContext(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return errorJSON(c, fiber.StatusNotFound, "User not found")
		}
		h.log.Error("subscription status", zap.String("user_id", userID), zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "Unable to read subscription")
	}

	return c.Status(fiber.StatusOK).JSON(status)
}

func (h *SubscriptionHandler) Subscribe(c *fiber.Ctx) error {
	userID := GetUserID(c)

	updated, err := h.s.Subscribe(c.UserContext(), userID)
	switch {
	case err == nil:
		return c.Status(fiber.StatusOK).JSON(updated)
	case errors.Is(err, service.ErrAlreadySubscribed):
		return errorJSON(c, fiber.StatusBadRequest, "Already subscribed")
	case errors.Is(err, service.ErrUserNotFound):
		return errorJSON(c, fiber.StatusNotFound, "User not found")
	case errors.Is(err, service.ErrSubscriptionConflict):
		return errorJSON(c, fiber.StatusConflict, "Subscription changed, please retry")
	}

	h.log.Error("subscribe", zap.String("user_id", userID), zap.Error(err))
	return errorJSON(c, fiber.StatusInternalServerError, "Unable to update subscription")
}
