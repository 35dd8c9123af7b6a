package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/todo-api/internal/service"
	"go.uber.org/zap"
)

type AdminHandler struct {
	s   service.AdminService
	log *zap.Logger
}

func NewAdminHandler(service service.AdminService, log *zap.Logger) *AdminHandler {
	return &AdminHandler{s: service, log: log}
}

func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.s.Stats(c.UserContext())
	if err != nil {
		h.log.Error("admin stats", zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "Unable to load stats")
	}
	return c.JSON(stats)
}

func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.s.ListUsers(c.UserContext(), c.QueryInt("page", 1))
	if err != nil {
		h.log.Error("admin list users", zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "Unable to list users")
	}
	return c.JSON(users)
}
