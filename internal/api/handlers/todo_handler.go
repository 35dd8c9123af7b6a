package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/todo-api/internal/service"
	"github.com/maheshrc27/todo-api/internal/transfer"
	"go.uber.org/zap"
)

type TodoHandler struct {
	s   service.TodoService
	log *zap.Logger
}

func NewTodoHandler(service service.TodoService, log *zap.Logger) *TodoHandler {
	return &TodoHandler{s: service, log: log}
}

func (h *TodoHandler) ListTodos(c *fiber.Ctx) error {
	userID := GetUserID(c)

	page, err := h.s.List(c.UserContext(), userID, transfer.TodoListQuery{
		Page:       c.QueryInt("page", 1),
		SearchTerm: c.Query("searchTerm"),
	})
	if err != nil {
		h.log.Error("list todos", zap.String("user_id", userID), zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "Unable to list todos")
	}

	return c.Status(fiber.StatusOK).JSON(page)
}

func (h *TodoHandler) CreateTodo(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var body transfer.TodoCreation
	if err := parseBody(c, &body); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Title is required and must be at most 255 characters")
	}

	todo, err := h.s.Create(c.UserContext(), userID, body.Title)
	switch {
	case err == nil:
		return c.Status(fiber.StatusCreated).JSON(todo)
	case errors.Is(err, service.ErrQuotaExceeded):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": h.s.QuotaMessage(),
		})
	case errors.Is(err, service.ErrInvalidInput):
		return errorJSON(c, fiber.StatusBadRequest, "Title is required and must be at most 255 characters")
	case errors.Is(err, service.ErrUserNotFound):
		return errorJSON(c, fiber.StatusNotFound, "User not found")
	}

	h.log.Error("create todo", zap.String("user_id", userID), zap.Error(err))
	return errorJSON(c, fiber.StatusInternalServerError, "Unable to create todo")
}

func (h *TodoHandler) UpdateTodo(c *fiber.Ctx) error {
	userID := GetUserID(c)

	id, ok := parseID(c, "id")
	if !ok {
		return errorJSON(c, fiber.StatusBadRequest, "Missing id")
	}

	var body transfer.TodoUpdate
	if err := parseBody(c, &body); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Title and completed are required")
	}

	todo, err := h.s.Update(c.UserContext(), userID, id, body.Title, *body.Completed)
	switch {
	case err == nil:
		return c.Status(fiber.StatusOK).JSON(todo)
	case errors.Is(err, service.ErrInvalidInput):
		return errorJSON(c, fiber.StatusBadRequest, "Title and completed are required")
	case errors.Is(err, service.ErrTodoNotFound):
		return errorJSON(c, fiber.StatusNotFound, "Todo not found")
	}

	h.log.Error("update todo", zap.String("user_id", userID), zap.Int64("todo_id", id), zap.Error(err))
	return errorJSON(c, fiber.StatusInternalServerError, "Failed to update todo")
}

func (h *TodoHandler) RemoveTodo(c *fiber.Ctx) error {
	userID := GetUserID(c)

	id, ok := parseID(c, "id")
	if !ok {
		return errorJSON(c, fiber.StatusBadRequest, "Missing id")
	}

	err := h.s.Remove(c.UserContext(), userID, id)
	switch {
	case err == nil:
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"deleted": true})
	case errors.Is(err, service.ErrTodoNotFound):
		return errorJSON(c, fiber.StatusNotFound, "Todo not found")
	}

	h.log.Error("remove todo", zap.String("user_id", userID), zap.Int64("todo_id", id), zap.Error(err))
	return errorJSON(c, fiber.StatusInternalServerError, "Failed to delete todo")
}
