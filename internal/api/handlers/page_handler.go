package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/todo-api/internal/web"
	"go.uber.org/zap"
)

type PageHandler struct {
	pages     *web.Pages
	signInURL string
	quota     int
	log       *zap.Logger
}

func NewPageHandler(pages *web.Pages, signInURL string, quota int, log *zap.Logger) *PageHandler {
	return &PageHandler{pages: pages, signInURL: signInURL, quota: quota, log: log}
}

func (h *PageHandler) render(c *fiber.Ctx, name, title string) error {
	body, err := h.pages.Render(name, web.PageData{
		Title:     title,
		SignInURL: h.signInURL,
		Quota:     h.quota,
	})
	if err != nil {
		h.log.Error("render page", zap.String("page", name), zap.Error(err))
		return fiber.ErrInternalServerError
	}
	c.Type("html", "utf-8")
	return c.Send(body)
}

func (h *PageHandler) Home(c *fiber.Ctx) error {
	return h.render(c, web.PageHome, "Home")
}

func (h *PageHandler) SignIn(c *fiber.Ctx) error {
	return h.render(c, web.PageSignIn, "Sign in")
}

func (h *PageHandler) Dashboard(c *fiber.Ctx) error {
	return h.render(c, web.PageDashboard, "Dashboard")
}

func (h *PageHandler) AdminDashboard(c *fiber.Ctx) error {
	return h.render(c, web.PageAdminDashboard, "Admin")
}

func (h *PageHandler) Error(c *fiber.Ctx) error {
	return h.render(c, web.PageError, "Error")
}
