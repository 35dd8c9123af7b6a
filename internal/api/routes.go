package api

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/maheshrc27/todo-api/internal/api/handlers"
	"github.com/maheshrc27/todo-api/internal/api/middleware"
	"go.uber.org/zap"
)

type Handlers struct {
	Todos        *handlers.TodoHandler
	Subscription *handlers.SubscriptionHandler
	Webhook      *handlers.WebhookHandler
	Admin        *handlers.AdminHandler
	Pages        *handlers.PageHandler
	Health       *handlers.HealthHandler
}

type Options struct {
	FrontendURL       string
	RateLimitWriteMax int
}

func errorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		msg := "Internal Server Error"

		var e *fiber.Error
		if errors.As(err, &e) {
			code = e.Code
			msg = e.Message
		} else {
			log.Error("unhandled error", zap.String("path", c.Path()), zap.Error(err))
		}

		if strings.HasPrefix(c.Path(), "/api/") {
			return c.Status(code).JSON(fiber.Map{"error": msg})
		}
		return c.Status(code).SendString(msg)
	}
}

// NewApp wires middleware and routes. Every request passes the access gate
// before reaching a handler.
func NewApp(log *zap.Logger, auth *middleware.AuthMiddleware, h Handlers, opts Options) *fiber.App {
	app := fiber.New(fiber.Config{
		CaseSensitive: true,
		ReadTimeout:   10 * time.Second,
		WriteTimeout:  10 * time.Second,
		BodyLimit:     1 * 1024 * 1024,
		ErrorHandler:  errorHandler(log),
	})

	app.Use(middleware.RequestLogger(log))
	app.Use(recover.New())
	if opts.FrontendURL != "" {
		app.Use(cors.New(cors.Config{
			AllowOrigins:     opts.FrontendURL,
			AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
			AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
			AllowCredentials: true,
			MaxAge:           3600,
		}))
	}
	app.Use(auth.AuthMiddleware())

	app.Get("/healthz", h.Health.Health)

	app.Get("/", h.Pages.Home)
	app.Get("/sign-in", h.Pages.SignIn)
	app.Get("/sign-up", h.Pages.SignIn)
	app.Get("/dashboard", h.Pages.Dashboard)
	app.Get("/admin/dashboard", h.Pages.AdminDashboard)
	app.Get("/error", h.Pages.Error)

	api := app.Group("/api")

	api.Post("/webhook/register", h.Webhook.RegisterWebhook)

	writeLimit := middleware.RateLimitWrite(opts.RateLimitWriteMax)

	todos := api.Group("/todos", writeLimit)
	todos.Get("/", h.Todos.ListTodos)
	todos.Post("/", h.Todos.CreateTodo)
	todos.Put("/:id", h.Todos.UpdateTodo)
	todos.Delete("/:id", h.Todos.RemoveTodo)

	subscription := api.Group("/subscription", writeLimit)
	subscription.Get("/", h.Subscription.GetSubscription)
	subscription.Post("/", h.Subscription.Subscribe)

	admin := api.Group("/admin")
	admin.Get("/stats", h.Admin.Stats)
	admin.Get("/users", h.Admin.ListUsers)

	return app
}
