package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/todo-api/internal/service"
	"github.com/maheshrc27/todo-api/internal/transfer"
	"go.uber.org/zap"
)

const (
	LocalUserID = "user_id"
	LocalRole   = "role"
)

const (
	PathSignIn         = "/sign-in"
	PathDashboard      = "/dashboard"
	PathAdminDashboard = "/admin/dashboard"
	PathError          = "/error"
)

type TokenValidator interface {
	Validate(token string) (*transfer.SessionClaims, error)
}

type RoleResolver interface {
	GetUserRole(ctx context.Context, userID string) (string, error)
}

type AuthMiddleware struct {
	tokens     TokenValidator
	roles      RoleResolver
	cookieName string
	log        *zap.Logger
}

// NewAuthMiddleware builds the access gate. A nil validator treats every
// request as anonymous.
func NewAuthMiddleware(tokens TokenValidator, roles RoleResolver, cookieName string, log *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		tokens:     tokens,
		roles:      roles,
		cookieName: cookieName,
		log:        log,
	}
}

func isAPI(path string) bool {
	return path == "/api" || strings.HasPrefix(path, "/api/")
}

func isAdmin(path string) bool {
	return hasSegmentPrefix(path, "/admin") || hasSegmentPrefix(path, "/api/admin")
}

// isPublic reports whether path is on the allow-list anonymous callers may reach.
func isPublic(path string) bool {
	switch {
	case path == "/", path == "/api/webhook/register":
		return true
	case strings.HasPrefix(path, "/sign-in"), strings.HasPrefix(path, "/sign-up"):
		return true
	}
	return false
}

// isPassThrough covers routes served to everyone without any redirect.
func isPassThrough(path string) bool {
	return path == "/healthz" || path == PathError || strings.HasPrefix(path, "/static/") || path == "/favicon.ico"
}

func hasSegmentPrefix(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

// normalizePath lowercases and trims the path so route classes cannot be
// dodged by case or a trailing slash.
func normalizePath(p string) string {
	p = strings.ToLower(p)
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
	}
	if p == "" {
		return "/"
	}
	return p
}

func (m *AuthMiddleware) sessionToken(c *fiber.Ctx) string {
	if auth := c.Get(fiber.HeaderAuthorization); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return c.Cookies(m.cookieName)
}

// identity returns the authenticated user id, or "" for anonymous callers.
func (m *AuthMiddleware) identity(c *fiber.Ctx) string {
	if m.tokens == nil {
		return ""
	}
	token := m.sessionToken(c)
	if token == "" {
		return ""
	}
	claims, err := m.tokens.Validate(token)
	if err != nil {
		m.log.Debug("session token rejected", zap.Error(err))
		return ""
	}
	return claims.Subject
}

// role fetches the caller's role at most once per request.
func (m *AuthMiddleware) role(c *fiber.Ctx, userID string) (string, error) {
	if role, ok := c.Locals(LocalRole).(string); ok {
		return role, nil
	}
	role, err := m.roles.GetUserRole(c.UserContext(), userID)
	if err != nil {
		return "", err
	}
	c.Locals(LocalRole, role)
	return role, nil
}

func dashboardFor(role string) string {
	if role == service.RoleAdmin {
		return PathAdminDashboard
	}
	return PathDashboard
}

func (m *AuthMiddleware) AuthMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := normalizePath(c.Path())
		if isPassThrough(path) {
			return c.Next()
		}

		if isAPI(path) {
			return m.guardAPI(c, path)
		}
		return m.guardPage(c, path)
	}
}

func (m *AuthMiddleware) guardAPI(c *fiber.Ctx, path string) error {
	if isPublic(path) {
		return c.Next()
	}

	userID := m.identity(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}
	c.Locals(LocalUserID, userID)

	if isAdmin(path) {
		role, err := m.role(c, userID)
		if err != nil {
			m.log.Error("resolve role", zap.String("user_id", userID), zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Unable to resolve role",
			})
		}
		if role != service.RoleAdmin {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Forbidden",
			})
		}
	}

	return c.Next()
}

func (m *AuthMiddleware) guardPage(c *fiber.Ctx, path string) error {
	public := isPublic(path)

	userID := m.identity(c)
	if userID == "" {
		if public {
			return c.Next()
		}
		return c.Redirect(PathSignIn, fiber.StatusFound)
	}
	c.Locals(LocalUserID, userID)

	if !public && path != PathDashboard && !isAdmin(path) {
		return c.Next()
	}

	role, err := m.role(c, userID)
	if err != nil {
		m.log.Error("resolve role", zap.String("user_id", userID), zap.Error(err))
		return c.Redirect(PathError, fiber.StatusFound)
	}

	switch {
	case role == service.RoleAdmin && path == PathDashboard:
		return c.Redirect(PathAdminDashboard, fiber.StatusFound)
	case role != service.RoleAdmin && isAdmin(path):
		return c.Redirect(PathDashboard, fiber.StatusFound)
	case public:
		return c.Redirect(dashboardFor(role), fiber.StatusFound)
	}

	return c.Next()
}
