package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"

	"realtysite/internal/domain"
	applog "realtysite/internal/log"
	"realtysite/internal/services"
)

// LoadUser attaches the logged-in user, if any, for templates and logs.
func LoadUser(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if sid := c.Cookies("sid"); sid != "" {
			if u, err := auth.CurrentUser(sid); err == nil && u != nil {
				c.Locals("user", u)
				c.Locals("userID", u.ID)
			}
		}
		return c.Next()
	}
}

func RequireAdmin(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid := c.Cookies("sid")
		if sid == "" {
			return c.Redirect("/login")
		}
		u, err := auth.CurrentUser(sid)
		if err != nil || u == nil || u.Role != domain.RoleAdmin {
			applog.Security(c, "access.denied.admin", map[string]any{"sid": sid})
			return c.Status(fiber.StatusForbidden).Render("notfound", fiber.Map{"Message": "Access denied"})
		}
		c.Locals("user", u)
		c.Locals("userID", u.ID)
		return c.Next()
	}
}

// CSRFToken reads the token from the X-Csrf-Token header used by scripted
// admin calls, falling back to the "csrf" form field.
func CSRFToken(c *fiber.Ctx) (string, error) {
	if tok := c.Get(csrf.HeaderName); tok != "" {
		return tok, nil
	}
	return csrf.CsrfFromForm("csrf")(c)
}

// CSRFConfig is the csrf middleware setup shared by the server and tests.
func CSRFConfig(secure bool) csrf.Config {
	return csrf.Config{
		Extractor:      CSRFToken,
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		CookieSecure:   secure,
		ContextKey:     "csrf",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Security(c, "csrf.fail", map[string]any{"err": err.Error()})
			if wantsJSON(c) {
				return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": fiber.Map{
					"kind": "FORBIDDEN", "message": "security check failed",
				}})
			}
			return c.Status(fiber.StatusForbidden).Render("notfound", fiber.Map{"Message": "Security check failed. Please refresh and try again."})
		},
	}
}
