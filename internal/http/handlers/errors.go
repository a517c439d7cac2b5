package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"

	"realtysite/internal/domain"
	applog "realtysite/internal/log"
)

func statusOf(kind domain.ErrorKind) int {
	switch kind {
	case domain.ErrNotFound:
		return fiber.StatusNotFound
	case domain.ErrInvalidSchedule, domain.ErrInvalidTransition, domain.ErrValidation, domain.ErrSchemaViolation:
		return fiber.StatusUnprocessableEntity
	case domain.ErrConflict:
		return fiber.StatusConflict
	case domain.ErrUploadFailed:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

// fail answers a failed request. Domain errors carry their kind and message
// to the caller; anything else becomes a generic 500 and is logged.
func fail(c *fiber.Ctx, action string, err error) error {
	var de *domain.Error
	if !errors.As(err, &de) {
		applog.Error(c, action+".fail", err, nil)
		if wantsJSON(c) {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": fiber.Map{
				"kind": "INTERNAL", "message": "something went wrong",
			}})
		}
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Something went wrong. Please try again."})
	}
	status := statusOf(de.Kind)
	applog.Info(c, action+".rejected", map[string]any{"kind": string(de.Kind), "message": de.Message, "path": de.Path})
	if wantsJSON(c) {
		return c.Status(status).JSON(fiber.Map{"error": de})
	}
	return c.Status(status).Render("notfound", fiber.Map{"Message": de.Message})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": fiber.Map{
		"kind": string(domain.ErrValidation), "message": message,
	}})
}

// ErrorHandler is the app-wide fallback: log and show a friendly page.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "Something went wrong. Please try again."
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		if code < fiber.StatusInternalServerError {
			msg = fe.Message
		}
	}
	if code >= fiber.StatusInternalServerError {
		applog.Error(c, "server.error", err, nil)
	}
	if rerr := c.Status(code).Render("notfound", fiber.Map{"Message": msg}); rerr != nil {
		return c.Status(code).SendString(msg)
	}
	return nil
}
