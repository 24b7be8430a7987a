package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	applog "dealership/internal/log"
	"dealership/internal/services"
)

const msgInternal = "Something went wrong. Please try again."

func errorJSON(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"status":    status,
		"error":     utils.StatusMessage(status),
		"message":   msg,
	})
}

// invalid rejects a request whose input failed validation.
func invalid(c *fiber.Ctx, action, field string) error {
	c.Status(fiber.StatusBadRequest)
	applog.Security(c, "validation.fail", map[string]any{"action": action, "field": field})
	return errorJSON(c, fiber.StatusBadRequest, "invalid "+field)
}

// fail maps a service error onto a status code and a safe message.
func fail(c *fiber.Ctx, action string, err error, fields map[string]any) error {
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.Status(fiber.StatusNotFound)
		applog.Info(c, action+".notfound", fields)
		return errorJSON(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrInvalidState):
		c.Status(fiber.StatusConflict)
		applog.Security(c, action+".rejected", withErr(fields, err))
		return errorJSON(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, services.ErrInvalidRole):
		c.Status(fiber.StatusUnprocessableEntity)
		applog.Security(c, action+".rejected", withErr(fields, err))
		return errorJSON(c, fiber.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, services.ErrInvalidInput):
		c.Status(fiber.StatusBadRequest)
		applog.Security(c, "validation.fail", withErr(fields, err))
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrStorage), errors.Is(err, context.DeadlineExceeded):
		c.Status(fiber.StatusServiceUnavailable)
		applog.Error(c, action+".fail", err, fields)
		return errorJSON(c, fiber.StatusServiceUnavailable, "The store is busy. Please retry.")
	}
	c.Status(fiber.StatusInternalServerError)
	applog.Error(c, action+".fail", err, fields)
	return errorJSON(c, fiber.StatusInternalServerError, msgInternal)
}

func withErr(fields map[string]any, err error) map[string]any {
	out := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		out[k] = v
	}
	out["reason"] = err.Error()
	return out
}

// ErrorHandler is the app-wide fallback for errors handlers return instead
// of writing a response themselves.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError {
		return errorJSON(c, fe.Code, fe.Message)
	}
	c.Status(fiber.StatusInternalServerError)
	applog.Error(c, "server.error", err, nil)
	return errorJSON(c, fiber.StatusInternalServerError, msgInternal)
}

// NotFound answers any route nothing else matched.
func NotFound(c *fiber.Ctx) error {
	return errorJSON(c, fiber.StatusNotFound, "Page not found")
}

// Timeout bounds the storage work of each request.
func Timeout(d time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), d)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}
