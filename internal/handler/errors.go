package handler

import (
	"errors"
	"log/slog"

	"github.com/arturoeanton/codehub/internal/port"
	"github.com/gofiber/fiber/v3"
)

var notFoundErrors = []error{
	port.ErrRepoNotFound,
	port.ErrBranchNotFound,
	port.ErrFileNotFound,
	port.ErrUserNotFound,
	port.ErrGroupNotFound,
	port.ErrTaskNotFound,
}

// respondError maps service errors onto status codes. Bodies never carry
// internal detail; unexpected errors are logged and reported as a bare 500.
func respondError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, port.ErrNotFound):
		msg := port.ErrNotFound.Error()
		for _, nf := range notFoundErrors {
			if errors.Is(err, nf) {
				msg = nf.Error()
				break
			}
		}
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": msg})
	case errors.Is(err, port.ErrBadRequest):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": badRequestMessage(err)})
	case errors.Is(err, port.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": port.ErrConflict.Error()})
	case errors.Is(err, port.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": port.ErrForbidden.Error()})
	case errors.Is(err, port.ErrUnauthorized), errors.Is(err, port.ErrTokenInvalid), errors.Is(err, port.ErrTokenExpired):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": port.ErrUnauthorized.Error()})
	}

	slog.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
}

// badRequestMessage returns the caller-facing message of a wrapped
// ErrBadRequest, or the sentinel text when none was attached.
func badRequestMessage(err error) string {
	var br *badRequest
	if errors.As(err, &br) {
		return br.msg
	}
	return port.ErrBadRequest.Error()
}

type badRequest struct {
	msg string
}

func (e *badRequest) Error() string { return e.msg }
func (e *badRequest) Unwrap() error { return port.ErrBadRequest }

// errBadRequest builds a 400 error with a message safe to show the caller.
func errBadRequest(msg string) error {
	return &badRequest{msg: msg}
}
