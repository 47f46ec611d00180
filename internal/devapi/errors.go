package devapi

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	applog "storefront/internal/log"
)

// envelope is the error body every failure is answered with.
type envelope struct {
	Timestamp string `json:"timestamp"`
	Status    int    `json:"status"`
	Error     string `json:"error"`
	Message   string `json:"message"`
	Path      string `json:"path"`
}

func badRequest(format string, args ...any) error {
	return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf(format, args...))
}

func notFound(kind, field string, value any) error {
	return fiber.NewError(fiber.StatusNotFound, fmt.Sprintf("%s not found with %s : '%v'", kind, field, value))
}

func conflict(kind, field string, value any) error {
	return fiber.NewError(fiber.StatusConflict, fmt.Sprintf("%s already exists with %s : '%v'", kind, field, value))
}

var (
	errUnauthenticated = fiber.NewError(fiber.StatusUnauthorized, "Full authentication is required to access this resource")
	errForbidden       = fiber.NewError(fiber.StatusForbidden, "Access denied. You don't have permission to access this resource.")
)

// errorHandler hides internal errors behind a generic message; only
// *fiber.Error text reaches the client.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "An unexpected error occurred"
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		msg = fe.Message
	}
	if code >= fiber.StatusInternalServerError {
		applog.ErrorCtx(c, "server.error", err, nil)
	}
	return c.Status(code).JSON(envelope{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Status:    code,
		Error:     http.StatusText(code),
		Message:   msg,
		Path:      c.Path(),
	})
}
