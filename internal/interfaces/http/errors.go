package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Cotizaciones-api/internal/application/dto"
	"github.com/jhoicas/Cotizaciones-api/internal/domain"
)

// requestError petición mal formada, detectada antes del caso de uso.
type requestError struct {
	code, msg string
}

func (e requestError) Error() string { return e.msg }

var (
	errBody = requestError{"INVALID_BODY", "cuerpo inválido"}
	errKind = requestError{"VALIDATION", "kind debe ser bay, frameline, flue o row"}
)

// respondError traduce un error de dominio a {code, message} con su status.
func respondError(c *fiber.Ctx, err error) error {
	var re requestError
	if errors.As(err, &re) {
		return fail(c, fiber.StatusBadRequest, re.code, re.msg)
	}
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return fail(c, fiber.StatusBadRequest, "VALIDATION", err.Error())
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrUserNotFound):
		return fail(c, fiber.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, domain.ErrReadOnly):
		return fail(c, fiber.StatusConflict, "READ_ONLY", err.Error())
	case errors.Is(err, domain.ErrDuplicate), errors.Is(err, domain.ErrEmailAlreadyExists):
		return fail(c, fiber.StatusConflict, "DUPLICATE", err.Error())
	case errors.Is(err, domain.ErrConflict):
		return fail(c, fiber.StatusConflict, "CONFLICT", err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		return fail(c, fiber.StatusUnauthorized, "UNAUTHORIZED", err.Error())
	case errors.Is(err, domain.ErrForbidden):
		return fail(c, fiber.StatusForbidden, "FORBIDDEN", err.Error())
	}
	return fail(c, fiber.StatusInternalServerError, "INTERNAL", err.Error())
}

func fail(c *fiber.Ctx, status int, code, msg string) error {
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: msg})
}

func invalidBody(c *fiber.Ctx) error {
	return fail(c, fiber.StatusBadRequest, "INVALID_BODY", "cuerpo inválido")
}

func validation(c *fiber.Ctx, msg string) error {
	return fail(c, fiber.StatusBadRequest, "VALIDATION", msg)
}

func notFound(c *fiber.Ctx, msg string) error {
	return fail(c, fiber.StatusNotFound, "NOT_FOUND", msg)
}

// statusOf status final de la respuesta, incluso si el handler devolvió un
// error que aún no pasó por el ErrorHandler.
func statusOf(c *fiber.Ctx, err error) int {
	if err != nil {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return fe.Code
		}
		return fiber.StatusInternalServerError
	}
	return c.Response().StatusCode()
}
