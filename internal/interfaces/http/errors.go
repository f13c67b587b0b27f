package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-operations/internal/application/dto"
	"github.com/jhoicas/stock-operations/internal/domain"
)

// errorStatus traduce los errores de dominio a código HTTP y código de error del cuerpo.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, "INVALID_INPUT"
	case errors.Is(err, domain.ErrInvalidAttribute):
		return fiber.StatusUnprocessableEntity, "INVALID_ATTRIBUTE"
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrInvalidTransition):
		return fiber.StatusConflict, "INVALID_TRANSITION"
	case errors.Is(err, domain.ErrOperationLocked):
		return fiber.StatusConflict, "OPERATION_LOCKED"
	case errors.Is(err, domain.ErrConflict):
		return fiber.StatusConflict, "CONFLICT"
	case errors.Is(err, domain.ErrReferenceUnavailable):
		return fiber.StatusServiceUnavailable, "REFERENCE_UNAVAILABLE"
	case errors.Is(err, domain.ErrStoreUnavailable):
		return fiber.StatusServiceUnavailable, "STORE_UNAVAILABLE"
	case errors.Is(err, domain.ErrStoreRejected):
		return fiber.StatusBadGateway, "STORE_REJECTED"
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusGatewayTimeout, "TIMEOUT"
	}
	return fiber.StatusInternalServerError, "INTERNAL"
}

// writeError responde con el ErrorResponse correspondiente a err.
func writeError(c *fiber.Ctx, err error) error {
	status, code := errorStatus(err)
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: err.Error()})
}

// validationFailed responde 422 con los errores de campo.
func validationFailed(c *fiber.Ctx, errs []dto.FieldErrorDTO) error {
	return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ValidationResponse{Valid: false, Errors: errs})
}
