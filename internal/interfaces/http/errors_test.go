package http

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/stock-operations/internal/application/dto"
	"github.com/jhoicas/stock-operations/internal/domain"
)

func TestErrorStatus(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("%w: id", domain.ErrInvalidInput), fiber.StatusBadRequest, "INVALID_INPUT"},
		{domain.ErrInvalidAttribute, fiber.StatusUnprocessableEntity, "INVALID_ATTRIBUTE"},
		{fmt.Errorf("op: %w", domain.ErrNotFound), fiber.StatusNotFound, "NOT_FOUND"},
		{domain.ErrInvalidTransition, fiber.StatusConflict, "INVALID_TRANSITION"},
		{domain.ErrOperationLocked, fiber.StatusConflict, "OPERATION_LOCKED"},
		{domain.ErrReferenceUnavailable, fiber.StatusServiceUnavailable, "REFERENCE_UNAVAILABLE"},
		{domain.ErrStoreUnavailable, fiber.StatusServiceUnavailable, "STORE_UNAVAILABLE"},
		{fmt.Errorf("save: %w", domain.ErrStoreRejected), fiber.StatusBadGateway, "STORE_REJECTED"},
		{context.DeadlineExceeded, fiber.StatusGatewayTimeout, "TIMEOUT"},
		{errors.New("boom"), fiber.StatusInternalServerError, "INTERNAL"},
	}
	for _, tc := range cases {
		status, code := errorStatus(tc.err)
		assert.Equal(t, tc.status, status, tc.err.Error())
		assert.Equal(t, tc.code, code, tc.err.Error())
	}
}

func TestValidateStruct_UsaNombresDelCable(t *testing.T) {
	fields := validateStruct(dto.OperationRequest{
		ID:    "no-uuid",
		Items: []dto.OperationItemRequest{{ItemID: ""}},
	})

	assert.Equal(t, "id debe ser un UUID válido", fields["id"])
	assert.Equal(t, "item_id es requerido", fields["items[0].item_id"])
	assert.Nil(t, validateStruct(dto.OperationRequest{OperationNumber: "OP-1"}))
}
