package operation

import (
	"fmt"

	"github.com/jhoicas/stock-operations/internal/domain"
	"github.com/jhoicas/stock-operations/internal/domain/entity"
)

// transitions tabla de transiciones permitidas. PENDING y COMPLETED los fija el servidor;
// el cliente solo los refleja.
var transitions = map[entity.OperationStatus][]entity.OperationStatus{
	entity.OperationStatusNew:       {entity.OperationStatusPending, entity.OperationStatusCompleted, entity.OperationStatusCancelled},
	entity.OperationStatusPending:   {entity.OperationStatusCompleted, entity.OperationStatusCancelled},
	entity.OperationStatusCompleted: {entity.OperationStatusRollback},
}

// CanTransition indica si la transición from -> to es válida.
func CanTransition(from, to entity.OperationStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// EnsureTransition devuelve ErrInvalidTransition si la operación no puede pasar a to.
func EnsureTransition(op *entity.StockOperation, to entity.OperationStatus) error {
	if op == nil {
		return fmt.Errorf("%w: operación nula", domain.ErrInvalidInput)
	}
	if !CanTransition(op.Status(), to) {
		return fmt.Errorf("%w: %s -> %s (operación %s)", domain.ErrInvalidTransition, op.Status(), to, op)
	}
	return nil
}

// EnsureRollbackAllowed solo una operación COMPLETED puede revertirse.
// Se comprueba antes de cualquier llamada de red.
func EnsureRollbackAllowed(op *entity.StockOperation) error {
	return EnsureTransition(op, entity.OperationStatusRollback)
}

// EnsureCancelAllowed solo NEW o PENDING pueden cancelarse.
func EnsureCancelAllowed(op *entity.StockOperation) error {
	return EnsureTransition(op, entity.OperationStatusCancelled)
}
