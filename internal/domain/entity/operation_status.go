package entity

import "fmt"

// OperationStatus estado de una operación de stock.
type OperationStatus string

// Estados permitidos. PENDING y COMPLETED solo los asigna el servidor.
const (
	OperationStatusNew       OperationStatus = "NEW"
	OperationStatusPending   OperationStatus = "PENDING"
	OperationStatusCancelled OperationStatus = "CANCELLED"
	OperationStatusCompleted OperationStatus = "COMPLETED"
	OperationStatusRollback  OperationStatus = "ROLLBACK"
)

// ParseOperationStatus convierte el valor recibido del almacén en un estado conocido.
func ParseOperationStatus(s string) (OperationStatus, error) {
	switch st := OperationStatus(s); st {
	case OperationStatusNew, OperationStatusPending, OperationStatusCancelled,
		OperationStatusCompleted, OperationStatusRollback:
		return st, nil
	}
	return "", fmt.Errorf("estado de operación desconocido: %q", s)
}

// String implementa fmt.Stringer.
func (s OperationStatus) String() string {
	return string(s)
}

// IsTerminal indica si ya no hay transiciones posibles desde el estado.
func (s OperationStatus) IsTerminal() bool {
	return s == OperationStatusCancelled || s == OperationStatusRollback
}

// IsLocked indica si los datos de cabecera e ítems ya no pueden modificarse desde el cliente.
func (s OperationStatus) IsLocked() bool {
	return s == OperationStatusCompleted || s.IsTerminal()
}
