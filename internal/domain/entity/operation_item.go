package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// OperationItem línea de una operación: cantidad de un ítem, opcionalmente ligada a lote/vencimiento.
// Calculated* indican que el valor se derivó de los valores por defecto del ítem.
type OperationItem struct {
	Item                 *Ref
	Quantity             decimal.Decimal
	Expiration           *time.Time
	CalculatedExpiration bool
	BatchOperation       *Ref
	CalculatedBatch      bool
}

// String devuelve el nombre del ítem.
func (i OperationItem) String() string {
	return i.Item.String()
}
