package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind distingue las variantes de transacción.
type TransactionKind string

// Variantes de transacción.
const (
	TransactionKindReserved  TransactionKind = "reserved"
	TransactionKindOperation TransactionKind = "operation"
)

// ExpirationLayout formato con el que se muestra el vencimiento en las etiquetas.
const ExpirationLayout = "2006-01-02"

// TransactionBase campos comunes de una entrada del libro de inventario.
// Las transacciones las crea el servidor y son inmutables; este módulo solo las lee.
type TransactionBase struct {
	ID                   string
	Operation            *Ref
	Item                 *Ref
	Quantity             decimal.Decimal
	Expiration           *time.Time
	DateCreated          time.Time
	BatchOperation       *Ref
	CalculatedExpiration bool
	CalculatedBatch      bool
}

// Transaction es la variante etiquetada (ReservedTransaction | OperationTransaction).
type Transaction interface {
	Kind() TransactionKind
	Base() TransactionBase
	String() string
}

// ReservedTransaction cantidad reservada por una operación aún no aplicada.
type ReservedTransaction struct {
	TransactionBase
	Available bool
}

// OperationTransaction entrada concreta del libro producida al ejecutar la operación en una bodega.
type OperationTransaction struct {
	TransactionBase
	Stockroom   *Ref
	Patient     *Ref
	Institution *Ref
}

func (t *ReservedTransaction) Kind() TransactionKind  { return TransactionKindReserved }
func (t *ReservedTransaction) Base() TransactionBase  { return t.TransactionBase }
func (t *ReservedTransaction) String() string         { return t.TransactionBase.String() }
func (t *OperationTransaction) Kind() TransactionKind { return TransactionKindOperation }
func (t *OperationTransaction) Base() TransactionBase { return t.TransactionBase }
func (t *OperationTransaction) String() string        { return t.TransactionBase.String() }

// String formatea "<ítem> (<vencimiento>): <cantidad>"; sin vencimiento omite el paréntesis.
func (b TransactionBase) String() string {
	exp := ": "
	if b.Expiration != nil {
		exp = " (" + b.Expiration.Format(ExpirationLayout) + "): "
	}
	return b.Item.String() + exp + b.Quantity.String()
}
