package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-operations/internal/domain"
)

// StockOperation agregado raíz: cabecera de un movimiento de inventario con sus líneas y atributos.
// Items y atributos pertenecen exclusivamente a la operación.
type StockOperation struct {
	ID              string
	OperationNumber string
	OperationDate   time.Time

	// OperationTypeRef siempre presente si se eligió tipo; OperationType es la copia completa
	// cuando ya se cargó (nil mientras no se resuelva).
	OperationTypeRef *Ref
	OperationType    *OperationType

	Source      *Ref
	Destination *Ref
	Institution *Ref
	Patient     *Ref

	Items      []OperationItem
	Attributes AttributeValues

	status      OperationStatus
	dateCreated time.Time
}

// NewStockOperation crea una operación local en estado NEW.
func NewStockOperation(id, number string, now time.Time) *StockOperation {
	return &StockOperation{
		ID:              id,
		OperationNumber: number,
		OperationDate:   now,
		Attributes:      AttributeValues{},
		status:          OperationStatusNew,
		dateCreated:     now,
	}
}

// RestoreStockOperation reconstruye una operación leída del almacén con su estado y fecha de creación.
func RestoreStockOperation(id, number string, status OperationStatus, dateCreated time.Time) *StockOperation {
	op := NewStockOperation(id, number, dateCreated)
	op.status = status
	return op
}

// Status devuelve el estado actual.
func (o *StockOperation) Status() OperationStatus { return o.status }

// DateCreated devuelve la fecha de creación (inmutable).
func (o *StockOperation) DateCreated() time.Time { return o.dateCreated }

// ApplyServerStatus refleja el estado devuelto por el servidor. El cliente nunca decide PENDING
// ni COMPLETED por sí mismo; solo copia lo que el almacén confirmó.
func (o *StockOperation) ApplyServerStatus(status OperationStatus) {
	o.status = status
}

// ReflectSaved copia lo que el almacén asignó al guardar: uuid, estado y fecha de creación.
func (o *StockOperation) ReflectSaved(saved *StockOperation) {
	if saved == nil {
		return
	}
	if saved.ID != "" {
		o.ID = saved.ID
	}
	o.status = saved.status
	if !saved.dateCreated.IsZero() {
		o.dateCreated = saved.dateCreated
	}
}

func (o *StockOperation) ensureEditable() error {
	if o.status.IsLocked() {
		return fmt.Errorf("%w: estado %s", domain.ErrOperationLocked, o.status)
	}
	return nil
}

// SetOperationType asigna el tipo (copia completa) y su referencia.
func (o *StockOperation) SetOperationType(t *OperationType) error {
	if err := o.ensureEditable(); err != nil {
		return err
	}
	o.OperationType = t
	o.OperationTypeRef = nil
	if t != nil {
		o.OperationTypeRef = t.Ref()
	}
	return nil
}

// SetSource asigna la bodega de origen.
func (o *StockOperation) SetSource(ref *Ref) error {
	if err := o.ensureEditable(); err != nil {
		return err
	}
	o.Source = ref
	return nil
}

// SetDestination asigna la bodega de destino.
func (o *StockOperation) SetDestination(ref *Ref) error {
	if err := o.ensureEditable(); err != nil {
		return err
	}
	o.Destination = ref
	return nil
}

// AddItem agrega una línea al final (el orden es solo de presentación/auditoría).
func (o *StockOperation) AddItem(item *Ref, quantity decimal.Decimal) error {
	if err := o.ensureEditable(); err != nil {
		return err
	}
	o.Items = append(o.Items, OperationItem{Item: item, Quantity: quantity})
	return nil
}

// RemoveItem quita la línea en la posición idx.
func (o *StockOperation) RemoveItem(idx int) error {
	if err := o.ensureEditable(); err != nil {
		return err
	}
	if idx < 0 || idx >= len(o.Items) {
		return fmt.Errorf("%w: índice de ítem %d", domain.ErrInvalidInput, idx)
	}
	o.Items = append(o.Items[:idx], o.Items[idx+1:]...)
	return nil
}

// SetAttribute valida raw contra la definición declarada por el tipo y lo guarda.
// Requiere el tipo resuelto: sin él no hay conjunto de atributos permitido.
func (o *StockOperation) SetAttribute(definitionID, raw string) error {
	if o.OperationType == nil {
		return fmt.Errorf("%w: tipo de operación no resuelto", domain.ErrInvalidAttribute)
	}
	def, ok := o.OperationType.AttributeType(definitionID)
	if !ok {
		return fmt.Errorf("%w: %s no está declarado en %s", domain.ErrInvalidAttribute, definitionID, o.OperationType)
	}
	v, err := ParseAttributeValue(def, raw)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidAttribute, err)
	}
	if o.Attributes == nil {
		o.Attributes = AttributeValues{}
	}
	o.Attributes[definitionID] = v
	return nil
}

// String devuelve el número de operación o una etiqueta genérica.
func (o *StockOperation) String() string {
	if o.OperationNumber != "" {
		return o.OperationNumber
	}
	return "Operation"
}
