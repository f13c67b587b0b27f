// Package operation contiene las reglas de dominio del ciclo de vida de una operación de stock:
// validación previa al envío, máquina de estados y tipado de atributos personalizados.
// Todo es puro: no hay E/S ni estado compartido.
package operation

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-operations/internal/domain/entity"
)

// Selectores de campo que la capa de presentación usa para resaltar el control con error.
const (
	SelectorOperationNumber = ".field-operationNumber"
	SelectorOperationType   = ".field-instanceType"
	SelectorSource          = ".field-source"
	SelectorDestination     = ".field-destination"
	SelectorRecipient       = ".field-recipient"
	SelectorItems           = ".item-stock"
	SelectorQuantity        = "th.field-quantity"
	selectorAttributePrefix = ".field-attribute-"
)

// FieldError error de validación corregible por el usuario, con su dirección en el formulario.
// Cause guarda el error técnico que lo originó (conversión de un atributo); no se muestra.
type FieldError struct {
	Selector     string
	Message      string
	SelectParent bool
	Cause        error
}

// Error implementa error para poder registrar o envolver un FieldError si hace falta.
func (e FieldError) Error() string {
	return e.Selector + ": " + e.Message
}

// AttributeSelector selector del control de un atributo personalizado.
func AttributeSelector(definitionID string) string {
	return selectorAttributePrefix + definitionID
}

// Validate aplica las reglas en orden fijo y acumula todos los fallos.
// Con confirm=false no valida nada (el formulario puede estar a medias mientras se edita).
// Devuelve nil si no hay errores.
func Validate(op *entity.StockOperation, confirm bool) []FieldError {
	if !confirm || op == nil {
		return nil
	}
	var errs []FieldError

	// 1. Número de operación
	if op.OperationNumber == "" {
		errs = append(errs, FieldError{
			Selector: SelectorOperationNumber,
			Message:  "La operación debe tener un número de operación.",
		})
	}

	// 2. Tipo de operación; una referencia sin resolver cuenta como ausente.
	opType := op.OperationType
	if opType == nil {
		errs = append(errs, FieldError{
			Selector: SelectorOperationType,
			Message:  "La operación debe tener un tipo de operación.",
		})
	} else {
		// 3. Bodegas y destinatario según capacidades del tipo
		errs = append(errs, validateEndpoints(op, opType)...)
	}

	// 4. Ítems
	if len(op.Items) == 0 {
		errs = append(errs, FieldError{
			Selector:     SelectorItems,
			Message:      "La operación debe contener al menos un ítem.",
			SelectParent: true,
		})
	} else if hasInvalidQuantity(op.Items, opType) {
		// 5. Un único error de cantidad aunque fallen varias líneas.
		errs = append(errs, FieldError{
			Selector: SelectorQuantity,
			Message:  "La cantidad del ítem no está permitida para esta operación.",
		})
	}

	// 6. Atributos obligatorios del tipo
	if opType != nil {
		errs = append(errs, ValidateAttributes(opType, op.Attributes)...)
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// MergeAttributeErrors combina el resultado de Validate con los errores de tipo que dejó
// CoerceAttributes. Los errores de tipo ocupan la posición de la regla 6, antes de los
// obligatorios faltantes; un atributo rechazado por tipo no se reporta también como obligatorio.
func MergeAttributeErrors(ruleErrs, typeErrs []FieldError) []FieldError {
	if len(typeErrs) == 0 {
		return ruleErrs
	}
	rejected := make(map[string]bool, len(typeErrs))
	for _, e := range typeErrs {
		rejected[e.Selector] = true
	}
	out := make([]FieldError, 0, len(ruleErrs)+len(typeErrs))
	var missing []FieldError
	for _, e := range ruleErrs {
		if strings.HasPrefix(e.Selector, selectorAttributePrefix) {
			if !rejected[e.Selector] {
				missing = append(missing, e)
			}
			continue
		}
		out = append(out, e)
	}
	out = append(out, typeErrs...)
	return append(out, missing...)
}

func validateEndpoints(op *entity.StockOperation, opType *entity.OperationType) []FieldError {
	var errs []FieldError
	if opType.HasSource() && !op.Source.IsResolved() {
		errs = append(errs, FieldError{
			Selector: SelectorSource,
			Message:  fmt.Sprintf("El tipo de operación %s requiere una bodega de origen.", opType.Name),
		})
	}
	if opType.HasDestination() && !op.Destination.IsResolved() {
		errs = append(errs, FieldError{
			Selector: SelectorDestination,
			Message:  fmt.Sprintf("El tipo de operación %s requiere una bodega de destino.", opType.Name),
		})
	}
	if opType.RecipientRequired() && !op.Patient.IsResolved() && !op.Institution.IsResolved() {
		errs = append(errs, FieldError{
			Selector: SelectorRecipient,
			Message:  fmt.Sprintf("El tipo de operación %s requiere un paciente o una institución.", opType.Name),
		})
	}
	return errs
}

// hasInvalidQuantity: cantidad cero nunca; negativa solo en Adjustment. Sin tipo resuelto
// cualquier negativa es inválida.
func hasInvalidQuantity(items []entity.OperationItem, opType *entity.OperationType) bool {
	negativeAllowed := opType != nil && opType.IsAdjustment()
	for _, item := range items {
		if item.Quantity.IsZero() {
			return true
		}
		if item.Quantity.LessThan(decimal.Zero) && !negativeAllowed {
			return true
		}
	}
	return false
}
