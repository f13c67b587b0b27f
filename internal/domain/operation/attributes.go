package operation

import (
	"errors"
	"fmt"
	"sort"

	"github.com/jhoicas/stock-operations/internal/domain/entity"
)

// WireAttribute forma de un atributo en el cable: {attributeType: <id>, value: <string>}.
type WireAttribute struct {
	AttributeType string
	Value         string
}

// AttributeSlots devuelve las definiciones que una operación de ese tipo puede poblar.
func AttributeSlots(opType *entity.OperationType) []entity.AttributeTypeDefinition {
	if opType == nil {
		return nil
	}
	return opType.SortedAttributeTypes()
}

// CoerceAttributes convierte la carga del cable en valores tipados. Los ids no declarados por el
// tipo y los valores que no cumplen su tipo se devuelven como FieldError; el resto se conserva.
func CoerceAttributes(opType *entity.OperationType, wire []WireAttribute) (entity.AttributeValues, []FieldError) {
	values := entity.AttributeValues{}
	var errs []FieldError
	for _, w := range wire {
		if opType == nil {
			errs = append(errs, FieldError{
				Selector: AttributeSelector(w.AttributeType),
				Message:  "No se pueden asignar atributos sin tipo de operación.",
			})
			continue
		}
		def, ok := opType.AttributeType(w.AttributeType)
		if !ok {
			errs = append(errs, FieldError{
				Selector: AttributeSelector(w.AttributeType),
				Message:  fmt.Sprintf("El atributo %s no está declarado en el tipo %s.", w.AttributeType, opType.Name),
			})
			continue
		}
		v, err := entity.ParseAttributeValue(def, w.Value)
		if err != nil {
			errs = append(errs, attributeValueError(def, err))
			continue
		}
		values[def.ID] = v
	}
	return values, errs
}

// AttributesToWire serializa el mapeo, ordenado por id de definición.
func AttributesToWire(values entity.AttributeValues) []WireAttribute {
	ids := make([]string, 0, len(values))
	for id := range values {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]WireAttribute, 0, len(ids))
	for _, id := range ids {
		out = append(out, WireAttribute{AttributeType: id, Value: values[id].String()})
	}
	return out
}

// ValidateAttributes exige los atributos obligatorios y revalida el tipo de los presentes.
func ValidateAttributes(opType *entity.OperationType, values entity.AttributeValues) []FieldError {
	if opType == nil {
		return nil
	}
	var errs []FieldError
	for _, def := range AttributeSlots(opType) {
		v, ok := values[def.ID]
		if !ok {
			if def.Required {
				errs = append(errs, FieldError{
					Selector: AttributeSelector(def.ID),
					Message:  fmt.Sprintf("El atributo %s es obligatorio.", def.Name),
				})
			}
			continue
		}
		if _, err := entity.ParseAttributeValue(def, v.String()); err != nil {
			errs = append(errs, attributeValueError(def, err))
		}
	}
	for _, w := range AttributesToWire(values) {
		id := w.AttributeType
		if _, ok := opType.AttributeType(id); !ok {
			errs = append(errs, FieldError{
				Selector: AttributeSelector(id),
				Message:  fmt.Sprintf("El atributo %s no está declarado en el tipo %s.", id, opType.Name),
			})
		}
	}
	return errs
}

func attributeValueError(def entity.AttributeTypeDefinition, err error) FieldError {
	fe := FieldError{Selector: AttributeSelector(def.ID), Message: err.Error()}
	var verr *entity.AttributeValueError
	if errors.As(err, &verr) {
		fe.Message = verr.Message
		fe.Cause = verr.Cause
	}
	return fe
}
