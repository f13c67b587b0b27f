package operation

import (
	"github.com/jhoicas/stock-operations/internal/application/dto"
	"github.com/jhoicas/stock-operations/internal/domain/entity"
	domainop "github.com/jhoicas/stock-operations/internal/domain/operation"
)

func toRefDTO(r *entity.Ref) *dto.RefDTO {
	if !r.IsResolved() {
		return nil
	}
	return &dto.RefDTO{ID: r.ID, Display: r.String()}
}

// ToFieldErrorDTOs convierte los errores de dominio al formato del cable.
func ToFieldErrorDTOs(errs []domainop.FieldError) []dto.FieldErrorDTO {
	out := make([]dto.FieldErrorDTO, 0, len(errs))
	for _, e := range errs {
		out = append(out, dto.FieldErrorDTO{Selector: e.Selector, Message: e.Message, SelectParent: e.SelectParent})
	}
	return out
}

func toItemResponse(it entity.OperationItem) dto.OperationItemResponse {
	return dto.OperationItemResponse{
		Item:                 toRefDTO(it.Item),
		Quantity:             it.Quantity,
		Expiration:           it.Expiration,
		CalculatedExpiration: it.CalculatedExpiration,
		BatchOperation:       toRefDTO(it.BatchOperation),
		CalculatedBatch:      it.CalculatedBatch,
		Label:                it.String(),
	}
}

// ToOperationResponse convierte la operación a su representación de salida.
func ToOperationResponse(op *entity.StockOperation) *dto.OperationResponse {
	if op == nil {
		return nil
	}
	res := &dto.OperationResponse{
		ID:              op.ID,
		OperationNumber: op.OperationNumber,
		Status:          op.Status().String(),
		OperationType:   toRefDTO(op.OperationTypeRef),
		Source:          toRefDTO(op.Source),
		Destination:     toRefDTO(op.Destination),
		Institution:     toRefDTO(op.Institution),
		Patient:         toRefDTO(op.Patient),
		Items:           make([]dto.OperationItemResponse, 0, len(op.Items)),
		Attributes:      make([]dto.AttributeResponse, 0, len(op.Attributes)),
		DateCreated:     op.DateCreated(),
		OperationDate:   op.OperationDate,
		Label:           op.String(),
	}
	if op.OperationType != nil {
		res.OperationType = &dto.RefDTO{ID: op.OperationType.ID, Display: op.OperationType.String()}
	}
	for _, it := range op.Items {
		res.Items = append(res.Items, toItemResponse(it))
	}
	for _, a := range domainop.AttributesToWire(op.Attributes) {
		res.Attributes = append(res.Attributes, dto.AttributeResponse{AttributeType: a.AttributeType, Value: a.Value})
	}
	return res
}

func toTransactionResponse(tx entity.Transaction) dto.TransactionResponse {
	b := tx.Base()
	res := dto.TransactionResponse{
		ID:          b.ID,
		Kind:        string(tx.Kind()),
		Item:        toRefDTO(b.Item),
		Quantity:    b.Quantity,
		Expiration:  b.Expiration,
		DateCreated: b.DateCreated,
		Label:       tx.String(),
	}
	switch t := tx.(type) {
	case *entity.ReservedTransaction:
		available := t.Available
		res.Available = &available
	case *entity.OperationTransaction:
		res.Stockroom = toRefDTO(t.Stockroom)
		res.Patient = toRefDTO(t.Patient)
		res.Institution = toRefDTO(t.Institution)
	}
	return res
}

// ToReferenceList convierte una colección de referencia a su salida.
func ToReferenceList(kind string, refs []entity.Ref) *dto.ReferenceListResponse {
	items := make([]dto.RefDTO, 0, len(refs))
	for _, r := range refs {
		items = append(items, dto.RefDTO{ID: r.ID, Display: r.String()})
	}
	return &dto.ReferenceListResponse{Kind: kind, Items: items}
}
