package operation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/stock-operations/internal/application/dto"
	"github.com/jhoicas/stock-operations/internal/domain"
	"github.com/jhoicas/stock-operations/internal/domain/entity"
	domainop "github.com/jhoicas/stock-operations/internal/domain/operation"
	"github.com/jhoicas/stock-operations/internal/domain/repository"
	"github.com/jhoicas/stock-operations/pkg/logger"
	"github.com/jhoicas/stock-operations/pkg/metrics"
)

// SubmitOperationUseCase valida y envía operaciones de stock al almacén.
// Con errores de validación nunca se llama al almacén.
type SubmitOperationUseCase struct {
	ops     repository.StockOperationRepository
	types   OperationTypeResolver
	log     *logger.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewSubmitOperationUseCase construye el caso de uso.
func NewSubmitOperationUseCase(
	ops repository.StockOperationRepository,
	types OperationTypeResolver,
	log *logger.Logger,
	m *metrics.Metrics,
) *SubmitOperationUseCase {
	return &SubmitOperationUseCase{
		ops:     ops,
		types:   types,
		log:     log.Component("submit_operation"),
		metrics: m,
		now:     time.Now,
	}
}

// ValidateOperation resuelve el tipo si hace falta y aplica las reglas de validación.
func (uc *SubmitOperationUseCase) ValidateOperation(ctx context.Context, op *entity.StockOperation) []domainop.FieldError {
	return uc.CheckOperation(ctx, op, nil)
}

// CheckOperation valida op e incorpora attrErrs, los errores de tipo que devolvió
// BuildOperation, en la posición de los atributos.
func (uc *SubmitOperationUseCase) CheckOperation(ctx context.Context, op *entity.StockOperation, attrErrs []domainop.FieldError) []domainop.FieldError {
	uc.resolveType(ctx, op)
	errs := domainop.MergeAttributeErrors(domainop.Validate(op, true), attrErrs)
	uc.recordValidation(errs)
	return errs
}

// SubmitOperation valida y guarda. Devuelve la operación confirmada por el almacén, o los
// errores de campo si la validación falla (en ese caso err es nil).
func (uc *SubmitOperationUseCase) SubmitOperation(ctx context.Context, op *entity.StockOperation) (*entity.StockOperation, []domainop.FieldError, error) {
	if op == nil {
		return nil, nil, domain.ErrInvalidInput
	}
	if op.Status().IsLocked() {
		return nil, nil, fmt.Errorf("%w: la operación %s está en estado %s", domain.ErrInvalidTransition, op, op.Status())
	}
	if fieldErrs := uc.ValidateOperation(ctx, op); len(fieldErrs) > 0 {
		return nil, fieldErrs, nil
	}

	saved, err := uc.ops.Save(ctx, op)
	if err != nil {
		return nil, nil, err
	}
	// El estado lo decide el servidor; aquí solo se refleja.
	op.ReflectSaved(saved)
	uc.log.Info().Str("operation", saved.ID).Str("number", saved.OperationNumber).
		Str("status", saved.Status().String()).Msg("operación enviada")
	return saved, nil, nil
}

// BuildOperation arma la operación a partir del body. Sin id crea una operación NEW; con id
// carga la existente del almacén y le aplica los cambios (falla con ErrOperationLocked si ya
// no es editable). Los atributos que no cumplen su tipo se devuelven como errores de campo.
func (uc *SubmitOperationUseCase) BuildOperation(ctx context.Context, in dto.OperationRequest) (*entity.StockOperation, []domainop.FieldError, error) {
	var op *entity.StockOperation
	if in.ID != "" {
		if _, err := uuid.Parse(in.ID); err != nil {
			return nil, nil, fmt.Errorf("%w: id %q", domain.ErrInvalidInput, in.ID)
		}
		existing, err := uc.ops.GetByID(ctx, in.ID)
		if err != nil {
			return nil, nil, err
		}
		if existing.Status().IsLocked() {
			return nil, nil, fmt.Errorf("%w: estado %s", domain.ErrOperationLocked, existing.Status())
		}
		op = existing
		op.OperationNumber = in.OperationNumber
		op.Items = nil
	} else {
		op = entity.NewStockOperation("", in.OperationNumber, uc.now())
	}
	if in.OperationDate != nil {
		op.OperationDate = *in.OperationDate
	}

	if err := uc.applyOperationType(ctx, op, in.OperationTypeID); err != nil {
		return nil, nil, err
	}
	if err := op.SetSource(optionalRef(in.SourceID)); err != nil {
		return nil, nil, err
	}
	if err := op.SetDestination(optionalRef(in.DestinationID)); err != nil {
		return nil, nil, err
	}
	op.Institution = optionalRef(in.InstitutionID)
	op.Patient = optionalRef(in.PatientID)

	for _, it := range in.Items {
		if err := op.AddItem(entity.NewRef(it.ItemID, ""), it.Quantity); err != nil {
			return nil, nil, err
		}
		last := &op.Items[len(op.Items)-1]
		last.BatchOperation = optionalRef(it.BatchOperationID)
		last.CalculatedBatch = it.CalculatedBatch
		last.CalculatedExpiration = it.CalculatedExpiration
		if it.Expiration != "" {
			exp, err := time.Parse(entity.ExpirationLayout, it.Expiration)
			if err != nil {
				return nil, nil, fmt.Errorf("%w: vencimiento %q", domain.ErrInvalidInput, it.Expiration)
			}
			last.Expiration = &exp
		}
	}

	wire := make([]domainop.WireAttribute, 0, len(in.Attributes))
	for _, a := range in.Attributes {
		wire = append(wire, domainop.WireAttribute{AttributeType: a.AttributeType, Value: a.Value})
	}
	values, attrErrs := domainop.CoerceAttributes(op.OperationType, wire)
	for _, e := range attrErrs {
		if e.Cause != nil {
			uc.log.Debug().Err(e.Cause).Str("selector", e.Selector).Msg("atributo rechazado")
		}
	}
	op.Attributes = values
	return op, attrErrs, nil
}

// applyOperationType resuelve el tipo en la caché. Si no se puede resolver se deja solo la
// referencia y el validador lo tratará como ausente.
func (uc *SubmitOperationUseCase) applyOperationType(ctx context.Context, op *entity.StockOperation, typeID string) error {
	if typeID == "" {
		return op.SetOperationType(nil)
	}
	t, err := uc.types.OperationType(ctx, typeID)
	if err != nil {
		uc.log.Warn().Err(err).Str("operation_type", typeID).Msg("tipo de operación no resuelto")
		if err := op.SetOperationType(nil); err != nil {
			return err
		}
		op.OperationTypeRef = entity.NewRef(typeID, "")
		return nil
	}
	return op.SetOperationType(t)
}

// resolveType completa OperationType a partir de la referencia cuando falta.
func (uc *SubmitOperationUseCase) resolveType(ctx context.Context, op *entity.StockOperation) {
	if op == nil || op.OperationType != nil || !op.OperationTypeRef.IsResolved() {
		return
	}
	t, err := uc.types.OperationType(ctx, op.OperationTypeRef.ID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			uc.log.Warn().Err(err).Str("operation_type", op.OperationTypeRef.ID).Msg("no se pudo resolver el tipo")
		}
		return
	}
	op.OperationType = t
}

// Cancel cancela una operación NEW o PENDING. La transición se comprueba antes de llamar al almacén.
func (uc *SubmitOperationUseCase) Cancel(ctx context.Context, id string) (*entity.StockOperation, error) {
	op, err := uc.ops.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := domainop.EnsureCancelAllowed(op); err != nil {
		return nil, err
	}
	if err := uc.ops.PostStatus(ctx, op.ID, entity.OperationStatusCancelled); err != nil {
		return nil, err
	}
	op.ApplyServerStatus(entity.OperationStatusCancelled)
	uc.log.Info().Str("operation", op.ID).Msg("operación cancelada")
	return op, nil
}

func (uc *SubmitOperationUseCase) recordValidation(errs []domainop.FieldError) {
	selectors := make([]string, 0, len(errs))
	for _, e := range errs {
		selectors = append(selectors, e.Selector)
	}
	uc.metrics.RecordValidation(selectors)
}

func optionalRef(id string) *entity.Ref {
	if id == "" {
		return nil
	}
	return entity.NewRef(id, "")
}
