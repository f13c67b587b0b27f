package operation

import (
	"context"
	"sync"

	"github.com/jhoicas/stock-operations/internal/domain/entity"
	domainop "github.com/jhoicas/stock-operations/internal/domain/operation"
	"github.com/jhoicas/stock-operations/internal/domain/repository"
	"github.com/jhoicas/stock-operations/pkg/logger"
	"github.com/jhoicas/stock-operations/pkg/metrics"
)

// Resultados del rollback registrados en métricas.
const (
	rollbackRejected   = "rejected"
	rollbackDispatched = "dispatched"
	rollbackSucceeded  = "succeeded"
	rollbackFailed     = "failed"
)

// RollbackUseCase revierte operaciones COMPLETED de forma optimista: comprueba la transición,
// envía {"status":"ROLLBACK"} en segundo plano y notifica el éxito de inmediato con el uuid,
// sin esperar la respuesta del almacén. Un fallo posterior llega a onError y al ErrorHandler.
type RollbackUseCase struct {
	ops     repository.StockOperationRepository
	errs    ErrorHandler
	log     *logger.Logger
	metrics *metrics.Metrics

	wg sync.WaitGroup
}

// NewRollbackUseCase construye el caso de uso.
func NewRollbackUseCase(ops repository.StockOperationRepository, errs ErrorHandler, log *logger.Logger, m *metrics.Metrics) *RollbackUseCase {
	return &RollbackUseCase{ops: ops, errs: errs, log: log.Component("rollback"), metrics: m}
}

// Rollback carga la operación por uuid y aplica RollbackOperation.
func (uc *RollbackUseCase) Rollback(ctx context.Context, id string, onSuccess func(string), onError func(error)) error {
	op, err := uc.ops.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return uc.RollbackOperation(ctx, op, onSuccess, onError)
}

// RollbackOperation devuelve ErrInvalidTransition sin tocar la red si la operación no está
// COMPLETED. En otro caso despacha el envío y llama onSuccess(uuid) antes de que termine.
// El estado local no cambia: ROLLBACK solo se refleja cuando se vuelve a leer del almacén.
func (uc *RollbackUseCase) RollbackOperation(ctx context.Context, op *entity.StockOperation, onSuccess func(string), onError func(error)) error {
	if err := domainop.EnsureRollbackAllowed(op); err != nil {
		uc.metrics.RecordRollback(rollbackRejected)
		return err
	}

	id := op.ID
	// El envío sobrevive a la cancelación de la petición que lo originó.
	bg := context.WithoutCancel(ctx)
	uc.wg.Add(1)
	go func() {
		defer uc.wg.Done()
		if err := uc.ops.PostStatus(bg, id, entity.OperationStatusRollback); err != nil {
			uc.metrics.RecordRollback(rollbackFailed)
			uc.log.Error().Err(err).Str("operation", id).Msg("rollback rechazado por el almacén")
			if uc.errs != nil {
				uc.errs.HandleError(bg, err)
			}
			if onError != nil {
				onError(err)
			}
			return
		}
		uc.metrics.RecordRollback(rollbackSucceeded)
		uc.log.Info().Str("operation", id).Msg("rollback confirmado por el almacén")
	}()

	uc.metrics.RecordRollback(rollbackDispatched)
	if onSuccess != nil {
		onSuccess(id)
	}
	return nil
}

// Wait espera a que terminen los envíos pendientes o a que ctx expire.
func (uc *RollbackUseCase) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		uc.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
