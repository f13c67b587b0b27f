package rest

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/jhoicas/stock-operations/internal/domain/entity"
	"github.com/jhoicas/stock-operations/internal/domain/repository"
	"github.com/jhoicas/stock-operations/pkg/logger"
)

// StockOperationRepository implementa repository.StockOperationRepository sobre el almacén REST.
type StockOperationRepository struct {
	store repository.EntityStore
	log   *logger.Logger
}

var _ repository.StockOperationRepository = (*StockOperationRepository)(nil)

// NewStockOperationRepository construye el repositorio.
func NewStockOperationRepository(store repository.EntityStore, log *logger.Logger) *StockOperationRepository {
	return &StockOperationRepository{store: store, log: log.Component("stock_operation_repo")}
}

var fullRepresentation = url.Values{"v": {"full"}}

func (r *StockOperationRepository) GetByID(ctx context.Context, id string) (*entity.StockOperation, error) {
	var w operationWire
	if err := r.store.Fetch(ctx, repository.ResourceStockOperation, id, fullRepresentation, &w); err != nil {
		return nil, err
	}
	return r.toEntity(w)
}

// Search consulta operaciones con los parámetros del buscador del almacén
// (operation_status, stockroom_uuid, operationType_uuid, operationItem_uuid, startIndex, limit).
func (r *StockOperationRepository) Search(ctx context.Context, filter repository.OperationSearch) ([]*entity.StockOperation, int, error) {
	q := url.Values{"v": {"full"}, "totalCount": {"true"}}
	if filter.Status != "" {
		q.Set("operation_status", filter.Status.String())
	}
	if filter.StockroomID != "" {
		q.Set("stockroom_uuid", filter.StockroomID)
	}
	if filter.OperationTypeID != "" {
		q.Set("operationType_uuid", filter.OperationTypeID)
	}
	if filter.ItemID != "" {
		q.Set("operationItem_uuid", filter.ItemID)
	}
	if filter.Limit > 0 {
		q.Set("limit", strconv.Itoa(filter.Limit))
	}
	if filter.Offset > 0 {
		q.Set("startIndex", strconv.Itoa(filter.Offset))
	}

	var env listEnvelope[operationWire]
	if err := r.store.List(ctx, repository.ResourceStockOperation, q, &env); err != nil {
		return nil, 0, err
	}
	out := make([]*entity.StockOperation, 0, len(env.Results))
	for _, w := range env.Results {
		op, err := r.toEntity(w)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, op)
	}
	return out, env.total(), nil
}

// Save crea la operación (id vacío) o la actualiza, y devuelve la versión del servidor.
func (r *StockOperationRepository) Save(ctx context.Context, op *entity.StockOperation) (*entity.StockOperation, error) {
	if op == nil {
		return nil, fmt.Errorf("store: operación nula")
	}
	var w operationWire
	if err := r.store.Save(ctx, repository.ResourceStockOperation, op.ID, newOperationSave(op), &w); err != nil {
		return nil, err
	}
	return r.toEntity(w)
}

func (r *StockOperationRepository) PostStatus(ctx context.Context, id string, status entity.OperationStatus) error {
	return r.store.PostStatus(ctx, repository.ResourceStockOperation, id, status.String())
}

func (r *StockOperationRepository) ListItems(ctx context.Context, operationID string) ([]entity.OperationItem, error) {
	var env listEnvelope[operationItemWire]
	q := url.Values{"operation_uuid": {operationID}, "v": {"full"}}
	if err := r.store.List(ctx, repository.ResourceStockOperationItem, q, &env); err != nil {
		return nil, err
	}
	out := make([]entity.OperationItem, 0, len(env.Results))
	for _, w := range env.Results {
		out = append(out, w.toEntity())
	}
	return out, nil
}

// ListTransactions junta reservas y transacciones aplicadas, en ese orden.
func (r *StockOperationRepository) ListTransactions(ctx context.Context, operationID string) ([]entity.Transaction, error) {
	q := url.Values{"operation_uuid": {operationID}, "v": {"full"}}

	var reserved listEnvelope[transactionWire]
	if err := r.store.List(ctx, repository.ResourceReservationTransaction, q, &reserved); err != nil {
		return nil, err
	}
	var applied listEnvelope[transactionWire]
	if err := r.store.List(ctx, repository.ResourceStockOperationTransaction, q, &applied); err != nil {
		return nil, err
	}

	out := make([]entity.Transaction, 0, len(reserved.Results)+len(applied.Results))
	for _, w := range reserved.Results {
		out = append(out, w.toReserved())
	}
	for _, w := range applied.Results {
		out = append(out, w.toOperation())
	}
	return out, nil
}

func (r *StockOperationRepository) toEntity(w operationWire) (*entity.StockOperation, error) {
	op, attrErrs, err := w.toEntity()
	if err != nil {
		return nil, fmt.Errorf("store: operación %s: %w", w.UUID, err)
	}
	for _, fe := range attrErrs {
		r.log.Warn().Str("operation", w.UUID).Str("selector", fe.Selector).Msg(fe.Message)
	}
	return op, nil
}
