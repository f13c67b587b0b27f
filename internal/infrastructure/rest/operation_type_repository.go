package rest

import (
	"context"

	"github.com/jhoicas/stock-operations/internal/domain/entity"
	"github.com/jhoicas/stock-operations/internal/domain/repository"
)

// OperationTypeRepository lee el catálogo de tipos de operación.
type OperationTypeRepository struct {
	store repository.EntityStore
}

var _ repository.OperationTypeRepository = (*OperationTypeRepository)(nil)

// NewOperationTypeRepository construye el repositorio.
func NewOperationTypeRepository(store repository.EntityStore) *OperationTypeRepository {
	return &OperationTypeRepository{store: store}
}

func (r *OperationTypeRepository) GetByID(ctx context.Context, id string) (*entity.OperationType, error) {
	var w operationTypeWire
	if err := r.store.Fetch(ctx, repository.ResourceStockOperationType, id, fullRepresentation, &w); err != nil {
		return nil, err
	}
	return w.toEntity(), nil
}

func (r *OperationTypeRepository) List(ctx context.Context) ([]*entity.OperationType, error) {
	var env listEnvelope[operationTypeWire]
	if err := r.store.List(ctx, repository.ResourceStockOperationType, fullRepresentation, &env); err != nil {
		return nil, err
	}
	out := make([]*entity.OperationType, 0, len(env.Results))
	for _, w := range env.Results {
		out = append(out, w.toEntity())
	}
	return out, nil
}
