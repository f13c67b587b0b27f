package rest

import (
	"context"
	"fmt"
	"net/url"

	"github.com/jhoicas/stock-operations/internal/domain/entity"
	"github.com/jhoicas/stock-operations/internal/domain/repository"
)

// ReferenceRepository lee colecciones de referencia (id + etiqueta) del almacén.
type ReferenceRepository struct {
	store repository.EntityStore
}

var _ repository.ReferenceRepository = (*ReferenceRepository)(nil)

// NewReferenceRepository construye el repositorio.
func NewReferenceRepository(store repository.EntityStore) *ReferenceRepository {
	return &ReferenceRepository{store: store}
}

// List query se pasa tal cual (p. ej. "v=full").
func (r *ReferenceRepository) List(ctx context.Context, kind repository.ReferenceKind, query string) ([]entity.Ref, error) {
	q, err := url.ParseQuery(query)
	if err != nil {
		return nil, fmt.Errorf("store: query inválida %q: %w", query, err)
	}
	if kind == repository.ReferenceStockroom {
		return r.listStockrooms(ctx, q)
	}
	var env listEnvelope[refWire]
	if err := r.store.List(ctx, kind.Resource(), q, &env); err != nil {
		return nil, err
	}
	out := make([]entity.Ref, 0, len(env.Results))
	for i := range env.Results {
		if ref := env.Results[i].toRef(); ref != nil {
			out = append(out, *ref)
		}
	}
	return out, nil
}

// listStockrooms las bodegas pasan por entity.Stockroom para tomar su etiqueta.
func (r *ReferenceRepository) listStockrooms(ctx context.Context, q url.Values) ([]entity.Ref, error) {
	var env listEnvelope[stockroomWire]
	if err := r.store.List(ctx, repository.ReferenceStockroom.Resource(), q, &env); err != nil {
		return nil, err
	}
	out := make([]entity.Ref, 0, len(env.Results))
	for _, w := range env.Results {
		if sr := w.toEntity(); sr != nil {
			out = append(out, *sr.Ref())
		}
	}
	return out, nil
}
