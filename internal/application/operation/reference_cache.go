package operation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jhoicas/stock-operations/internal/domain"
	"github.com/jhoicas/stock-operations/internal/domain/entity"
	"github.com/jhoicas/stock-operations/internal/domain/repository"
	"github.com/jhoicas/stock-operations/pkg/logger"
	"github.com/jhoicas/stock-operations/pkg/metrics"
)

// DefaultReferenceQuery representación pedida al almacén para las colecciones.
const DefaultReferenceQuery = "v=default"

type refCollection struct {
	items     []entity.Ref
	fetchedAt time.Time
}

// ReferenceCache colecciones de referencia compartidas entre peticiones, cargadas bajo demanda.
// Las lecturas devuelven copias; una recarga exitosa reemplaza la colección completa y una
// fallida deja la anterior en su lugar.
type ReferenceCache struct {
	refs    repository.ReferenceRepository
	types   repository.OperationTypeRepository
	ttl     time.Duration
	queries map[repository.ReferenceKind]string
	errs    ErrorHandler
	log     *logger.Logger
	metrics *metrics.Metrics
	now     func() time.Time

	mu          sync.RWMutex
	collections map[repository.ReferenceKind]refCollection
	opTypes     map[string]*entity.OperationType
	typesAt     time.Time
}

// NewReferenceCache construye la caché. ttl 0 desactiva la expiración.
func NewReferenceCache(
	refs repository.ReferenceRepository,
	types repository.OperationTypeRepository,
	ttl time.Duration,
	errs ErrorHandler,
	log *logger.Logger,
	m *metrics.Metrics,
) *ReferenceCache {
	return &ReferenceCache{
		refs:        refs,
		types:       types,
		ttl:         ttl,
		queries:     map[repository.ReferenceKind]string{},
		errs:        errs,
		log:         log.Component("reference_cache"),
		metrics:     m,
		now:         time.Now,
		collections: map[repository.ReferenceKind]refCollection{},
	}
}

// WithQuery fija la query enviada al almacén para una colección (p. ej. "v=full").
func (c *ReferenceCache) WithQuery(kind repository.ReferenceKind, query string) *ReferenceCache {
	c.queries[kind] = query
	return c
}

// WithClock reemplaza el reloj (tests).
func (c *ReferenceCache) WithClock(now func() time.Time) *ReferenceCache {
	c.now = now
	return c
}

func (c *ReferenceCache) fresh(at time.Time) bool {
	return c.ttl <= 0 || c.now().Sub(at) < c.ttl
}

// List devuelve la colección, cargándola si no existe o expiró. Si la recarga falla y hay
// una copia anterior se sirve esa; sin copia devuelve ErrReferenceUnavailable.
func (c *ReferenceCache) List(ctx context.Context, kind repository.ReferenceKind) ([]entity.Ref, error) {
	c.mu.RLock()
	col, ok := c.collections[kind]
	c.mu.RUnlock()
	if ok && c.fresh(col.fetchedAt) {
		return copyRefs(col.items), nil
	}

	items, err := c.Refresh(ctx, kind)
	if err != nil {
		if ok {
			c.log.Warn().Str("kind", string(kind)).Msg("sirviendo colección anterior tras fallo de recarga")
			return copyRefs(col.items), nil
		}
		return nil, err
	}
	return items, nil
}

// Refresh recarga la colección desde el almacén.
func (c *ReferenceCache) Refresh(ctx context.Context, kind repository.ReferenceKind) ([]entity.Ref, error) {
	query, ok := c.queries[kind]
	if !ok {
		query = DefaultReferenceQuery
	}
	items, err := c.refs.List(ctx, kind, query)
	c.metrics.RecordReferenceRefresh(string(kind), err == nil)
	if err != nil {
		err = fmt.Errorf("%w: %s: %v", domain.ErrReferenceUnavailable, kind, err)
		c.report(ctx, err)
		return nil, err
	}

	c.mu.Lock()
	c.collections[kind] = refCollection{items: items, fetchedAt: c.now()}
	c.mu.Unlock()
	c.log.Debug().Str("kind", string(kind)).Int("count", len(items)).Msg("colección recargada")
	return copyRefs(items), nil
}

// OperationType devuelve el tipo completo por id (compartido, de solo lectura).
// Un id desconocido tras recargar es ErrNotFound.
func (c *ReferenceCache) OperationType(ctx context.Context, id string) (*entity.OperationType, error) {
	c.mu.RLock()
	t, ok := c.opTypes[id]
	at := c.typesAt
	loaded := c.opTypes != nil
	c.mu.RUnlock()
	if ok && c.fresh(at) {
		return t, nil
	}
	if loaded && c.fresh(at) && !ok {
		return nil, fmt.Errorf("%w: tipo de operación %s", domain.ErrNotFound, id)
	}

	if err := c.RefreshOperationTypes(ctx); err != nil {
		if ok {
			return t, nil
		}
		return nil, err
	}

	c.mu.RLock()
	t, ok = c.opTypes[id]
	c.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: tipo de operación %s", domain.ErrNotFound, id)
	}
	return t, nil
}

// RefreshOperationTypes recarga el catálogo de tipos de operación.
func (c *ReferenceCache) RefreshOperationTypes(ctx context.Context) error {
	list, err := c.types.List(ctx)
	c.metrics.RecordReferenceRefresh(string(repository.ReferenceOperationType)+"_full", err == nil)
	if err != nil {
		err = fmt.Errorf("%w: tipos de operación: %v", domain.ErrReferenceUnavailable, err)
		c.report(ctx, err)
		return err
	}
	byID := make(map[string]*entity.OperationType, len(list))
	for _, t := range list {
		byID[t.ID] = t
	}
	c.mu.Lock()
	c.opTypes = byID
	c.typesAt = c.now()
	c.mu.Unlock()
	return nil
}

func (c *ReferenceCache) report(ctx context.Context, err error) {
	if c.errs != nil {
		c.errs.HandleError(ctx, err)
	}
}

func copyRefs(in []entity.Ref) []entity.Ref {
	out := make([]entity.Ref, len(in))
	copy(out, in)
	return out
}
