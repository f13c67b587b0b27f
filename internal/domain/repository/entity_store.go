package repository

import (
	"context"
	"net/url"
)

// Recursos del almacén remoto de entidades.
const (
	ResourceStockOperation            = "stockOperation"
	ResourceStockOperationType        = "stockOperationType"
	ResourceStockOperationItem        = "stockOperationItem"
	ResourceStockOperationTransaction = "stockOperationTransaction"
	ResourceReservationTransaction    = "reservationTransaction"
	ResourceStockroom                 = "stockroom"
	ResourceDepartment                = "department"
	ResourceInstitution               = "institution"
	ResourceItem                      = "item"
	ResourceUser                      = "user"
	ResourceRole                      = "role"
)

// EntityStore es la frontera genérica de lectura/escritura contra el almacén remoto.
// Los cuerpos viajan como JSON; out recibe la respuesta decodificada.
// Un recurso inexistente devuelve domain.ErrNotFound.
type EntityStore interface {
	// Fetch lee una entidad por id.
	Fetch(ctx context.Context, resource, id string, query url.Values, out any) error
	// List lee una colección; out recibe el sobre {"results": [...]} completo.
	List(ctx context.Context, resource string, query url.Values, out any) error
	// Save crea (id vacío) o actualiza una entidad.
	Save(ctx context.Context, resource, id string, in, out any) error
	Delete(ctx context.Context, resource, id string) error
	// PostStatus envía {"status": status} sobre la entidad.
	PostStatus(ctx context.Context, resource, id, status string) error
}
