package repository

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-operations/internal/domain/entity"
)

// ReferenceKind colección de datos de referencia que la UI consulta al editar una operación.
type ReferenceKind string

// Colecciones de referencia soportadas.
const (
	ReferenceStockroom     ReferenceKind = "stockroom"
	ReferenceOperationType ReferenceKind = "operationType"
	ReferenceUser          ReferenceKind = "user"
	ReferenceRole          ReferenceKind = "role"
	ReferenceInstitution   ReferenceKind = "institution"
	ReferenceItem          ReferenceKind = "item"
)

// ReferenceKinds todas las colecciones, en orden estable.
var ReferenceKinds = []ReferenceKind{
	ReferenceStockroom, ReferenceOperationType, ReferenceUser,
	ReferenceRole, ReferenceInstitution, ReferenceItem,
}

// ParseReferenceKind valida el nombre de una colección.
func ParseReferenceKind(s string) (ReferenceKind, error) {
	for _, k := range ReferenceKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("colección de referencia desconocida: %q", s)
}

// Resource recurso del almacén que respalda la colección.
func (k ReferenceKind) Resource() string {
	switch k {
	case ReferenceOperationType:
		return ResourceStockOperationType
	default:
		return string(k)
	}
}

// ReferenceRepository proveedor de colecciones de referencia (id + etiqueta).
// query se pasa tal cual al almacén (p. ej. "v=full").
type ReferenceRepository interface {
	List(ctx context.Context, kind ReferenceKind, query string) ([]entity.Ref, error)
}
