package repository

import (
	"context"

	"github.com/jhoicas/stock-operations/internal/domain/entity"
)

// OperationSearch filtros de búsqueda de operaciones. Los campos vacíos no filtran.
type OperationSearch struct {
	Status          entity.OperationStatus
	StockroomID     string
	OperationTypeID string
	ItemID          string
	Limit           int
	Offset          int
}

// StockOperationRepository define el puerto de lectura/escritura de operaciones de stock.
type StockOperationRepository interface {
	GetByID(ctx context.Context, id string) (*entity.StockOperation, error)
	// Search devuelve una página de operaciones y el total informado por el almacén (-1 si no lo informa).
	Search(ctx context.Context, filter OperationSearch) ([]*entity.StockOperation, int, error)
	// Save crea o actualiza la operación y devuelve la versión confirmada por el almacén
	// (uuid, estado y fecha de creación asignados por el servidor).
	Save(ctx context.Context, op *entity.StockOperation) (*entity.StockOperation, error)
	PostStatus(ctx context.Context, id string, status entity.OperationStatus) error
	ListItems(ctx context.Context, operationID string) ([]entity.OperationItem, error)
	// ListTransactions devuelve reservas y transacciones aplicadas de la operación.
	ListTransactions(ctx context.Context, operationID string) ([]entity.Transaction, error)
}

// OperationTypeRepository catálogo de tipos de operación configurados.
type OperationTypeRepository interface {
	GetByID(ctx context.Context, id string) (*entity.OperationType, error)
	List(ctx context.Context) ([]*entity.OperationType, error)
}
