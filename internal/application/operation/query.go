package operation

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-operations/internal/application/dto"
	"github.com/jhoicas/stock-operations/internal/domain"
	"github.com/jhoicas/stock-operations/internal/domain/entity"
	"github.com/jhoicas/stock-operations/internal/domain/repository"
)

// QueryUseCase consultas de solo lectura sobre operaciones.
type QueryUseCase struct {
	ops repository.StockOperationRepository
}

// NewQueryUseCase construye el caso de uso.
func NewQueryUseCase(ops repository.StockOperationRepository) *QueryUseCase {
	return &QueryUseCase{ops: ops}
}

// GetByID obtiene una operación por uuid.
func (uc *QueryUseCase) GetByID(ctx context.Context, id string) (*dto.OperationResponse, error) {
	op, err := uc.ops.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToOperationResponse(op), nil
}

// Search busca operaciones por estado, bodega, tipo e ítem con paginación.
func (uc *QueryUseCase) Search(ctx context.Context, in dto.OperationSearchRequest) (*dto.OperationListResponse, error) {
	in.DefaultPage()
	filter := repository.OperationSearch{
		StockroomID:     in.StockroomID,
		OperationTypeID: in.OperationTypeID,
		ItemID:          in.ItemID,
		Limit:           in.Limit,
		Offset:          in.Offset,
	}
	if in.Status != "" {
		status, err := entity.ParseOperationStatus(in.Status)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
		filter.Status = status
	}
	list, total, err := uc.ops.Search(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.OperationResponse, 0, len(list))
	for _, op := range list {
		items = append(items, *ToOperationResponse(op))
	}
	page := dto.PageResponse{Limit: in.Limit, Offset: in.Offset}
	if total >= 0 {
		page.Total = total
	}
	return &dto.OperationListResponse{Items: items, Page: page}, nil
}

// Items lista las líneas de una operación.
func (uc *QueryUseCase) Items(ctx context.Context, id string) ([]dto.OperationItemResponse, error) {
	list, err := uc.ops.ListItems(ctx, id)
	if err != nil {
		return nil, err
	}
	out := make([]dto.OperationItemResponse, 0, len(list))
	for _, it := range list {
		out = append(out, toItemResponse(it))
	}
	return out, nil
}

// Transactions lista reservas y transacciones aplicadas de una operación.
func (uc *QueryUseCase) Transactions(ctx context.Context, id string) ([]dto.TransactionResponse, error) {
	list, err := uc.ops.ListTransactions(ctx, id)
	if err != nil {
		return nil, err
	}
	out := make([]dto.TransactionResponse, 0, len(list))
	for _, tx := range list {
		out = append(out, toTransactionResponse(tx))
	}
	return out, nil
}
