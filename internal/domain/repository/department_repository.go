package repository

import (
	"context"

	"github.com/jhoicas/stock-operations/internal/domain/entity"
)

// DepartmentRepository define el puerto de persistencia para Department (DIP).
type DepartmentRepository interface {
	Create(ctx context.Context, department *entity.Department) error
	GetByID(ctx context.Context, id string) (*entity.Department, error)
	Update(ctx context.Context, department *entity.Department) error
	List(ctx context.Context, limit, offset int) ([]*entity.Department, error)
	Delete(ctx context.Context, id string) error
}
