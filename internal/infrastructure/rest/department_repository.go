package rest

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/jhoicas/stock-operations/internal/domain"
	"github.com/jhoicas/stock-operations/internal/domain/entity"
	"github.com/jhoicas/stock-operations/internal/domain/repository"
)

var _ repository.DepartmentRepository = (*DepartmentRepo)(nil)

// DepartmentRepo implementación del puerto DepartmentRepository sobre el almacén REST.
type DepartmentRepo struct {
	store repository.EntityStore
}

// NewDepartmentRepository construye el adaptador para departamentos.
func NewDepartmentRepository(store repository.EntityStore) *DepartmentRepo {
	return &DepartmentRepo{store: store}
}

// Create persiste un nuevo departamento y copia el uuid asignado por el servidor.
func (r *DepartmentRepo) Create(ctx context.Context, department *entity.Department) error {
	var w departmentWire
	if err := r.store.Save(ctx, repository.ResourceDepartment, "", newDepartmentSave(department), &w); err != nil {
		return fmt.Errorf("create department: %w", err)
	}
	department.ID = w.UUID
	return nil
}

// GetByID obtiene un departamento por uuid. Devuelve (nil, nil) si no existe.
func (r *DepartmentRepo) GetByID(ctx context.Context, id string) (*entity.Department, error) {
	var w departmentWire
	err := r.store.Fetch(ctx, repository.ResourceDepartment, id, nil, &w)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get department: %w", err)
	}
	return w.toEntity(), nil
}

// Update actualiza un departamento existente.
func (r *DepartmentRepo) Update(ctx context.Context, department *entity.Department) error {
	if err := r.store.Save(ctx, repository.ResourceDepartment, department.ID, newDepartmentSave(department), nil); err != nil {
		return fmt.Errorf("update department: %w", err)
	}
	return nil
}

// List lista departamentos con paginación.
func (r *DepartmentRepo) List(ctx context.Context, limit, offset int) ([]*entity.Department, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		q.Set("startIndex", strconv.Itoa(offset))
	}
	var env listEnvelope[departmentWire]
	if err := r.store.List(ctx, repository.ResourceDepartment, q, &env); err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}
	out := make([]*entity.Department, 0, len(env.Results))
	for _, w := range env.Results {
		out = append(out, w.toEntity())
	}
	return out, nil
}

// Delete elimina (retira) un departamento.
func (r *DepartmentRepo) Delete(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, repository.ResourceDepartment, id); err != nil {
		return fmt.Errorf("delete department: %w", err)
	}
	return nil
}
