package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/stock-operations/internal/application/dto"
	"github.com/jhoicas/stock-operations/internal/domain"
	"github.com/jhoicas/stock-operations/internal/domain/entity"
	"github.com/jhoicas/stock-operations/internal/domain/repository"
)

// DepartmentUseCase casos de uso CRUD para departamentos.
type DepartmentUseCase struct {
	repo repository.DepartmentRepository
}

// NewDepartmentUseCase construye el caso de uso.
func NewDepartmentUseCase(repo repository.DepartmentRepository) *DepartmentUseCase {
	return &DepartmentUseCase{repo: repo}
}

// Create crea un nuevo departamento. El nombre es obligatorio; el uuid lo asigna el almacén.
func (uc *DepartmentUseCase) Create(ctx context.Context, in dto.CreateDepartmentRequest) (*dto.DepartmentResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: el departamento debe tener nombre", domain.ErrInvalidInput)
	}
	department := &entity.Department{
		Name:        name,
		Description: in.Description,
	}
	if in.LocationID != "" {
		department.Location = entity.NewRef(in.LocationID, "")
	}
	if err := uc.repo.Create(ctx, department); err != nil {
		return nil, err
	}
	return toDepartmentResponse(department), nil
}

// GetByID obtiene un departamento por ID.
func (uc *DepartmentUseCase) GetByID(ctx context.Context, id string) (*dto.DepartmentResponse, error) {
	department, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if department == nil {
		return nil, nil
	}
	return toDepartmentResponse(department), nil
}

// Update actualiza un departamento.
func (uc *DepartmentUseCase) Update(ctx context.Context, id string, in dto.UpdateDepartmentRequest) (*dto.DepartmentResponse, error) {
	department, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if department == nil {
		return nil, nil
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: el departamento debe tener nombre", domain.ErrInvalidInput)
		}
		department.Name = name
	}
	if in.Description != nil {
		department.Description = *in.Description
	}
	if in.LocationID != nil {
		department.Location = nil
		if *in.LocationID != "" {
			department.Location = entity.NewRef(*in.LocationID, "")
		}
	}
	if err := uc.repo.Update(ctx, department); err != nil {
		return nil, err
	}
	return toDepartmentResponse(department), nil
}

// List lista departamentos con paginación.
func (uc *DepartmentUseCase) List(ctx context.Context, limit, offset int) (*dto.DepartmentListResponse, error) {
	list, err := uc.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.DepartmentResponse, 0, len(list))
	for _, d := range list {
		items = append(items, *toDepartmentResponse(d))
	}
	return &dto.DepartmentListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// Delete elimina un departamento por ID.
func (uc *DepartmentUseCase) Delete(ctx context.Context, id string) error {
	return uc.repo.Delete(ctx, id)
}

func toDepartmentResponse(d *entity.Department) *dto.DepartmentResponse {
	if d == nil {
		return nil
	}
	res := &dto.DepartmentResponse{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Label:       d.String(),
	}
	if d.Location.IsResolved() {
		res.Location = &dto.RefDTO{ID: d.Location.ID, Display: d.Location.String()}
	}
	return res
}
