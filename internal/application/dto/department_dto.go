package dto

// CreateDepartmentRequest entrada para crear un departamento.
type CreateDepartmentRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=255"`
	Description string `json:"description" validate:"max=1024"`
	LocationID  string `json:"location_id,omitempty"`
}

// UpdateDepartmentRequest entrada para actualizar un departamento.
type UpdateDepartmentRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description" validate:"omitempty,max=1024"`
	LocationID  *string `json:"location_id"`
}

// DepartmentResponse salida de un departamento.
type DepartmentResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Location    *RefDTO `json:"location,omitempty"`
	Label       string  `json:"label"`
}

// DepartmentListResponse lista paginada de departamentos.
type DepartmentListResponse struct {
	Items []DepartmentResponse `json:"items"`
	Page  PageResponse         `json:"page"`
}
