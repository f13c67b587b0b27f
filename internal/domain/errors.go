package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound             = errors.New("recurso no encontrado")
	ErrInvalidInput         = errors.New("entrada inválida")
	ErrConflict             = errors.New("conflicto con el estado actual")
	ErrInvalidTransition    = errors.New("transición de estado inválida")
	ErrOperationLocked      = errors.New("la operación ya no admite cambios")
	ErrInvalidAttribute     = errors.New("atributo inválido para el tipo de operación")
	ErrReferenceUnavailable = errors.New("datos de referencia no disponibles")
	ErrStoreUnavailable     = errors.New("almacén de entidades no disponible")
	ErrStoreRejected        = errors.New("el almacén rechazó la petición")
)
