package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RefDTO referencia débil a una entidad del almacén.
type RefDTO struct {
	ID      string `json:"id"`
	Display string `json:"display,omitempty"`
}

// OperationItemRequest línea de una operación en el body de validación/envío.
// Calculated* indican que vencimiento o lote salen de los valores por defecto del ítem.
type OperationItemRequest struct {
	ItemID               string          `json:"item_id" validate:"required,max=64"`
	Quantity             decimal.Decimal `json:"quantity"`
	Expiration           string          `json:"expiration,omitempty" validate:"omitempty,datetime=2006-01-02"`
	CalculatedExpiration bool            `json:"calculated_expiration,omitempty"`
	BatchOperationID     string          `json:"batch_operation_id,omitempty" validate:"omitempty,max=64"`
	CalculatedBatch      bool            `json:"calculated_batch,omitempty"`
}

// AttributeRequest valor de atributo personalizado en el cable: {attributeType, value}.
type AttributeRequest struct {
	AttributeType string `json:"attributeType" validate:"required,max=64"`
	Value         string `json:"value" validate:"max=1024"`
}

// OperationRequest body para POST /api/operations y /api/operations/validate.
// Las reglas de negocio (número, tipo, bodegas, ítems) las aplica el validador de dominio;
// aquí solo se controla la forma.
type OperationRequest struct {
	ID              string                 `json:"id,omitempty" validate:"omitempty,uuid"`
	OperationNumber string                 `json:"operation_number" validate:"max=255"`
	OperationTypeID string                 `json:"operation_type_id" validate:"max=64"`
	SourceID        string                 `json:"source_id,omitempty" validate:"max=64"`
	DestinationID   string                 `json:"destination_id,omitempty" validate:"max=64"`
	InstitutionID   string                 `json:"institution_id,omitempty" validate:"max=64"`
	PatientID       string                 `json:"patient_id,omitempty" validate:"max=64"`
	OperationDate   *time.Time             `json:"operation_date,omitempty"`
	Items           []OperationItemRequest `json:"items" validate:"dive"`
	Attributes      []AttributeRequest     `json:"attributes" validate:"dive"`
}

// FieldErrorDTO error de campo con el selector del control a resaltar.
type FieldErrorDTO struct {
	Selector     string `json:"selector"`
	Message      string `json:"message"`
	SelectParent bool   `json:"selectParent,omitempty"`
}

// ValidationResponse resultado de validar una operación.
type ValidationResponse struct {
	Valid  bool            `json:"valid"`
	Errors []FieldErrorDTO `json:"errors,omitempty"`
}

// OperationItemResponse línea de operación en las respuestas.
type OperationItemResponse struct {
	Item                 *RefDTO         `json:"item"`
	Quantity             decimal.Decimal `json:"quantity"`
	Expiration           *time.Time      `json:"expiration,omitempty"`
	CalculatedExpiration bool            `json:"calculated_expiration"`
	BatchOperation       *RefDTO         `json:"batch_operation,omitempty"`
	CalculatedBatch      bool            `json:"calculated_batch"`
	Label                string          `json:"label"`
}

// AttributeResponse atributo personalizado con su valor de cable.
type AttributeResponse struct {
	AttributeType string `json:"attributeType"`
	Value         string `json:"value"`
}

// OperationResponse salida de una operación de stock.
type OperationResponse struct {
	ID              string                  `json:"id"`
	OperationNumber string                  `json:"operation_number"`
	Status          string                  `json:"status"`
	OperationType   *RefDTO                 `json:"operation_type,omitempty"`
	Source          *RefDTO                 `json:"source,omitempty"`
	Destination     *RefDTO                 `json:"destination,omitempty"`
	Institution     *RefDTO                 `json:"institution,omitempty"`
	Patient         *RefDTO                 `json:"patient,omitempty"`
	Items           []OperationItemResponse `json:"items"`
	Attributes      []AttributeResponse     `json:"attributes"`
	DateCreated     time.Time               `json:"date_created"`
	OperationDate   time.Time               `json:"operation_date"`
	Label           string                  `json:"label"`
}

// OperationListResponse lista paginada de operaciones.
type OperationListResponse struct {
	Items []OperationResponse `json:"items"`
	Page  PageResponse        `json:"page"`
}

// OperationSearchRequest filtros de GET /api/operations.
type OperationSearchRequest struct {
	Status          string `query:"status" validate:"omitempty,oneof=NEW PENDING CANCELLED COMPLETED ROLLBACK"`
	StockroomID     string `query:"stockroom_id" validate:"max=64"`
	OperationTypeID string `query:"operation_type_id" validate:"max=64"`
	ItemID          string `query:"item_id" validate:"max=64"`
	PageRequest
}

// TransactionResponse entrada del libro de inventario (reserva o aplicada).
type TransactionResponse struct {
	ID          string          `json:"id"`
	Kind        string          `json:"kind"`
	Item        *RefDTO         `json:"item"`
	Quantity    decimal.Decimal `json:"quantity"`
	Expiration  *time.Time      `json:"expiration,omitempty"`
	DateCreated time.Time       `json:"date_created"`
	Available   *bool           `json:"available,omitempty"`
	Stockroom   *RefDTO         `json:"stockroom,omitempty"`
	Patient     *RefDTO         `json:"patient,omitempty"`
	Institution *RefDTO         `json:"institution,omitempty"`
	Label       string          `json:"label"`
}

// RollbackResponse respuesta inmediata de una solicitud de rollback (el envío sigue en segundo plano).
type RollbackResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// ReferenceListResponse colección de referencia.
type ReferenceListResponse struct {
	Kind  string   `json:"kind"`
	Items []RefDTO `json:"items"`
}
