package entity

import "sort"

// AdjustmentTypeName nombre del tipo de operación que admite cantidades negativas.
// Se compara contra el nombre visible, no contra un código estable.
const AdjustmentTypeName = "Adjustment"

// OperationCapabilities banderas declaradas por el servidor para un tipo de operación.
type OperationCapabilities struct {
	HasSource             bool
	HasDestination        bool
	HasRecipient          bool
	RecipientRequired     bool
	AvailableWhenReserved bool
}

// OperationType categoría configurada de operación (Receipt, Transfer, Adjustment, ...).
// Las capacidades se fijan al construir y solo se exponen en lectura.
type OperationType struct {
	ID             string
	Name           string
	Description    string
	ApprovingUser  *Ref
	ApprovingRole  *Ref
	AttributeTypes []AttributeTypeDefinition

	caps OperationCapabilities
}

// NewOperationType construye un tipo de operación con sus capacidades inmutables.
func NewOperationType(id, name string, caps OperationCapabilities) *OperationType {
	return &OperationType{ID: id, Name: name, caps: caps}
}

// Capabilities devuelve una copia de las banderas.
func (t *OperationType) Capabilities() OperationCapabilities { return t.caps }

func (t *OperationType) HasSource() bool             { return t.caps.HasSource }
func (t *OperationType) HasDestination() bool        { return t.caps.HasDestination }
func (t *OperationType) HasRecipient() bool          { return t.caps.HasRecipient }
func (t *OperationType) RecipientRequired() bool     { return t.caps.RecipientRequired }
func (t *OperationType) AvailableWhenReserved() bool { return t.caps.AvailableWhenReserved }

// IsAdjustment indica si el tipo permite cantidades negativas.
func (t *OperationType) IsAdjustment() bool {
	return t.Name == AdjustmentTypeName
}

// AttributeType busca una definición declarada por id.
func (t *OperationType) AttributeType(id string) (AttributeTypeDefinition, bool) {
	for _, def := range t.AttributeTypes {
		if def.ID == id {
			return def, true
		}
	}
	return AttributeTypeDefinition{}, false
}

// SortedAttributeTypes devuelve las definiciones ordenadas por peso y luego por nombre.
func (t *OperationType) SortedAttributeTypes() []AttributeTypeDefinition {
	out := make([]AttributeTypeDefinition, len(t.AttributeTypes))
	copy(out, t.AttributeTypes)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].SortWeight != out[j].SortWeight {
			return out[i].SortWeight < out[j].SortWeight
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Ref devuelve la referencia débil al tipo.
func (t *OperationType) Ref() *Ref {
	return NewRef(t.ID, t.Name)
}

// String devuelve el nombre o una etiqueta genérica.
func (t *OperationType) String() string {
	if t.Name != "" {
		return t.Name
	}
	return "Operation Type"
}
