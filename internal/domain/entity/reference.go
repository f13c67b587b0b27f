package entity

// Ref es una referencia débil (id + etiqueta en caché) a una entidad que vive en el almacén remoto.
// No implica propiedad: el agregado que la contiene no gestiona el ciclo de vida del referenciado.
type Ref struct {
	ID      string
	Display string
}

// NewRef construye una referencia con su etiqueta.
func NewRef(id, display string) *Ref {
	return &Ref{ID: id, Display: display}
}

// IsResolved indica si la referencia apunta a algo (nil o id vacío cuentan como ausente).
func (r *Ref) IsResolved() bool {
	return r != nil && r.ID != ""
}

// String devuelve la etiqueta en caché o, si no hay, el id.
func (r *Ref) String() string {
	if r == nil {
		return ""
	}
	if r.Display != "" {
		return r.Display
	}
	return r.ID
}
