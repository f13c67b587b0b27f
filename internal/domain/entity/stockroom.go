package entity

// Stockroom representa una bodega (ubicación física o lógica de inventario) que puede ser
// origen o destino de una operación de stock.
type Stockroom struct {
	ID       string
	Name     string
	Location *Ref
}

// String devuelve el nombre de la bodega.
func (s *Stockroom) String() string {
	return s.Name
}

// Ref devuelve la referencia débil a la bodega.
func (s *Stockroom) Ref() *Ref {
	return NewRef(s.ID, s.Name)
}
