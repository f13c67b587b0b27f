package entity

// Department agrupa ítems de inventario; se edita vía el almacén remoto.
type Department struct {
	ID          string
	Name        string
	Description string
	Location    *Ref
}

// String devuelve el nombre del departamento.
func (d *Department) String() string {
	return d.Name
}

// Units es una unidad de medida (miembro del concepto de unidades del almacén remoto).
type Units struct {
	ID      string
	Display string
}

// String devuelve la etiqueta de la unidad.
func (u Units) String() string {
	return u.Display
}
