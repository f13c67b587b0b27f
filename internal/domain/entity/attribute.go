package entity

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// AttributeDatatype etiqueta de tipo declarada en una definición de atributo.
type AttributeDatatype string

// Tipos de dato soportados para atributos personalizados.
const (
	DatatypeText      AttributeDatatype = "text"
	DatatypeInteger   AttributeDatatype = "integer"
	DatatypeFloat     AttributeDatatype = "float"
	DatatypeBoolean   AttributeDatatype = "boolean"
	DatatypeDate      AttributeDatatype = "date"
	DatatypeReference AttributeDatatype = "reference"
)

// AttributeDateLayout formato de fecha de los atributos en el cable.
const AttributeDateLayout = "2006-01-02"

// AttributeTypeDefinition declara un campo personalizado de un tipo de operación.
// ForeignKey solo aplica a DatatypeReference (recurso al que apunta el valor).
type AttributeTypeDefinition struct {
	ID         string
	Name       string
	Datatype   AttributeDatatype
	Required   bool
	ForeignKey string
	Format     string
	SortWeight float64
}

// AttributeValue valor tipado de un atributo. Raw conserva el texto del cable tal cual
// para que la conversión de ida y vuelta sea exacta.
type AttributeValue struct {
	Datatype AttributeDatatype
	raw      string
	parsed   any
}

// AttributeValueError valor que no cumple el tipo declarado. Message se muestra al usuario;
// Cause conserva el error de conversión para el log.
type AttributeValueError struct {
	Attribute string
	Message   string
	Cause     error
}

func (e *AttributeValueError) Error() string { return e.Message }

func (e *AttributeValueError) Unwrap() error { return e.Cause }

func invalidValue(def AttributeTypeDefinition, cause error, format string, args ...any) error {
	return &AttributeValueError{
		Attribute: def.ID,
		Message:   fmt.Sprintf(format, args...),
		Cause:     cause,
	}
}

// ParseAttributeValue valida raw contra el tipo declarado en def y devuelve el valor tipado.
// Los errores son *AttributeValueError.
func ParseAttributeValue(def AttributeTypeDefinition, raw string) (AttributeValue, error) {
	v := AttributeValue{Datatype: def.Datatype, raw: raw}
	trimmed := strings.TrimSpace(raw)
	switch def.Datatype {
	case DatatypeText:
		v.parsed = raw
	case DatatypeInteger:
		n, err := strconv.ParseInt(trimmed, 10, 64)
		if err != nil {
			return AttributeValue{}, invalidValue(def, err, "El atributo %s debe ser un número entero.", def.Name)
		}
		v.parsed = n
	case DatatypeFloat:
		d, err := decimal.NewFromString(trimmed)
		if err != nil {
			return AttributeValue{}, invalidValue(def, err, "El atributo %s debe ser un número.", def.Name)
		}
		v.parsed = d
	case DatatypeBoolean:
		b, err := strconv.ParseBool(trimmed)
		if err != nil {
			return AttributeValue{}, invalidValue(def, err, "El atributo %s debe ser verdadero o falso.", def.Name)
		}
		v.parsed = b
	case DatatypeDate:
		t, err := time.Parse(AttributeDateLayout, trimmed)
		if err != nil {
			return AttributeValue{}, invalidValue(def, err, "El atributo %s debe ser una fecha con formato AAAA-MM-DD.", def.Name)
		}
		v.parsed = t
	case DatatypeReference:
		if def.ForeignKey == "" {
			return AttributeValue{}, invalidValue(def, nil, "El atributo %s no indica a qué recurso hace referencia.", def.Name)
		}
		if trimmed == "" {
			return AttributeValue{}, invalidValue(def, nil, "El atributo %s debe hacer referencia a un registro.", def.Name)
		}
		v.parsed = &Ref{ID: trimmed}
	default:
		return AttributeValue{}, invalidValue(def, nil, "El atributo %s tiene un tipo de dato desconocido (%s).", def.Name, def.Datatype)
	}
	return v, nil
}

// String devuelve la representación de cable del valor.
func (v AttributeValue) String() string { return v.raw }

// Value devuelve el valor tipado (string, int64, decimal.Decimal, bool, time.Time o *Ref).
func (v AttributeValue) Value() any { return v.parsed }

// AttributeValues mapeo id de definición -> valor tipado.
type AttributeValues map[string]AttributeValue

// Clone copia superficial del mapeo.
func (a AttributeValues) Clone() AttributeValues {
	if a == nil {
		return nil
	}
	out := make(AttributeValues, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// DatatypeFromFormat deriva el tipo de dato a partir del formato declarado por el almacén
// (nombre de clase: java.lang.Integer, java.util.Date, org.openmrs.Concept, ...).
// Los formatos desconocidos se tratan como texto.
func DatatypeFromFormat(format string) AttributeDatatype {
	switch format {
	case "java.lang.Integer", "java.lang.Long":
		return DatatypeInteger
	case "java.lang.Float", "java.lang.Double":
		return DatatypeFloat
	case "java.lang.Boolean":
		return DatatypeBoolean
	case "java.util.Date":
		return DatatypeDate
	}
	if strings.HasPrefix(format, "org.openmrs.") {
		return DatatypeReference
	}
	return DatatypeText
}
