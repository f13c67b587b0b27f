package rest

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-operations/internal/domain/entity"
	"github.com/jhoicas/stock-operations/internal/domain/operation"
)

// Formatos de fecha aceptados del almacén; el primero es el que emite el servidor.
var storeTimeLayouts = []string{
	"2006-01-02T15:04:05.000-0700",
	time.RFC3339Nano,
	"2006-01-02",
}

const storeTimeLayout = "2006-01-02T15:04:05.000-0700"

// storeTime fecha del almacén; vacía o inválida se decodifica como cero.
type storeTime struct{ time.Time }

func (t *storeTime) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil || s == "" {
		return nil
	}
	for _, layout := range storeTimeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return nil
}

func (t storeTime) ptr() *time.Time {
	if t.IsZero() {
		return nil
	}
	v := t.Time
	return &v
}

// refWire referencia tal como la devuelve el almacén: objeto {uuid, name, display} o uuid suelto.
type refWire struct {
	UUID    string `json:"uuid"`
	Name    string `json:"name,omitempty"`
	Display string `json:"display,omitempty"`
}

func (r *refWire) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		r.UUID = s
		return nil
	}
	type plain refWire
	return json.Unmarshal(b, (*plain)(r))
}

func (r *refWire) toRef() *entity.Ref {
	if r == nil || r.UUID == "" {
		return nil
	}
	display := r.Name
	if display == "" {
		display = r.Display
	}
	return entity.NewRef(r.UUID, display)
}

// stockroomWire bodega en las colecciones de referencia.
type stockroomWire struct {
	UUID     string   `json:"uuid"`
	Name     string   `json:"name"`
	Display  string   `json:"display"`
	Location *refWire `json:"location"`
}

func (w stockroomWire) toEntity() *entity.Stockroom {
	if w.UUID == "" {
		return nil
	}
	name := w.Name
	if name == "" {
		name = w.Display
	}
	return &entity.Stockroom{ID: w.UUID, Name: name, Location: w.Location.toRef()}
}

func refID(r *entity.Ref) string {
	if !r.IsResolved() {
		return ""
	}
	return r.ID
}

// listEnvelope sobre de colección del almacén.
type listEnvelope[T any] struct {
	Results    []T `json:"results"`
	TotalCount *int `json:"totalCount,omitempty"`
}

func (e listEnvelope[T]) total() int {
	if e.TotalCount == nil {
		return -1
	}
	return *e.TotalCount
}

// ── Tipo de operación ─────────────────────────────────────────────────────────

type attributeTypeWire struct {
	UUID           string  `json:"uuid"`
	Name           string  `json:"name"`
	Format         string  `json:"format"`
	ForeignKey     *string `json:"foreignKey"`
	Required       bool    `json:"required"`
	AttributeOrder float64 `json:"attributeOrder"`
}

type operationTypeWire struct {
	UUID                  string              `json:"uuid"`
	Name                  string              `json:"name"`
	Description           string              `json:"description"`
	HasSource             bool                `json:"hasSource"`
	HasDestination        bool                `json:"hasDestination"`
	HasRecipient          bool                `json:"hasRecipient"`
	RecipientRequired     bool                `json:"recipientRequired"`
	AvailableWhenReserved bool                `json:"availableWhenReserved"`
	User                  *refWire            `json:"user"`
	Role                  *refWire            `json:"role"`
	AttributeTypes        []attributeTypeWire `json:"attributeTypes"`
}

func (w *operationTypeWire) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		w.UUID = s
		return nil
	}
	type plain operationTypeWire
	return json.Unmarshal(b, (*plain)(w))
}

// loaded indica si la representación trae el tipo completo y no solo su uuid.
func (w *operationTypeWire) loaded() bool {
	return w != nil && w.UUID != "" && w.Name != ""
}

func (w operationTypeWire) toEntity() *entity.OperationType {
	t := entity.NewOperationType(w.UUID, w.Name, entity.OperationCapabilities{
		HasSource:             w.HasSource,
		HasDestination:        w.HasDestination,
		HasRecipient:          w.HasRecipient,
		RecipientRequired:     w.RecipientRequired,
		AvailableWhenReserved: w.AvailableWhenReserved,
	})
	t.Description = w.Description
	t.ApprovingUser = w.User.toRef()
	t.ApprovingRole = w.Role.toRef()
	for _, a := range w.AttributeTypes {
		def := entity.AttributeTypeDefinition{
			ID:         a.UUID,
			Name:       a.Name,
			Datatype:   entity.DatatypeFromFormat(a.Format),
			Required:   a.Required,
			Format:     a.Format,
			SortWeight: a.AttributeOrder,
		}
		if a.ForeignKey != nil {
			def.ForeignKey = *a.ForeignKey
		}
		// Un formato de entidad sin clave foránea se identifica por el propio formato.
		if def.Datatype == entity.DatatypeReference && def.ForeignKey == "" {
			def.ForeignKey = a.Format
		}
		t.AttributeTypes = append(t.AttributeTypes, def)
	}
	return t
}

// ── Operación ─────────────────────────────────────────────────────────────────

type operationItemWire struct {
	UUID                 string          `json:"uuid,omitempty"`
	Item                 *refWire        `json:"item"`
	Quantity             decimal.Decimal `json:"quantity"`
	Expiration           storeTime       `json:"expiration"`
	CalculatedExpiration bool            `json:"calculatedExpiration"`
	BatchOperation       *refWire        `json:"batchOperation"`
	CalculatedBatch      bool            `json:"calculatedBatch"`
}

func (w operationItemWire) toEntity() entity.OperationItem {
	return entity.OperationItem{
		Item:                 w.Item.toRef(),
		Quantity:             w.Quantity,
		Expiration:           w.Expiration.ptr(),
		CalculatedExpiration: w.CalculatedExpiration,
		BatchOperation:       w.BatchOperation.toRef(),
		CalculatedBatch:      w.CalculatedBatch,
	}
}

type attributeWire struct {
	AttributeType refWire `json:"attributeType"`
	Value         string  `json:"value"`
}

type operationWire struct {
	UUID            string              `json:"uuid"`
	OperationNumber string              `json:"operationNumber"`
	Status          string              `json:"status"`
	InstanceType    *operationTypeWire  `json:"instanceType"`
	Source          *refWire            `json:"source"`
	Destination     *refWire            `json:"destination"`
	Institution     *refWire            `json:"institution"`
	Patient         *refWire            `json:"patient"`
	Items           []operationItemWire `json:"items"`
	Attributes      []attributeWire     `json:"attributes"`
	DateCreated     storeTime           `json:"dateCreated"`
	OperationDate   storeTime           `json:"operationDate"`
}

// toEntity reconstruye la operación. Con la representación completa (v=full) el tipo viene
// embebido y los atributos se tipan contra él; los que no cumplen se devuelven como FieldError.
// Sin tipo embebido los atributos no se pueden tipar y se descartan.
func (w operationWire) toEntity() (*entity.StockOperation, []operation.FieldError, error) {
	status, err := entity.ParseOperationStatus(w.Status)
	if err != nil {
		return nil, nil, err
	}
	op := entity.RestoreStockOperation(w.UUID, w.OperationNumber, status, w.DateCreated.Time)
	op.OperationDate = w.OperationDate.Time
	if w.InstanceType != nil && w.InstanceType.UUID != "" {
		op.OperationTypeRef = entity.NewRef(w.InstanceType.UUID, w.InstanceType.Name)
	}
	op.Source = w.Source.toRef()
	op.Destination = w.Destination.toRef()
	op.Institution = w.Institution.toRef()
	op.Patient = w.Patient.toRef()
	for _, it := range w.Items {
		op.Items = append(op.Items, it.toEntity())
	}
	if !w.InstanceType.loaded() {
		return op, nil, nil
	}
	op.OperationType = w.InstanceType.toEntity()
	wire := make([]operation.WireAttribute, 0, len(w.Attributes))
	for _, a := range w.Attributes {
		wire = append(wire, operation.WireAttribute{AttributeType: a.AttributeType.UUID, Value: a.Value})
	}
	values, attrErrs := operation.CoerceAttributes(op.OperationType, wire)
	op.Attributes = values
	return op, attrErrs, nil
}

// operationSaveItem línea en la carga de guardado; las referencias viajan como uuid.
type operationSaveItem struct {
	Item                 string      `json:"item"`
	Quantity             json.Number `json:"quantity"`
	Expiration           string      `json:"expiration,omitempty"`
	CalculatedExpiration bool        `json:"calculatedExpiration"`
	BatchOperation       string      `json:"batchOperation,omitempty"`
	CalculatedBatch      bool        `json:"calculatedBatch"`
}

type operationSaveAttribute struct {
	AttributeType string `json:"attributeType"`
	Value         string `json:"value"`
}

// operationSave carga de creación/actualización de una operación.
type operationSave struct {
	OperationNumber string                   `json:"operationNumber"`
	Status          string                   `json:"status"`
	InstanceType    string                   `json:"instanceType"`
	Source          string                   `json:"source,omitempty"`
	Destination     string                   `json:"destination,omitempty"`
	Institution     string                   `json:"institution,omitempty"`
	Patient         string                   `json:"patient,omitempty"`
	OperationDate   string                   `json:"operationDate,omitempty"`
	Items           []operationSaveItem      `json:"items"`
	Attributes      []operationSaveAttribute `json:"attributes"`
}

func newOperationSave(op *entity.StockOperation) operationSave {
	s := operationSave{
		OperationNumber: op.OperationNumber,
		Status:          op.Status().String(),
		InstanceType:    refID(op.OperationTypeRef),
		Source:          refID(op.Source),
		Destination:     refID(op.Destination),
		Institution:     refID(op.Institution),
		Patient:         refID(op.Patient),
		Items:           make([]operationSaveItem, 0, len(op.Items)),
		Attributes:      make([]operationSaveAttribute, 0, len(op.Attributes)),
	}
	if !op.OperationDate.IsZero() {
		s.OperationDate = op.OperationDate.Format(storeTimeLayout)
	}
	for _, it := range op.Items {
		item := operationSaveItem{
			Item:                 refID(it.Item),
			Quantity:             json.Number(it.Quantity.String()),
			CalculatedExpiration: it.CalculatedExpiration,
			BatchOperation:       refID(it.BatchOperation),
			CalculatedBatch:      it.CalculatedBatch,
		}
		if it.Expiration != nil {
			item.Expiration = it.Expiration.Format(storeTimeLayout)
		}
		s.Items = append(s.Items, item)
	}
	for _, a := range operation.AttributesToWire(op.Attributes) {
		s.Attributes = append(s.Attributes, operationSaveAttribute{AttributeType: a.AttributeType, Value: a.Value})
	}
	return s
}

// ── Transacciones ─────────────────────────────────────────────────────────────

type transactionWire struct {
	UUID                 string          `json:"uuid"`
	Operation            *refWire        `json:"operation"`
	Item                 *refWire        `json:"item"`
	Quantity             decimal.Decimal `json:"quantity"`
	Expiration           storeTime       `json:"expiration"`
	DateCreated          storeTime       `json:"dateCreated"`
	BatchOperation       *refWire        `json:"batchOperation"`
	CalculatedExpiration bool            `json:"calculatedExpiration"`
	CalculatedBatch      bool            `json:"calculatedBatch"`
	Available            bool            `json:"available"`
	Stockroom            *refWire        `json:"stockroom"`
	Patient              *refWire        `json:"patient"`
	Institution          *refWire        `json:"institution"`
}

func (w transactionWire) base() entity.TransactionBase {
	return entity.TransactionBase{
		ID:                   w.UUID,
		Operation:            w.Operation.toRef(),
		Item:                 w.Item.toRef(),
		Quantity:             w.Quantity,
		Expiration:           w.Expiration.ptr(),
		DateCreated:          w.DateCreated.Time,
		BatchOperation:       w.BatchOperation.toRef(),
		CalculatedExpiration: w.CalculatedExpiration,
		CalculatedBatch:      w.CalculatedBatch,
	}
}

func (w transactionWire) toReserved() *entity.ReservedTransaction {
	return &entity.ReservedTransaction{TransactionBase: w.base(), Available: w.Available}
}

func (w transactionWire) toOperation() *entity.OperationTransaction {
	return &entity.OperationTransaction{
		TransactionBase: w.base(),
		Stockroom:       w.Stockroom.toRef(),
		Patient:         w.Patient.toRef(),
		Institution:     w.Institution.toRef(),
	}
}

// ── Departamento ──────────────────────────────────────────────────────────────

type departmentWire struct {
	UUID        string   `json:"uuid,omitempty"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Location    *refWire `json:"location,omitempty"`
}

func (w departmentWire) toEntity() *entity.Department {
	return &entity.Department{
		ID:          w.UUID,
		Name:        w.Name,
		Description: w.Description,
		Location:    w.Location.toRef(),
	}
}

type departmentSave struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`
}

func newDepartmentSave(d *entity.Department) departmentSave {
	return departmentSave{Name: strings.TrimSpace(d.Name), Description: d.Description, Location: refID(d.Location)}
}
