package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/jhoicas/stock-operations/internal/application/dto"
	appop "github.com/jhoicas/stock-operations/internal/application/operation"
	"github.com/jhoicas/stock-operations/internal/domain/entity"
	domainop "github.com/jhoicas/stock-operations/internal/domain/operation"
)

// RollbackRequested estado devuelto al aceptar un rollback; el definitivo se lee del almacén.
const RollbackRequested = "ROLLBACK_REQUESTED"

// OperationHandler maneja las peticiones HTTP de operaciones de stock.
type OperationHandler struct {
	submit   *appop.SubmitOperationUseCase
	rollback *appop.RollbackUseCase
	query    *appop.QueryUseCase
}

// NewOperationHandler construye el handler.
func NewOperationHandler(submit *appop.SubmitOperationUseCase, rollback *appop.RollbackUseCase, query *appop.QueryUseCase) *OperationHandler {
	return &OperationHandler{submit: submit, rollback: rollback, query: query}
}

// parseOperation lee y valida la forma del body y arma la operación.
// Devuelve ok=false cuando ya se escribió la respuesta.
func (h *OperationHandler) parseOperation(c *fiber.Ctx) (*entity.StockOperation, []domainop.FieldError, bool, error) {
	var in dto.OperationRequest
	if err := c.BodyParser(&in); err != nil {
		return nil, nil, false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if fields := validateStruct(in); fields != nil {
		return nil, nil, false, badRequest(c, fields)
	}
	op, attrErrs, err := h.submit.BuildOperation(c.UserContext(), in)
	if err != nil {
		return nil, nil, false, writeError(c, err)
	}
	return op, attrErrs, true, nil
}

// Validate godoc
// @Summary      Validar operación
// @Description  Aplica las reglas de validación sin guardar. Devuelve todos los errores de campo en orden.
// @Tags         operations
// @Accept       json
// @Produce      json
// @Param        body  body  dto.OperationRequest  true  "Operación"
// @Success      200   {object}  dto.ValidationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/operations/validate [post]
func (h *OperationHandler) Validate(c *fiber.Ctx) error {
	op, attrErrs, ok, err := h.parseOperation(c)
	if !ok {
		return err
	}
	errs := appop.ToFieldErrorDTOs(h.submit.CheckOperation(c.UserContext(), op, attrErrs))
	return c.JSON(dto.ValidationResponse{Valid: len(errs) == 0, Errors: errs})
}

// Submit godoc
// @Summary      Enviar operación
// @Description  Valida y guarda la operación. Sin id crea una nueva; con id actualiza una NEW o PENDING.
// @Tags         operations
// @Accept       json
// @Produce      json
// @Param        body  body  dto.OperationRequest  true  "Operación"
// @Success      201   {object}  dto.OperationResponse
// @Success      200   {object}  dto.OperationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ValidationResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/operations [post]
func (h *OperationHandler) Submit(c *fiber.Ctx) error {
	op, attrErrs, ok, err := h.parseOperation(c)
	if !ok {
		return err
	}
	isNew := op.ID == ""
	if len(attrErrs) > 0 {
		return validationFailed(c, appop.ToFieldErrorDTOs(h.submit.CheckOperation(c.UserContext(), op, attrErrs)))
	}
	saved, fieldErrs, err := h.submit.SubmitOperation(c.UserContext(), op)
	if err != nil {
		return writeError(c, err)
	}
	if len(fieldErrs) > 0 {
		return validationFailed(c, appop.ToFieldErrorDTOs(fieldErrs))
	}
	status := fiber.StatusOK
	if isNew {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(appop.ToOperationResponse(saved))
}

// Search godoc
// @Summary      Buscar operaciones
// @Tags         operations
// @Produce      json
// @Param        status             query  string  false  "Estado"  Enums(NEW, PENDING, CANCELLED, COMPLETED, ROLLBACK)
// @Param        stockroom_id       query  string  false  "Bodega"
// @Param        operation_type_id  query  string  false  "Tipo de operación"
// @Param        item_id            query  string  false  "Ítem"
// @Param        limit              query  int     false  "Límite"  default(20)
// @Param        offset             query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.OperationListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/operations [get]
func (h *OperationHandler) Search(c *fiber.Ctx) error {
	var in dto.OperationSearchRequest
	if err := c.QueryParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	in.DefaultPage()
	if fields := validateStruct(in); fields != nil {
		return badRequest(c, fields)
	}
	out, err := h.query.Search(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// operationID lee y valida el uuid de la ruta.
func operationID(c *fiber.Ctx) (string, bool) {
	id := c.Params("id")
	if id == "" {
		return "", false
	}
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return id, true
}

func invalidID(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_ID", Message: "id debe ser un UUID"})
}

// GetByID godoc
// @Summary      Obtener operación por ID
// @Tags         operations
// @Produce      json
// @Param        id   path  string  true  "UUID de la operación"
// @Success      200  {object}  dto.OperationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/operations/{id} [get]
func (h *OperationHandler) GetByID(c *fiber.Ctx) error {
	id, ok := operationID(c)
	if !ok {
		return invalidID(c)
	}
	out, err := h.query.GetByID(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Items godoc
// @Summary      Líneas de una operación
// @Tags         operations
// @Produce      json
// @Param        id   path  string  true  "UUID de la operación"
// @Success      200  {array}   dto.OperationItemResponse
// @Router       /api/operations/{id}/items [get]
func (h *OperationHandler) Items(c *fiber.Ctx) error {
	id, ok := operationID(c)
	if !ok {
		return invalidID(c)
	}
	out, err := h.query.Items(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Transactions godoc
// @Summary      Reservas y transacciones de una operación
// @Tags         operations
// @Produce      json
// @Param        id   path  string  true  "UUID de la operación"
// @Success      200  {array}   dto.TransactionResponse
// @Router       /api/operations/{id}/transactions [get]
func (h *OperationHandler) Transactions(c *fiber.Ctx) error {
	id, ok := operationID(c)
	if !ok {
		return invalidID(c)
	}
	out, err := h.query.Transactions(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Rollback godoc
// @Summary      Revertir operación completada
// @Description  Acepta la solicitud y la envía al almacén en segundo plano; el resultado se ve al volver a leer la operación.
// @Tags         operations
// @Produce      json
// @Param        id   path  string  true  "UUID de la operación"
// @Success      202  {object}  dto.RollbackResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/operations/{id}/rollback [post]
func (h *OperationHandler) Rollback(c *fiber.Ctx) error {
	id, ok := operationID(c)
	if !ok {
		return invalidID(c)
	}
	var accepted string
	err := h.rollback.Rollback(c.UserContext(), id, func(opID string) { accepted = opID }, nil)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(dto.RollbackResponse{ID: accepted, Status: RollbackRequested})
}

// Cancel godoc
// @Summary      Cancelar operación
// @Tags         operations
// @Produce      json
// @Param        id   path  string  true  "UUID de la operación"
// @Success      200  {object}  dto.OperationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/operations/{id}/cancel [post]
func (h *OperationHandler) Cancel(c *fiber.Ctx) error {
	id, ok := operationID(c)
	if !ok {
		return invalidID(c)
	}
	op, err := h.submit.Cancel(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(appop.ToOperationResponse(op))
}
