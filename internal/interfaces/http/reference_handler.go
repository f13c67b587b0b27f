package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	appop "github.com/jhoicas/stock-operations/internal/application/operation"
	"github.com/jhoicas/stock-operations/internal/domain"
	"github.com/jhoicas/stock-operations/internal/domain/repository"
)

// ReferenceHandler expone las colecciones de referencia que usa la edición de operaciones.
type ReferenceHandler struct {
	cache *appop.ReferenceCache
}

// NewReferenceHandler construye el handler.
func NewReferenceHandler(cache *appop.ReferenceCache) *ReferenceHandler {
	return &ReferenceHandler{cache: cache}
}

func referenceKind(c *fiber.Ctx) (repository.ReferenceKind, error) {
	kind, err := repository.ParseReferenceKind(c.Params("kind"))
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return kind, nil
}

// List godoc
// @Summary      Listar colección de referencia
// @Tags         references
// @Produce      json
// @Param        kind  path  string  true  "Colección"  Enums(stockroom, operationType, user, role, institution, item)
// @Success      200   {object}  dto.ReferenceListResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/references/{kind} [get]
func (h *ReferenceHandler) List(c *fiber.Ctx) error {
	kind, err := referenceKind(c)
	if err != nil {
		return writeError(c, err)
	}
	refs, err := h.cache.List(c.UserContext(), kind)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(appop.ToReferenceList(string(kind), refs))
}

// Refresh godoc
// @Summary      Recargar colección de referencia
// @Description  Reemplaza la colección completa. Si falla se conserva la anterior.
// @Tags         references
// @Produce      json
// @Param        kind  path  string  true  "Colección"
// @Success      200   {object}  dto.ReferenceListResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/references/{kind}/refresh [post]
func (h *ReferenceHandler) Refresh(c *fiber.Ctx) error {
	kind, err := referenceKind(c)
	if err != nil {
		return writeError(c, err)
	}
	refs, err := h.cache.Refresh(c.UserContext(), kind)
	if err != nil {
		return writeError(c, err)
	}
	if kind == repository.ReferenceOperationType {
		if err := h.cache.RefreshOperationTypes(c.UserContext()); err != nil {
			return writeError(c, err)
		}
	}
	return c.JSON(appop.ToReferenceList(string(kind), refs))
}
