package operation

import (
	"context"

	"github.com/jhoicas/stock-operations/internal/domain/entity"
	"github.com/jhoicas/stock-operations/pkg/logger"
)

// ErrorHandler colaborador que recibe los fallos que no se pueden devolver al llamador
// (envíos en segundo plano, recargas de referencia).
type ErrorHandler interface {
	HandleError(ctx context.Context, err error)
}

// ErrorHandlerFunc adapta una función a ErrorHandler.
type ErrorHandlerFunc func(ctx context.Context, err error)

// HandleError implementa ErrorHandler.
func (f ErrorHandlerFunc) HandleError(ctx context.Context, err error) { f(ctx, err) }

// LogErrorHandler registra los errores con zerolog.
type LogErrorHandler struct {
	log *logger.Logger
}

// NewLogErrorHandler construye el handler por defecto.
func NewLogErrorHandler(log *logger.Logger) *LogErrorHandler {
	return &LogErrorHandler{log: log.Component("errors")}
}

// HandleError implementa ErrorHandler.
func (h *LogErrorHandler) HandleError(_ context.Context, err error) {
	h.log.Error().Err(err).Msg("error en segundo plano")
}

// OperationTypeResolver resuelve un tipo de operación por id (normalmente la caché de referencia).
type OperationTypeResolver interface {
	OperationType(ctx context.Context, id string) (*entity.OperationType, error)
}
