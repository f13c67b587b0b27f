package operation_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-operations/internal/application/dto"
	appop "github.com/jhoicas/stock-operations/internal/application/operation"
	"github.com/jhoicas/stock-operations/internal/domain"
	"github.com/jhoicas/stock-operations/internal/domain/entity"
	domainop "github.com/jhoicas/stock-operations/internal/domain/operation"
	"github.com/jhoicas/stock-operations/pkg/logger"
	"github.com/jhoicas/stock-operations/pkg/metrics"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

func catalog() *fakeTypes {
	receipt := entity.NewOperationType("t-receipt", "Receipt", entity.OperationCapabilities{HasDestination: true})
	receipt.AttributeTypes = []entity.AttributeTypeDefinition{
		{ID: "a-boxes", Name: "Boxes", Datatype: entity.DatatypeInteger},
	}
	return &fakeTypes{types: []*entity.OperationType{
		entity.NewOperationType("t-transfer", "Transfer", entity.OperationCapabilities{HasSource: true, HasDestination: true}),
		entity.NewOperationType("t-adjust", entity.AdjustmentTypeName, entity.OperationCapabilities{HasSource: true}),
		receipt,
	}}
}

func newSubmit(ops *fakeOps, types *fakeTypes) *appop.SubmitOperationUseCase {
	cache := newCache(&fakeRefs{}, types, nil)
	return appop.NewSubmitOperationUseCase(ops, cache, logger.Nop(), metrics.New("test"))
}

func selectorsOf(errs []domainop.FieldError) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Selector)
	}
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Envío
// ──────────────────────────────────────────────────────────────────────────────

func TestSubmit_ConErroresNoGuarda(t *testing.T) {
	ops := newFakeOps()
	uc := newSubmit(ops, catalog())

	op, _, err := uc.BuildOperation(context.Background(), dto.OperationRequest{
		OperationNumber: "OP-100",
		OperationTypeID: "t-transfer",
		DestinationID:   "sr-2",
		Items:           []dto.OperationItemRequest{{ItemID: "i-1", Quantity: decimal.NewFromInt(10)}},
	})
	require.NoError(t, err)

	saved, fieldErrs, err := uc.SubmitOperation(context.Background(), op)

	require.NoError(t, err)
	assert.Nil(t, saved)
	assert.Equal(t, []string{domainop.SelectorSource}, selectorsOf(fieldErrs))
	assert.Empty(t, ops.saved, "con errores de validación nunca se llama al almacén")
}

func TestSubmit_ValidaYReflejaEstadoDelServidor(t *testing.T) {
	ops := newFakeOps()
	ops.saveReply = entity.RestoreStockOperation("srv-1", "ADJ-1", entity.OperationStatusCompleted, testNow)
	uc := newSubmit(ops, catalog())

	op, attrErrs, err := uc.BuildOperation(context.Background(), dto.OperationRequest{
		OperationNumber: "ADJ-1",
		OperationTypeID: "t-adjust",
		SourceID:        "sr-1",
		Items:           []dto.OperationItemRequest{{ItemID: "i-1", Quantity: decimal.NewFromInt(-3), Expiration: "2025-06-30"}},
	})
	require.NoError(t, err)
	require.Empty(t, attrErrs)
	require.NotNil(t, op.Items[0].Expiration)

	saved, fieldErrs, err := uc.SubmitOperation(context.Background(), op)

	require.NoError(t, err)
	assert.Nil(t, fieldErrs)
	assert.Equal(t, "srv-1", saved.ID)
	assert.Equal(t, entity.OperationStatusCompleted, op.Status(), "el estado local refleja al servidor")
	assert.Equal(t, "srv-1", op.ID)
	assert.True(t, testNow.Equal(op.DateCreated()), "la fecha de creación es la del almacén")
	assert.Len(t, ops.saved, 1)
}

func TestSubmit_OperacionBloqueadaEsTransicionInvalida(t *testing.T) {
	uc := newSubmit(newFakeOps(), catalog())
	op := completedOp("op-1")

	_, _, err := uc.SubmitOperation(context.Background(), op)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestBuildOperation_ExistenteCompletadaEstaBloqueada(t *testing.T) {
	id := uuid.NewString()
	ops := newFakeOps(entity.RestoreStockOperation(id, "OP-1", entity.OperationStatusCompleted, testNow))
	uc := newSubmit(ops, catalog())

	_, _, err := uc.BuildOperation(context.Background(), dto.OperationRequest{ID: id, OperationNumber: "OP-1"})
	assert.ErrorIs(t, err, domain.ErrOperationLocked)

	_, _, err = uc.BuildOperation(context.Background(), dto.OperationRequest{ID: "no-es-uuid"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestBuildOperation_EdicionConservaBanderasCalculadas(t *testing.T) {
	id := uuid.NewString()
	existing := entity.RestoreStockOperation(id, "OP-7", entity.OperationStatusPending, testNow)
	existing.Items = []entity.OperationItem{{Item: entity.NewRef("i-1", ""), Quantity: decimal.NewFromInt(1), CalculatedBatch: true}}
	ops := newFakeOps(existing)
	uc := newSubmit(ops, catalog())

	op, attrErrs, err := uc.BuildOperation(context.Background(), dto.OperationRequest{
		ID:              id,
		OperationNumber: "OP-7",
		OperationTypeID: "t-receipt",
		DestinationID:   "sr-1",
		Items: []dto.OperationItemRequest{{
			ItemID:               "i-1",
			Quantity:             decimal.NewFromInt(4),
			Expiration:           "2025-06-30",
			CalculatedExpiration: true,
			BatchOperationID:     "op-batch",
			CalculatedBatch:      true,
		}},
	})
	require.NoError(t, err)
	require.Empty(t, attrErrs)
	require.Len(t, op.Items, 1)
	assert.True(t, op.Items[0].CalculatedExpiration)
	assert.True(t, op.Items[0].CalculatedBatch)

	_, fieldErrs, err := uc.SubmitOperation(context.Background(), op)
	require.NoError(t, err)
	require.Empty(t, fieldErrs)
	require.Len(t, ops.saved, 1)
	assert.True(t, ops.saved[0].Items[0].CalculatedExpiration, "las banderas llegan al almacén")
	assert.True(t, ops.saved[0].Items[0].CalculatedBatch)
}

func TestBuildOperation_TipoNoResueltoCuentaComoAusente(t *testing.T) {
	types := catalog()
	types.err = errors.New("almacén caído")
	uc := newSubmit(newFakeOps(), types)

	op, _, err := uc.BuildOperation(context.Background(), dto.OperationRequest{
		OperationNumber: "OP-2",
		OperationTypeID: "t-transfer",
		Items:           []dto.OperationItemRequest{{ItemID: "i-1", Quantity: decimal.NewFromInt(1)}},
	})
	require.NoError(t, err)
	assert.Equal(t, "t-transfer", op.OperationTypeRef.ID)

	assert.Equal(t, []string{domainop.SelectorOperationType}, selectorsOf(uc.ValidateOperation(context.Background(), op)))
}

func TestBuildOperation_AtributosTipados(t *testing.T) {
	uc := newSubmit(newFakeOps(), catalog())

	op, attrErrs, err := uc.BuildOperation(context.Background(), dto.OperationRequest{
		OperationNumber: "R-1",
		OperationTypeID: "t-receipt",
		Attributes: []dto.AttributeRequest{
			{AttributeType: "a-boxes", Value: "3"},
			{AttributeType: "a-otro", Value: "x"},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, int64(3), op.Attributes["a-boxes"].Value())
	assert.Equal(t, []string{domainop.AttributeSelector("a-otro")}, selectorsOf(attrErrs))
}

func TestCancel(t *testing.T) {
	pending := entity.RestoreStockOperation("op-p", "P-1", entity.OperationStatusPending, testNow)
	ops := newFakeOps(pending, completedOp("op-c"))
	uc := newSubmit(ops, catalog())

	op, err := uc.Cancel(context.Background(), "op-p")
	require.NoError(t, err)
	assert.Equal(t, entity.OperationStatusCancelled, op.Status())

	_, err = uc.Cancel(context.Background(), "op-c")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Equal(t, []string{"op-p:CANCELLED"}, ops.postedCalls())
}

func TestQuery_SearchFiltraPorEstado(t *testing.T) {
	ops := newFakeOps(completedOp("a"), entity.RestoreStockOperation("b", "B", entity.OperationStatusNew, testNow))
	uc := appop.NewQueryUseCase(ops)

	res, err := uc.Search(context.Background(), dto.OperationSearchRequest{Status: "COMPLETED"})

	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "OP-a", res.Items[0].Label)
	assert.Equal(t, 20, res.Page.Limit)

	_, err = uc.Search(context.Background(), dto.OperationSearchRequest{Status: "REQUESTED"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
