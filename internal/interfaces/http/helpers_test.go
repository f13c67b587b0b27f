package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	appop "github.com/jhoicas/stock-operations/internal/application/operation"
	"github.com/jhoicas/stock-operations/internal/application/usecase"
	"github.com/jhoicas/stock-operations/internal/domain"
	"github.com/jhoicas/stock-operations/internal/domain/entity"
	"github.com/jhoicas/stock-operations/internal/domain/repository"
	apphttp "github.com/jhoicas/stock-operations/internal/interfaces/http"
	"github.com/jhoicas/stock-operations/pkg/logger"
	"github.com/jhoicas/stock-operations/pkg/metrics"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes de repositorio
// ──────────────────────────────────────────────────────────────────────────────

const (
	completedID = "6f1c2a1e-0000-4000-8000-000000000001"
	pendingID   = "6f1c2a1e-0000-4000-8000-000000000002"
	newID       = "6f1c2a1e-0000-4000-8000-000000000003"
	missingID   = "6f1c2a1e-0000-4000-8000-0000000000ff"
	savedID     = "6f1c2a1e-0000-4000-8000-000000000010"
)

var testNow = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

type memOps struct {
	mu     sync.Mutex
	byID   map[string]*entity.StockOperation
	saved  []*entity.StockOperation
	posted []string
}

func newMemOps() *memOps {
	return &memOps{byID: map[string]*entity.StockOperation{
		completedID: entity.RestoreStockOperation(completedID, "OP-1", entity.OperationStatusCompleted, testNow),
		pendingID:   entity.RestoreStockOperation(pendingID, "OP-2", entity.OperationStatusPending, testNow),
		newID:       entity.RestoreStockOperation(newID, "OP-3", entity.OperationStatusNew, testNow),
	}}
}

func (m *memOps) GetByID(_ context.Context, id string) (*entity.StockOperation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	op, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return op, nil
}

func (m *memOps) Search(_ context.Context, filter repository.OperationSearch) ([]*entity.StockOperation, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.StockOperation
	for _, op := range m.byID {
		if filter.Status == "" || op.Status() == filter.Status {
			out = append(out, op)
		}
	}
	return out, len(out), nil
}

func (m *memOps) Save(_ context.Context, op *entity.StockOperation) (*entity.StockOperation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, op)
	return entity.RestoreStockOperation(savedID, op.OperationNumber, entity.OperationStatusPending, testNow), nil
}

func (m *memOps) PostStatus(_ context.Context, id string, status entity.OperationStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.posted = append(m.posted, id+":"+status.String())
	return nil
}

func (m *memOps) ListItems(ctx context.Context, id string) ([]entity.OperationItem, error) {
	op, err := m.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return op.Items, nil
}

func (m *memOps) ListTransactions(context.Context, string) ([]entity.Transaction, error) {
	return nil, nil
}

func (m *memOps) savedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.saved)
}

func (m *memOps) postedCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.posted...)
}

type memRefs struct {
	items map[repository.ReferenceKind][]entity.Ref
	err   error
}

func (r *memRefs) List(_ context.Context, kind repository.ReferenceKind, _ string) ([]entity.Ref, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.items[kind], nil
}

type memTypes struct {
	types []*entity.OperationType
}

func (t *memTypes) GetByID(_ context.Context, id string) (*entity.OperationType, error) {
	for _, ot := range t.types {
		if ot.ID == id {
			return ot, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (t *memTypes) List(context.Context) ([]*entity.OperationType, error) {
	return t.types, nil
}

type memDepartments struct {
	byID map[string]*entity.Department
}

func (d *memDepartments) Create(_ context.Context, dep *entity.Department) error {
	dep.ID = "dep-1"
	d.byID[dep.ID] = dep
	return nil
}

func (d *memDepartments) GetByID(_ context.Context, id string) (*entity.Department, error) {
	return d.byID[id], nil
}

func (d *memDepartments) Update(_ context.Context, dep *entity.Department) error {
	d.byID[dep.ID] = dep
	return nil
}

func (d *memDepartments) List(context.Context, int, int) ([]*entity.Department, error) {
	out := make([]*entity.Department, 0, len(d.byID))
	for _, dep := range d.byID {
		out = append(out, dep)
	}
	return out, nil
}

func (d *memDepartments) Delete(_ context.Context, id string) error {
	delete(d.byID, id)
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

type testEnv struct {
	app      *fiber.App
	ops      *memOps
	refs     *memRefs
	rollback *appop.RollbackUseCase
}

func operationTypes() []*entity.OperationType {
	receipt := entity.NewOperationType("t-receipt", "Receipt", entity.OperationCapabilities{HasDestination: true})
	receipt.AttributeTypes = []entity.AttributeTypeDefinition{
		{ID: "a-boxes", Name: "Boxes", Datatype: entity.DatatypeInteger},
	}
	return []*entity.OperationType{
		entity.NewOperationType("t-transfer", "Transfer", entity.OperationCapabilities{HasSource: true, HasDestination: true}),
		receipt,
	}
}

// buildTestApp arma la aplicación completa sobre repositorios en memoria.
func buildTestApp(t *testing.T) *testEnv {
	t.Helper()
	log := logger.Nop()
	m := metrics.New("test")
	ops := newMemOps()
	refs := &memRefs{items: map[repository.ReferenceKind][]entity.Ref{
		repository.ReferenceStockroom: {{ID: "sr-1", Display: "Main"}, {ID: "sr-2", Display: "Pharmacy"}},
	}}
	cache := appop.NewReferenceCache(refs, &memTypes{types: operationTypes()}, time.Minute, nil, log, m)
	rollback := appop.NewRollbackUseCase(ops, nil, log, m)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		ServiceName:  "stock-operations-test",
		Submit:       appop.NewSubmitOperationUseCase(ops, cache, log, m),
		Rollback:     rollback,
		Query:        appop.NewQueryUseCase(ops),
		References:   cache,
		DepartmentUC: usecase.NewDepartmentUseCase(&memDepartments{byID: map[string]*entity.Department{}}),
		Metrics:      m,
		Logger:       log,
	})
	return &testEnv{app: app, ops: ops, refs: refs, rollback: rollback}
}

// do lanza la petición y devuelve código y cuerpo.
func (e *testEnv) do(t *testing.T, method, path string, body any) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = bytes.NewBufferString(b)
		default:
			raw, err := json.Marshal(b)
			require.NoError(t, err)
			reader = bytes.NewReader(raw)
		}
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return out
}
