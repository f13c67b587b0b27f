package operation_test

import (
	"context"
	"sync"

	"github.com/jhoicas/stock-operations/internal/domain"
	"github.com/jhoicas/stock-operations/internal/domain/entity"
	"github.com/jhoicas/stock-operations/internal/domain/repository"
)

// fakeOps repositorio de operaciones en memoria que registra las llamadas.
type fakeOps struct {
	mu        sync.Mutex
	byID      map[string]*entity.StockOperation
	saved     []*entity.StockOperation
	posted    []string
	postErr   error
	postGate  chan struct{} // si no es nil, PostStatus espera a que se cierre
	saveReply *entity.StockOperation
}

var _ repository.StockOperationRepository = (*fakeOps)(nil)

func newFakeOps(ops ...*entity.StockOperation) *fakeOps {
	f := &fakeOps{byID: map[string]*entity.StockOperation{}}
	for _, op := range ops {
		f.byID[op.ID] = op
	}
	return f
}

func (f *fakeOps) GetByID(_ context.Context, id string) (*entity.StockOperation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	op, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return op, nil
}

func (f *fakeOps) Search(_ context.Context, filter repository.OperationSearch) ([]*entity.StockOperation, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.StockOperation
	for _, op := range f.byID {
		if filter.Status == "" || op.Status() == filter.Status {
			out = append(out, op)
		}
	}
	return out, len(out), nil
}

func (f *fakeOps) Save(_ context.Context, op *entity.StockOperation) (*entity.StockOperation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, op)
	if f.saveReply != nil {
		return f.saveReply, nil
	}
	return op, nil
}

func (f *fakeOps) PostStatus(_ context.Context, id string, status entity.OperationStatus) error {
	if f.postGate != nil {
		<-f.postGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.posted = append(f.posted, id+":"+status.String())
	return f.postErr
}

func (f *fakeOps) ListItems(_ context.Context, id string) ([]entity.OperationItem, error) {
	op, err := f.GetByID(context.Background(), id)
	if err != nil {
		return nil, err
	}
	return op.Items, nil
}

func (f *fakeOps) ListTransactions(context.Context, string) ([]entity.Transaction, error) {
	return nil, nil
}

func (f *fakeOps) postedCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.posted...)
}

// fakeRefs proveedor de referencias con respuestas programables.
type fakeRefs struct {
	mu    sync.Mutex
	items map[repository.ReferenceKind][]entity.Ref
	err   error
	calls int
	query string
}

func (f *fakeRefs) List(_ context.Context, kind repository.ReferenceKind, query string) ([]entity.Ref, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.query = query
	if f.err != nil {
		return nil, f.err
	}
	return append([]entity.Ref(nil), f.items[kind]...), nil
}

// fakeTypes catálogo de tipos en memoria.
type fakeTypes struct {
	types []*entity.OperationType
	err   error
	calls int
}

func (f *fakeTypes) GetByID(_ context.Context, id string) (*entity.OperationType, error) {
	for _, t := range f.types {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeTypes) List(context.Context) ([]*entity.OperationType, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.types, nil
}

// recordingHandler ErrorHandler que guarda los errores recibidos.
type recordingHandler struct {
	mu   sync.Mutex
	errs []error
}

func (h *recordingHandler) HandleError(_ context.Context, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.errs = append(h.errs, err)
}

func (h *recordingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.errs)
}
