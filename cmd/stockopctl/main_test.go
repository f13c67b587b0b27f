package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-operations/internal/application/dto"
)

const (
	completedUUID = "5d1c0c6e-1111-4000-8000-000000000001"
	transferType  = `{"uuid": "t-transfer", "name": "Transfer", "hasSource": true, "hasDestination": true, "attributeTypes": []}`
)

// fakeStore almacén REST mínimo que registra los POST recibidos.
type fakeStore struct {
	mu    sync.Mutex
	posts []string
}

func (s *fakeStore) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/stockOperationType":
			_, _ = io.WriteString(w, `{"results": [`+transferType+`]}`)
		case r.Method == http.MethodGet && r.URL.Path == "/stockOperation/"+completedUUID:
			_, _ = io.WriteString(w, `{"uuid": "`+completedUUID+`", "operationNumber": "OP-7", "status": "COMPLETED",
				"dateCreated": "2024-03-01T10:00:00.000-0500", "instanceType": `+transferType+`}`)
		case r.Method == http.MethodPost && strings.HasPrefix(r.URL.Path, "/stockOperation/"):
			body, _ := io.ReadAll(r.Body)
			s.mu.Lock()
			s.posts = append(s.posts, r.URL.Path+" "+string(body))
			s.mu.Unlock()
			_, _ = io.WriteString(w, `{}`)
		case r.Method == http.MethodGet && r.URL.Path == "/stockroom":
			_, _ = io.WriteString(w, `{"results": [{"uuid": "sr-1", "name": "Main"}, {"uuid": "sr-2", "display": "Pharmacy"}]}`)
		default:
			assert.Failf(t, "ruta inesperada", "%s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func (s *fakeStore) postCalls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.posts...)
}

func startStore(t *testing.T) (*fakeStore, string) {
	t.Helper()
	store := &fakeStore{}
	srv := httptest.NewServer(store.handler(t))
	t.Cleanup(srv.Close)
	return store, srv.URL
}

func writeRequest(t *testing.T, v any) string {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "op.json")
	require.NoError(t, os.WriteFile(path, raw, 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout bytes.Buffer
	err := run(context.Background(), args, &stdout, io.Discard)
	return stdout.String(), err
}

func TestValidate_ReportaErroresDeCampo(t *testing.T) {
	_, url := startStore(t)
	path := writeRequest(t, map[string]any{
		"operation_number":  "OP-100",
		"operation_type_id": "t-transfer",
		"destination_id":    "sr-2",
		"items":             []map[string]any{{"item_id": "i-1", "quantity": 10}},
	})

	out, err := execute(t, "validate", path, "--store-url", url)

	require.ErrorIs(t, err, errInvalidOperation)
	assert.Contains(t, out, ".field-source")
	assert.Contains(t, out, `"valid": false`)
}

func TestValidate_AtributosAlFinalDelResultado(t *testing.T) {
	_, url := startStore(t)
	path := writeRequest(t, map[string]any{
		"operation_number":  "",
		"operation_type_id": "t-transfer",
		"attributes":        []map[string]any{{"attributeType": "a-x", "value": "1"}},
	})

	out, err := execute(t, "validate", path, "--store-url", url)
	require.ErrorIs(t, err, errInvalidOperation)

	var res dto.ValidationResponse
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	selectors := make([]string, 0, len(res.Errors))
	for _, e := range res.Errors {
		selectors = append(selectors, e.Selector)
	}
	assert.Equal(t, []string{
		".field-operationNumber",
		".field-source",
		".field-destination",
		".item-stock",
		".field-attribute-a-x",
	}, selectors)
}

func TestValidate_OperacionValida(t *testing.T) {
	_, url := startStore(t)
	path := writeRequest(t, map[string]any{
		"operation_number":  "OP-101",
		"operation_type_id": "t-transfer",
		"source_id":         "sr-1",
		"destination_id":    "sr-2",
		"items":             []map[string]any{{"item_id": "i-1", "quantity": 3}},
	})

	out, err := execute(t, "validate", path, "--store-url", url)

	require.NoError(t, err)
	assert.Contains(t, out, `"valid": true`)
}

func TestValidate_ArchivoConCamposDesconocidos(t *testing.T) {
	_, url := startStore(t)
	path := writeRequest(t, map[string]any{"operationNumber": "OP-1"})

	_, err := execute(t, "validate", path, "--store-url", url)

	require.Error(t, err)
	assert.NotErrorIs(t, err, errInvalidOperation)
}

func TestRollback_EsperaElEnvio(t *testing.T) {
	store, url := startStore(t)

	out, err := execute(t, "rollback", completedUUID, "--store-url", url)

	require.NoError(t, err)
	assert.Contains(t, out, "rollback solicitado: "+completedUUID)
	calls := store.postCalls()
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0], "/stockOperation/"+completedUUID)
	assert.Contains(t, calls[0], `"status":"ROLLBACK"`)
}

func TestReferences_Lista(t *testing.T) {
	_, url := startStore(t)

	out, err := execute(t, "references", "stockroom", "--store-url", url)

	require.NoError(t, err)
	assert.Contains(t, out, "Main")
	assert.Contains(t, out, "Pharmacy")
}

func TestSinStoreURL(t *testing.T) {
	t.Setenv("STORE_BASE_URL", "")

	_, err := execute(t, "references", "stockroom")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "STORE_BASE_URL")
}

func TestArgumentosFaltantes(t *testing.T) {
	_, url := startStore(t)

	_, err := execute(t, "rollback", "--store-url", url)

	require.Error(t, err)
}
