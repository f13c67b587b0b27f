package rest_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-operations/internal/domain"
	"github.com/jhoicas/stock-operations/internal/infrastructure/rest"
	"github.com/jhoicas/stock-operations/pkg/config"
	"github.com/jhoicas/stock-operations/pkg/logger"
	"github.com/jhoicas/stock-operations/pkg/metrics"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

func newTestClient(t *testing.T, h http.HandlerFunc) *rest.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return rest.NewClient(
		config.StoreConfig{BaseURL: srv.URL + "/ws/rest/v1/inventory/", Username: "admin", Password: "Admin123", Timeout: 2 * time.Second},
		config.BreakerConfig{MaxRequests: 1, OpenTimeout: time.Minute, FailureThreshold: 2},
		logger.Nop(),
		metrics.New("test"),
	)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestFetch_EnviaAutenticacionYDecodifica(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "admin", user)
		assert.Equal(t, "Admin123", pass)
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/ws/rest/v1/inventory/stockroom/sr-1", r.URL.Path)
		assert.Equal(t, "full", r.URL.Query().Get("v"))
		writeJSON(w, http.StatusOK, map[string]string{"uuid": "sr-1", "name": "Main"})
	})

	var out struct {
		UUID string `json:"uuid"`
		Name string `json:"name"`
	}
	err := c.Fetch(context.Background(), "stockroom", "sr-1", url.Values{"v": {"full"}}, &out)

	require.NoError(t, err)
	assert.Equal(t, "Main", out.Name)
}

func TestFetch_404EsErrNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	})

	err := c.Fetch(context.Background(), "department", "nope", nil, &struct{}{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSave_400DevuelveStatusError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid"})
	})

	err := c.Save(context.Background(), "department", "", map[string]string{"name": ""}, nil)

	var se *rest.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusBadRequest, se.Status)
}

func TestPostStatus_EnviaEstado(t *testing.T) {
	var body map[string]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/ws/rest/v1/inventory/stockOperation/op-1", r.URL.Path)
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &body)
		writeJSON(w, http.StatusOK, map[string]string{"uuid": "op-1"})
	})

	require.NoError(t, c.PostStatus(context.Background(), "stockOperation", "op-1", "ROLLBACK"))
	assert.Equal(t, map[string]string{"status": "ROLLBACK"}, body)

	assert.ErrorIs(t, c.PostStatus(context.Background(), "stockOperation", "", "ROLLBACK"), domain.ErrInvalidInput)
}

func TestBreaker_AbreTrasFallosConsecutivos(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		var se *rest.StatusError
		assert.True(t, errors.As(c.List(ctx, "item", nil, &struct{}{}), &se))
	}

	err := c.List(ctx, "item", nil, &struct{}{})
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls), "con el breaker abierto no se llama al servidor")
}

func TestBreaker_4xxNoCuentaComoFallo(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	})

	for i := 0; i < 4; i++ {
		assert.ErrorIs(t, c.Fetch(context.Background(), "item", "x", nil, nil), domain.ErrNotFound)
	}
	assert.Equal(t, int32(4), atomic.LoadInt32(&calls))
}

func TestContextoCancelado_NoEnvia(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.Fetch(ctx, "item", "x", nil, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, atomic.LoadInt32(&calls))
}
