package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sony/gobreaker"

	"github.com/jhoicas/stock-operations/internal/domain"
	"github.com/jhoicas/stock-operations/internal/domain/repository"
	"github.com/jhoicas/stock-operations/pkg/config"
	"github.com/jhoicas/stock-operations/pkg/logger"
	"github.com/jhoicas/stock-operations/pkg/metrics"
)

// StatusError respuesta no exitosa del almacén remoto.
type StatusError struct {
	Method   string
	Resource string
	Status   int
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("store: %s %s HTTP %d: %s", e.Method, e.Resource, e.Status, e.Body)
}

// Unwrap permite errors.Is(err, domain.ErrStoreRejected).
func (e *StatusError) Unwrap() error { return domain.ErrStoreRejected }

// Client adaptador REST del almacén de entidades. Implementa repository.EntityStore.
// Cada petición usa un fiber.Agent con autenticación básica y pasa por el circuit breaker;
// solo los errores de transporte y los 5xx cuentan como fallo para el breaker.
type Client struct {
	baseURL  string
	username string
	password string
	timeout  time.Duration
	breaker  *gobreaker.CircuitBreaker
	log      *logger.Logger
	metrics  *metrics.Metrics
}

var _ repository.EntityStore = (*Client)(nil)

// NewClient construye el cliente con la configuración del almacén y del breaker.
// m puede ser nil.
func NewClient(store config.StoreConfig, br config.BreakerConfig, log *logger.Logger, m *metrics.Metrics) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(store.BaseURL, "/"),
		username: store.Username,
		password: store.Password,
		timeout:  store.Timeout,
		log:      log.Component("store"),
		metrics:  m,
	}
	c.breaker = newBreaker("store", br, c.log, m)
	return c
}

// response cuerpo y estado de una petición ya completada.
type response struct {
	status int
	body   []byte
}

// Fetch GET {resource}/{id}.
func (c *Client) Fetch(ctx context.Context, resource, id string, query url.Values, out any) error {
	return c.do(ctx, fiber.MethodGet, resource, id, query, nil, out)
}

// List GET {resource}?query.
func (c *Client) List(ctx context.Context, resource string, query url.Values, out any) error {
	return c.do(ctx, fiber.MethodGet, resource, "", query, nil, out)
}

// Save POST {resource} (creación) o POST {resource}/{id} (actualización).
func (c *Client) Save(ctx context.Context, resource, id string, in, out any) error {
	return c.do(ctx, fiber.MethodPost, resource, id, nil, in, out)
}

// Delete DELETE {resource}/{id}.
func (c *Client) Delete(ctx context.Context, resource, id string) error {
	return c.do(ctx, fiber.MethodDelete, resource, id, nil, nil, nil)
}

// PostStatus POST {resource}/{id} con {"status": status}.
func (c *Client) PostStatus(ctx context.Context, resource, id, status string) error {
	if id == "" {
		return fmt.Errorf("%w: id vacío para %s", domain.ErrInvalidInput, resource)
	}
	return c.do(ctx, fiber.MethodPost, resource, id, nil, map[string]string{"status": status}, nil)
}

func (c *Client) do(ctx context.Context, method, resource, id string, query url.Values, in, out any) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("store: %s %s: %w", method, resource, err)
	}
	uri := c.resourceURL(resource, id, query)
	timeout, err := requestTimeout(ctx, c.timeout, time.Now())
	if err != nil {
		return fmt.Errorf("store: %s %s: %w", method, resource, err)
	}

	start := time.Now()
	res, err := c.breaker.Execute(func() (interface{}, error) {
		r, err := c.send(method, uri, timeout, in)
		if err != nil {
			return nil, err
		}
		if r.status >= http.StatusInternalServerError {
			return r, &StatusError{Method: method, Resource: resource, Status: r.status, Body: truncate(r.body)}
		}
		return r, nil
	})

	status := 0
	if r, ok := res.(*response); ok && r != nil {
		status = r.status
	}
	c.metrics.RecordStoreRequest(resource, method, status, time.Since(start))

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			c.log.Warn().Str("resource", resource).Msg("circuit breaker abierto, petición rechazada")
			return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
		}
		var se *StatusError
		if errors.As(err, &se) {
			c.log.Error().Str("method", method).Str("resource", resource).Int("status", se.Status).Msg("error del almacén")
			return err
		}
		c.log.Error().Err(err).Str("method", method).Str("resource", resource).Msg("fallo de transporte")
		return fmt.Errorf("%w: %s %s: %v", domain.ErrStoreUnavailable, method, resource, err)
	}

	r := res.(*response)
	switch {
	case r.status == http.StatusNotFound:
		return fmt.Errorf("%w: %s/%s", domain.ErrNotFound, resource, id)
	case r.status >= http.StatusBadRequest:
		return &StatusError{Method: method, Resource: resource, Status: r.status, Body: truncate(r.body)}
	}

	c.log.Debug().Str("method", method).Str("resource", resource).Int("status", r.status).Msg("petición al almacén")
	if out == nil || len(r.body) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.body, out); err != nil {
		return fmt.Errorf("store: deserializar %s: %w", resource, err)
	}
	return nil
}

// requestTimeout acota el timeout configurado al deadline de ctx. Un deadline ya vencido
// devuelve context.DeadlineExceeded: el Agent sin timeout no tendría límite.
func requestTimeout(ctx context.Context, configured time.Duration, now time.Time) (time.Duration, error) {
	deadline, ok := ctx.Deadline()
	if !ok {
		return configured, nil
	}
	remaining := deadline.Sub(now)
	if remaining <= 0 {
		return 0, context.DeadlineExceeded
	}
	if configured <= 0 || remaining < configured {
		return remaining, nil
	}
	return configured, nil
}

// send ejecuta una petición con un fiber.Agent. Bytes() libera el agente.
func (c *Client) send(method, uri string, timeout time.Duration, in any) (*response, error) {
	a := fiber.AcquireAgent()
	req := a.Request()
	req.Header.SetMethod(method)
	req.SetRequestURI(uri)
	req.Header.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	if c.username != "" {
		a.BasicAuth(c.username, c.password)
	}
	if timeout > 0 {
		a.Timeout(timeout)
	}
	if in != nil {
		a.JSON(in)
	}
	if err := a.Parse(); err != nil {
		fiber.ReleaseAgent(a)
		return nil, fmt.Errorf("preparar petición: %w", err)
	}
	code, body, errs := a.Bytes()
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return &response{status: code, body: body}, nil
}

func (c *Client) resourceURL(resource, id string, query url.Values) string {
	u := c.baseURL + "/" + resource
	if id != "" {
		u += "/" + url.PathEscape(id)
	}
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func truncate(b []byte) string {
	const max = 512
	if len(b) > max {
		return string(b[:max]) + "..."
	}
	return string(b)
}
