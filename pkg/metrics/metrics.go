package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics agrupa los instrumentos Prometheus del gateway. Cada instancia usa su propio
// registry para poder crear varias en tests sin colisiones.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	ValidationsTotal   *prometheus.CounterVec // resultado: valid|invalid
	FieldErrorsTotal   *prometheus.CounterVec // por selector
	RollbacksTotal     *prometheus.CounterVec // resultado: dispatched|rejected|failed|succeeded
	StoreRequests      *prometheus.CounterVec
	StoreDuration      *prometheus.HistogramVec
	BreakerState       *prometheus.GaugeVec
	ReferenceRefreshes *prometheus.CounterVec
}

// New crea los instrumentos bajo el namespace dado.
func New(namespace string) *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(prometheus.NewGoCollector())
	registry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	m := &Metrics{registry: registry}

	m.HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Peticiones HTTP atendidas por el gateway",
	}, []string{"method", "path", "status"})

	m.HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duración de las peticiones HTTP",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path"})

	m.ValidationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "operation_validations_total",
		Help:      "Validaciones de operaciones por resultado",
	}, []string{"outcome"})

	m.FieldErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "operation_field_errors_total",
		Help:      "Errores de campo emitidos por selector",
	}, []string{"selector"})

	m.RollbacksTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "operation_rollbacks_total",
		Help:      "Solicitudes de rollback por resultado",
	}, []string{"outcome"})

	m.StoreRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "store_requests_total",
		Help:      "Peticiones al almacén remoto por recurso, método y estado",
	}, []string{"resource", "method", "status"})

	m.StoreDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "store_request_duration_seconds",
		Help:      "Duración de las peticiones al almacén remoto",
		Buckets:   prometheus.DefBuckets,
	}, []string{"resource", "method"})

	m.BreakerState = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "circuit_breaker_state",
		Help:      "Estado del circuit breaker (0=closed, 1=half-open, 2=open)",
	}, []string{"name"})

	m.ReferenceRefreshes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reference_refresh_total",
		Help:      "Recargas de colecciones de referencia por colección y resultado",
	}, []string{"kind", "outcome"})

	registry.MustRegister(
		m.HTTPRequestsTotal, m.HTTPRequestDuration,
		m.ValidationsTotal, m.FieldErrorsTotal, m.RollbacksTotal,
		m.StoreRequests, m.StoreDuration, m.BreakerState, m.ReferenceRefreshes,
	)
	return m
}

// Handler expone el registry en formato Prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// Registry devuelve el registry subyacente.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// RecordHTTPRequest registra una petición atendida.
func (m *Metrics) RecordHTTPRequest(method, path string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

// RecordValidation registra el resultado de una validación y sus selectores con error.
func (m *Metrics) RecordValidation(selectors []string) {
	if m == nil {
		return
	}
	if len(selectors) == 0 {
		m.ValidationsTotal.WithLabelValues("valid").Inc()
		return
	}
	m.ValidationsTotal.WithLabelValues("invalid").Inc()
	for _, s := range selectors {
		m.FieldErrorsTotal.WithLabelValues(s).Inc()
	}
}

// RecordRollback registra un paso del protocolo de rollback.
func (m *Metrics) RecordRollback(outcome string) {
	if m == nil {
		return
	}
	m.RollbacksTotal.WithLabelValues(outcome).Inc()
}

// RecordStoreRequest registra una petición al almacén remoto. status 0 = error de transporte.
func (m *Metrics) RecordStoreRequest(resource, method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.StoreRequests.WithLabelValues(resource, method, strconv.Itoa(status)).Inc()
	m.StoreDuration.WithLabelValues(resource, method).Observe(d.Seconds())
}

// SetBreakerState publica el estado numérico del breaker.
func (m *Metrics) SetBreakerState(name string, state int) {
	if m == nil {
		return
	}
	m.BreakerState.WithLabelValues(name).Set(float64(state))
}

// RecordReferenceRefresh registra una recarga de colección.
func (m *Metrics) RecordReferenceRefresh(kind string, ok bool) {
	if m == nil {
		return
	}
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	m.ReferenceRefreshes.WithLabelValues(kind, outcome).Inc()
}
