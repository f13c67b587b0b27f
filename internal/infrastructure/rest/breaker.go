package rest

import (
	"github.com/sony/gobreaker"

	"github.com/jhoicas/stock-operations/pkg/config"
	"github.com/jhoicas/stock-operations/pkg/logger"
	"github.com/jhoicas/stock-operations/pkg/metrics"
)

// newBreaker configura el circuit breaker del almacén: abre tras FailureThreshold fallos
// consecutivos y publica cada cambio de estado en logs y métricas.
func newBreaker(name string, cfg config.BreakerConfig, log *logger.Logger, m *metrics.Metrics) *gobreaker.CircuitBreaker {
	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("cambio de estado del circuit breaker")
			m.SetBreakerState(name, int(to))
		},
	}
	m.SetBreakerState(name, int(gobreaker.StateClosed))
	return gobreaker.NewCircuitBreaker(settings)
}
