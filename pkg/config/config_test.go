package config_test

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-operations/pkg/config"
)

func TestFromViper_ValoresPorDefecto(t *testing.T) {
	cfg := config.FromViper(viper.New())

	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
	assert.Equal(t, 15*time.Second, cfg.Store.Timeout)
	assert.Equal(t, uint32(5), cfg.Breaker.FailureThreshold)
	assert.Equal(t, 5*time.Minute, cfg.Reference.TTL)
	assert.Error(t, cfg.Validate(), "sin STORE_BASE_URL no arranca")
}

func TestFromViper_LeeValoresDeEntorno(t *testing.T) {
	v := viper.New()
	v.Set("STORE_BASE_URL", "http://openmrs:8080/ws/rest/v1/inventory/")
	v.Set("STORE_TIMEOUT_SECONDS", "3")
	v.Set("HTTP_PORT", 9090)
	v.Set("BREAKER_FAILURE_THRESHOLD", "no-numérico")

	cfg := config.FromViper(v)

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "http://openmrs:8080/ws/rest/v1/inventory", cfg.Store.BaseURL, "se recorta la barra final")
	assert.Equal(t, 3*time.Second, cfg.Store.Timeout)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, uint32(5), cfg.Breaker.FailureThreshold, "valor inválido cae al defecto")
}
