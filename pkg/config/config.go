package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App       AppConfig
	HTTP      HTTPConfig
	Store     StoreConfig
	Breaker   BreakerConfig
	Reference ReferenceConfig
	Log       LogConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env  string // development, staging, production
	Name string
}

// HTTPConfig configuración del servidor HTTP.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// StoreConfig acceso al almacén remoto de entidades (API REST con autenticación básica).
type StoreConfig struct {
	BaseURL  string // ej. http://localhost:8080/openmrs/ws/rest/v1/inventory
	Username string
	Password string
	Timeout  time.Duration
}

// BreakerConfig parámetros del circuit breaker frente al almacén.
type BreakerConfig struct {
	MaxRequests      uint32        // peticiones permitidas en half-open
	Interval         time.Duration // ventana de limpieza de contadores (0 = nunca)
	OpenTimeout      time.Duration // tiempo en open antes de pasar a half-open
	FailureThreshold uint32        // fallos consecutivos para abrir
}

// ReferenceConfig caché de datos de referencia.
type ReferenceConfig struct {
	TTL time.Duration // 0 = sin expiración, solo recarga explícita
}

// LogConfig nivel de log.
type LogConfig struct {
	Level string
}

// Validate comprueba los valores imprescindibles para arrancar.
func (c *Config) Validate() error {
	if c.Store.BaseURL == "" {
		return fmt.Errorf("config: STORE_BASE_URL es obligatorio")
	}
	if c.Store.Timeout <= 0 {
		return fmt.Errorf("config: STORE_TIMEOUT_SECONDS debe ser mayor que cero")
	}
	return nil
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, HTTP_PORT, STORE_BASE_URL, etc.
func Load() (*Config, error) {
	v := viper.New()

	// Opcional: archivo de configuración (.env o config.env)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return FromViper(v), nil
}

// FromViper construye la configuración a partir de una instancia ya cargada.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		App: AppConfig{
			Env:  getString(v, "APP_ENV", "development"),
			Name: getString(v, "APP_NAME", "stock-operations"),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 8080),
		},
		Store: StoreConfig{
			BaseURL:  strings.TrimRight(getString(v, "STORE_BASE_URL", ""), "/"),
			Username: getString(v, "STORE_USERNAME", ""),
			Password: getString(v, "STORE_PASSWORD", ""),
			Timeout:  time.Duration(getInt(v, "STORE_TIMEOUT_SECONDS", 15)) * time.Second,
		},
		Breaker: BreakerConfig{
			MaxRequests:      uint32(getInt(v, "BREAKER_MAX_REQUESTS", 3)),
			Interval:         time.Duration(getInt(v, "BREAKER_INTERVAL_SECONDS", 60)) * time.Second,
			OpenTimeout:      time.Duration(getInt(v, "BREAKER_TIMEOUT_SECONDS", 30)) * time.Second,
			FailureThreshold: uint32(getInt(v, "BREAKER_FAILURE_THRESHOLD", 5)),
		},
		Reference: ReferenceConfig{
			TTL: time.Duration(getInt(v, "REFERENCE_TTL_SECONDS", 300)) * time.Second,
		},
		Log: LogConfig{
			Level: getString(v, "LOG_LEVEL", "info"),
		},
	}
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			n, err := strconv.Atoi(v.GetString(key))
			if err != nil {
				return def
			}
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}
