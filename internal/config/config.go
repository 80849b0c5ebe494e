package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"go.opentelemetry.io/otel/attribute"
)

// Config holds all configuration for the service.
type Config struct {
	// Server
	Port     int    `envconfig:"PORT" default:"3000"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Database
	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"postgres"`
	DBPassword string `envconfig:"DB_PASSWORD"`
	DBName     string `envconfig:"DB_NAME" default:"backoffice"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`

	// Correios contract API
	CorreiosUser           string `envconfig:"CORREIOS_USER"`
	CorreiosPassword       string `envconfig:"CORREIOS_PASSWORD"`
	CorreiosContrato       string `envconfig:"CORREIOS_CONTRATO"`
	CorreiosCartaoPostagem string `envconfig:"CORREIOS_CARTAO_POSTAGEM"`
	CorreiosBaseURL        string `envconfig:"CORREIOS_BASE_URL" default:"https://api.correios.com.br"`
	CorreiosEnabled        bool   `envconfig:"CORREIOS_ENABLED" default:"true"`
	CorreiosUseMock        bool   `envconfig:"CORREIOS_USE_MOCK" default:"false"`

	// Melhor Envio
	MelhorEnvioToken     string `envconfig:"MELHOR_ENVIO_TOKEN"`
	MelhorEnvioBaseURL   string `envconfig:"MELHOR_ENVIO_BASE_URL" default:"https://www.melhorenvio.com.br"`
	MelhorEnvioUserAgent string `envconfig:"MELHOR_ENVIO_USER_AGENT" default:"Niza Logistica/1.0"`
	MelhorEnvioEnabled   bool   `envconfig:"MELHOR_ENVIO_ENABLED" default:"true"`
	MelhorEnvioUseMock   bool   `envconfig:"MELHOR_ENVIO_USE_MOCK" default:"false"`

	// Telemetry
	OTELEnabled  bool   `envconfig:"OTEL_ENABLED" default:"false"`
	OTELEndpoint string `envconfig:"OTEL_ENDPOINT" default:"http://localhost:4318"`
	ServiceName  string `envconfig:"SERVICE_NAME" default:"niza-backoffice"`
	Version      string `envconfig:"SERVICE_VERSION" default:"0.0.1"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return &cfg, nil
}

// DSN builds the Postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

// Attributes returns OpenTelemetry attributes for this configuration.
func (c *Config) Attributes() []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("service.name", c.ServiceName),
		attribute.String("service.version", c.Version),
		attribute.Bool("correios.enabled", c.CorreiosEnabled),
		attribute.Bool("melhorenvio.enabled", c.MelhorEnvioEnabled),
	}
}
