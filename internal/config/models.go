package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/hashicorp/go-multierror"
)

type Config struct {
	Port           int      `env:"PORT" envDefault:"8080"`
	TrustProxies   []string `env:"TRUST_PROXIES"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS"`

	Backend  BackendConfig  `envPrefix:"SUPABASE_"`
	Deletion DeletionConfig `envPrefix:"DELETION_"`
	Database DatabaseConfig `envPrefix:"DATABASE_"`
	Redis    RedisConfig    `envPrefix:"REDIS_"`
	Progress ProgressConfig `envPrefix:"PROGRESS_"`
	OTel     OTelConfig     `envPrefix:"OTEL_"`
}

// Validate checks the sections required for the service to start.
// Backend secrets are validated per erasure, not here.
func (c Config) Validate() error {
	var result *multierror.Error

	if err := c.Deletion.Validate(); err != nil {
		result = multierror.Append(result, err)
	}

	if c.Deletion.RecordStore == RecordStorePostgres {
		if err := c.Database.Validate(); err != nil {
			result = multierror.Append(result, err)
		}
	}

	if c.Redis.Enabled() {
		if err := c.Redis.Validate(); err != nil {
			result = multierror.Append(result, err)
		}
	}

	if err := c.OTel.Validate(); err != nil {
		result = multierror.Append(result, err)
	}

	return result.ErrorOrNil()
}

// BackendConfig holds the secrets of the hosted backend.
type BackendConfig struct {
	URL            string `env:"URL"`
	ServiceRoleKey string `env:"SERVICE_ROLE_KEY"`
	AnonKey        string `env:"ANON_KEY"`
}

// Validate reports every missing secret by its variable name.
func (c BackendConfig) Validate() error {
	var result *multierror.Error

	if c.URL == "" {
		result = multierror.Append(result, errors.New("SUPABASE_URL is required"))
	} else if u, err := url.Parse(c.URL); err != nil || u.Scheme == "" || u.Host == "" {
		result = multierror.Append(result, errors.New("SUPABASE_URL must be an absolute URL"))
	}
	if c.ServiceRoleKey == "" {
		result = multierror.Append(result, errors.New("SUPABASE_SERVICE_ROLE_KEY is required"))
	}
	if c.AnonKey == "" {
		result = multierror.Append(result, errors.New("SUPABASE_ANON_KEY is required"))
	}

	return result.ErrorOrNil()
}

const (
	RecordStoreREST     = "rest"
	RecordStorePostgres = "postgres"
)

type DeletionConfig struct {
	// Targets is the ordered list of "collection[:key_column]" entries.
	Targets     []string `env:"TARGETS"`
	RecordStore string   `env:"RECORD_STORE" envDefault:"rest"`
}

func (c DeletionConfig) Validate() error {
	switch c.RecordStore {
	case RecordStoreREST, RecordStorePostgres:
	default:
		return fmt.Errorf("DELETION_RECORD_STORE must be %q or %q, got %q", RecordStoreREST, RecordStorePostgres, c.RecordStore)
	}

	return nil
}

type DatabaseConfig struct {
	URL string `env:"URL"`
}

func (c DatabaseConfig) Validate() error {
	if c.URL == "" {
		return errors.New("DATABASE_URL is required when DELETION_RECORD_STORE is postgres")
	}

	return nil
}

type RedisConfig struct {
	Host     string `env:"HOST"`
	Port     int    `env:"PORT" envDefault:"6379"`
	Username string `env:"USERNAME"`
	Password string `env:"PASSWORD"`
}

// Enabled reports whether the progress log should be kept in Redis.
func (c RedisConfig) Enabled() bool {
	return c.Host != ""
}

func (c RedisConfig) Validate() error {
	if c.Host == "" {
		return errors.New("REDIS_HOST is required")
	}
	if c.Port == 0 {
		return errors.New("REDIS_PORT is required")
	}

	return nil
}

type ProgressConfig struct {
	TTL time.Duration `env:"TTL" envDefault:"720h"`
}

const (
	ExporterNone    = "none"
	ExporterOTLP    = "otlp"
	ExporterConsole = "console"

	ProtocolGRPC = "grpc"
	ProtocolHTTP = "http/protobuf"
)

type OTelConfig struct {
	ServiceName    string `env:"SERVICE_NAME" envDefault:"account-eraser"`
	TracesExporter string `env:"TRACES_EXPORTER" envDefault:"none"`
	LogsExporter   string `env:"LOGS_EXPORTER" envDefault:"none"`
	Protocol       string `env:"EXPORTER_OTLP_PROTOCOL" envDefault:"grpc"`
}

func (c OTelConfig) Validate() error {
	var result *multierror.Error

	for name, exporter := range map[string]string{
		"OTEL_TRACES_EXPORTER": c.TracesExporter,
		"OTEL_LOGS_EXPORTER":   c.LogsExporter,
	} {
		switch exporter {
		case ExporterNone, ExporterOTLP, ExporterConsole:
		default:
			result = multierror.Append(result, fmt.Errorf("%s must be one of none, otlp, console; got %q", name, exporter))
		}
	}

	switch c.Protocol {
	case ProtocolGRPC, ProtocolHTTP:
	default:
		result = multierror.Append(result, fmt.Errorf("OTEL_EXPORTER_OTLP_PROTOCOL must be %q or %q, got %q", ProtocolGRPC, ProtocolHTTP, c.Protocol))
	}

	return result.ErrorOrNil()
}

// ExporterConfig configures the standalone metrics exporter.
type ExporterConfig struct {
	Port  int         `env:"EXPORTER_PORT" envDefault:"2112"`
	Redis RedisConfig `envPrefix:"REDIS_"`
	OTel  OTelConfig  `envPrefix:"OTEL_"`
}

func (c ExporterConfig) Validate() error {
	var result *multierror.Error

	if err := c.Redis.Validate(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := c.OTel.Validate(); err != nil {
		result = multierror.Append(result, err)
	}

	return result.ErrorOrNil()
}
