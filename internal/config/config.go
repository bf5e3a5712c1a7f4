package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	// MemoryStorage keeps all state in process. It is the default so the server
	// starts without any dependency.
	MemoryStorage = "memory"
	// PostgresStorage persists state in PostgreSQL and runs the order worker.
	PostgresStorage = "postgres"
)

// Config represents the application configuration structure.
// It contains settings for the environment, HTTP server, storage, authentication,
// order processing and graceful shutdown behavior.
type Config struct {
	// Environment specifies the current running environment. Only "development"
	// exposes error stacks and enables the human-readable logger.
	Environment string `env:"NODE_ENV" env-default:"production" yaml:"environment"`

	// HTTP contains all HTTP server related configurations
	HTTP struct {
		// Port the HTTP server listens on
		Port int `env:"PORT" env-default:"3001" yaml:"port"`
		// ReadTimeout is the maximum duration for reading the entire request, including the body
		ReadTimeout time.Duration `env:"HTTP_READ_TIMEOUT" env-default:"1m" yaml:"readTimeout"`
		// ReadHeaderTimeout is the amount of time allowed to read request headers
		ReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" env-default:"10s" yaml:"readHeaderTimeout"`
		// WriteTimeout is the maximum duration before timing out writes of the response
		WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" env-default:"2m" yaml:"writeTimeout"`
		// IdleTimeout is the maximum amount of time to wait for the next request when keep-alives are enabled
		IdleTimeout time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"2m" yaml:"idleTimeout"`
		// RequestTimeout is the maximum time allowed for processing a single request
		RequestTimeout time.Duration `env:"HTTP_REQUEST_TIMEOUT" env-default:"10s" yaml:"requestTimeout"`
		// MaxHeaderBytes controls the maximum number of bytes the server will read parsing the request header
		MaxHeaderBytes int `env:"HTTP_MAX_HEADER_BYTES" env-default:"0" yaml:"maxHeaderBytes"`
		// BodyLimit caps JSON and form request bodies, in bytes
		BodyLimit int64 `env:"HTTP_BODY_LIMIT" env-default:"102400" yaml:"bodyLimit"`
		// AllowedOrigins lists the browser origins allowed by CORS
		AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" env-default:"http://localhost:3000,http://localhost:5173" env-separator:"," yaml:"allowedOrigins"` //nolint: lll
		// MetricsPath defines the URL path where metrics are exposed
		MetricsPath string `env:"HTTP_METRICS_PATH" env-default:"/metrics" yaml:"metricsPath"`
		// DocsEnabled serves the OpenAPI document and Swagger UI
		DocsEnabled bool `env:"HTTP_DOCS_ENABLED" env-default:"true" yaml:"docsEnabled"`
		// PprofEnabled mounts the runtime profiler
		PprofEnabled bool `env:"HTTP_PPROF_ENABLED" env-default:"false" yaml:"pprofEnabled"`
	} `yaml:"http"`

	// Storage selects the persistence backend
	Storage struct {
		// Driver is either "memory" or "postgres"
		Driver string `env:"STORAGE_DRIVER" env-default:"memory" yaml:"driver"`
	} `yaml:"storage"`

	// Database contains all database connection related configurations
	Database struct {
		// Username for database authentication
		Username string `env:"DATABASE_USERNAME" env-default:"shop" yaml:"username"`
		// Password for database authentication
		Password string `env:"DATABASE_PASSWORD" env-default:"shop" yaml:"password"`
		// Host is the database server hostname or IP address
		Host string `env:"DATABASE_HOST" env-default:"localhost" yaml:"host"`
		// Port is the database server port number
		Port int `env:"DATABASE_PORT" env-default:"5432" yaml:"port"`
		// SslMode defines the SSL mode for the database connection
		SslMode string `env:"DATABASE_SSL_MODE" env-default:"disable" yaml:"sslMode"`
		// DatabaseName is the name of the database to connect to
		DatabaseName string `env:"DATABASE_NAME" env-default:"shoptogether" yaml:"name"`
		// MaxOpenConnections limits the number of open connections to the database
		MaxOpenConnections int `env:"DATABASE_MAX_OPEN_CONNECTIONS" env-default:"10" yaml:"maxOpenConnections"`
		// MaxIdleConnections limits the number of connections in the idle connection pool
		MaxIdleConnections int `env:"DATABASE_MAX_IDLE_CONNECTIONS" env-default:"2" yaml:"maxIdleConnections"`
		// ConnMaxLifetime is the maximum amount of time a connection may be reused
		ConnMaxLifetime time.Duration `env:"DATABASE_CONNECTION_MAX_LIFETIME" env-default:"3m" yaml:"connMaxLifetime"`
		// ConnMaxIdleTime is the maximum amount of time a connection may be idle
		ConnMaxIdleTime time.Duration `env:"DATABASE_CONNECTION_MAX_IDLE_TIME" env-default:"3m" yaml:"connMaxIdleTime"`
	} `yaml:"database"`

	// JWT configures bearer token signing. Without a private key an ephemeral one
	// is generated at startup.
	JWT struct {
		// PrivateKey is a PEM encoded RSA private key
		PrivateKey string `env:"JWT_PRIVATE_KEY" yaml:"privateKey"`
		// PublicKey is a PEM encoded RSA public key, derived from PrivateKey when empty
		PublicKey string `env:"JWT_PUBLIC_KEY" yaml:"publicKey"`
		// TTL is how long an issued token stays valid
		TTL time.Duration `env:"JWT_TTL" env-default:"24h" yaml:"ttl"`
	} `yaml:"jwt"`

	// Auth throttles the login and register endpoints per client IP
	Auth struct {
		RateLimit float64 `env:"AUTH_RATE_LIMIT" env-default:"1" yaml:"rateLimit"`
		RateBurst int     `env:"AUTH_RATE_BURST" env-default:"10" yaml:"rateBurst"`
	} `yaml:"auth"`

	// Orders configures the background confirmation of placed orders
	Orders struct {
		// ConfirmDelay is how long an order can be cancelled before it is confirmed
		ConfirmDelay time.Duration `env:"ORDERS_CONFIRM_DELAY" env-default:"1m" yaml:"confirmDelay"`
		// ConfirmMaxAttempts bounds the retries of a confirmation job
		ConfirmMaxAttempts int `env:"ORDERS_CONFIRM_MAX_ATTEMPTS" env-default:"5" yaml:"confirmMaxAttempts"`
		// ConfirmWorkers is the number of concurrent confirmation workers
		ConfirmWorkers int `env:"ORDERS_CONFIRM_WORKERS" env-default:"4" yaml:"confirmWorkers"`
	} `yaml:"orders"`

	// GracefulShutdownTimeout is the maximum duration to wait for ongoing requests to complete during shutdown
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_TIMEOUT" env-default:"10s" yaml:"gracefulShutdownTimeout"` //nolint: lll
}

// Validate checks the values cleanenv cannot express in tags.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case MemoryStorage, PostgresStorage:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.HTTP.Port < 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.HTTP.Port)
	}
	if c.HTTP.BodyLimit <= 0 {
		return fmt.Errorf("body limit must be positive, got %d", c.HTTP.BodyLimit)
	}

	return nil
}

// Load returns a filled Config. With a path it reads the yaml file and lets the
// environment override it; with an empty path only the environment is used.
func Load(configPath string) (*Config, error) {
	var cfg Config

	var err error
	if configPath == "" {
		err = cleanenv.ReadEnv(&cfg)
	} else {
		err = cleanenv.ReadConfig(configPath, &cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("could not read config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}
