package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Board    BoardConfig    `mapstructure:"board" validate:"required"`
	Events   EventsConfig   `mapstructure:"events" validate:"required"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

// ServerConfig contains HTTP server and logging settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel        string        `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`

	// LogFile enables a rotated log file in addition to stdout when set.
	LogFile       string `mapstructure:"log_file"`
	LogMaxSizeMB  int    `mapstructure:"log_max_size_mb" validate:"gte=0"`
	LogMaxBackups int    `mapstructure:"log_max_backups" validate:"gte=0"`
	LogMaxAgeDays int    `mapstructure:"log_max_age_days" validate:"gte=0"`
}

// Storage backends.
const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// DatabaseConfig selects and configures the storage backend.
type DatabaseConfig struct {
	Backend      string `mapstructure:"backend" validate:"required,oneof=postgres memory"`
	URL          string `mapstructure:"url" validate:"required_if=Backend postgres"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gte=0"`
}

// BoardConfig tunes the board engine.
type BoardConfig struct {
	// MaxConflictRetries bounds how often an operation is re-run after a
	// concurrency conflict. Zero disables retries.
	MaxConflictRetries int           `mapstructure:"max_conflict_retries" validate:"gte=0,lte=10"`
	RetryBaseDelay     time.Duration `mapstructure:"retry_base_delay" validate:"gte=0"`

	// AggregationDepth bounds how many ancestor levels completion is
	// propagated to. Zero walks the whole chain.
	AggregationDepth int    `mapstructure:"aggregation_depth" validate:"gte=0"`
	StatusPolicy     string `mapstructure:"status_policy" validate:"omitempty,oneof=default todo_column"`
	DefaultColumns   bool   `mapstructure:"default_columns"`
}

// EventsConfig sizes the asynchronous event dispatcher.
type EventsConfig struct {
	QueueSize       int           `mapstructure:"queue_size" validate:"gt=0"`
	Workers         int           `mapstructure:"workers" validate:"gt=0"`
	DispatchTimeout time.Duration `mapstructure:"dispatch_timeout" validate:"gt=0"`
}

// RedisConfig configures the optional redis event publisher. An empty Addr
// disables it.
type RedisConfig struct {
	Addr               string        `mapstructure:"addr"`
	Password           string        `mapstructure:"password"`
	DB                 int           `mapstructure:"db" validate:"gte=0"`
	Channel            string        `mapstructure:"channel" validate:"required_with=Addr"`
	BreakerMaxFailures uint32        `mapstructure:"breaker_max_failures"`
	BreakerTimeout     time.Duration `mapstructure:"breaker_timeout" validate:"gte=0"`
}

// Enabled reports whether a redis address is configured.
func (c RedisConfig) Enabled() bool {
	return c.Addr != ""
}
