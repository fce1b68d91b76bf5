package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of every environment variable read by Load.
const EnvPrefix = "KANBAN"

// LoadOptions controls where Load looks for configuration.
type LoadOptions struct {
	// ConfigFile is an explicit config file path. When empty, config.yaml in
	// the working directory is read if it exists.
	ConfigFile string

	// EnvFile is a dotenv file loaded before the environment is read. Values
	// already present in the environment win. A missing file is ignored.
	EnvFile string
}

// Load reads configuration with the default options.
func Load() (*Config, error) {
	return LoadWithOptions(LoadOptions{EnvFile: ".env"})
}

// LoadWithOptions reads configuration from defaults, an optional config file
// and KANBAN_* environment variables, in increasing order of precedence, and
// validates the result.
func LoadWithOptions(opts LoadOptions) (*Config, error) {
	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file %s: %w", opts.EnvFile, err)
		}
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", opts.ConfigFile, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks cfg against its validate tags.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// setDefaults registers a default for every key. Viper only maps environment
// variables onto keys it already knows, so every field needs one.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.log_file", "")
	v.SetDefault("server.log_max_size_mb", 100)
	v.SetDefault("server.log_max_backups", 3)
	v.SetDefault("server.log_max_age_days", 28)

	v.SetDefault("database.backend", BackendPostgres)
	v.SetDefault("database.url", "")
	v.SetDefault("database.max_open_conns", 10)

	v.SetDefault("board.max_conflict_retries", 3)
	v.SetDefault("board.retry_base_delay", 25*time.Millisecond)
	v.SetDefault("board.aggregation_depth", 0)
	v.SetDefault("board.status_policy", "default")
	v.SetDefault("board.default_columns", true)

	v.SetDefault("events.queue_size", 256)
	v.SetDefault("events.workers", 2)
	v.SetDefault("events.dispatch_timeout", 5*time.Second)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.channel", "kanban.events")
	v.SetDefault("redis.breaker_max_failures", 5)
	v.SetDefault("redis.breaker_timeout", 30*time.Second)
}
