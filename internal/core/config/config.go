package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Store drivers accepted by STORE_DRIVER.
const (
	StoreDriverMemory   = "memory"
	StoreDriverRedis    = "redis"
	StoreDriverREST     = "rest"
	StoreDriverPostgres = "postgres"
)

// AppConfig holds the configuration for the application.
// Tags used:
// - mapstructure: used by viper to unmarshal
// - default: default value to set if missing
// - required: if "true", error if missing
type AppConfig struct {
	// Environment specifies the runtime environment (e.g., development, production).
	Environment string `mapstructure:"APP_ENV" default:"development"`
	// LogLevel defines the logging verbosity (e.g., debug, info, error).
	LogLevel string `mapstructure:"LOG_LEVEL" default:"info"`
	// ServerPort is the port where the server will listen.
	ServerPort int `mapstructure:"SERVER_PORT" default:"8080"`

	// Store holds the remote record store configuration.
	Store StoreConfig `mapstructure:",squash"`

	// Loading holds the dock loading policy.
	Loading LoadingConfig `mapstructure:",squash"`
}

// StoreConfig selects and configures the remote record store.
type StoreConfig struct {
	// Driver is one of memory, redis, rest or postgres.
	Driver string `mapstructure:"STORE_DRIVER" default:"memory"`
	// Timeout bounds every single store call.
	Timeout time.Duration `mapstructure:"STORE_TIMEOUT" default:"5s"`
	// RedisURL is used by the redis driver.
	RedisURL string `mapstructure:"REDIS_URL"`
	// RESTURL is the base URL of the generic record API used by the rest driver.
	RESTURL string `mapstructure:"STORE_REST_URL"`
	// RESTAPIKey is sent as a bearer token by the rest driver.
	RESTAPIKey string `mapstructure:"STORE_REST_API_KEY"`
	// DatabaseDSN is used by the postgres driver.
	DatabaseDSN string `mapstructure:"DATABASE_DSN"`
}

// LoadingConfig holds the scan policy applied to new loading sessions.
type LoadingConfig struct {
	// DefaultDiscipline is applied when a session is opened without one (strict or unordered).
	DefaultDiscipline string `mapstructure:"DEFAULT_DISCIPLINE" default:"unordered"`
	// ScannerKeyGap is the inter-keystroke gap below which input is treated as a scanner burst.
	ScannerKeyGap time.Duration `mapstructure:"SCANNER_KEY_GAP" default:"100ms"`
	// ScannerQuiescence is how long a scanner burst must be silent before it auto-commits.
	ScannerQuiescence time.Duration `mapstructure:"SCANNER_QUIESCENCE" default:"150ms"`
	// MaxScanLength rejects oversized carton and vehicle scans.
	MaxScanLength int `mapstructure:"MAX_SCAN_LENGTH" default:"64"`
	// StopCacheTTL is how long delivery stop data stays cached per shipment.
	StopCacheTTL time.Duration `mapstructure:"STOP_CACHE_TTL" default:"5m"`
	// MirrorQueueSize bounds the pending asynchronous mirror writes.
	MirrorQueueSize int `mapstructure:"MIRROR_QUEUE_SIZE" default:"256"`
}

// Load loads configuration from .env files and environment variables.
func Load(path string) (*AppConfig, error) {
	v := viper.New()

	v.AutomaticEnv()

	v.AddConfigPath(path)
	v.SetConfigName(".env")
	v.SetConfigType("env")

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config AppConfig

	if err := processTags(v, &config); err != nil {
		return nil, err
	}

	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := validateRequired(&config); err != nil {
		return nil, err
	}

	if err := validateStore(config.Store); err != nil {
		return nil, err
	}

	return &config, nil
}

// processTags iterates over the struct fields and sets default values in Viper.
func processTags(v *viper.Viper, config interface{}) error {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := processTags(v, val.Field(i).Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		key := field.Tag.Get("mapstructure")
		defaultValue := field.Tag.Get("default")

		if key != "" {
			if err := v.BindEnv(key); err != nil {
				return fmt.Errorf("failed to bind env %s: %w", key, err)
			}
		}

		if key != "" && defaultValue != "" {
			v.SetDefault(key, defaultValue)
		}
	}
	return nil
}

// validateRequired checks if fields marked as required have non-zero values.
func validateRequired(config interface{}) error {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := validateRequired(val.Field(i).Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		if field.Tag.Get("required") == "true" && isZero(val.Field(i)) {
			return fmt.Errorf("missing required configuration: %s", field.Tag.Get("mapstructure"))
		}
	}
	return nil
}

// validateStore checks that the selected driver has its connection settings.
func validateStore(cfg StoreConfig) error {
	switch strings.ToLower(cfg.Driver) {
	case StoreDriverMemory:
		return nil
	case StoreDriverRedis:
		if cfg.RedisURL == "" {
			return fmt.Errorf("missing required configuration: REDIS_URL")
		}
	case StoreDriverREST:
		if cfg.RESTURL == "" {
			return fmt.Errorf("missing required configuration: STORE_REST_URL")
		}
	case StoreDriverPostgres:
		if cfg.DatabaseDSN == "" {
			return fmt.Errorf("missing required configuration: DATABASE_DSN")
		}
	default:
		return fmt.Errorf("unsupported STORE_DRIVER: %q", cfg.Driver)
	}
	return nil
}

// isZero checks if a reflect.Value is the zero value for its type.
func isZero(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return v.String() == ""
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Slice, reflect.Map:
		return v.Len() == 0
	default:
		return v.IsZero()
	}
}
