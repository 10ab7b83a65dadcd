package types

import "errors"

// Config holds backend selection and parameters for opening a Store.
type Config struct {
	Backend         string         `json:"backend" yaml:"backend" mapstructure:"backend"`
	FallbackBackend string         `json:"fallback_backend,omitempty" yaml:"fallback_backend,omitempty" mapstructure:"fallback_backend"`
	DataDir         string         `json:"data_dir" yaml:"data_dir" mapstructure:"data_dir"`
	Redis           RedisConfig    `json:"redis" yaml:"redis" mapstructure:"redis"`
	Postgres        PostgresConfig `json:"postgres" yaml:"postgres" mapstructure:"postgres"`
}

// RedisConfig configures the redis backend.
type RedisConfig struct {
	Addr     string `json:"addr" yaml:"addr" mapstructure:"addr"`
	Password string `json:"password,omitempty" yaml:"password,omitempty" mapstructure:"password"`
	DB       int    `json:"db" yaml:"db" mapstructure:"db"`
	Prefix   string `json:"prefix,omitempty" yaml:"prefix,omitempty" mapstructure:"prefix"`
}

// PostgresConfig configures the postgres backend.
type PostgresConfig struct {
	DSN string `json:"dsn" yaml:"dsn" mapstructure:"dsn"`
}

// Supported backend names.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendJSONFile = "jsonfile"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Config validation errors.
var (
	ErrBackendEmpty     = errors.New("backend must not be empty")
	ErrBackendUnknown   = errors.New("unknown backend")
	ErrFallbackSame     = errors.New("fallback backend must differ from backend")
	ErrRedisAddrEmpty   = errors.New("redis backend requires redis.addr")
	ErrPostgresDSNEmpty = errors.New("postgres backend requires postgres.dsn")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendMemory:   true,
	BackendSQLite:   true,
	BackendJSONFile: true,
	BackendRedis:    true,
	BackendPostgres: true,
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	if c.FallbackBackend != "" {
		if !knownBackends[c.FallbackBackend] {
			return ErrBackendUnknown
		}
		if c.FallbackBackend == c.Backend {
			return ErrFallbackSame
		}
	}
	for _, b := range []string{c.Backend, c.FallbackBackend} {
		switch {
		case b == BackendRedis && c.Redis.Addr == "":
			return ErrRedisAddrEmpty
		case b == BackendPostgres && c.Postgres.DSN == "":
			return ErrPostgresDSNEmpty
		}
	}
	return nil
}
