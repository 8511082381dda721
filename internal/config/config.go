package config

import "time"

type Config struct {
	Service  *ServiceConfig
	Redis    *RedisConfig
	Postgres *PostgresConfig
	Auth     *AuthConfig
	Presence *PresenceConfig
	Broker   *BrokerConfig
	Logger   *LoggerConfig
	Tracer   *TracerConfig
}

type ServiceConfig struct {
	Name string
	Env  string
	Addr string
}

type RedisConfig struct {
	URL          string
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolSize     int
	MinIdleConns int
	PingTimeout  time.Duration
}

type PostgresConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
}

type AuthConfig struct {
	Secret   string
	Issuer   string
	TokenTTL time.Duration
	// RevocationFailClosed rejects authentication when the denylist
	// store is unreachable instead of letting the request through.
	RevocationFailClosed bool
}

type PresenceConfig struct {
	// Timeout is how long a user stays online after their last heartbeat.
	Timeout time.Duration
	// SweepInterval is how often the background sweep expires stale entries.
	SweepInterval time.Duration
}

// BrokerConfig selects the pub/sub transport. "redis" fans out across
// processes; "memory" is single-process only.
type BrokerConfig struct {
	Driver string
}

type LoggerConfig struct {
	Level  string
	Format string
}

type TracerConfig struct {
	Address string
	Enabled bool
}
