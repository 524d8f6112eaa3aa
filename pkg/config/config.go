package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix namespaces every environment variable the portal reads.
	EnvPrefix = "EVOLVE"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	Cron         CronConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"EVOLVE_APP_ENV" required:"true"`
	Port         string `envconfig:"EVOLVE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"EVOLVE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"EVOLVE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"EVOLVE_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"EVOLVE_DB_DSN"`
	Driver string `envconfig:"EVOLVE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"EVOLVE_DB_HOST"`
	LegacyPort     int    `envconfig:"EVOLVE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"EVOLVE_DB_USER"`
	LegacyPassword string `envconfig:"EVOLVE_DB_PASSWORD"`
	LegacyName     string `envconfig:"EVOLVE_DB_NAME"`
	LegacySSLMode  string `envconfig:"EVOLVE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"EVOLVE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"EVOLVE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"EVOLVE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"EVOLVE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// ensureDSN builds a Postgres DSN from the legacy host/user variables when a
// full DSN is not provided.
func (d *DBConfig) ensureDSN() error {
	if d.DSN != "" {
		return nil
	}
	if d.LegacyHost == "" || d.LegacyUser == "" || d.LegacyName == "" {
		return fmt.Errorf("either EVOLVE_DB_DSN or EVOLVE_DB_HOST/USER/NAME must be set")
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.LegacyUser, d.LegacyPassword),
		Host:   fmt.Sprintf("%s:%d", d.LegacyHost, d.LegacyPort),
		Path:   d.LegacyName,
	}
	q := u.Query()
	q.Set("sslmode", d.LegacySSLMode)
	u.RawQuery = q.Encode()
	d.DSN = u.String()
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"EVOLVE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"EVOLVE_REDIS_ADDR"`
	Password     string        `envconfig:"EVOLVE_REDIS_PASSWORD"`
	DB           int           `envconfig:"EVOLVE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"EVOLVE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"EVOLVE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"EVOLVE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"EVOLVE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"EVOLVE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"EVOLVE_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"EVOLVE_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"EVOLVE_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"EVOLVE_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"EVOLVE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"EVOLVE_ARGON_TIME" default:"1"`
	ArgonParallelism int `envconfig:"EVOLVE_ARGON_PARALLELISM" default:"4"`
	ArgonSaltLen     int `envconfig:"EVOLVE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"EVOLVE_ARGON_KEY_LEN" default:"32"`
}

type CronConfig struct {
	Interval                  time.Duration `envconfig:"EVOLVE_CRON_INTERVAL" default:"24h"`
	NotificationRetentionDays int           `envconfig:"EVOLVE_NOTIFICATION_RETENTION_DAYS" default:"30"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"EVOLVE_AUTO_MIGRATE" default:"false"`
}
