package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App      AppConfig
	DB       DBConfig
	Redis    RedisConfig
	GCS      GCSConfig
	Billing  BillingConfig
	Invoice  InvoiceConfig
	Exchange ExchangeConfig
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
	Env          string `envconfig:"TALENTBRIDGE_APP_ENV" required:"true"`
	Port         string `envconfig:"TALENTBRIDGE_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"TALENTBRIDGE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"TALENTBRIDGE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"TALENTBRIDGE_DB_DSN"`
	Driver string `envconfig:"TALENTBRIDGE_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"TALENTBRIDGE_DB_HOST"`
	Port     int    `envconfig:"TALENTBRIDGE_DB_PORT" default:"5432"`
	User     string `envconfig:"TALENTBRIDGE_DB_USER"`
	Password string `envconfig:"TALENTBRIDGE_DB_PASSWORD"`
	Name     string `envconfig:"TALENTBRIDGE_DB_NAME"`
	SSLMode  string `envconfig:"TALENTBRIDGE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"TALENTBRIDGE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"TALENTBRIDGE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"TALENTBRIDGE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"TALENTBRIDGE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (d *DBConfig) ensureDSN() error {
	if d.DSN != "" {
		return nil
	}
	if d.Host == "" || d.User == "" || d.Name == "" {
		return fmt.Errorf("either TALENTBRIDGE_DB_DSN or host/user/name settings are required")
	}
	d.DSN = fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
	return nil
}

type RedisConfig struct {
	Address      string        `envconfig:"TALENTBRIDGE_REDIS_ADDR" required:"true"`
	Password     string        `envconfig:"TALENTBRIDGE_REDIS_PASSWORD"`
	DB           int           `envconfig:"TALENTBRIDGE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"TALENTBRIDGE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"TALENTBRIDGE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"TALENTBRIDGE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"TALENTBRIDGE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"TALENTBRIDGE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type GCSConfig struct {
	BucketName      string `envconfig:"TALENTBRIDGE_GCS_BUCKET"`
	CredentialsJSON string `envconfig:"TALENTBRIDGE_GCS_CREDENTIALS_JSON"`
}

type BillingConfig struct {
	StandardHours int `envconfig:"TALENTBRIDGE_BILLING_STANDARD_HOURS" default:"160"`
	ForeignScale  int `envconfig:"TALENTBRIDGE_BILLING_FOREIGN_SCALE" default:"4"`
	VNDScale      int `envconfig:"TALENTBRIDGE_BILLING_VND_SCALE" default:"0"`
	CoefficientDP int `envconfig:"TALENTBRIDGE_BILLING_COEFFICIENT_DP" default:"4"`
}

type InvoiceConfig struct {
	MaxAttempts    int           `envconfig:"TALENTBRIDGE_INVOICE_MAX_ATTEMPTS" default:"3"`
	InitialBackoff time.Duration `envconfig:"TALENTBRIDGE_INVOICE_INITIAL_BACKOFF" default:"1s"`
}

type ExchangeConfig struct {
	CacheTTL time.Duration `envconfig:"TALENTBRIDGE_EXCHANGE_CACHE_TTL" default:"15m"`
}
