package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Storage      StorageConfig
	DB           DBConfig
	Redis        RedisConfig
	Commerce     CommerceConfig
	Session      SessionConfig
	CORS         CORSConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Storage.validate(); err != nil {
		return nil, err
	}
	if cfg.Storage.UsesDB() {
		if err := cfg.DB.ensureDSN(); err != nil {
			return nil, err
		}
	}
	if cfg.Storage.UsesRedis() && cfg.Redis.URL == "" && cfg.Redis.Address == "" {
		return nil, fmt.Errorf("either %s or %s is required for the redis storage backend", EnvRedisURL, EnvRedisAddr)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"NARKK_APP_ENV" required:"true"`
	Port         string `envconfig:"NARKK_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"NARKK_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"NARKK_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"NARKK_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// StorageConfig selects where the per-session slots (cart, last order, commerce settings) live.
type StorageConfig struct {
	Backend string        `envconfig:"NARKK_STORAGE_BACKEND" default:"redis"`
	SlotTTL time.Duration `envconfig:"NARKK_STORAGE_SLOT_TTL" default:"0"`
}

func (s StorageConfig) UsesRedis() bool {
	return strings.EqualFold(strings.TrimSpace(s.Backend), StorageBackendRedis)
}

func (s StorageConfig) UsesDB() bool {
	return strings.EqualFold(strings.TrimSpace(s.Backend), StorageBackendDB)
}

func (s StorageConfig) validate() error {
	if s.UsesRedis() || s.UsesDB() {
		return nil
	}
	return fmt.Errorf("%s must be %q or %q, got %q", EnvStorageBackend, StorageBackendRedis, StorageBackendDB, s.Backend)
}

type DBConfig struct {
	DSN    string `envconfig:"NARKK_DB_DSN"`
	Driver string `envconfig:"NARKK_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"NARKK_DB_HOST"`
	Port     int    `envconfig:"NARKK_DB_PORT" default:"5432"`
	User     string `envconfig:"NARKK_DB_USER"`
	Password string `envconfig:"NARKK_DB_PASSWORD"`
	Name     string `envconfig:"NARKK_DB_NAME"`
	SSLMode  string `envconfig:"NARKK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"NARKK_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"NARKK_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"NARKK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"NARKK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the slot table lives in a SQLite file.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DBDriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"NARKK_REDIS_URL"`
	Address      string        `envconfig:"NARKK_REDIS_ADDR"`
	Password     string        `envconfig:"NARKK_REDIS_PASSWORD"`
	DB           int           `envconfig:"NARKK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"NARKK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"NARKK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"NARKK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"NARKK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"NARKK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// CommerceConfig holds the store-wide WooCommerce credentials. Sessions may
// override them through the commerce settings endpoint.
type CommerceConfig struct {
	APIURL             string        `envconfig:"NARKK_WC_API_URL"`
	ConsumerKey        string        `envconfig:"NARKK_WC_CONSUMER_KEY"`
	ConsumerSecret     string        `envconfig:"NARKK_WC_CONSUMER_SECRET"`
	Timeout            time.Duration `envconfig:"NARKK_WC_TIMEOUT" default:"10s"`
	Country            string        `envconfig:"NARKK_WC_ORDER_COUNTRY" default:"IN"`
	PaymentMethod      string        `envconfig:"NARKK_WC_PAYMENT_METHOD" default:"bacs"`
	PaymentMethodTitle string        `envconfig:"NARKK_WC_PAYMENT_METHOD_TITLE" default:"Direct Bank Transfer"`
	SetPaid            bool          `envconfig:"NARKK_WC_SET_PAID" default:"true"`

	// AllowPrivateEndpoints lets sessions save http or private-network API
	// urls. Only meant for local development against a local store.
	AllowPrivateEndpoints bool `envconfig:"NARKK_WC_ALLOW_PRIVATE_ENDPOINTS" default:"false"`
}

// Configured reports whether all three credential values are present.
func (c CommerceConfig) Configured() bool {
	return strings.TrimSpace(c.APIURL) != "" &&
		strings.TrimSpace(c.ConsumerKey) != "" &&
		strings.TrimSpace(c.ConsumerSecret) != ""
}

type SessionConfig struct {
	CookieName string        `envconfig:"NARKK_SESSION_COOKIE_NAME" default:"narkk_session"`
	Secret     string        `envconfig:"NARKK_SESSION_SECRET" required:"true"`
	Secure     bool          `envconfig:"NARKK_SESSION_SECURE" default:"false"`
	MaxAge     time.Duration `envconfig:"NARKK_SESSION_MAX_AGE" default:"720h"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"NARKK_CORS_ALLOWED_ORIGINS" default:"http://localhost:5173,http://localhost:8080"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"NARKK_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		return fmt.Errorf("%s is required for the sqlite driver", EnvDBDSN)
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range dbPartsEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
