package config

const EnvPrefix = "NARKK"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	StorageBackendRedis = "redis"
	StorageBackendDB    = "db"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
)

const (
	EnvAppEnv         = "NARKK_APP_ENV"
	EnvPort           = "NARKK_APP_PORT"
	EnvStorageBackend = "NARKK_STORAGE_BACKEND"
	EnvDBDSN          = "NARKK_DB_DSN"
	EnvDBDriver       = "NARKK_DB_DRIVER"
	EnvDBHost         = "NARKK_DB_HOST"
	EnvDBUser         = "NARKK_DB_USER"
	EnvDBName         = "NARKK_DB_NAME"
	EnvRedisURL       = "NARKK_REDIS_URL"
	EnvRedisAddr      = "NARKK_REDIS_ADDR"
	EnvSessionSecret  = "NARKK_SESSION_SECRET"
	EnvWCAPIURL       = "NARKK_WC_API_URL"
	EnvWCConsumerKey  = "NARKK_WC_CONSUMER_KEY"
	EnvWCSecret       = "NARKK_WC_CONSUMER_SECRET"
	EnvCORSOrigins    = "NARKK_CORS_ALLOWED_ORIGINS"
)

var dbPartsEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
