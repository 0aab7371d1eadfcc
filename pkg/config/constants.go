package config

// EnvPrefix is the envconfig prefix; individual fields override names with
// explicit envconfig tags.
const EnvPrefix = "PREPFLOW"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvAppEnv   = "PREPFLOW_APP_ENV"
	EnvPort     = "PREPFLOW_APP_PORT"
	EnvLogLevel = "PREPFLOW_LOG_LEVEL"

	EnvDBDSN  = "PREPFLOW_DB_DSN"
	EnvDBHost = "PREPFLOW_DB_HOST"
	EnvDBUser = "PREPFLOW_DB_USER"
	EnvDBName = "PREPFLOW_DB_NAME"

	EnvRedisURL = "PREPFLOW_REDIS_URL"

	EnvJWTSecret              = "PREPFLOW_JWT_SECRET"
	EnvJWTIssuer              = "PREPFLOW_JWT_ISSUER"
	EnvJWTExpMins             = "PREPFLOW_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "PREPFLOW_REFRESH_TOKEN_TTL_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
