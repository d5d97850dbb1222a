package config

const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

const (
	EnvAppEnv     = "TF_APP_ENV"
	EnvPort       = "TF_APP_PORT"
	EnvDBDSN      = "TF_DB_DSN"
	EnvDBHost     = "TF_DB_HOST"
	EnvDBUser     = "TF_DB_USER"
	EnvDBName     = "TF_DB_NAME"
	EnvRedisURL   = "TF_REDIS_URL"
	EnvJWTSecret  = "TF_JWT_SECRET"
	EnvJWTIssuer  = "TF_JWT_ISSUER"
	EnvJWTExpMins = "TF_JWT_EXPIRATION_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
