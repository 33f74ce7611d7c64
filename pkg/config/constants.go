package config

const EnvPrefix = "STOREGOALS"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv       = "STOREGOALS_APP_ENV"
	EnvPort         = "STOREGOALS_APP_PORT"
	EnvLogLevel     = "STOREGOALS_LOG_LEVEL"
	EnvLogFormat    = "STOREGOALS_LOG_FORMAT"
	EnvTimezone     = "STOREGOALS_TIMEZONE"
	EnvWebDistDir   = "STOREGOALS_WEB_DIST_DIR"
	EnvCORSOrigins  = "STOREGOALS_CORS_ORIGINS"
	EnvCookieSecure = "STOREGOALS_COOKIE_SECURE"

	EnvDBDSN      = "STOREGOALS_DB_DSN"
	EnvDBDriver   = "STOREGOALS_DB_DRIVER"
	EnvDBHost     = "STOREGOALS_DB_HOST"
	EnvDBPort     = "STOREGOALS_DB_PORT"
	EnvDBUser     = "STOREGOALS_DB_USER"
	EnvDBPassword = "STOREGOALS_DB_PASSWORD"
	EnvDBName     = "STOREGOALS_DB_NAME"

	EnvRedisURL = "STOREGOALS_REDIS_URL"

	EnvJWTSecret               = "STOREGOALS_JWT_SECRET"
	EnvJWTIssuer               = "STOREGOALS_JWT_ISSUER"
	EnvJWTExpMins              = "STOREGOALS_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes  = "STOREGOALS_REFRESH_TOKEN_TTL_MINUTES"
	EnvDashboardCacheTTL       = "STOREGOALS_DASHBOARD_CACHE_TTL"
	EnvDashboardFetchRetries   = "STOREGOALS_DASHBOARD_FETCH_RETRIES"
	EnvCronInterval            = "STOREGOALS_CRON_INTERVAL"
	EnvUserTempPasswordLength  = "STOREGOALS_USER_TEMP_PASSWORD_LENGTH"
	EnvAuthRateLimitLoginLimit = "STOREGOALS_AUTH_RATE_LIMIT_LOGIN_LIMIT"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
