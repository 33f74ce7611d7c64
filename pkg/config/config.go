package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	HTTP          HTTPConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Dashboard     DashboardConfig
	Cron          CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if _, err := cfg.App.Location(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"STOREGOALS_APP_ENV" required:"true"`
	Port         string `envconfig:"STOREGOALS_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"STOREGOALS_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"STOREGOALS_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"STOREGOALS_LOG_WARN_STACK" default:"false"`
	Timezone     string `envconfig:"STOREGOALS_TIMEZONE" default:"America/Sao_Paulo"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// Location resolves the business timezone used for period boundaries.
func (a AppConfig) Location() (*time.Location, error) {
	name := strings.TrimSpace(a.Timezone)
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", name, err)
	}
	return loc, nil
}

type ServiceConfig struct {
	Kind string `envconfig:"STOREGOALS_SERVICE_KIND" default:"api"`
}

type HTTPConfig struct {
	WebDistDir      string        `envconfig:"STOREGOALS_WEB_DIST_DIR"`
	CORSOrigins     []string      `envconfig:"STOREGOALS_CORS_ORIGINS" default:"http://localhost:5173,http://localhost:3000"`
	CookieSecure    bool          `envconfig:"STOREGOALS_COOKIE_SECURE" default:"true"`
	ShutdownTimeout time.Duration `envconfig:"STOREGOALS_HTTP_SHUTDOWN_TIMEOUT" default:"10s"`
	ReadTimeout     time.Duration `envconfig:"STOREGOALS_HTTP_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"STOREGOALS_HTTP_WRITE_TIMEOUT" default:"30s"`
}

type DBConfig struct {
	DSN    string `envconfig:"STOREGOALS_DB_DSN"`
	Driver string `envconfig:"STOREGOALS_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"STOREGOALS_DB_HOST"`
	LegacyPort     int    `envconfig:"STOREGOALS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"STOREGOALS_DB_USER"`
	LegacyPassword string `envconfig:"STOREGOALS_DB_PASSWORD"`
	LegacyName     string `envconfig:"STOREGOALS_DB_NAME"`
	LegacySSLMode  string `envconfig:"STOREGOALS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"STOREGOALS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"STOREGOALS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"STOREGOALS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"STOREGOALS_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	SlowQuery       time.Duration `envconfig:"STOREGOALS_DB_SLOW_QUERY" default:"250ms"`
	ConnectAttempts uint64        `envconfig:"STOREGOALS_DB_CONNECT_ATTEMPTS" default:"5"`
}

type RedisConfig struct {
	URL          string        `envconfig:"STOREGOALS_REDIS_URL" required:"true"`
	Address      string        `envconfig:"STOREGOALS_REDIS_ADDR"`
	Password     string        `envconfig:"STOREGOALS_REDIS_PASSWORD"`
	DB           int           `envconfig:"STOREGOALS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STOREGOALS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STOREGOALS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STOREGOALS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STOREGOALS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"STOREGOALS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"STOREGOALS_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"STOREGOALS_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"STOREGOALS_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"STOREGOALS_REFRESH_TOKEN_TTL_MINUTES" default:"10080"`
}

// AccessTokenTTL returns the access token lifetime.
func (j JWTConfig) AccessTokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB      int `envconfig:"STOREGOALS_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime          int `envconfig:"STOREGOALS_ARGON_TIME" default:"3"`
	ArgonParallelism   int `envconfig:"STOREGOALS_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen       int `envconfig:"STOREGOALS_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen        int `envconfig:"STOREGOALS_ARGON_KEY_LEN" default:"32"`
	TempPasswordLength int `envconfig:"STOREGOALS_USER_TEMP_PASSWORD_LENGTH" default:"10"`
}

type AuthRateLimitConfig struct {
	LoginWindow       time.Duration `envconfig:"STOREGOALS_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginAccountLimit int           `envconfig:"STOREGOALS_AUTH_RATE_LIMIT_LOGIN_LIMIT" default:"5"`
	LoginIPLimit      int           `envconfig:"STOREGOALS_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"STOREGOALS_AUTO_MIGRATE" default:"false"`
}

type DashboardConfig struct {
	CacheTTL     time.Duration `envconfig:"STOREGOALS_DASHBOARD_CACHE_TTL" default:"30s"`
	FetchRetries int           `envconfig:"STOREGOALS_DASHBOARD_FETCH_RETRIES" default:"3"`
	HistoryLimit int           `envconfig:"STOREGOALS_DASHBOARD_HISTORY_CONCURRENCY" default:"4"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"STOREGOALS_CRON_INTERVAL" default:"1h"`
	LockTTL  time.Duration `envconfig:"STOREGOALS_CRON_LOCK_TTL" default:"50m"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
