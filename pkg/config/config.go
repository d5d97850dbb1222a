package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Uploads       UploadsConfig
	Secrets       SecretsConfig
	Siigo         SiigoConfig
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
	Env          string `envconfig:"TF_APP_ENV" required:"true"`
	Port         string `envconfig:"TF_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"TF_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"TF_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"TF_DB_DSN"`

	LegacyHost     string `envconfig:"TF_DB_HOST"`
	LegacyPort     int    `envconfig:"TF_DB_PORT" default:"3306"`
	LegacyUser     string `envconfig:"TF_DB_USER"`
	LegacyPassword string `envconfig:"TF_DB_PASSWORD"`
	LegacyName     string `envconfig:"TF_DB_NAME"`

	MaxOpenConns    int           `envconfig:"TF_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"TF_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"TF_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"TF_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"TF_REDIS_URL" required:"true"`
	Address      string        `envconfig:"TF_REDIS_ADDR"`
	Password     string        `envconfig:"TF_REDIS_PASSWORD"`
	DB           int           `envconfig:"TF_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"TF_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"TF_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"TF_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"TF_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"TF_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"TF_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"TF_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"TF_JWT_EXPIRATION_MINUTES" required:"true"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"TF_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"TF_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"TF_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"TF_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"TF_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"TF_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginUserLimit  int           `envconfig:"TF_AUTH_RATE_LIMIT_LOGIN_USER_LIMIT" default:"5"`
	LoginIPLimit    int           `envconfig:"TF_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"TF_AUTO_MIGRATE" default:"false"`
}

type UploadsConfig struct {
	Dir         string `envconfig:"TF_UPLOADS_DIR" default:"uploads/evidence"`
	MaxUploadMB int    `envconfig:"TF_MAX_UPLOAD_MB" default:"10"`
}

type SecretsConfig struct {
	// 64 hex chars (256-bit key) used for AES-256-GCM system_config values.
	EncryptionKey string `envconfig:"TF_CONFIG_ENCRYPTION_KEY"`
}

type SiigoConfig struct {
	BaseURL        string        `envconfig:"TF_SIIGO_BASE_URL" default:"https://api.siigo.com/v1"`
	PartnerID      string        `envconfig:"TF_SIIGO_PARTNER_ID" default:"toppingfrozen"`
	RequestTimeout time.Duration `envconfig:"TF_SIIGO_REQUEST_TIMEOUT" default:"30s"`
	StatusCacheTTL time.Duration `envconfig:"TF_SIIGO_STATUS_CACHE_TTL" default:"30s"`
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

	auth := db.LegacyUser
	if db.LegacyPassword != "" {
		auth = fmt.Sprintf("%s:%s", db.LegacyUser, db.LegacyPassword)
	}

	// go-sql-driver DSN; parseTime is required so DATE/DATETIME scan into time.Time.
	db.DSN = fmt.Sprintf("%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		auth, db.LegacyHost, db.LegacyPort, db.LegacyName)
	return nil
}
