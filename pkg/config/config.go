package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix is passed to envconfig; every variable already carries the
	// explicit SEW4MI_ prefix in its tag.
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

// Environment variable names shared between Load, tests, and ops tooling.
const (
	EnvAppEnv   = "SEW4MI_APP_ENV"
	EnvPort     = "SEW4MI_APP_PORT"
	EnvDBDSN    = "SEW4MI_DB_DSN"
	EnvDBHost   = "SEW4MI_DB_HOST"
	EnvDBUser   = "SEW4MI_DB_USER"
	EnvDBName   = "SEW4MI_DB_NAME"
	EnvRedisURL = "SEW4MI_REDIS_URL"

	EnvJWTSecret  = "SEW4MI_JWT_SECRET"
	EnvJWTIssuer  = "SEW4MI_JWT_ISSUER"
	EnvJWTExpMins = "SEW4MI_JWT_EXPIRATION_MINUTES"

	EnvMoMoAPIKey = "SEW4MI_MOMO_API_KEY"
	EnvMoMoEnv    = "SEW4MI_MOMO_ENV"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	DecisionRate DecisionRateLimitConfig
	WriteRate    WriteRateLimitConfig
	Milestones   MilestonesConfig
	Payments     PaymentsConfig
	MoMo         MoMoConfig
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
	Env          string `envconfig:"SEW4MI_APP_ENV" required:"true"`
	Port         string `envconfig:"SEW4MI_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SEW4MI_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SEW4MI_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"SEW4MI_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"SEW4MI_DB_DSN"`
	Driver string `envconfig:"SEW4MI_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SEW4MI_DB_HOST"`
	LegacyPort     int    `envconfig:"SEW4MI_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SEW4MI_DB_USER"`
	LegacyPassword string `envconfig:"SEW4MI_DB_PASSWORD"`
	LegacyName     string `envconfig:"SEW4MI_DB_NAME"`
	LegacySSLMode  string `envconfig:"SEW4MI_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SEW4MI_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SEW4MI_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SEW4MI_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SEW4MI_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SEW4MI_REDIS_URL" required:"true"`
	Address      string        `envconfig:"SEW4MI_REDIS_ADDR"`
	Password     string        `envconfig:"SEW4MI_REDIS_PASSWORD"`
	DB           int           `envconfig:"SEW4MI_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SEW4MI_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SEW4MI_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SEW4MI_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SEW4MI_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SEW4MI_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"SEW4MI_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"SEW4MI_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"SEW4MI_JWT_EXPIRATION_MINUTES" required:"true"`
}

// DecisionRateLimitConfig throttles milestone decision submissions per actor.
// Retried client requests are the main offender; the window is deliberately
// short.
type DecisionRateLimitConfig struct {
	Window time.Duration `envconfig:"SEW4MI_DECISION_RATE_LIMIT_WINDOW" default:"1m"`
	Limit  int           `envconfig:"SEW4MI_DECISION_RATE_LIMIT_ATTEMPTS" default:"10"`
}

// WriteRateLimitConfig throttles the authenticated write surfaces per IP and
// per user.
type WriteRateLimitConfig struct {
	Window    time.Duration `envconfig:"SEW4MI_WRITE_RATE_LIMIT_WINDOW" default:"1m"`
	IPLimit   int           `envconfig:"SEW4MI_WRITE_RATE_LIMIT_IP" default:"60"`
	UserLimit int           `envconfig:"SEW4MI_WRITE_RATE_LIMIT_USER" default:"30"`
}

// MilestonesConfig governs milestone seeding and the auto-approval sweep.
type MilestonesConfig struct {
	ReviewWindow  time.Duration `envconfig:"SEW4MI_MILESTONE_REVIEW_WINDOW" default:"72h"`
	SweepInterval time.Duration `envconfig:"SEW4MI_MILESTONE_SWEEP_INTERVAL" default:"1h"`
	SweepBatch    int           `envconfig:"SEW4MI_MILESTONE_SWEEP_BATCH" default:"200"`
}

// PaymentsConfig bounds the best-effort release call made after an approval
// commits.
type PaymentsConfig struct {
	ReleaseTimeout time.Duration `envconfig:"SEW4MI_PAYMENT_RELEASE_TIMEOUT" default:"10s"`
	ReleaseRetries int           `envconfig:"SEW4MI_PAYMENT_RELEASE_RETRIES" default:"2"`
}

type MoMoConfig struct {
	BaseURL     string        `envconfig:"SEW4MI_MOMO_BASE_URL"`
	APIKey      string        `envconfig:"SEW4MI_MOMO_API_KEY"`
	Env         string        `envconfig:"SEW4MI_MOMO_ENV" default:"sandbox"`
	HTTPTimeout time.Duration `envconfig:"SEW4MI_MOMO_HTTP_TIMEOUT" default:"10s"`
}

// Environment returns the normalized gateway environment (sandbox/live).
func (m MoMoConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(m.Env))
	if env == "" {
		return "sandbox"
	}
	return env
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"SEW4MI_AUTO_MIGRATE" default:"false"`
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
