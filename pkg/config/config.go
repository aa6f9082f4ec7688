package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix scopes every environment variable the service reads.
const EnvPrefix = "ARRECON"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Environment variable names shared with tests and deploy tooling.
const (
	EnvAppEnv = "ARRECON_APP_ENV"
	EnvPort   = "ARRECON_APP_PORT"
	EnvDBDSN  = "ARRECON_DB_DSN"
	EnvDBHost = "ARRECON_DB_HOST"
	EnvDBUser = "ARRECON_DB_USER"
	EnvDBName = "ARRECON_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Engine       EngineConfig
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
	if err := cfg.Engine.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"ARRECON_APP_ENV" required:"true"`
	Port         string `envconfig:"ARRECON_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"ARRECON_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ARRECON_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"ARRECON_DB_DSN"`
	Driver string `envconfig:"ARRECON_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"ARRECON_DB_HOST"`
	LegacyPort     int    `envconfig:"ARRECON_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"ARRECON_DB_USER"`
	LegacyPassword string `envconfig:"ARRECON_DB_PASSWORD"`
	LegacyName     string `envconfig:"ARRECON_DB_NAME"`
	LegacySSLMode  string `envconfig:"ARRECON_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ARRECON_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ARRECON_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ARRECON_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ARRECON_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// EngineConfig carries the audit engine tunables. The defaults are the
// documented audit-methodology values; overriding them is a deployment
// decision, not a per-request one.
type EngineConfig struct {
	// MaterialityThreshold is the absolute variance below which the ledger
	// and subledger are declared matched, in currency units.
	MaterialityThreshold int64 `envconfig:"ARRECON_ENGINE_MATERIALITY" default:"1000"`
	// AmountMatchTolerance is the absolute distance within which an invoice
	// amount is considered to explain a variance.
	AmountMatchTolerance int64 `envconfig:"ARRECON_ENGINE_MATCH_TOLERANCE" default:"100"`
	// RoundJournalMultiple marks a positive variance as a manual top-side
	// journal entry when the variance is an exact multiple of it.
	RoundJournalMultiple int64 `envconfig:"ARRECON_ENGINE_ROUND_JE_MULTIPLE" default:"1000000"`
	// CutoffWindowDays is the symmetric window around the reporting date
	// scanned for period-boundary errors.
	CutoffWindowDays int `envconfig:"ARRECON_ENGINE_CUTOFF_WINDOW_DAYS" default:"7"`
	// ConfirmationSampleSize is the default confirmation sample size when a
	// request does not supply one.
	ConfirmationSampleSize int `envconfig:"ARRECON_ENGINE_SAMPLE_SIZE" default:"5"`
}

func (e EngineConfig) validate() error {
	if e.MaterialityThreshold < 0 {
		return fmt.Errorf("%s_ENGINE_MATERIALITY must not be negative", EnvPrefix)
	}
	if e.AmountMatchTolerance < 0 {
		return fmt.Errorf("%s_ENGINE_MATCH_TOLERANCE must not be negative", EnvPrefix)
	}
	if e.RoundJournalMultiple <= 0 {
		return fmt.Errorf("%s_ENGINE_ROUND_JE_MULTIPLE must be positive", EnvPrefix)
	}
	if e.CutoffWindowDays <= 0 {
		return fmt.Errorf("%s_ENGINE_CUTOFF_WINDOW_DAYS must be positive", EnvPrefix)
	}
	if e.ConfirmationSampleSize < 3 {
		return fmt.Errorf("%s_ENGINE_SAMPLE_SIZE must cover at least the top-3 census items", EnvPrefix)
	}
	return nil
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"ARRECON_FEATURE_AUTO_MIGRATE" default:"false"`
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
