package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	WebDAV       WebDAVConfig
	Settlement   SettlementConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Settlement.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"CASHIER_APP_ENV" required:"true"`
	Port         string `envconfig:"CASHIER_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"CASHIER_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CASHIER_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	Driver string `envconfig:"CASHIER_DB_DRIVER" default:"sqlite"`
	DSN    string `envconfig:"CASHIER_DB_DSN" default:"cashier.db"`

	MaxOpenConns    int           `envconfig:"CASHIER_DB_MAX_OPEN_CONNS" default:"1"`
	MaxIdleConns    int           `envconfig:"CASHIER_DB_MAX_IDLE_CONNS" default:"1"`
	ConnMaxLifetime time.Duration `envconfig:"CASHIER_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CASHIER_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the configured driver is the embedded database.
func (d DBConfig) IsSQLite() bool {
	return !strings.EqualFold(d.Driver, "postgres")
}

// WebDAVConfig carries the bootstrap remote-store settings. Values saved
// through the settings API override these at runtime.
type WebDAVConfig struct {
	URL      string        `envconfig:"CASHIER_WEBDAV_URL"`
	Username string        `envconfig:"CASHIER_WEBDAV_USERNAME"`
	Password string        `envconfig:"CASHIER_WEBDAV_PASSWORD"`
	Folder   string        `envconfig:"CASHIER_WEBDAV_FOLDER" default:"cashier"`
	Timeout  time.Duration `envconfig:"CASHIER_WEBDAV_TIMEOUT" default:"30s"`
}

type SettlementConfig struct {
	// Policy is fail_fast (abort and roll back on first failed line) or
	// continue (attempt every line, report all failures).
	Policy string `envconfig:"CASHIER_SETTLEMENT_POLICY" default:"fail_fast"`
}

func (s SettlementConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(s.Policy)) {
	case "fail_fast", "continue":
		return nil
	}
	return fmt.Errorf("invalid %s %q (want fail_fast or continue)", EnvSettlementPolicy, s.Policy)
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"CASHIER_AUTO_MIGRATE" default:"false"`
}
