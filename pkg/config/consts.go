package config

// EnvPrefix is passed to envconfig.Process; individual fields carry full
// variable names so the prefix stays empty.
const EnvPrefix = ""

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvAppEnv   = "CASHIER_APP_ENV"
	EnvPort     = "CASHIER_APP_PORT"
	EnvLogLevel = "CASHIER_LOG_LEVEL"

	EnvDBDriver = "CASHIER_DB_DRIVER"
	EnvDBDSN    = "CASHIER_DB_DSN"

	EnvWebDAVURL      = "CASHIER_WEBDAV_URL"
	EnvWebDAVUsername = "CASHIER_WEBDAV_USERNAME"
	EnvWebDAVPassword = "CASHIER_WEBDAV_PASSWORD"
	EnvWebDAVFolder   = "CASHIER_WEBDAV_FOLDER"

	EnvSettlementPolicy = "CASHIER_SETTLEMENT_POLICY"
)
