package config

// EnvPrefix is the envconfig prefix shared by every variable the worker reads.
const EnvPrefix = "REFSYNC"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

// Environment variable names referenced outside struct tags, mostly by tests
// and by error messages in Load.
const (
	EnvAppEnv   = "REFSYNC_APP_ENV"
	EnvPort     = "REFSYNC_APP_PORT"
	EnvLogLevel = "REFSYNC_LOG_LEVEL"

	EnvSpreadsheetID  = "REFSYNC_SHEETS_SPREADSHEET_ID"
	EnvGCPCredentials = "REFSYNC_GCP_CREDENTIALS_JSON"
	EnvGCPCredFile    = "REFSYNC_GOOGLE_APPLICATION_CREDENTIALS"

	EnvRefurbedToken = "REFSYNC_REFURBED_TOKEN"
	EnvIdoSellAPIKey = "REFSYNC_IDOSELL_API_KEY"

	EnvRedisURL = "REFSYNC_REDIS_URL"
)
