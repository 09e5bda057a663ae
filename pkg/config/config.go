package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App      AppConfig
	Sheets   SheetsConfig
	GCP      GCPConfig
	Refurbed RefurbedConfig
	IdoSell  IdoSellConfig
	Redis    RedisConfig
	Sync     SyncConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.GCP.ensureCredentials(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"REFSYNC_APP_ENV" required:"true"`
	Port         string `envconfig:"REFSYNC_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"REFSYNC_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"REFSYNC_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type SheetsConfig struct {
	SpreadsheetID string `envconfig:"REFSYNC_SHEETS_SPREADSHEET_ID" required:"true"`
	OrdersSheet   string `envconfig:"REFSYNC_SHEETS_ORDERS_SHEET" default:"Orders"`
	ConfigSheet   string `envconfig:"REFSYNC_SHEETS_CONFIG_SHEET" default:"Config"`
	ArchiveSheet  string `envconfig:"REFSYNC_SHEETS_ARCHIVE_SHEET" default:"Archive"`
}

type GCPConfig struct {
	CredentialsJSON        string `envconfig:"REFSYNC_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"REFSYNC_GOOGLE_APPLICATION_CREDENTIALS"`
}

// ensureCredentials enforces that at least one credential source is set.
func (g GCPConfig) ensureCredentials() error {
	if g.CredentialsJSON == "" && g.ApplicationCredentials == "" {
		return fmt.Errorf("either %s or %s is required", EnvGCPCredentials, EnvGCPCredFile)
	}
	return nil
}

type RefurbedConfig struct {
	Token   string        `envconfig:"REFSYNC_REFURBED_TOKEN" required:"true"`
	BaseURL string        `envconfig:"REFSYNC_REFURBED_BASE_URL" default:"https://api.refurbed.com"`
	Timeout time.Duration `envconfig:"REFSYNC_REFURBED_TIMEOUT" default:"30s"`
}

type IdoSellConfig struct {
	APIKey  string        `envconfig:"REFSYNC_IDOSELL_API_KEY" required:"true"`
	BaseURL string        `envconfig:"REFSYNC_IDOSELL_BASE_URL" default:"https://vedion.pl/api/admin/v5"`
	Timeout time.Duration `envconfig:"REFSYNC_IDOSELL_TIMEOUT" default:"30s"`
}

type RedisConfig struct {
	URL          string        `envconfig:"REFSYNC_REDIS_URL" required:"true"`
	PoolSize     int           `envconfig:"REFSYNC_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"REFSYNC_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"REFSYNC_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"REFSYNC_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"REFSYNC_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type SyncConfig struct {
	FetchInterval     time.Duration `envconfig:"REFSYNC_SYNC_FETCH_INTERVAL" default:"5m"`
	PushInterval      time.Duration `envconfig:"REFSYNC_SYNC_PUSH_INTERVAL" default:"5m"`
	ReconcileInterval time.Duration `envconfig:"REFSYNC_SYNC_RECONCILE_INTERVAL" default:"15m"`
	RefreshInterval   time.Duration `envconfig:"REFSYNC_SYNC_REFRESH_INTERVAL" default:"1h"`
	ArchiveInterval   time.Duration `envconfig:"REFSYNC_SYNC_ARCHIVE_INTERVAL" default:"24h"`
	LockTTL           time.Duration `envconfig:"REFSYNC_SYNC_LOCK_TTL" default:"10m"`
	PageLimit         int           `envconfig:"REFSYNC_SYNC_PAGE_LIMIT" default:"100"`
	StateRatePerSec   float64       `envconfig:"REFSYNC_SYNC_STATE_RATE_PER_SEC" default:"5"`
}
