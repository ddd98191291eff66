package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	Postgres    Postgres
	Redis       Redis
	HTTP        HTTP
	Auth        Auth
	API         API
	Cache       Cache
	Jobs        Jobs
	Telegram    Telegram
	GoogleDrive GoogleDrive
	Valuation   Valuation
}

type Postgres struct {
	Host            string `env:"PG_HOST"`
	Port            int    `env:"PG_PORT"`
	DbName          string `env:"PG_DB_NAME"`
	Password        string `env:"PG_PASSWORD"`
	User            string `env:"PG_USER"`
	MaxOpenConns    int    `env:"PG_MAX_OPEN_CONNS" envDefault:"10"`
	ConnMaxLifetime int    `env:"PG_CONN_MAX_LIFETIME" envDefault:"300"`
	MaxIdleConns    int    `env:"PG_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxIdleTime int    `env:"PG_CONN_MAX_IDLE_TIME" envDefault:"60"`
	MigrationDir    string `env:"PG_MIGRATION_DIR" envDefault:"migrations"`
	SSLMode         string `env:"PG_SSL_MODE" envDefault:"disable"`
	ConnAttempts    int    `env:"PG_CONN_ATTEMPTS" envDefault:"10"`
}

type Redis struct {
	Enabled  bool   `env:"REDIS_ENABLED" envDefault:"true"`
	Host     string `env:"REDIS_HOST" envDefault:"localhost"`
	Port     int    `env:"REDIS_PORT" envDefault:"6379"`
	Password string `env:"REDIS_PASSWORD" envDefault:""`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

type HTTP struct {
	Port           int           `env:"HTTP_PORT" envDefault:"8000"`
	ReadTimeout    time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"30s"`
	WriteTimeout   time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"30s"`
	RequestTimeout time.Duration `env:"HTTP_REQUEST_TIMEOUT" envDefault:"10s"`
	CORSOrigins    []string      `env:"HTTP_CORS_ORIGINS" envDefault:"*"`
}

type Auth struct {
	JWTSecret string `env:"JWT_SECRET"`
}

type API struct {
	Debug          bool          `env:"API_DEBUG" envDefault:"false"`
	Timeout        time.Duration `env:"API_TIMEOUT" envDefault:"10s"`
	AlphaVantage   AlphaVantage
	IndianStockApi IndianStockApi
}

type AlphaVantage struct {
	Url               string `env:"ALPHAVANTAGE_API_URL" envDefault:"https://www.alphavantage.co"`
	Key               string `env:"ALPHAVANTAGE_API_KEY"`
	RequestsPerMinute int    `env:"ALPHAVANTAGE_REQUESTS_PER_MINUTE" envDefault:"5"`
	RequestsPerDay    int    `env:"ALPHAVANTAGE_REQUESTS_PER_DAY" envDefault:"25"`
}

type IndianStockApi struct {
	Url               string `env:"INDIAN_STOCK_API_URL" envDefault:"https://stock.indianapi.in"`
	Key               string `env:"INDIAN_STOCK_API_KEY" envDefault:""`
	RequestsPerMinute int    `env:"INDIAN_STOCK_API_REQUESTS_PER_MINUTE" envDefault:"30"`
}

type Cache struct {
	QuoteExpiration       time.Duration `env:"CACHE_QUOTE_EXPIRATION" envDefault:"1m"`
	HistoricalExpiration  time.Duration `env:"CACHE_HISTORICAL_EXPIRATION" envDefault:"1h"`
	PerformanceExpiration time.Duration `env:"CACHE_PERFORMANCE_EXPIRATION" envDefault:"5m"`
}

type Jobs struct {
	RefreshPricesInterval     time.Duration `env:"REFRESH_PRICES_JOB_INTERVAL" envDefault:"5m"`
	RefreshPortfoliosInterval time.Duration `env:"REFRESH_PORTFOLIOS_JOB_INTERVAL" envDefault:"1h"`
	CleanupReportsCrontab     string        `env:"CLEANUP_REPORTS_JOB_CRONTAB" envDefault:"0 3 * * *"`
	Timeout                   time.Duration `env:"JOB_TIMEOUT" envDefault:"10m"`
}

type Telegram struct {
	Token       string        `env:"TELEGRAM_TOKEN" envDefault:""`
	UpdTimeout  time.Duration `env:"TELEGRAM_UPD_TIMEOUT" envDefault:"10s"`
	LinkCodeTTL time.Duration `env:"TELEGRAM_LINK_CODE_TTL" envDefault:"10m"`
}

type GoogleDrive struct {
	CredentialsFile string        `env:"GOOGLE_DRIVE_CREDENTIALS_FILE" envDefault:""`
	FileTTL         time.Duration `env:"GOOGLE_DRIVE_FILE_TTL" envDefault:"24h"`
}

// Valuation mirrors valuation.Config; bounds are expressed in hours.
type Valuation struct {
	HistoryRetentionDays  int       `env:"VALUATION_HISTORY_RETENTION_DAYS" envDefault:"90"`
	AlertDebounceHours    int       `env:"VALUATION_ALERT_DEBOUNCE_HOURS" envDefault:"24"`
	SnapshotIntervalHours int       `env:"VALUATION_SNAPSHOT_INTERVAL_HOURS" envDefault:"24"`
	DailyBandHours        []float64 `env:"VALUATION_DAILY_BAND_HOURS" envDefault:"19.2,28.8"`
	WeeklyBandHours       []float64 `env:"VALUATION_WEEKLY_BAND_HOURS" envDefault:"144,192"`
	MonthlyBandHours      []float64 `env:"VALUATION_MONTHLY_BAND_HOURS" envDefault:"672,768"`
	YearlyBandHours       []float64 `env:"VALUATION_YEARLY_BAND_HOURS" envDefault:"8640,8880"`
}

func MustLoad() *Config {
	_ = godotenv.Load(".env")

	cfg, err := Load()
	if err != nil {
		log.Fatalf("parse config error: %s", err)
	}

	return cfg
}

func Load() (*Config, error) {
	cfg := &Config{}

	opts := env.Options{RequiredIfNoDef: true}

	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, err
	}

	return cfg, nil
}
