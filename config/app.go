package config

import (
	"fmt"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
)

// AppConfig holds global application configuration
var AppConfig *Config
var once sync.Once

type Config struct {
	AppName string `env:"APP_NAME" envDefault:"storefront"`
	Port    string `env:"PORT" envDefault:"8080"`
	Env     string `env:"APP_ENV" envDefault:"development"`
	Debug   bool   `env:"DEBUG"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// APIBaseURL is where CLI clients reach the API.
	APIBaseURL string `env:"API_BASE_URL" envDefault:"http://localhost:8080"`

	DBDriver   string `env:"DB_DRIVER" envDefault:"mysql"`
	SQLitePath string `env:"SQLITE_PATH" envDefault:"storefront.db"`
	GormLog    string `env:"GORM_LOG" envDefault:"warn"`

	JWTSecret       string        `env:"JWT_SECRET" envDefault:"insecure-dev-secret"`
	AccessTokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"15m"`
	RefreshTokenTTL time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"720h"`
	CookieSecure    bool          `env:"COOKIE_SECURE"`
	CookieDomain    string        `env:"COOKIE_DOMAIN"`

	CanonicalCurrency  string        `env:"CANONICAL_CURRENCY" envDefault:"TRY"`
	CurrencyFeePercent float64       `env:"CURRENCY_FEE_PERCENT" envDefault:"0"`
	RatesSourceURL     string        `env:"RATES_SOURCE_URL"`
	RatesCacheTTL      time.Duration `env:"RATES_CACHE_TTL" envDefault:"1h"`

	ElasticsearchHost  string `env:"ELASTICSEARCH_HOST"`
	ElasticsearchIndex string `env:"ELASTICSEARCH_INDEX" envDefault:"storefront_products"`

	RatesSchedule      string `env:"CRON_EXCHANGE_RATES" envDefault:"@every 1h"`
	TokenPurgeSchedule string `env:"CRON_REFRESH_TOKENS" envDefault:"@daily"`
}

// Parse reads a Config from the environment.
func Parse() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

// LoadAppConfig initializes the global AppConfig variable
func LoadAppConfig() error {
	var err error
	once.Do(func() {
		AppConfig, err = Parse()
	})
	return err
}
