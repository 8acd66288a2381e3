package cmd

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"storefront.GO/api"
	"storefront.GO/config"
	coreAuth "storefront.GO/core/auth"
	"storefront.GO/model"
	authRepo "storefront.GO/model/repository/auth"
	currencyRepo "storefront.GO/model/repository/currency"
	authService "storefront.GO/service/auth"
	currencyService "storefront.GO/service/currency"
	searchService "storefront.GO/service/search"
)

// App is the wired server side: config, logger, database and services.
type App struct {
	Config *config.Config
	Logger *zap.Logger
	DB     *gorm.DB
	Deps   *api.Deps
}

// Bootstrap loads configuration, connects the database (migrating it), checks
// redis and builds the services.
func Bootstrap(ctx context.Context) (*App, error) {
	if err := config.LoadAppConfig(); err != nil {
		return nil, err
	}
	cfg := config.AppConfig
	logger, err := config.NewLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}

	db, err := config.NewDB(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	if err := model.Migrate(db); err != nil {
		return nil, err
	}
	logger.Info("database ready", zap.String("driver", cfg.DBDriver))

	config.InitRedis()
	if config.PingRedis(ctx) {
		logger.Info("redis connection successful, rate snapshots cached")
	} else {
		logger.Info("redis not configured or not reachable, caching disabled")
	}

	search, err := searchService.NewSearchService(cfg.ElasticsearchHost, cfg.ElasticsearchIndex, logger.Named("search"))
	if err != nil {
		return nil, err
	}

	issuer := coreAuth.NewTokenIssuer(cfg.JWTSecret, cfg.AccessTokenTTL)
	deps := &api.Deps{
		DB:       db,
		Logger:   logger,
		Issuer:   issuer,
		Cookies:  coreAuth.CookieConfig{Secure: cfg.CookieSecure, Domain: cfg.CookieDomain},
		Sessions: authService.NewSessionService(authRepo.NewAuthRepository(db), issuer, cfg.RefreshTokenTTL, logger.Named("session")),
		Rates: currencyService.NewService(currencyRepo.NewRateRepository(db), currencyService.Options{
			Canonical:  cfg.CanonicalCurrency,
			FeePercent: cfg.CurrencyFeePercent,
			TTL:        cfg.RatesCacheTTL,
			SourceURL:  cfg.RatesSourceURL,
			Redis:      config.RedisClient,
			Logger:     logger.Named("currency"),
		}),
		Search: search,
	}
	return &App{Config: cfg, Logger: logger, DB: db, Deps: deps}, nil
}

// Close flushes the logger and releases connections.
func (a *App) Close() {
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
	if config.RedisClient != nil {
		_ = config.RedisClient.Close()
	}
	_ = a.Logger.Sync()
}
