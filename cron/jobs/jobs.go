// Package jobs registers the storefront's scheduled maintenance.
package jobs

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"storefront.GO/cron"
	authService "storefront.GO/service/auth"
	currencyService "storefront.GO/service/currency"
)

const (
	ExchangeRates = "exchangerates"
	RefreshTokens = "refreshtokens"
)

type Deps struct {
	Rates    *currencyService.Service
	Sessions *authService.SessionService
	Logger   *zap.Logger
}

// Install registers the exchange-rate refresh and the refresh-token purge.
func Install(d Deps) {
	cron.Register(ExchangeRates, "@every 1h", func(ctx context.Context) error {
		n, err := d.Rates.Refresh(ctx)
		if errors.Is(err, currencyService.ErrNoSource) {
			d.Logger.Debug("no rates source configured, skipping refresh")
			return nil
		}
		if err != nil {
			return err
		}
		d.Logger.Info("exchange rates updated", zap.Int("currencies", n))
		return nil
	})
	cron.Register(RefreshTokens, "@daily", func(ctx context.Context) error {
		n, err := d.Sessions.PurgeExpired(ctx)
		if err != nil {
			return err
		}
		d.Logger.Info("expired refresh tokens purged", zap.Int64("deleted", n))
		return nil
	})
}
