package api

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"storefront.GO/core/auth"
	authService "storefront.GO/service/auth"
	currencyService "storefront.GO/service/currency"
	searchService "storefront.GO/service/search"
)

// Deps is what route modules are built from.
type Deps struct {
	DB       *gorm.DB
	Logger   *zap.Logger
	Issuer   *auth.TokenIssuer
	Cookies  auth.CookieConfig
	Sessions *authService.SessionService
	Rates    *currencyService.Service
	Search   *searchService.SearchService
}
