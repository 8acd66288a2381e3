// Package apitest runs the API over httptest for route and client tests.
package apitest

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"storefront.GO/api"
	"storefront.GO/client/gateway"
	"storefront.GO/client/request"
	coreAuth "storefront.GO/core/auth"
	"storefront.GO/internal/testdb"
	authRepo "storefront.GO/model/repository/auth"
	currencyRepo "storefront.GO/model/repository/currency"
	authService "storefront.GO/service/auth"
	currencyService "storefront.GO/service/currency"
	searchService "storefront.GO/service/search"
)

// Password of the customer created by NewDeps.
const (
	Email    = "ada@example.com"
	Password = "correct horse"
)

// NewDeps wires a fresh in-memory database with a seeded catalog and one
// customer. Access tokens live for accessTTL.
func NewDeps(t testing.TB, accessTTL time.Duration) *api.Deps {
	t.Helper()
	db := testdb.Open(t)
	testdb.SeedCatalog(t, db)
	return DepsFor(t, db, accessTTL)
}

// DepsFor wires services over db and registers the test customer.
func DepsFor(t testing.TB, db *gorm.DB, accessTTL time.Duration) *api.Deps {
	t.Helper()
	logger := zap.NewNop()
	issuer := coreAuth.NewTokenIssuer("test-secret", accessTTL)
	sessions := authService.NewSessionService(authRepo.NewAuthRepository(db), issuer, time.Hour, logger)
	_, err := sessions.Register(context.Background(), Email, Password, "Ada", "Lovelace")
	require.NoError(t, err)
	search, err := searchService.NewSearchService("", "", logger)
	require.NoError(t, err)
	return &api.Deps{
		DB:       db,
		Logger:   logger,
		Issuer:   issuer,
		Sessions: sessions,
		Rates: currencyService.NewService(currencyRepo.NewRateRepository(db), currencyService.Options{
			Canonical: "TRY", Logger: logger,
		}),
		Search: search,
	}
}

// Serve starts the API for d.
func Serve(t testing.TB, d *api.Deps) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(api.NewServer(d))
	t.Cleanup(srv.Close)
	return srv
}

// Client returns a storefront API client with its own cookie jar.
func Client(t testing.TB, srv *httptest.Server) *request.Client {
	t.Helper()
	gw, err := gateway.New(gateway.Config{BaseURL: srv.URL})
	require.NoError(t, err)
	return request.New(gw, nil)
}
