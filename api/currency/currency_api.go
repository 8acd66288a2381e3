package currency

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"storefront.GO/api"
)

func init() {
	api.RegisterModule(RegisterCurrencyRoutes)
}

func RegisterCurrencyRoutes(apiGroup *echo.Group, d *api.Deps) {
	// GET /api/exchange-rates – public snapshot of display-currency rates.
	apiGroup.GET("/exchange-rates", func(c echo.Context) error {
		snap, err := d.Rates.Snapshot(c.Request().Context())
		if err != nil {
			return err
		}
		c.Response().Header().Set("Cache-Control", "public, max-age=300")
		return api.OK(c, http.StatusOK, snap)
	})
}
