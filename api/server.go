package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"storefront.GO/core/auth"
	"storefront.GO/core/registry"
)

// NewServer builds the echo instance with every registered module mounted.
// Route packages must be imported (for their init) before calling it.
func NewServer(d *Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = HTTPErrorHandler(d.Logger)

	e.Use(requestDuration)
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("remote_ip", v.RemoteIP),
			}
			if v.Error != nil {
				d.Logger.Warn("request", append(fields, zap.Error(v.Error))...)
				return nil
			}
			d.Logger.Info("request", fields...)
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.Gzip())
	e.Use(middleware.Decompress())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})

	apiGroup := e.Group("/api")
	apiGroup.Use(auth.CSRF(d.Cookies, Fail))
	apiGroup.Use(auth.Middleware(d.Issuer, Fail, d.Logger.Named("auth")))

	ApplyModules(apiGroup, d)
	ApplyRoutes(e, d)
	return e
}

func requestDuration(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		c.Set(registry.KeyRequestStart, start)
		c.Response().Before(func() {
			ms := time.Since(start).Milliseconds()
			c.Response().Header().Set("X-Request-Duration-ms", strconv.FormatInt(ms, 10))
		})
		return next(c)
	}
}
