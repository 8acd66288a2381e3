package auth

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"storefront.GO/config"
)

const (
	ctxCustomerID = "customer_id"
	ctxClaims     = "auth_claims"
)

// ErrorResponder writes an error envelope. The api package provides it so this
// package does not depend on the route modules.
type ErrorResponder func(c echo.Context, status int, code, message string) error

// Middleware resolves the access cookie into the request context. Routes named
// by config.GetAuthSkipperPaths are served without a customer; every other
// route answers 401 without a valid token.
func Middleware(issuer *TokenIssuer, respond ErrorResponder, logger *zap.Logger) echo.MiddlewareFunc {
	skipper := buildSkipper()
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, err := fromCookie(c, issuer)
			if err == nil {
				if id, idErr := claims.CustomerID(); idErr == nil {
					c.Set(ctxCustomerID, id)
					c.Set(ctxClaims, claims)
					return next(c)
				}
			}
			if skipper(c) {
				return next(c)
			}
			if !errors.Is(err, http.ErrNoCookie) {
				logger.Debug("access token rejected", zap.String("path", c.Path()), zap.Error(err))
			}
			return respond(c, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
		}
	}
}

// CustomerID returns the signed-in customer of the request.
func CustomerID(c echo.Context) (uint, bool) {
	id, ok := c.Get(ctxCustomerID).(uint)
	return id, ok
}

func fromCookie(c echo.Context, issuer *TokenIssuer) (*Claims, error) {
	ck, err := c.Cookie(AccessCookie)
	if err != nil {
		return nil, err
	}
	return issuer.Parse(ck.Value)
}

func buildSkipper() middleware.Skipper {
	skipPaths := config.GetAuthSkipperPaths()
	return func(c echo.Context) bool {
		path := c.Path()
		for _, skip := range skipPaths {
			if path == skip {
				return true
			}
		}
		return false
	}
}
