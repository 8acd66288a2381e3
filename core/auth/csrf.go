package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// CSRFContextKey holds the request's token in the echo context.
const CSRFContextKey = "csrf"

// CSRF is double-submit protection: the token is delivered in a readable
// cookie, and unsafe methods must echo it in the X-CSRF-Token header.
func CSRF(cc CookieConfig, respond ErrorResponder) echo.MiddlewareFunc {
	return middleware.CSRFWithConfig(middleware.CSRFConfig{
		TokenLength:    32,
		TokenLookup:    "header:" + CSRFHeader,
		ContextKey:     CSRFContextKey,
		CookieName:     CSRFCookie,
		CookiePath:     "/",
		CookieDomain:   cc.Domain,
		CookieSecure:   cc.Secure,
		CookieHTTPOnly: false,
		CookieSameSite: http.SameSiteLaxMode,
		CookieMaxAge:   86400,
		ErrorHandler: func(err error, c echo.Context) error {
			return respond(c, http.StatusForbidden, "CSRF_INVALID", "invalid csrf token")
		},
	})
}

// CSRFToken returns the token the middleware attached to the request.
func CSRFToken(c echo.Context) string {
	token, _ := c.Get(CSRFContextKey).(string)
	return token
}
