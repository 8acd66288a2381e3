package auth

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

const (
	AccessCookie  = "access_token"
	RefreshCookie = "refresh_token"
	CSRFCookie    = "csrf_token"
	CSRFHeader    = "X-CSRF-Token"

	// refreshCookiePath limits the refresh token to the auth endpoints.
	refreshCookiePath = "/api/auth"
)

// CookieConfig controls the attributes of the session cookies.
type CookieConfig struct {
	Secure bool
	Domain string
}

// SetSession writes the access and refresh cookies.
func (cc CookieConfig) SetSession(c echo.Context, access string, accessExp time.Time, refresh string, refreshExp time.Time) {
	c.SetCookie(cc.cookie(AccessCookie, access, "/", accessExp))
	c.SetCookie(cc.cookie(RefreshCookie, refresh, refreshCookiePath, refreshExp))
}

// ClearSession expires the access and refresh cookies.
func (cc CookieConfig) ClearSession(c echo.Context) {
	for name, path := range map[string]string{AccessCookie: "/", RefreshCookie: refreshCookiePath} {
		ck := cc.cookie(name, "", path, time.Unix(0, 0))
		ck.MaxAge = -1
		c.SetCookie(ck)
	}
}

func (cc CookieConfig) cookie(name, value, path string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		Domain:   cc.Domain,
		Expires:  expires,
		Secure:   cc.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}
