package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"storefront.GO/api"
	coreAuth "storefront.GO/core/auth"
	entity "storefront.GO/model/entity"
	authRepo "storefront.GO/model/repository/auth"
	authService "storefront.GO/service/auth"
)

func init() {
	api.RegisterModule(RegisterAuthRoutes)
}

type CustomerDTO struct {
	ID        uint   `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

func toDTO(c *entity.Customer) CustomerDTO {
	return CustomerDTO{ID: c.CustomerID, Email: c.Email, FirstName: c.Firstname, LastName: c.Lastname}
}

type loginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func RegisterAuthRoutes(apiGroup *echo.Group, d *api.Deps) {
	g := apiGroup.Group("/auth")
	h := &handler{sessions: d.Sessions, cookies: d.Cookies, logger: d.Logger.Named("auth")}

	g.GET("/csrf", h.csrf)
	g.POST("/login", h.login)
	g.POST("/refresh", h.refresh)
	g.POST("/logout", h.logout)
	g.GET("/me", h.me)
}

type handler struct {
	sessions *authService.SessionService
	cookies  coreAuth.CookieConfig
	logger   *zap.Logger
}

// GET /api/auth/csrf – the middleware has already set the cookie.
func (h *handler) csrf(c echo.Context) error {
	return api.OK(c, http.StatusOK, echo.Map{"csrfToken": coreAuth.CSRFToken(c)})
}

// POST /api/auth/login
func (h *handler) login(c echo.Context) error {
	var body loginBody
	if err := c.Bind(&body); err != nil {
		return api.Fail(c, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
	}
	if strings.TrimSpace(body.Email) == "" || body.Password == "" {
		return api.Fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "email and password are required")
	}
	sess, err := h.sessions.Login(c.Request().Context(), body.Email, body.Password)
	if errors.Is(err, authService.ErrInvalidCredentials) {
		return api.Fail(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid email or password")
	}
	if err != nil {
		return err
	}
	h.cookies.SetSession(c, sess.Access, sess.AccessExpires, sess.Refresh, sess.RefreshExpires)
	h.logger.Info("customer signed in", zap.Uint("customer_id", sess.Customer.CustomerID))
	return api.OK(c, http.StatusOK, toDTO(sess.Customer))
}

// POST /api/auth/refresh – rotates the refresh cookie. Any failure clears the
// session cookies so the client stops retrying with them.
func (h *handler) refresh(c echo.Context) error {
	var token string
	if ck, err := c.Cookie(coreAuth.RefreshCookie); err == nil {
		token = ck.Value
	}
	sess, err := h.sessions.Refresh(c.Request().Context(), token)
	switch {
	case errors.Is(err, authService.ErrRefreshReused):
		h.cookies.ClearSession(c)
		return api.Fail(c, http.StatusUnauthorized, "TOKEN_REUSED", "session revoked")
	case errors.Is(err, authService.ErrRefreshInvalid):
		h.cookies.ClearSession(c)
		return api.Fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "session expired")
	case err != nil:
		return err
	}
	h.cookies.SetSession(c, sess.Access, sess.AccessExpires, sess.Refresh, sess.RefreshExpires)
	return api.OK(c, http.StatusOK, echo.Map{"expiresAt": sess.AccessExpires})
}

// POST /api/auth/logout
func (h *handler) logout(c echo.Context) error {
	if ck, err := c.Cookie(coreAuth.RefreshCookie); err == nil {
		if err := h.sessions.Logout(c.Request().Context(), ck.Value); err != nil {
			h.logger.Warn("revoke refresh token", zap.Error(err))
		}
	}
	h.cookies.ClearSession(c)
	return api.NoContent(c)
}

// GET /api/auth/me
func (h *handler) me(c echo.Context) error {
	id, ok := coreAuth.CustomerID(c)
	if !ok {
		return api.Fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
	}
	cust, err := h.sessions.Customer(c.Request().Context(), id)
	if errors.Is(err, authRepo.ErrNotFound) {
		return api.Fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
	}
	if err != nil {
		return err
	}
	return api.OK(c, http.StatusOK, toDTO(cust))
}
