package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestRegistry_Register_Apply(t *testing.T) {
	RegisterGET("/test/registry/check", func(c echo.Context) error {
		return OK(c, http.StatusOK, map[string]string{"status": "ok"})
	})

	e := echo.New()
	ApplyRoutes(e, nil)

	req := httptest.NewRequest(http.MethodGet, "/test/registry/check", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":{"status":"ok"}}`, rec.Body.String())
	assert.Panics(t, func() { RegisterGET("/late", nil) })
}

func TestHTTPErrorHandler_Envelope(t *testing.T) {
	e := echo.New()
	e.HTTPErrorHandler = HTTPErrorHandler(zap.NewNop())
	e.GET("/boom", func(c echo.Context) error { return assert.AnError })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":{"message":"Not Found","code":"NOT_FOUND"}}`, rec.Body.String())

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":{"message":"internal server error","code":"INTERNAL"}}`, rec.Body.String())
}
