package auth_test

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront.GO/api/apitest"
	_ "storefront.GO/api/auth"
	"storefront.GO/client/account"
	"storefront.GO/client/gateway"
	"storefront.GO/client/request"
)

func TestLoginMeLogout(t *testing.T) {
	srv := apitest.Serve(t, apitest.NewDeps(t, 0))
	c := apitest.Client(t, srv)
	svc := account.New(c)
	ctx := context.Background()

	_, err := svc.Me(ctx)
	assert.Equal(t, http.StatusUnauthorized, request.StatusOf(err))

	me, err := svc.Login(ctx, apitest.Email, apitest.Password)
	require.NoError(t, err)
	assert.Equal(t, "Ada", me.FirstName)

	me, err = svc.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, apitest.Email, me.Email)

	require.NoError(t, svc.Logout(ctx))
	_, err = svc.Me(ctx)
	assert.Equal(t, http.StatusUnauthorized, request.StatusOf(err))
}

func TestLogin_WrongPassword(t *testing.T) {
	srv := apitest.Serve(t, apitest.NewDeps(t, 0))
	svc := account.New(apitest.Client(t, srv))

	_, err := svc.Login(context.Background(), apitest.Email, "wrong")
	assert.Equal(t, http.StatusUnauthorized, request.StatusOf(err))
	assert.Equal(t, "INVALID_CREDENTIALS", request.CodeOf(err))
}

func TestLogin_RequiresCSRFHeader(t *testing.T) {
	srv := apitest.Serve(t, apitest.NewDeps(t, 0))

	resp, err := http.Post(srv.URL+"/api/auth/login", "application/json",
		strings.NewReader(`{"email":"ada@example.com","password":"correct horse"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestExpiredAccessIsRenewedTransparently(t *testing.T) {
	srv := apitest.Serve(t, apitest.NewDeps(t, time.Second))
	c := apitest.Client(t, srv)
	svc := account.New(c)
	ctx := context.Background()

	var events []gateway.Event
	c.Gateway().OnUnauthorized(func(e gateway.Event) { events = append(events, e) })

	_, err := svc.Login(ctx, apitest.Email, apitest.Password)
	require.NoError(t, err)
	time.Sleep(1100 * time.Millisecond)

	me, err := svc.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, apitest.Email, me.Email)
	assert.Empty(t, events)
}

func TestRenewalWithoutSessionNotifies(t *testing.T) {
	srv := apitest.Serve(t, apitest.NewDeps(t, 0))
	c := apitest.Client(t, srv)

	var events []gateway.Event
	c.Gateway().OnUnauthorized(func(e gateway.Event) { events = append(events, e) })

	_, err := account.New(c).Me(context.Background())
	assert.Equal(t, http.StatusUnauthorized, request.StatusOf(err))
	require.Len(t, events, 1)
	assert.Equal(t, http.StatusUnauthorized, events[0].Status)
}
