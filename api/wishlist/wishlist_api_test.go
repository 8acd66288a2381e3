package wishlist_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront.GO/api/apitest"
	_ "storefront.GO/api/auth"
	_ "storefront.GO/api/wishlist"
	"storefront.GO/client/account"
	"storefront.GO/client/request"
)

func signedIn(t *testing.T) *account.Service {
	t.Helper()
	srv := apitest.Serve(t, apitest.NewDeps(t, 0))
	svc := account.New(apitest.Client(t, srv))
	_, err := svc.Login(context.Background(), apitest.Email, apitest.Password)
	require.NoError(t, err)
	return svc
}

func TestWishlist_AddListRemove(t *testing.T) {
	svc := signedIn(t)
	ctx := context.Background()

	item, err := svc.AddToWishlist(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, item.ProductID)
	assert.Equal(t, "Tobacco Vanille", item.Product.Name)

	_, err = svc.AddToWishlist(ctx, 2)
	require.NoError(t, err, "adding twice is not an error")

	items, err := svc.Wishlist(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, []int{3, 4}, items[0].Product.SeasonIDs)

	require.NoError(t, svc.RemoveFromWishlist(ctx, 2))
	items, err = svc.Wishlist(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestWishlist_UnknownProduct(t *testing.T) {
	svc := signedIn(t)

	_, err := svc.AddToWishlist(context.Background(), 99)
	assert.Equal(t, http.StatusNotFound, request.StatusOf(err))
}

func TestWishlist_RequiresSession(t *testing.T) {
	srv := apitest.Serve(t, apitest.NewDeps(t, 0))
	svc := account.New(apitest.Client(t, srv))

	_, err := svc.Wishlist(context.Background())
	assert.Equal(t, http.StatusUnauthorized, request.StatusOf(err))
}
