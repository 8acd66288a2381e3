package currency

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront.GO/client/gateway"
	"storefront.GO/client/request"
	"storefront.GO/core/cache"
)

func snapshot(fee int64) *Snapshot {
	return &Snapshot{
		Canonical:  "TRY",
		Rates:      map[string]decimal.Decimal{"USD": decimal.NewFromInt(5), "EUR": decimal.NewFromInt(6)},
		FeePercent: decimal.NewFromInt(fee),
	}
}

func TestToCanonical(t *testing.T) {
	got, ok := ToCanonical("100", "USD", snapshot(0))
	require.True(t, ok)
	assert.True(t, got.Equal(decimal.NewFromInt(500)), got.String())

	got, ok = ToCanonical("100", "usd", snapshot(10))
	require.True(t, ok)
	assert.InDelta(t, 454.55, got.InexactFloat64(), 0.005)
	assert.Equal(t, "454.5455", FormatAmount(got))
}

func TestToCanonical_PassThrough(t *testing.T) {
	tests := []struct {
		name    string
		display string
		snap    *Snapshot
	}{
		{"canonical currency", "TRY", snapshot(10)},
		{"no snapshot", "USD", nil},
		{"unknown rate", "GBP", snapshot(10)},
		{"no display currency", "", snapshot(10)},
		{"fee cancels the price", "USD", snapshot(-100)},
		{"fee below -100%", "USD", snapshot(-150)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ToCanonical("42.5", tt.display, tt.snap)
			require.True(t, ok)
			assert.Equal(t, "42.5", got.String())
		})
	}
}

func TestToCanonical_UnparsableIsNoFilter(t *testing.T) {
	for _, entered := range []string{"", "  ", "abc", "12,5"} {
		_, ok := ToCanonical(entered, "USD", snapshot(0))
		assert.False(t, ok, entered)
	}
}

func TestToDisplay_InvertsToCanonical(t *testing.T) {
	snap := snapshot(10)
	canonical, ok := ToCanonical("100", "EUR", snap)
	require.True(t, ok)
	back := ToDisplay(canonical, "EUR", snap)
	assert.InDelta(t, 100, back.InexactFloat64(), 1e-9)

	assert.True(t, ToDisplay(decimal.NewFromInt(7), "TRY", snap).Equal(decimal.NewFromInt(7)))
	assert.NotPanics(t, func() {
		assert.Equal(t, "7", ToDisplay(decimal.NewFromInt(7), "USD", snapshot(-100)).String())
	})
}

func TestRateClient_CachesSnapshot(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "/api/exchange-rates", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"base":"TRY","rates":{"USD":"5","EUR":6.25},"feePercent":10}}`))
	}))
	defer srv.Close()

	gw, err := gateway.New(gateway.Config{BaseURL: srv.URL})
	require.NoError(t, err)
	rates := NewRateClient(request.New(gw, nil), cache.NewCache(), 0)

	snap, err := rates.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "TRY", snap.Canonical)
	rate, ok := snap.Rate("EUR")
	require.True(t, ok)
	assert.Equal(t, "6.25", rate.String())
	assert.False(t, snap.FetchedAt.IsZero())

	_, err = rates.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load())

	rates.Invalidate()
	_, err = rates.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load())
}
