package exchange

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/skalibog/btla/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBinanceTestClient(t *testing.T, handler http.HandlerFunc) *BinanceClient {
	t.Helper()

	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	client, err := NewBinanceClient(config.BinanceConfig{})
	require.NoError(t, err)
	client.futures.BaseURL = ts.URL
	return client
}

func TestBinanceCandlesRowConversion(t *testing.T) {
	client := newBinanceTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/fapi/v1/klines", r.URL.Path)
		require.Equal(t, "ETHUSDT", r.URL.Query().Get("symbol"))
		require.Equal(t, "1m", r.URL.Query().Get("interval"))
		require.Equal(t, "2", r.URL.Query().Get("limit"))

		json.NewEncoder(w).Encode([]interface{}{
			[]interface{}{1700000000000, "100", "101", "99", "100.5", "10", 1700000059999, "1005", 42, "6", "603", "0"},
			[]interface{}{1700000060000, "100.5", "102", "100", "101", "12", 1700000119999, "1212", 50, "7", "707", "0"},
		})
	})

	rows, err := client.Candles(context.Background(), "ETHUSDT", "1m", 2)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// Строка приводится к [timestamp, open, high, low, close, volume, amount],
	// оборот берется из объема в котируемой валюте
	assert.Equal(t, []string{"1700000000000", "100", "101", "99", "100.5", "10", "1005"}, rows[0])
	assert.Equal(t, "1700000060000", rows[1][0])
	assert.Equal(t, "101", rows[1][4])
	assert.Equal(t, "1212", rows[1][6])
}

func TestBinanceCandlesAPIError(t *testing.T) {
	client := newBinanceTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"code": -1121,
			"msg":  "Invalid symbol.",
		})
	})

	_, err := client.Candles(context.Background(), "NOPEUSDT", "1m", 10)
	require.Error(t, err)
}

func TestBinanceLatestPrice(t *testing.T) {
	client := newBinanceTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]interface{}{
			[]interface{}{1700000000000, "2610", "2615", "2605", "2612.4", "10", 1700000059999, "26124", 42, "6", "15674", "0"},
		})
	})

	price, err := client.LatestPrice(context.Background(), "ETHUSDT")
	require.NoError(t, err)
	assert.InDelta(t, 2612.4, price, 1e-9)
}

func TestBinanceLatestPriceNoData(t *testing.T) {
	client := newBinanceTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]interface{}{})
	})

	_, err := client.LatestPrice(context.Background(), "ETHUSDT")
	require.Error(t, err)
}
