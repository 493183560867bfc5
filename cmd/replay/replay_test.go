package replay

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nntaoli-project/goex"
	"github.com/nntaoli-project/goex/binance"
	"github.com/shopspring/decimal"
	logrustest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

func setupMockBinanceServer() *httptest.Server {
	handler := http.NewServeMux()
	handler.HandleFunc("/api/v3/klines", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		// Sample JSON response directly from Binance API documentation or captured API responses
		_, err := w.Write([]byte(`[
			[1499040000000, "50000.00", "50500.00", "49500.00", "50200.00", "148976.11427815", 1499644799999, "2434.19055334", 308, "1756.87402397", "28.46694368", "17928899.62484339"]
		]`))
		if err != nil {
			return
		}
	})
	return httptest.NewServer(handler)
}

func TestReplay_fetchPriceSeries(t *testing.T) {
	server := setupMockBinanceServer()
	defer server.Close()

	// Redirect API calls to the mock server
	apiConfig := &goex.APIConfig{
		HttpClient: http.DefaultClient,
		Endpoint:   server.URL, // Use mock server URL
	}

	log, _ := logrustest.NewNullLogger()
	r := Replay{
		Log: log.WithField("cmd", "replay"),
		Config: &Config{
			Symbol:      "BTC",
			Quote:       "USDT",
			StartDt:     time.Now().Add(-24 * time.Hour),
			EndDt:       time.Now(),
			DurationStr: Duration1h,
			Limit:       1000,
		},
		exchange: binance.NewWithConfig(apiConfig),
	}

	prices, err := r.fetchPriceSeries()
	require.NoError(t, err)
	require.Len(t, prices, 4, "one candle flattens to open, high, low and close ticks")
	require.True(t, prices[0].Equal(decimal.RequireFromString("50000")))
	require.True(t, prices[1].Equal(decimal.RequireFromString("50500")))
	require.True(t, prices[2].Equal(decimal.RequireFromString("49500")))
	require.True(t, prices[3].Equal(decimal.RequireFromString("50200")))
}

func TestReplay_parseDurationToGoex(t *testing.T) {
	tests := []struct {
		durationStr string
		expected    goex.KlinePeriod
		shouldPanic bool
	}{
		{"1m", goex.KLINE_PERIOD_1MIN, false},
		{"1h", goex.KLINE_PERIOD_1H, false},
		{"invalid", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.durationStr, func(t *testing.T) {
			r := Replay{Config: &Config{DurationStr: tt.durationStr}}

			if tt.shouldPanic {
				require.Panics(t, func() { _ = r.parseDurationToGoex() })
			} else {
				require.Equal(t, tt.expected, r.parseDurationToGoex())
			}
		})
	}
}
