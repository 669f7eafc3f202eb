package alphavantage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stocktracker/providers"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(Config{APIKey: "test-key", BaseURL: server.URL})
}

func TestFetchQuote(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GLOBAL_QUOTE", r.URL.Query().Get("function"))
		assert.Equal(t, "AAPL", r.URL.Query().Get("symbol"))
		assert.Equal(t, "test-key", r.URL.Query().Get("apikey"))
		w.Write([]byte(`{
			"Global Quote": {
				"01. symbol": "AAPL",
				"02. open": "230.10",
				"03. high": "233.00",
				"04. low": "229.50",
				"05. price": "232.80",
				"06. volume": "51234567",
				"07. latest trading day": "2026-08-28"
			}
		}`))
	})

	quote, err := client.FetchQuote(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", quote.Symbol)
	assert.True(t, quote.Open.Equal(decimal.NewFromFloat(230.10)), "open = %s", quote.Open)
	assert.True(t, quote.Price.Equal(decimal.NewFromFloat(232.80)), "price = %s", quote.Price)
	assert.Equal(t, int64(51234567), quote.Volume)
	assert.Equal(t, time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC), quote.TradingDay)
}

func TestFetchQuote_RateLimited(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Note": "Thank you for using Alpha Vantage! Our standard API rate limit is 25 requests per day."}`))
	})

	_, err := client.FetchQuote(context.Background(), "AAPL")
	assert.ErrorIs(t, err, providers.ErrRateLimited)
}

func TestFetchQuote_RateLimitMarkerWinsOverErrorMarker(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Note": "rate limit", "Error Message": "also an error"}`))
	})

	_, err := client.FetchQuote(context.Background(), "AAPL")
	assert.ErrorIs(t, err, providers.ErrRateLimited)
}

func TestFetchQuote_ErrorMarker(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Error Message": "Invalid API call."}`))
	})

	_, err := client.FetchQuote(context.Background(), "NOPE")
	assert.ErrorIs(t, err, providers.ErrInvalidResponse)
}

func TestFetchQuote_MissingPayload(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})

	_, err := client.FetchQuote(context.Background(), "AAPL")
	assert.ErrorIs(t, err, providers.ErrInvalidResponse)
}

func TestFetchQuote_PlaceholderPayload(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"Global Quote": {
				"01. symbol": "AAPL",
				"02. open": "0",
				"05. price": "0.0000",
				"06. volume": "0",
				"07. latest trading day": "0001-01-01"
			}
		}`))
	})

	_, err := client.FetchQuote(context.Background(), "AAPL")
	assert.ErrorIs(t, err, providers.ErrInvalidResponse)
}

func TestFetchQuote_ServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.FetchQuote(context.Background(), "AAPL")
	assert.ErrorIs(t, err, providers.ErrTransientNetwork)
}

func TestFetchQuote_CancelledContext(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.FetchQuote(ctx, "AAPL")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFetchSeries(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "FEDERAL_FUNDS_RATE", r.URL.Query().Get("function"))
		w.Write([]byte(`{
			"name": "Effective Federal Funds Rate",
			"interval": "monthly",
			"unit": "percent",
			"data": [
				{"date": "2026-08-01", "value": "4.33"},
				{"date": "2026-07-01", "value": "."},
				{"date": "2026-06-01", "value": "4.25"}
			]
		}`))
	})

	points, err := client.FetchFederalFundsRate(context.Background())
	require.NoError(t, err)
	require.Len(t, points, 2, "placeholder observations should be dropped")
	assert.Equal(t, 4.33, points[0].Value)
	assert.Equal(t, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), points[0].Date)
}

func TestFetchSeries_RateLimited(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Note": "rate limit"}`))
	})

	_, err := client.FetchCPI(context.Background())
	assert.ErrorIs(t, err, providers.ErrRateLimited)
}

func TestFetchSeries_EmptySeries(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"name": "CPI", "data": []}`))
	})

	_, err := client.FetchCPI(context.Background())
	assert.ErrorIs(t, err, providers.ErrInvalidResponse)
}
