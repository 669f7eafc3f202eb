package alphavantage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"stocktracker/providers"
)

const DefaultBaseURL = "https://www.alphavantage.co/query"

// Config holds the client settings. The API key is passed in explicitly;
// there is no ambient lookup.
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// Client fetches quotes and economic-indicator series from the
// Alpha Vantage API.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// globalQuoteResponse mirrors the GLOBAL_QUOTE payload. Note and
// Error Message appear at the top level on failure paths instead of the
// quote object.
type globalQuoteResponse struct {
	GlobalQuote struct {
		Symbol           string `json:"01. symbol"`
		Open             string `json:"02. open"`
		High             string `json:"03. high"`
		Low              string `json:"04. low"`
		Price            string `json:"05. price"`
		Volume           string `json:"06. volume"`
		LatestTradingDay string `json:"07. latest trading day"`
	} `json:"Global Quote"`
	Note         string `json:"Note"`
	ErrorMessage string `json:"Error Message"`
}

// FetchQuote fetches the current quote for one symbol.
func (c *Client) FetchQuote(ctx context.Context, symbol string) (*providers.Quote, error) {
	body, err := c.get(ctx, url.Values{
		"function": {"GLOBAL_QUOTE"},
		"symbol":   {symbol},
	})
	if err != nil {
		return nil, err
	}

	var resp globalQuoteResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: decode quote: %v", providers.ErrInvalidResponse, err)
	}
	if resp.Note != "" {
		return nil, fmt.Errorf("%w: %s", providers.ErrRateLimited, resp.Note)
	}
	if resp.ErrorMessage != "" {
		return nil, fmt.Errorf("%w: %s", providers.ErrInvalidResponse, resp.ErrorMessage)
	}

	q := resp.GlobalQuote
	if q.Symbol == "" {
		return nil, fmt.Errorf("%w: missing quote payload for %s", providers.ErrInvalidResponse, symbol)
	}
	open, err := decimal.NewFromString(q.Open)
	if err != nil {
		return nil, fmt.Errorf("%w: bad open %q", providers.ErrInvalidResponse, q.Open)
	}
	price, err := decimal.NewFromString(q.Price)
	if err != nil {
		return nil, fmt.Errorf("%w: bad price %q", providers.ErrInvalidResponse, q.Price)
	}
	volume, err := strconv.ParseInt(q.Volume, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: bad volume %q", providers.ErrInvalidResponse, q.Volume)
	}
	tradingDay, err := time.Parse("2006-01-02", q.LatestTradingDay)
	if err != nil {
		return nil, fmt.Errorf("%w: bad trading day %q", providers.ErrInvalidResponse, q.LatestTradingDay)
	}
	// All-zero placeholder payloads alongside a default date slip through the
	// shape check; treat them as invalid too.
	if open.IsZero() && price.IsZero() && volume == 0 && tradingDay.IsZero() {
		return nil, fmt.Errorf("%w: placeholder quote for %s", providers.ErrInvalidResponse, symbol)
	}

	return &providers.Quote{
		Symbol:     q.Symbol,
		Open:       open,
		Price:      price,
		Volume:     volume,
		TradingDay: tradingDay,
	}, nil
}

// get performs one API request and returns the raw body. Non-2xx statuses
// and transport errors map to ErrTransientNetwork.
func (c *Client) get(ctx context.Context, params url.Values) ([]byte, error) {
	params.Set("apikey", c.cfg.APIKey)
	reqURL := c.cfg.BaseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", providers.ErrTransientNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", providers.ErrTransientNetwork, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", providers.ErrTransientNetwork, err)
	}
	return body, nil
}
