package finnhub

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"stocktracker/providers"
)

const DefaultBaseURL = "https://finnhub.io/api/v1"

// Config holds the market-status client settings.
type Config struct {
	APIKey   string
	BaseURL  string
	Exchange string
	Timeout  time.Duration
}

// Client answers "is the exchange currently in session" from the Finnhub
// market-status endpoint.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Exchange == "" {
		cfg.Exchange = "US"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

type marketStatusResponse struct {
	Exchange string `json:"exchange"`
	IsOpen   bool   `json:"isOpen"`
	Session  string `json:"session"`
	Time     int64  `json:"t"`
}

// FetchMarketOpen reports whether the configured exchange is open right now.
func (c *Client) FetchMarketOpen(ctx context.Context) (bool, error) {
	params := url.Values{
		"exchange": {c.cfg.Exchange},
		"token":    {c.cfg.APIKey},
	}
	reqURL := c.cfg.BaseURL + "/stock/market-status?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return false, fmt.Errorf("build request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		return false, fmt.Errorf("%w: %v", providers.ErrTransientNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return false, fmt.Errorf("%w: status %d", providers.ErrTransientNetwork, resp.StatusCode)
	}

	var status marketStatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return false, fmt.Errorf("%w: decode market status: %v", providers.ErrInvalidResponse, err)
	}
	if status.Exchange == "" {
		return false, fmt.Errorf("%w: missing exchange in market status", providers.ErrInvalidResponse)
	}
	return status.IsOpen, nil
}
