package alphavantage

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"stocktracker/providers"
)

// economicResponse mirrors the shared shape of the economic-indicator
// endpoints: a named series of {date, value} string pairs.
type economicResponse struct {
	Name         string          `json:"name"`
	Interval     string          `json:"interval"`
	Unit         string          `json:"unit"`
	Data         []economicPoint `json:"data"`
	Note         string          `json:"Note"`
	ErrorMessage string          `json:"Error Message"`
}

type economicPoint struct {
	Date  string `json:"date"`
	Value string `json:"value"`
}

// FetchFederalFundsRate returns the federal funds rate series, newest first.
func (c *Client) FetchFederalFundsRate(ctx context.Context) ([]providers.IndicatorPoint, error) {
	return c.fetchSeries(ctx, "FEDERAL_FUNDS_RATE")
}

// FetchTreasuryYield returns the 10-year treasury yield series, newest first.
func (c *Client) FetchTreasuryYield(ctx context.Context) ([]providers.IndicatorPoint, error) {
	return c.fetchSeries(ctx, "TREASURY_YIELD")
}

// FetchCPI returns the consumer price index series, newest first.
func (c *Client) FetchCPI(ctx context.Context) ([]providers.IndicatorPoint, error) {
	return c.fetchSeries(ctx, "CPI")
}

// FetchUnemploymentRate returns the unemployment rate series, newest first.
func (c *Client) FetchUnemploymentRate(ctx context.Context) ([]providers.IndicatorPoint, error) {
	return c.fetchSeries(ctx, "UNEMPLOYMENT")
}

func (c *Client) fetchSeries(ctx context.Context, function string) ([]providers.IndicatorPoint, error) {
	body, err := c.get(ctx, url.Values{"function": {function}})
	if err != nil {
		return nil, err
	}

	var resp economicResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", providers.ErrInvalidResponse, function, err)
	}
	if resp.Note != "" {
		return nil, fmt.Errorf("%w: %s", providers.ErrRateLimited, resp.Note)
	}
	if resp.ErrorMessage != "" {
		return nil, fmt.Errorf("%w: %s", providers.ErrInvalidResponse, resp.ErrorMessage)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("%w: empty %s series", providers.ErrInvalidResponse, function)
	}

	points := make([]providers.IndicatorPoint, 0, len(resp.Data))
	for _, p := range resp.Data {
		// "." is the provider's placeholder for a missing observation.
		if p.Value == "." {
			continue
		}
		date, err := time.Parse("2006-01-02", p.Date)
		if err != nil {
			return nil, fmt.Errorf("%w: bad date %q in %s", providers.ErrInvalidResponse, p.Date, function)
		}
		value, err := strconv.ParseFloat(p.Value, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad value %q in %s", providers.ErrInvalidResponse, p.Value, function)
		}
		points = append(points, providers.IndicatorPoint{Date: date, Value: value})
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: no usable points in %s series", providers.ErrInvalidResponse, function)
	}
	return points, nil
}
