package providers

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Error kinds for classified provider failures. They are mutually exclusive:
// a response is checked for the rate-limit marker first, then the error
// marker, then payload shape; transport-level failures map to ErrTransientNetwork.
var (
	ErrRateLimited      = errors.New("provider rate limited")
	ErrInvalidResponse  = errors.New("invalid provider response")
	ErrTransientNetwork = errors.New("transient network failure")
)

// Quote is a canonical quote record decoded from the quote provider.
type Quote struct {
	Symbol     string
	Open       decimal.Decimal
	Price      decimal.Decimal
	Volume     int64
	TradingDay time.Time
}

// IndicatorPoint is one (date, value) observation from an indicator series.
type IndicatorPoint struct {
	Date  time.Time
	Value float64
}

// Article is a canonical news record decoded from the news provider.
type Article struct {
	Title       string
	URL         string
	PublishedAt time.Time
}
