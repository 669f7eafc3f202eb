package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"stocktracker/providers"
)

// fakeQuotes serves canned quotes and records the time of every call.
type fakeQuotes struct {
	quotes    map[string]*providers.Quote
	failWith  map[string]error
	callTimes []time.Time
	calls     []string
}

func (f *fakeQuotes) FetchQuote(ctx context.Context, symbol string) (*providers.Quote, error) {
	f.callTimes = append(f.callTimes, time.Now())
	f.calls = append(f.calls, symbol)
	if err, ok := f.failWith[symbol]; ok {
		return nil, err
	}
	if q, ok := f.quotes[symbol]; ok {
		return q, nil
	}
	return nil, errors.New("no canned quote")
}

func testQuote(symbol string) *providers.Quote {
	return &providers.Quote{
		Symbol:     symbol,
		Open:       decimal.NewFromFloat(100.5),
		Price:      decimal.NewFromFloat(101.25),
		Volume:     123456,
		TradingDay: time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC),
	}
}

type fakeMarket struct {
	open bool
	err  error
}

func (f *fakeMarket) FetchMarketOpen(ctx context.Context) (bool, error) {
	return f.open, f.err
}

// fakeIndicators serves one canned point per series; a series listed in
// failWith errors instead.
type fakeIndicators struct {
	points   map[string][]providers.IndicatorPoint
	failWith map[string]error
}

func (f *fakeIndicators) fetch(series string) ([]providers.IndicatorPoint, error) {
	if err, ok := f.failWith[series]; ok {
		return nil, err
	}
	if pts, ok := f.points[series]; ok {
		return pts, nil
	}
	return nil, errors.New("no canned series")
}

func (f *fakeIndicators) FetchFederalFundsRate(ctx context.Context) ([]providers.IndicatorPoint, error) {
	return f.fetch("federal_funds_rate")
}

func (f *fakeIndicators) FetchTreasuryYield(ctx context.Context) ([]providers.IndicatorPoint, error) {
	return f.fetch("treasury_yield")
}

func (f *fakeIndicators) FetchCPI(ctx context.Context) ([]providers.IndicatorPoint, error) {
	return f.fetch("cpi")
}

func (f *fakeIndicators) FetchUnemploymentRate(ctx context.Context) ([]providers.IndicatorPoint, error) {
	return f.fetch("unemployment_rate")
}

type fakeNews struct {
	articles map[string][]providers.Article // keyed by query
	err      error
	calls    int
}

func (f *fakeNews) FetchNews(ctx context.Context, query string, from, to time.Time) ([]providers.Article, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.articles[query], nil
}
