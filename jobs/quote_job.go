package jobs

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"stocktracker/models"
	"stocktracker/providers"
	"stocktracker/store"
)

// QuoteFetcher fetches the current quote for one symbol.
type QuoteFetcher interface {
	FetchQuote(ctx context.Context, symbol string) (*providers.Quote, error)
}

// MarketStatusFetcher reports whether the exchange is currently in session.
type MarketStatusFetcher interface {
	FetchMarketOpen(ctx context.Context) (bool, error)
}

// QuoteJobConfig tunes the quote job's scheduling. Zero values fall back to
// production defaults.
type QuoteJobConfig struct {
	WindowHour      int           // daily trigger window open, UTC
	WindowMinute    int
	WindowTolerance time.Duration // how long the window stays open
	Tick            time.Duration // polling interval while outside the window
	FetchDelay      time.Duration // pause between consecutive provider calls
	LongSleep       time.Duration // pause after a completed window run
	MaxFetches      int           // hard cap on fetches per window
}

func (c *QuoteJobConfig) applyDefaults() {
	if c.WindowTolerance <= 0 {
		c.WindowTolerance = 2 * time.Minute
	}
	if c.Tick <= 0 {
		c.Tick = time.Minute
	}
	if c.FetchDelay <= 0 {
		c.FetchDelay = 15 * time.Second
	}
	if c.LongSleep <= 0 {
		c.LongSleep = 23 * time.Hour
	}
	if c.MaxFetches <= 0 {
		c.MaxFetches = 20
	}
}

// QuoteJob pulls quotes for all tracked symbols once per daily trigger
// window, but only while the market is closed. Fetches are strictly
// sequential, ledger-gated, and capped per window.
type QuoteJob struct {
	store   *store.Store
	quotes  QuoteFetcher
	market  MarketStatusFetcher
	ledger  *Ledger
	sweeper *Sweeper
	cfg     QuoteJobConfig

	mu      sync.Mutex
	lastRun time.Time
}

func NewQuoteJob(s *store.Store, quotes QuoteFetcher, market MarketStatusFetcher, ledger *Ledger, sweeper *Sweeper, cfg QuoteJobConfig) *QuoteJob {
	cfg.applyDefaults()
	return &QuoteJob{
		store:   s,
		quotes:  quotes,
		market:  market,
		ledger:  ledger,
		sweeper: sweeper,
		cfg:     cfg,
	}
}

// LastRun returns when the job last completed a window run.
func (j *QuoteJob) LastRun() time.Time {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.lastRun
}

// Run ticks until ctx is cancelled. Inside the trigger window it performs at
// most one run, then sleeps long enough to skip the rest of the day.
func (j *QuoteJob) Run(ctx context.Context) {
	log.Printf("Quote job started, window %02d:%02d UTC", j.cfg.WindowHour, j.cfg.WindowMinute)
	for {
		if !withinWindow(time.Now(), j.cfg.WindowHour, j.cfg.WindowMinute, j.cfg.WindowTolerance) {
			if err := sleepCtx(ctx, j.cfg.Tick); err != nil {
				log.Println("Quote job stopped")
				return
			}
			continue
		}

		j.runWindow(ctx)
		if ctx.Err() != nil {
			log.Println("Quote job stopped")
			return
		}

		j.mu.Lock()
		j.lastRun = time.Now().UTC()
		j.mu.Unlock()

		if err := sleepCtx(ctx, j.cfg.LongSleep); err != nil {
			log.Println("Quote job stopped")
			return
		}
	}
}

// runWindow executes one trigger-window pass: sweep, market check, then the
// capped sequential fetch loop.
func (j *QuoteJob) runWindow(ctx context.Context) {
	// Retention sweeps ride along with the daily window for scheduling
	// convenience; their failures never block the fetch pass.
	if err := j.sweeper.SweepStockHistory(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		log.Printf("Quote job: history sweep failed: %v", err)
	}
	if err := j.sweeper.SweepCallLogs(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		log.Printf("Quote job: call log sweep failed: %v", err)
	}

	open, err := j.market.FetchMarketOpen(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		log.Printf("Quote job: market status check failed, skipping window: %v", err)
		return
	}
	if open {
		log.Println("Quote job: market is open, skipping fetches this window")
		return
	}

	symbols, err := j.store.ListTrackedSymbols(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		log.Printf("Quote job: listing tracked symbols failed: %v", err)
		return
	}

	fetched := 0
	for _, sym := range symbols {
		if ctx.Err() != nil {
			return
		}
		if fetched >= j.cfg.MaxFetches {
			log.Printf("Quote job: fetch cap %d reached, deferring remaining symbols", j.cfg.MaxFetches)
			break
		}

		done, err := j.ledger.HasRunToday(ctx, CallKindQuote, sym.Symbol)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			log.Printf("Quote job: ledger check for %s failed: %v", sym.Symbol, err)
			continue
		}
		if done {
			continue
		}

		if fetched > 0 {
			if err := sleepCtx(ctx, j.cfg.FetchDelay); err != nil {
				return
			}
		}
		fetched++

		if err := j.fetchOne(ctx, sym); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			log.Printf("Quote job: %s: %v", sym.Symbol, err)
		}
	}
	log.Printf("Quote job: window run complete, %d fetches", fetched)
}

// fetchOne performs the fetch → upsert → history → ledger sequence for one
// symbol. A ledger write failure is logged but not fatal: the guard is a
// cost-control measure, not a correctness guarantee.
func (j *QuoteJob) fetchOne(ctx context.Context, sym models.TrackedSymbol) error {
	quote, err := j.quotes.FetchQuote(ctx, sym.Symbol)
	if err != nil {
		return err
	}

	stock, err := j.store.UpsertStock(ctx, &models.Stock{
		TrackedSymbolID: sym.ID,
		Open:            quote.Open,
		Price:           quote.Price,
		Volume:          quote.Volume,
		LastUpdated:     time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	err = j.store.InsertStockHistory(ctx, &models.StockHistory{
		StockID: stock.ID,
		Date:    quote.TradingDay,
		Open:    quote.Open,
		Close:   quote.Price,
		Volume:  quote.Volume,
	})
	if err != nil {
		return err
	}

	if err := j.ledger.RecordRun(ctx, CallKindQuote, sym.Symbol); err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		log.Printf("Quote job: recording ledger entry for %s failed: %v", sym.Symbol, err)
	}
	return nil
}
