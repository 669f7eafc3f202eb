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

// NewsFetcher fetches articles matching a query inside a time range.
type NewsFetcher interface {
	FetchNews(ctx context.Context, query string, from, to time.Time) ([]providers.Article, error)
}

// NewsJobConfig tunes the news job's daily trigger.
type NewsJobConfig struct {
	TriggerHour   int // UTC
	TriggerMinute int
	Lookback      time.Duration
}

// NewsJob fetches news for each tracked symbol once a day, attaching
// articles to the symbol's stock snapshot and deduplicating by source URL.
type NewsJob struct {
	store  *store.Store
	client NewsFetcher
	cfg    NewsJobConfig

	mu      sync.Mutex
	lastRun time.Time
}

func NewNewsJob(s *store.Store, client NewsFetcher, cfg NewsJobConfig) *NewsJob {
	if cfg.Lookback <= 0 {
		cfg.Lookback = 24 * time.Hour
	}
	return &NewsJob{store: s, client: client, cfg: cfg}
}

// LastRun returns when the job last completed a run.
func (j *NewsJob) LastRun() time.Time {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.lastRun
}

// Run sleeps until each day's trigger instant, runs once, and repeats until
// ctx is cancelled.
func (j *NewsJob) Run(ctx context.Context) {
	log.Printf("News job started, trigger %02d:%02d UTC", j.cfg.TriggerHour, j.cfg.TriggerMinute)
	for {
		next := nextDailyUTC(time.Now(), j.cfg.TriggerHour, j.cfg.TriggerMinute)
		if err := sleepUntil(ctx, next); err != nil {
			log.Println("News job stopped")
			return
		}
		j.RunOnce(ctx)
		if ctx.Err() != nil {
			log.Println("News job stopped")
			return
		}
		j.mu.Lock()
		j.lastRun = time.Now().UTC()
		j.mu.Unlock()
	}
}

// RunOnce fetches news for every tracked symbol. Per-symbol failures are
// logged and the loop moves on.
func (j *NewsJob) RunOnce(ctx context.Context) {
	symbols, err := j.store.ListTrackedSymbols(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		log.Printf("News job: listing tracked symbols failed: %v", err)
		return
	}

	for _, sym := range symbols {
		if ctx.Err() != nil {
			return
		}
		if err := j.fetchForSymbol(ctx, sym); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			log.Printf("News job: %s: %v", sym.Symbol, err)
		}
	}
}

func (j *NewsJob) fetchForSymbol(ctx context.Context, sym models.TrackedSymbol) error {
	// Articles attach to the stock snapshot, so a symbol that has never had
	// a successful quote fetch cannot take news yet.
	stock, err := j.store.FindStockByTrackedSymbol(ctx, sym.ID)
	if err != nil {
		return err
	}
	if stock == nil {
		log.Printf("News job: no stock snapshot for %s yet, skipping", sym.Symbol)
		return nil
	}

	now := time.Now().UTC()
	articles, err := j.client.FetchNews(ctx, sym.Name, now.Add(-j.cfg.Lookback), now)
	if err != nil {
		return err
	}

	inserted := 0
	for _, a := range articles {
		exists, err := j.store.MarketNewsExists(ctx, stock.ID, a.URL)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		err = j.store.InsertMarketNews(ctx, &models.MarketNews{
			StockID:     stock.ID,
			Title:       a.Title,
			URL:         a.URL,
			PublishedAt: a.PublishedAt,
		})
		if err != nil {
			return err
		}
		inserted++
	}
	if inserted > 0 {
		log.Printf("News job: stored %d new articles for %s", inserted, sym.Symbol)
	}
	return nil
}
