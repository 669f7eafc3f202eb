package jobs

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"stocktracker/providers"
	"stocktracker/store"
)

// IndicatorFetcher exposes the four macro-economic series the job tracks.
type IndicatorFetcher interface {
	FetchFederalFundsRate(ctx context.Context) ([]providers.IndicatorPoint, error)
	FetchTreasuryYield(ctx context.Context) ([]providers.IndicatorPoint, error)
	FetchCPI(ctx context.Context) ([]providers.IndicatorPoint, error)
	FetchUnemploymentRate(ctx context.Context) ([]providers.IndicatorPoint, error)
}

// IndicatorJobConfig tunes the indicator job's daily trigger.
type IndicatorJobConfig struct {
	TriggerHour   int // UTC
	TriggerMinute int
}

// IndicatorJob fetches the four indicator series once a day and merges each
// series' newest point into the event row for that point's date. Each fetch
// has its own error boundary; one failing series never affects the others.
type IndicatorJob struct {
	store  *store.Store
	client IndicatorFetcher
	cfg    IndicatorJobConfig

	mu      sync.Mutex
	lastRun time.Time
}

func NewIndicatorJob(s *store.Store, client IndicatorFetcher, cfg IndicatorJobConfig) *IndicatorJob {
	return &IndicatorJob{store: s, client: client, cfg: cfg}
}

// LastRun returns when the job last completed a run.
func (j *IndicatorJob) LastRun() time.Time {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.lastRun
}

// Run sleeps until each day's trigger instant, runs once, and repeats until
// ctx is cancelled.
func (j *IndicatorJob) Run(ctx context.Context) {
	log.Printf("Indicator job started, trigger %02d:%02d UTC", j.cfg.TriggerHour, j.cfg.TriggerMinute)
	for {
		next := nextDailyUTC(time.Now(), j.cfg.TriggerHour, j.cfg.TriggerMinute)
		if err := sleepUntil(ctx, next); err != nil {
			log.Println("Indicator job stopped")
			return
		}
		j.RunOnce(ctx)
		if ctx.Err() != nil {
			log.Println("Indicator job stopped")
			return
		}
		j.mu.Lock()
		j.lastRun = time.Now().UTC()
		j.mu.Unlock()
	}
}

// RunOnce performs the four indicator fetches sequentially.
func (j *IndicatorJob) RunOnce(ctx context.Context) {
	series := []struct {
		name   string
		column string
		fetch  func(context.Context) ([]providers.IndicatorPoint, error)
	}{
		{"federal funds rate", "federal_funds_rate", j.client.FetchFederalFundsRate},
		{"treasury yield", "treasury_yield", j.client.FetchTreasuryYield},
		{"CPI", "cpi", j.client.FetchCPI},
		{"unemployment rate", "unemployment_rate", j.client.FetchUnemploymentRate},
	}

	for _, s := range series {
		if ctx.Err() != nil {
			return
		}
		if err := j.ingestSeries(ctx, s.name, s.column, s.fetch); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			log.Printf("Indicator job: %s: %v", s.name, err)
		}
	}
}

// ingestSeries takes the most recent point of one series and sets only that
// series' column on the event row for the point's date. Sibling columns,
// possibly written by other series or earlier runs, are left untouched.
func (j *IndicatorJob) ingestSeries(ctx context.Context, name, column string, fetch func(context.Context) ([]providers.IndicatorPoint, error)) error {
	points, err := fetch(ctx)
	if err != nil {
		return err
	}

	latest := points[0]
	for _, p := range points[1:] {
		if p.Date.After(latest.Date) {
			latest = p
		}
	}

	event, err := j.store.FindOrCreateIndicatorEvent(ctx, utcDay(latest.Date))
	if err != nil {
		return err
	}
	if err := j.store.SetIndicatorField(ctx, event.ID, column, latest.Value); err != nil {
		return err
	}
	log.Printf("Indicator job: %s for %s = %v", name, latest.Date.Format("2006-01-02"), latest.Value)
	return nil
}
