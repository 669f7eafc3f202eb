package jobs

import (
	"context"
	"log"
	"time"

	"stocktracker/store"
)

// DefaultRetention is how long history and ledger rows are kept.
const DefaultRetention = 90 * 24 * time.Hour

// Sweeper deletes time-series rows older than the retention horizon. Both
// operations are idempotent and safe to run with nothing to delete. The
// cutoff is exclusive: a row aged exactly the retention horizon is retained.
type Sweeper struct {
	store     *store.Store
	retention time.Duration
}

func NewSweeper(s *store.Store, retention time.Duration) *Sweeper {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Sweeper{store: s, retention: retention}
}

// SweepStockHistory deletes quote history rows older than the horizon.
func (sw *Sweeper) SweepStockHistory(ctx context.Context) error {
	cutoff := time.Now().UTC().Add(-sw.retention)
	deleted, err := sw.store.DeleteStockHistoryBefore(ctx, cutoff)
	if err != nil {
		return err
	}
	if deleted > 0 {
		log.Printf("Sweeper: deleted %d stock history rows older than %s", deleted, cutoff.Format("2006-01-02"))
	}
	return nil
}

// SweepCallLogs deletes ledger rows older than the horizon.
func (sw *Sweeper) SweepCallLogs(ctx context.Context) error {
	cutoff := time.Now().UTC().Add(-sw.retention)
	deleted, err := sw.store.DeleteCallLogsBefore(ctx, cutoff)
	if err != nil {
		return err
	}
	if deleted > 0 {
		log.Printf("Sweeper: deleted %d call log rows older than %s", deleted, cutoff.Format("2006-01-02"))
	}
	return nil
}
