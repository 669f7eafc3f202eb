package jobs

import (
	"context"
	"time"

	"stocktracker/models"
	"stocktracker/store"
)

// Call kinds recorded in the ledger.
const (
	CallKindQuote = "quote"
)

// Ledger is the persisted idempotency guard: it remembers that a provider
// call of a given kind was already attempted for a symbol on a calendar day,
// so the same paid call is never repeated after a restart. The guard is
// best-effort; it is not transactionally linked to the fetch it protects.
type Ledger struct {
	store *store.Store
}

func NewLedger(s *store.Store) *Ledger {
	return &Ledger{store: s}
}

// HasRunToday reports whether a call of this kind was already recorded for
// the symbol on the current UTC calendar date.
func (l *Ledger) HasRunToday(ctx context.Context, kind, symbol string) (bool, error) {
	return l.store.HasCallLog(ctx, kind, symbol, utcDay(time.Now()))
}

// RecordRun persists one ledger row for (kind, symbol, today).
func (l *Ledger) RecordRun(ctx context.Context, kind, symbol string) error {
	return l.store.InsertCallLog(ctx, &models.APICallLog{
		Kind:   kind,
		Symbol: symbol,
		Day:    utcDay(time.Now()),
	})
}
