package jobs

import (
	"context"
	"time"
)

// sleepCtx blocks for d or until ctx is cancelled, whichever comes first.
// Returns the context error on cancellation so callers can exit promptly.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// sleepUntil blocks until instant t (UTC) or until ctx is cancelled.
func sleepUntil(ctx context.Context, t time.Time) error {
	return sleepCtx(ctx, time.Until(t))
}

// withinWindow reports whether now falls inside the daily trigger window that
// opens at hour:minute UTC and stays open for tolerance.
func withinWindow(now time.Time, hour, minute int, tolerance time.Duration) bool {
	now = now.UTC()
	open := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, time.UTC)
	return !now.Before(open) && now.Before(open.Add(tolerance))
}

// nextDailyUTC returns the next occurrence of hour:minute UTC: today's if it
// is still ahead of now, otherwise tomorrow's.
func nextDailyUTC(now time.Time, hour, minute int) time.Time {
	now = now.UTC()
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, time.UTC)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// utcDay truncates t to its UTC calendar date.
func utcDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
