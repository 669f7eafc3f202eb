package jobs

import (
	"context"
	"testing"

	"stocktracker/store"
	"stocktracker/testutil"
)

func TestLedger_RecordThenHasRunToday(t *testing.T) {
	ledger := NewLedger(store.New(testutil.OpenTestDB(t)))
	ctx := context.Background()

	done, err := ledger.HasRunToday(ctx, CallKindQuote, "AAPL")
	if err != nil {
		t.Fatalf("HasRunToday: %v", err)
	}
	if done {
		t.Fatal("expected no run recorded yet")
	}

	if err := ledger.RecordRun(ctx, CallKindQuote, "AAPL"); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}

	done, err = ledger.HasRunToday(ctx, CallKindQuote, "AAPL")
	if err != nil {
		t.Fatalf("HasRunToday: %v", err)
	}
	if !done {
		t.Fatal("expected run to be recorded for today")
	}

	// Other tuples stay unaffected.
	for _, tc := range []struct{ kind, symbol string }{
		{CallKindQuote, "MSFT"},
		{"news", "AAPL"},
	} {
		done, err := ledger.HasRunToday(ctx, tc.kind, tc.symbol)
		if err != nil {
			t.Fatalf("HasRunToday(%s, %s): %v", tc.kind, tc.symbol, err)
		}
		if done {
			t.Fatalf("unexpected ledger hit for (%s, %s)", tc.kind, tc.symbol)
		}
	}
}

func TestLedger_CancelledContext(t *testing.T) {
	ledger := NewLedger(store.New(testutil.OpenTestDB(t)))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := ledger.HasRunToday(ctx, CallKindQuote, "AAPL"); err == nil {
		t.Fatal("expected error from cancelled context")
	}
}
