package inventory

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func newTestLedger(t *testing.T, sku string, onHand int) *Ledger {
	t.Helper()
	ledger := NewLedger(WithClock(func() time.Time {
		return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	}))
	if _, err := ledger.Track(sku, "prod-1", onHand); err != nil {
		t.Fatalf("track %s: %v", sku, err)
	}
	return ledger
}

func assertCounters(t *testing.T, stock Stock, onHand, reserved int) {
	t.Helper()
	if stock.OnHand != onHand || stock.Reserved != reserved {
		t.Fatalf("expected onHand=%d reserved=%d, got onHand=%d reserved=%d",
			onHand, reserved, stock.OnHand, stock.Reserved)
	}
	if stock.Available != stock.OnHand-stock.Reserved {
		t.Fatalf("available %d does not equal onHand-reserved %d", stock.Available, stock.OnHand-stock.Reserved)
	}
	if stock.OnHand < stock.Reserved || stock.Reserved < 0 {
		t.Fatalf("conservation violated: onHand=%d reserved=%d", stock.OnHand, stock.Reserved)
	}
}

func TestLedgerReserveDecrementsAvailability(t *testing.T) {
	ledger := newTestLedger(t, "SKU-1", 50)

	stock, err := ledger.Reserve("SKU-1", 1)
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	assertCounters(t, stock, 50, 1)
	if stock.Available != 49 {
		t.Fatalf("expected available 49, got %d", stock.Available)
	}
}

func TestLedgerReserveFailsWhenInsufficient(t *testing.T) {
	ledger := newTestLedger(t, "SKU-1", 2)

	if _, err := ledger.Reserve("SKU-1", 3); !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}

	// A failed reserve must have no effect.
	stock, err := ledger.Snapshot("SKU-1")
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	assertCounters(t, stock, 2, 0)
}

func TestLedgerReserveUnknownSKU(t *testing.T) {
	ledger := NewLedger()
	if _, err := ledger.Reserve("SKU-MISSING", 1); !errors.Is(err, ErrStockNotFound) {
		t.Fatalf("expected ErrStockNotFound, got %v", err)
	}
}

func TestLedgerReleaseIsIdempotentAgainstOverRelease(t *testing.T) {
	ledger := newTestLedger(t, "SKU-1", 10)

	if _, err := ledger.Reserve("SKU-1", 2); err != nil {
		t.Fatalf("reserve: %v", err)
	}

	stock, err := ledger.ReleaseReserved("SKU-1", 5)
	if err != nil {
		t.Fatalf("release: %v", err)
	}
	assertCounters(t, stock, 10, 0)

	// Releasing again with nothing reserved stays at zero.
	stock, err = ledger.ReleaseReserved("SKU-1", 1)
	if err != nil {
		t.Fatalf("release: %v", err)
	}
	assertCounters(t, stock, 10, 0)
}

func TestLedgerCommitArithmetic(t *testing.T) {
	ledger := newTestLedger(t, "SKU-1", 50)

	stock, err := ledger.Reserve("SKU-1", 1)
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	assertCounters(t, stock, 50, 1)

	stock, err = ledger.CommitReserved("SKU-1", 1)
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	assertCounters(t, stock, 49, 0)

	// A later cancel of a different confirmed order returns units to on-hand.
	stock, err = ledger.Restock("SKU-1", 1)
	if err != nil {
		t.Fatalf("restock: %v", err)
	}
	assertCounters(t, stock, 50, 0)
}

func TestLedgerCommitClampsToReserved(t *testing.T) {
	ledger := newTestLedger(t, "SKU-1", 10)

	if _, err := ledger.Reserve("SKU-1", 1); err != nil {
		t.Fatalf("reserve: %v", err)
	}

	stock, err := ledger.CommitReserved("SKU-1", 5)
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	// Only the single reserved unit may be consumed.
	assertCounters(t, stock, 9, 0)
}

func TestLedgerRejectsNonPositiveQuantities(t *testing.T) {
	ledger := newTestLedger(t, "SKU-1", 10)

	for _, qty := range []int{0, -1} {
		if _, err := ledger.Reserve("SKU-1", qty); !errors.Is(err, ErrInvalidQuantity) {
			t.Fatalf("reserve qty=%d: expected ErrInvalidQuantity, got %v", qty, err)
		}
	}
}

func TestLedgerTrackRejectsDuplicates(t *testing.T) {
	ledger := newTestLedger(t, "SKU-1", 10)
	if _, err := ledger.Track("SKU-1", "prod-1", 5); !errors.Is(err, ErrStockExists) {
		t.Fatalf("expected ErrStockExists, got %v", err)
	}
}

func TestLedgerConcurrentReserveNeverOversells(t *testing.T) {
	const onHand = 50
	const attempts = 200

	ledger := newTestLedger(t, "SKU-1", onHand)

	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := ledger.Reserve("SKU-1", 1)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		} else if !errors.Is(err, ErrInsufficientStock) {
			t.Fatalf("unexpected reserve error: %v", err)
		}
	}
	if succeeded != onHand {
		t.Fatalf("expected exactly %d successful reservations, got %d", onHand, succeeded)
	}

	stock, err := ledger.Snapshot("SKU-1")
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	assertCounters(t, stock, onHand, onHand)
	if stock.Available != 0 {
		t.Fatalf("expected zero availability, got %d", stock.Available)
	}
}

func TestLedgerListOrderedBySKU(t *testing.T) {
	ledger := NewLedger()
	for _, sku := range []string{"SKU-C", "SKU-A", "SKU-B"} {
		if _, err := ledger.Track(sku, "prod", 1); err != nil {
			t.Fatalf("track %s: %v", sku, err)
		}
	}

	stocks := ledger.List()
	if len(stocks) != 3 {
		t.Fatalf("expected 3 stocks, got %d", len(stocks))
	}
	for i, want := range []string{"SKU-A", "SKU-B", "SKU-C"} {
		if stocks[i].SKU != want {
			t.Fatalf("expected %s at index %d, got %s", want, i, stocks[i].SKU)
		}
	}
}
