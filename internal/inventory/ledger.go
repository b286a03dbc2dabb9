package inventory

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

var (
	// ErrInvalidQuantity signals a non-positive quantity was requested.
	ErrInvalidQuantity = errors.New("inventory: quantity must be positive")
	// ErrInsufficientStock indicates the requested quantity exceeds availability.
	ErrInsufficientStock = errors.New("inventory: insufficient stock")
	// ErrStockNotFound indicates the SKU has no stock record.
	ErrStockNotFound = errors.New("inventory: stock not found")
	// ErrStockExists indicates a stock record is already tracked for the SKU.
	ErrStockExists = errors.New("inventory: stock already tracked")
)

// Stock is an immutable snapshot of the counters for one SKU.
type Stock struct {
	SKU        string
	ProductRef string
	OnHand     int
	Reserved   int
	Available  int
	UpdatedAt  time.Time
}

// Ledger tracks per-SKU stock counters. Every mutation happens under the
// entry's own lock, so reserve/release/commit/restock are atomic with respect
// to each other per SKU and the invariant onHand >= reserved >= 0 always
// holds. Operations on distinct SKUs do not contend.
type Ledger struct {
	mu      sync.RWMutex
	entries map[string]*stockEntry
	clock   func() time.Time
}

type stockEntry struct {
	mu         sync.Mutex
	productRef string
	onHand     int
	reserved   int
	updatedAt  time.Time
}

// LedgerOption customises ledger construction.
type LedgerOption func(*Ledger)

// WithClock overrides the time source, mainly for tests.
func WithClock(clock func() time.Time) LedgerOption {
	return func(l *Ledger) {
		if clock != nil {
			l.clock = clock
		}
	}
}

// NewLedger constructs an empty stock ledger.
func NewLedger(opts ...LedgerOption) *Ledger {
	l := &Ledger{
		entries: make(map[string]*stockEntry),
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Track registers a SKU with an initial on-hand count and zero reservations.
func (l *Ledger) Track(sku, productRef string, onHand int) (Stock, error) {
	if sku == "" {
		return Stock{}, fmt.Errorf("%w: sku is required", ErrStockNotFound)
	}
	if onHand < 0 {
		return Stock{}, fmt.Errorf("%w: on-hand for %s", ErrInvalidQuantity, sku)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.entries[sku]; ok {
		return Stock{}, fmt.Errorf("%w: %s", ErrStockExists, sku)
	}
	entry := &stockEntry{
		productRef: productRef,
		onHand:     onHand,
		updatedAt:  l.now(),
	}
	l.entries[sku] = entry
	return entry.snapshot(sku), nil
}

// Reserve increments the reserved counter by qty iff available >= qty.
// On-hand is unchanged. Fails with ErrInsufficientStock and no effect otherwise.
func (l *Ledger) Reserve(sku string, qty int) (Stock, error) {
	return l.mutate(sku, qty, func(e *stockEntry, qty int) error {
		if e.onHand-e.reserved < qty {
			return fmt.Errorf("%w: %s", ErrInsufficientStock, sku)
		}
		e.reserved += qty
		return nil
	})
}

// ReleaseReserved decrements the reserved counter by min(qty, reserved).
// Idempotent against over-release; on-hand is unchanged.
func (l *Ledger) ReleaseReserved(sku string, qty int) (Stock, error) {
	return l.mutate(sku, qty, func(e *stockEntry, qty int) error {
		e.reserved -= minInt(qty, e.reserved)
		return nil
	})
}

// CommitReserved converts a reservation into a permanent decrement: both
// on-hand and reserved drop by min(qty, reserved).
func (l *Ledger) CommitReserved(sku string, qty int) (Stock, error) {
	return l.mutate(sku, qty, func(e *stockEntry, qty int) error {
		consumed := minInt(qty, e.reserved)
		e.onHand -= consumed
		e.reserved -= consumed
		return nil
	})
}

// Restock returns previously committed units to on-hand. Reserved is unchanged.
func (l *Ledger) Restock(sku string, qty int) (Stock, error) {
	return l.mutate(sku, qty, func(e *stockEntry, qty int) error {
		e.onHand += qty
		return nil
	})
}

// Snapshot reports the current counters for one SKU.
func (l *Ledger) Snapshot(sku string) (Stock, error) {
	entry, err := l.entry(sku)
	if err != nil {
		return Stock{}, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.snapshot(sku), nil
}

// List returns a snapshot of every tracked SKU, ordered by SKU.
func (l *Ledger) List() []Stock {
	l.mu.RLock()
	skus := make([]string, 0, len(l.entries))
	for sku := range l.entries {
		skus = append(skus, sku)
	}
	l.mu.RUnlock()

	sort.Strings(skus)
	stocks := make([]Stock, 0, len(skus))
	for _, sku := range skus {
		if stock, err := l.Snapshot(sku); err == nil {
			stocks = append(stocks, stock)
		}
	}
	return stocks
}

func (l *Ledger) mutate(sku string, qty int, apply func(*stockEntry, int) error) (Stock, error) {
	if qty <= 0 {
		return Stock{}, fmt.Errorf("%w: %d for %s", ErrInvalidQuantity, qty, sku)
	}
	entry, err := l.entry(sku)
	if err != nil {
		return Stock{}, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if err := apply(entry, qty); err != nil {
		return Stock{}, err
	}
	entry.updatedAt = l.now()
	return entry.snapshot(sku), nil
}

func (l *Ledger) entry(sku string) (*stockEntry, error) {
	l.mu.RLock()
	entry, ok := l.entries[sku]
	l.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrStockNotFound, sku)
	}
	return entry, nil
}

func (l *Ledger) now() time.Time {
	return l.clock().UTC()
}

func (e *stockEntry) snapshot(sku string) Stock {
	return Stock{
		SKU:        sku,
		ProductRef: e.productRef,
		OnHand:     e.onHand,
		Reserved:   e.reserved,
		Available:  e.onHand - e.reserved,
		UpdatedAt:  e.updatedAt,
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
