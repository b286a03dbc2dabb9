package pricing

import (
	"testing"

	domain "github.com/northwind-commerce/api/internal/domain"
)

func newDefaultEngine(t *testing.T) *Engine {
	t.Helper()
	engine, err := NewEngine(EngineDeps{Rules: DefaultRules()})
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}

func TestDiscountedPriceDefaultRules(t *testing.T) {
	engine := newDefaultEngine(t)

	cases := []struct {
		name     string
		product  domain.Product
		want     int64
		wantRule string
	}{
		{
			name:     "electronics above floor",
			product:  domain.Product{Category: domain.CategoryElectronics, UnitPrice: 1299_00},
			want:     1234_05,
			wantRule: "electronics",
		},
		{
			name:     "electronics at floor",
			product:  domain.Product{Category: domain.CategoryElectronics, UnitPrice: 500_00},
			want:     500_00,
			wantRule: "no_discount",
		},
		{
			name:     "electronics below floor",
			product:  domain.Product{Category: domain.CategoryElectronics, UnitPrice: 149_00},
			want:     149_00,
			wantRule: "no_discount",
		},
		{
			name:     "clothing",
			product:  domain.Product{Category: domain.CategoryClothing, UnitPrice: 24_00},
			want:     21_60,
			wantRule: "clothing",
		},
		{
			name:     "books fall through",
			product:  domain.Product{Category: domain.CategoryBooks, UnitPrice: 18_00},
			want:     18_00,
			wantRule: "no_discount",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := engine.DiscountedPrice(tc.product); got != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, got)
			}
			if got := engine.AppliedRule(tc.product); got != tc.wantRule {
				t.Fatalf("expected rule %s, got %s", tc.wantRule, got)
			}
		})
	}
}

func TestPrependRuleTakesPriority(t *testing.T) {
	engine := newDefaultEngine(t)
	engine.PrependRule(BlackFridayRule{})

	// Black Friday wins even where a category rule would apply.
	product := domain.Product{Category: domain.CategoryClothing, UnitPrice: 100_00}
	if got := engine.DiscountedPrice(product); got != 80_00 {
		t.Fatalf("expected 8000, got %d", got)
	}
	if got := engine.AppliedRule(product); got != "black_friday" {
		t.Fatalf("expected black_friday, got %s", got)
	}
}

func TestNewEngineRejectsNilRule(t *testing.T) {
	if _, err := NewEngine(EngineDeps{Rules: []Rule{ElectronicsRule{}, nil}}); err == nil {
		t.Fatal("expected error for nil rule")
	}
}

func TestDiscountRoundsDown(t *testing.T) {
	// 999 minor units at 10%: discount is 99 (truncated), never 100.
	engine := newDefaultEngine(t)
	product := domain.Product{Category: domain.CategoryClothing, UnitPrice: 999}
	if got := engine.DiscountedPrice(product); got != 900 {
		t.Fatalf("expected 900, got %d", got)
	}
}
