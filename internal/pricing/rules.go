package pricing

import (
	domain "github.com/northwind-commerce/api/internal/domain"
)

const (
	electronicsDiscountBps = 500  // 5%
	clothingDiscountBps    = 1000 // 10%
	blackFridayDiscountBps = 2000 // 20%

	// electronicsPriceFloor is the minimum undiscounted price (minor units)
	// for the electronics discount to apply.
	electronicsPriceFloor = 500_00

	noDiscountRuleName = "no_discount"
)

// ElectronicsRule discounts electronics above the price floor by 5%.
type ElectronicsRule struct{}

// Name implements Rule.
func (ElectronicsRule) Name() string { return "electronics" }

// Applicable implements Rule.
func (ElectronicsRule) Applicable(product domain.Product) bool {
	return product.Category == domain.CategoryElectronics && product.UnitPrice > electronicsPriceFloor
}

// Apply implements Rule.
func (ElectronicsRule) Apply(product domain.Product) int64 {
	return discount(product.UnitPrice, electronicsDiscountBps)
}

// ClothingRule discounts all clothing by 10%.
type ClothingRule struct{}

// Name implements Rule.
func (ClothingRule) Name() string { return "clothing" }

// Applicable implements Rule.
func (ClothingRule) Applicable(product domain.Product) bool {
	return product.Category == domain.CategoryClothing
}

// Apply implements Rule.
func (ClothingRule) Apply(product domain.Product) int64 {
	return discount(product.UnitPrice, clothingDiscountBps)
}

// BlackFridayRule discounts everything by 20%. Enabled seasonally via config.
type BlackFridayRule struct{}

// Name implements Rule.
func (BlackFridayRule) Name() string { return "black_friday" }

// Applicable implements Rule.
func (BlackFridayRule) Applicable(domain.Product) bool { return true }

// Apply implements Rule.
func (BlackFridayRule) Apply(product domain.Product) int64 {
	return discount(product.UnitPrice, blackFridayDiscountBps)
}

type noDiscountRule struct{}

func (noDiscountRule) Name() string { return noDiscountRuleName }

func (noDiscountRule) Applicable(domain.Product) bool { return true }

func (noDiscountRule) Apply(p domain.Product) int64 { return p.UnitPrice }

// discount applies a basis-point reduction, rounding the discount down so the
// customer price never rounds up past the advertised percentage.
func discount(price int64, bps int64) int64 {
	return price - price*bps/10_000
}
