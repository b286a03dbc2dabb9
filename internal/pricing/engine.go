package pricing

import (
	"errors"

	domain "github.com/northwind-commerce/api/internal/domain"
)

// Rule prices a single product. Rules are pure: no side effects, deterministic
// for a given product.
type Rule interface {
	Name() string
	Applicable(product domain.Product) bool
	// Apply returns the discounted unit price in minor units. Only called when
	// Applicable reported true.
	Apply(product domain.Product) int64
}

// Engine resolves the discounted unit price for a product by walking its rules
// in priority order and applying the first applicable one.
type Engine struct {
	rules []Rule
}

// EngineDeps bundles the construction inputs for the pricing engine.
type EngineDeps struct {
	// Rules in priority order. The engine appends a no-discount fallback, so
	// DiscountedPrice always resolves.
	Rules []Rule
}

// NewEngine wires the rule chain into an Engine.
func NewEngine(deps EngineDeps) (*Engine, error) {
	for _, rule := range deps.Rules {
		if rule == nil {
			return nil, errors.New("pricing engine: nil rule")
		}
	}
	rules := make([]Rule, 0, len(deps.Rules)+1)
	rules = append(rules, deps.Rules...)
	rules = append(rules, noDiscountRule{})
	return &Engine{rules: rules}, nil
}

// DefaultRules returns the standing rule chain: electronics over the price
// floor, then clothing. Seasonal rules are prepended via PrependRule.
func DefaultRules() []Rule {
	return []Rule{
		ElectronicsRule{},
		ClothingRule{},
	}
}

// PrependRule registers a rule ahead of every existing one.
func (e *Engine) PrependRule(rule Rule) {
	if rule == nil {
		return
	}
	e.rules = append([]Rule{rule}, e.rules...)
}

// DiscountedPrice returns the unit price after the first applicable discount.
func (e *Engine) DiscountedPrice(product domain.Product) int64 {
	for _, rule := range e.rules {
		if rule.Applicable(product) {
			return rule.Apply(product)
		}
	}
	return product.UnitPrice
}

// AppliedRule reports which rule would price the product, for display and audits.
func (e *Engine) AppliedRule(product domain.Product) string {
	for _, rule := range e.rules {
		if rule.Applicable(product) {
			return rule.Name()
		}
	}
	return noDiscountRuleName
}
