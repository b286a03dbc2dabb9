package domain

import (
	"maps"
	"time"
)

// ProductCategory enumerates the catalog categories used by pricing rules.
type ProductCategory string

const (
	// CategoryElectronics covers electronic goods.
	CategoryElectronics ProductCategory = "electronics"
	// CategoryClothing covers apparel.
	CategoryClothing ProductCategory = "clothing"
	// CategoryBooks covers printed and digital books.
	CategoryBooks ProductCategory = "books"
	// CategoryHome covers household goods.
	CategoryHome ProductCategory = "home"
)

// PaymentMethod enumerates the supported payment selectors.
type PaymentMethod string

const (
	// PaymentMethodCreditCard routes payment through the card processor.
	PaymentMethodCreditCard PaymentMethod = "credit_card"
	// PaymentMethodPayPal routes payment through the PayPal processor.
	PaymentMethodPayPal PaymentMethod = "paypal"
	// PaymentMethodCrypto routes payment through the crypto processor.
	PaymentMethodCrypto PaymentMethod = "crypto"
	// PaymentMethodBankTransfer routes payment through the bank transfer processor.
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
)

// KnownPaymentMethods lists every supported payment method for validation and wiring.
func KnownPaymentMethods() []PaymentMethod {
	return []PaymentMethod{
		PaymentMethodCreditCard,
		PaymentMethodPayPal,
		PaymentMethodCrypto,
		PaymentMethodBankTransfer,
	}
}

// OrderStatus enumerates valid lifecycle states for orders.
type OrderStatus string

const (
	// OrderStatusPending indicates stock is reserved and the order awaits confirmation.
	OrderStatusPending OrderStatus = "pending"
	// OrderStatusConfirmed indicates reserved stock has been committed.
	OrderStatusConfirmed OrderStatus = "confirmed"
	// OrderStatusShipped indicates the order has left the warehouse. Terminal.
	OrderStatusShipped OrderStatus = "shipped"
	// OrderStatusCancelled indicates the order was cancelled. Terminal.
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Cancellable reports whether an order in this status may still be cancelled.
func (s OrderStatus) Cancellable() bool {
	return s != OrderStatusShipped && s != OrderStatusCancelled
}

// Terminal reports whether the status admits no further transitions.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusShipped || s == OrderStatusCancelled
}

// Product describes a catalog entry. Stock counters live in the inventory
// ledger, keyed by SKU; the product record itself is immutable after load.
type Product struct {
	ID       string
	SKU      string
	Name     string
	Category ProductCategory
	// UnitPrice is the undiscounted price in minor currency units.
	UnitPrice int64
	Metadata  map[string]any
}

// Clone returns a deep copy so callers never alias the stored metadata map.
func (p Product) Clone() Product {
	cloned := p
	cloned.Metadata = maps.Clone(p.Metadata)
	return cloned
}

// OrderItem is a single reservation unit within an order. Immutable once created.
type OrderItem struct {
	// Sequence is unique within the parent order, assigned in insertion order.
	Sequence  int
	ProductID string
	SKU       string
	Quantity  int
	// UnitPrice is the per-unit price after discount, in minor units.
	UnitPrice int64
	// Subtotal equals UnitPrice * Quantity.
	Subtotal int64
}

// OrderTotals breaks the order total into its components, all in minor units.
type OrderTotals struct {
	Subtotal int64
	Fee      int64
	Total    int64
}

// Order is the aggregate driven through the lifecycle state machine.
type Order struct {
	ID              string
	CustomerEmail   string
	Items           []OrderItem
	Totals          OrderTotals
	Status          OrderStatus
	PaymentMethod   PaymentMethod
	ShippingAddress string
	TrackingNumber  string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	ShippedAt       *time.Time
	CancelledAt     *time.Time
	Metadata        map[string]any
}

// Cancellable reports whether the order may still be cancelled.
func (o Order) Cancellable() bool {
	return o.Status.Cancellable()
}

// Clone returns a deep copy of the order. Owned collections (items, metadata)
// are copied so the clone never shares mutable state with the original.
func (o Order) Clone() Order {
	cloned := o
	if o.Items != nil {
		cloned.Items = make([]OrderItem, len(o.Items))
		copy(cloned.Items, o.Items)
	}
	cloned.Metadata = maps.Clone(o.Metadata)
	cloned.ShippedAt = cloneTimePtr(o.ShippedAt)
	cloned.CancelledAt = cloneTimePtr(o.CancelledAt)
	return cloned
}

func cloneTimePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
