package services

import (
	"context"

	domain "github.com/northwind-commerce/api/internal/domain"
	"github.com/northwind-commerce/api/internal/inventory"
	"github.com/northwind-commerce/api/internal/payments"
)

// OrderService drives order creation and the lifecycle state machine.
type OrderService interface {
	// CreateOrder validates products, reserves stock unit by unit, charges the
	// selected payment method, and persists a pending order. Any failure after
	// a successful reservation rolls every reservation of this call back
	// before the error is returned.
	CreateOrder(ctx context.Context, cmd CreateOrderCommand) (domain.Order, error)
	// ConfirmOrder commits the reserved stock and moves the order to
	// confirmed. Confirming an already confirmed order is a no-op success.
	ConfirmOrder(ctx context.Context, cmd ConfirmOrderCommand) (domain.Order, error)
	// CancelOrder releases (pending) or restocks (confirmed) the order's stock
	// and moves it to cancelled. Cancelling a cancelled order is a no-op
	// success; cancelling a shipped order fails.
	CancelOrder(ctx context.Context, cmd CancelOrderCommand) (domain.Order, error)
	// ShipOrder moves a confirmed order to shipped, recording the tracking
	// number. Stock is untouched: it was consumed at confirmation.
	ShipOrder(ctx context.Context, cmd ShipOrderCommand) (domain.Order, error)
	GetOrder(ctx context.Context, orderID string) (domain.Order, error)
	ListOrders(ctx context.Context) ([]domain.Order, error)
}

// CreateOrderCommand carries the inputs for order creation. ProductIDs is an
// ordered sequence; duplicates are allowed and each occurrence reserves one
// unit.
type CreateOrderCommand struct {
	CustomerEmail   string
	ProductIDs      []string
	PaymentMethod   domain.PaymentMethod
	ShippingAddress string
}

// ConfirmOrderCommand identifies the order to confirm.
type ConfirmOrderCommand struct {
	OrderID string
}

// CancelOrderCommand identifies the order to cancel, with an optional reason.
type CancelOrderCommand struct {
	OrderID string
	Reason  string
}

// ShipOrderCommand identifies the order to ship. TrackingNumber is generated
// when empty.
type ShipOrderCommand struct {
	OrderID        string
	TrackingNumber string
}

// PricingService resolves the discounted unit price for a product. Pure and
// deterministic within a call.
type PricingService interface {
	DiscountedPrice(product domain.Product) int64
}

// PaymentRouter resolves the processor for a payment method.
type PaymentRouter interface {
	ProcessorFor(method domain.PaymentMethod) (payments.Processor, error)
}

// StockLedger is the slice of the inventory ledger the order flow mutates.
type StockLedger interface {
	Reserve(sku string, qty int) (inventory.Stock, error)
	ReleaseReserved(sku string, qty int) (inventory.Stock, error)
	CommitReserved(sku string, qty int) (inventory.Stock, error)
	Restock(sku string, qty int) (inventory.Stock, error)
}
