package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	domain "github.com/northwind-commerce/api/internal/domain"
	"github.com/northwind-commerce/api/internal/inventory"
	"github.com/northwind-commerce/api/internal/notifications"
	"github.com/northwind-commerce/api/internal/repositories"
)

const (
	orderIDPrefix    = "ord_"
	trackingIDPrefix = "trk_"
)

var (
	// ErrOrderInvalidInput signals the caller provided invalid data.
	ErrOrderInvalidInput = errors.New("order: invalid input")
	// ErrProductNotFound indicates a requested product does not exist.
	ErrProductNotFound = errors.New("order: product not found")
	// ErrOutOfStock indicates available stock was insufficient for a requested unit.
	ErrOutOfStock = errors.New("order: out of stock")
	// ErrPaymentFailed indicates the payment processor declined the charge.
	ErrPaymentFailed = errors.New("order: payment failed")
	// ErrOrderNotFound indicates the order could not be located.
	ErrOrderNotFound = errors.New("order: not found")
	// ErrOrderInvalidTransition indicates an illegal status transition was attempted.
	ErrOrderInvalidTransition = errors.New("order: invalid status transition")
	// ErrCannotCancelShipped indicates a cancel attempt on a shipped order.
	// A specialisation of ErrOrderInvalidTransition surfaced distinctly for
	// user messaging; errors.Is matches both.
	ErrCannotCancelShipped = fmt.Errorf("%w: cannot cancel a shipped order", ErrOrderInvalidTransition)
)

// orderStateTransitions is the legal transition graph. Ledger side effects are
// decided by the operation (confirm commits, cancel releases or restocks),
// not by the graph itself.
var orderStateTransitions = map[domain.OrderStatus][]domain.OrderStatus{
	domain.OrderStatusPending:   {domain.OrderStatusConfirmed, domain.OrderStatusCancelled},
	domain.OrderStatusConfirmed: {domain.OrderStatusShipped, domain.OrderStatusCancelled},
}

// OrderServiceDeps bundles collaborators required to construct the order service.
type OrderServiceDeps struct {
	Products    repositories.ProductRepository
	Orders      repositories.OrderRepository
	Ledger      StockLedger
	Pricing     PricingService
	Payments    PaymentRouter
	Notifier    notifications.Notifier
	Clock       func() time.Time
	IDGenerator func() string
	Logger      func(ctx context.Context, event string, fields map[string]any)
}

type orderService struct {
	products repositories.ProductRepository
	orders   repositories.OrderRepository
	ledger   StockLedger
	pricing  PricingService
	payments PaymentRouter
	notifier notifications.Notifier
	clock    func() time.Time
	newID    func() string
	logger   func(context.Context, string, map[string]any)
}

// NewOrderService wires dependencies into a concrete OrderService implementation.
func NewOrderService(deps OrderServiceDeps) (OrderService, error) {
	if deps.Products == nil {
		return nil, errors.New("order service: product repository is required")
	}
	if deps.Orders == nil {
		return nil, errors.New("order service: order repository is required")
	}
	if deps.Ledger == nil {
		return nil, errors.New("order service: stock ledger is required")
	}
	if deps.Pricing == nil {
		return nil, errors.New("order service: pricing service is required")
	}
	if deps.Payments == nil {
		return nil, errors.New("order service: payment router is required")
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}

	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = func() string {
			return ulid.Make().String()
		}
	}

	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &orderService{
		products: deps.Products,
		orders:   deps.Orders,
		ledger:   deps.Ledger,
		pricing:  deps.Pricing,
		payments: deps.Payments,
		notifier: deps.Notifier,
		clock: func() time.Time {
			return clock().UTC()
		},
		newID:  idGen,
		logger: logger,
	}, nil
}

// reservedUnit remembers one successful ledger reservation so a later failure
// can compensate in the order the reservations were taken.
type reservedUnit struct {
	sku string
	qty int
}

func (s *orderService) CreateOrder(ctx context.Context, cmd CreateOrderCommand) (domain.Order, error) {
	email := strings.TrimSpace(cmd.CustomerEmail)
	if email == "" {
		return domain.Order{}, fmt.Errorf("%w: customer email is required", ErrOrderInvalidInput)
	}
	if len(cmd.ProductIDs) == 0 {
		return domain.Order{}, fmt.Errorf("%w: at least one product is required", ErrOrderInvalidInput)
	}

	// Resolve the processor up front so an unsupported method fails before
	// any stock is touched.
	processor, err := s.payments.ProcessorFor(cmd.PaymentMethod)
	if err != nil {
		return domain.Order{}, fmt.Errorf("%w: %v", ErrOrderInvalidInput, err)
	}

	now := s.now()

	var (
		items    []domain.OrderItem
		reserved []reservedUnit
		subtotal int64
	)

	for i, productID := range cmd.ProductIDs {
		product, err := s.products.FindByID(ctx, productID)
		if err != nil {
			s.rollbackReservations(ctx, reserved)
			return domain.Order{}, s.mapProductError(productID, err)
		}

		unitPrice := s.pricing.DiscountedPrice(product)

		stock, err := s.ledger.Reserve(product.SKU, 1)
		if err != nil {
			s.rollbackReservations(ctx, reserved)
			if errors.Is(err, inventory.ErrInsufficientStock) || errors.Is(err, inventory.ErrStockNotFound) {
				return domain.Order{}, fmt.Errorf("%w: %s", ErrOutOfStock, product.Name)
			}
			return domain.Order{}, err
		}
		reserved = append(reserved, reservedUnit{sku: product.SKU, qty: 1})

		s.logger(ctx, "order.stock.reserved", map[string]any{
			"productId": product.ID,
			"sku":       product.SKU,
			"onHand":    stock.OnHand,
			"reserved":  stock.Reserved,
			"available": stock.Available,
		})

		items = append(items, domain.OrderItem{
			Sequence:  i + 1,
			ProductID: product.ID,
			SKU:       product.SKU,
			Quantity:  1,
			UnitPrice: unitPrice,
			Subtotal:  unitPrice,
		})
		subtotal += unitPrice
	}

	fee := processor.CalculateFee(subtotal)
	total := subtotal + fee

	if !processor.Process(ctx, total) {
		s.rollbackReservations(ctx, reserved)
		return domain.Order{}, fmt.Errorf("%w: %s charge of %d declined", ErrPaymentFailed, cmd.PaymentMethod, total)
	}

	order := domain.Order{
		ID:            orderIDPrefix + s.newID(),
		CustomerEmail: email,
		Items:         items,
		Totals: domain.OrderTotals{
			Subtotal: subtotal,
			Fee:      fee,
			Total:    total,
		},
		Status:          domain.OrderStatusPending,
		PaymentMethod:   cmd.PaymentMethod,
		ShippingAddress: strings.TrimSpace(cmd.ShippingAddress),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.orders.Save(ctx, order); err != nil {
		s.rollbackReservations(ctx, reserved)
		return domain.Order{}, s.mapOrderError(err)
	}

	s.logger(ctx, "order.created", map[string]any{
		"orderId": order.ID,
		"email":   email,
		"items":   len(items),
		"total":   total,
		"method":  string(cmd.PaymentMethod),
	})
	s.notify(ctx, "confirmation", order, func() error {
		return s.notifier.OrderConfirmed(ctx, email, order)
	})

	return order, nil
}

func (s *orderService) ConfirmOrder(ctx context.Context, cmd ConfirmOrderCommand) (domain.Order, error) {
	order, err := s.findOrder(ctx, cmd.OrderID)
	if err != nil {
		return domain.Order{}, err
	}

	// Confirming twice is a no-op success, not an error.
	if order.Status == domain.OrderStatusConfirmed {
		return order, nil
	}
	if err := guardTransition(order.Status, domain.OrderStatusConfirmed); err != nil {
		return domain.Order{}, err
	}

	for _, item := range order.Items {
		stock, err := s.ledger.CommitReserved(item.SKU, item.Quantity)
		if err != nil {
			return domain.Order{}, err
		}
		s.logger(ctx, "order.stock.committed", map[string]any{
			"orderId":  order.ID,
			"sku":      item.SKU,
			"onHand":   stock.OnHand,
			"reserved": stock.Reserved,
		})
	}

	now := s.now()
	order.Status = domain.OrderStatusConfirmed
	order.UpdatedAt = now

	if err := s.orders.Save(ctx, order); err != nil {
		return domain.Order{}, s.mapOrderError(err)
	}

	s.logger(ctx, "order.confirmed", map[string]any{"orderId": order.ID})
	s.notify(ctx, "confirmation", order, func() error {
		return s.notifier.OrderConfirmed(ctx, order.CustomerEmail, order)
	})

	return order, nil
}

func (s *orderService) CancelOrder(ctx context.Context, cmd CancelOrderCommand) (domain.Order, error) {
	order, err := s.findOrder(ctx, cmd.OrderID)
	if err != nil {
		return domain.Order{}, err
	}

	switch order.Status {
	case domain.OrderStatusCancelled:
		// Idempotent: cancelling a cancelled order succeeds without effect.
		return order, nil
	case domain.OrderStatusShipped:
		return domain.Order{}, ErrCannotCancelShipped
	}

	if err := guardTransition(order.Status, domain.OrderStatusCancelled); err != nil {
		return domain.Order{}, err
	}

	switch order.Status {
	case domain.OrderStatusPending:
		// Reservation not yet committed: hand the units back to available.
		for _, item := range order.Items {
			stock, err := s.ledger.ReleaseReserved(item.SKU, item.Quantity)
			if err != nil {
				return domain.Order{}, err
			}
			s.logger(ctx, "order.stock.released", map[string]any{
				"orderId":  order.ID,
				"sku":      item.SKU,
				"onHand":   stock.OnHand,
				"reserved": stock.Reserved,
			})
		}
	case domain.OrderStatusConfirmed:
		// Stock was committed at confirmation, so return it to on-hand.
		for _, item := range order.Items {
			stock, err := s.ledger.Restock(item.SKU, item.Quantity)
			if err != nil {
				return domain.Order{}, err
			}
			s.logger(ctx, "order.stock.restocked", map[string]any{
				"orderId": order.ID,
				"sku":     item.SKU,
				"onHand":  stock.OnHand,
			})
		}
	}

	now := s.now()
	order.Status = domain.OrderStatusCancelled
	order.CancelledAt = &now
	order.UpdatedAt = now
	if reason := strings.TrimSpace(cmd.Reason); reason != "" {
		if order.Metadata == nil {
			order.Metadata = map[string]any{}
		}
		order.Metadata["cancelReason"] = reason
	}

	if err := s.orders.Save(ctx, order); err != nil {
		return domain.Order{}, s.mapOrderError(err)
	}

	s.logger(ctx, "order.cancelled", map[string]any{"orderId": order.ID})
	s.notify(ctx, "cancellation", order, func() error {
		return s.notifier.OrderCancelled(ctx, order)
	})

	return order, nil
}

func (s *orderService) ShipOrder(ctx context.Context, cmd ShipOrderCommand) (domain.Order, error) {
	order, err := s.findOrder(ctx, cmd.OrderID)
	if err != nil {
		return domain.Order{}, err
	}

	if err := guardTransition(order.Status, domain.OrderStatusShipped); err != nil {
		return domain.Order{}, err
	}

	tracking := strings.TrimSpace(cmd.TrackingNumber)
	if tracking == "" {
		tracking = trackingIDPrefix + s.newID()
	}

	now := s.now()
	order.Status = domain.OrderStatusShipped
	order.TrackingNumber = tracking
	order.ShippedAt = &now
	order.UpdatedAt = now

	if err := s.orders.Save(ctx, order); err != nil {
		return domain.Order{}, s.mapOrderError(err)
	}

	s.logger(ctx, "order.shipped", map[string]any{
		"orderId":  order.ID,
		"tracking": tracking,
	})
	s.notify(ctx, "shipping", order, func() error {
		return s.notifier.OrderShipped(ctx, order, tracking)
	})

	return order, nil
}

func (s *orderService) GetOrder(ctx context.Context, orderID string) (domain.Order, error) {
	return s.findOrder(ctx, orderID)
}

func (s *orderService) ListOrders(ctx context.Context) ([]domain.Order, error) {
	orders, err := s.orders.ListAll(ctx)
	if err != nil {
		return nil, s.mapOrderError(err)
	}
	return orders, nil
}

func (s *orderService) now() time.Time {
	return s.clock()
}

func (s *orderService) findOrder(ctx context.Context, orderID string) (domain.Order, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return domain.Order{}, fmt.Errorf("%w: order id is required", ErrOrderInvalidInput)
	}
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return domain.Order{}, s.mapOrderError(err)
	}
	return order, nil
}

// rollbackReservations compensates every reservation taken by the current
// call, in the order they were made. Release is idempotent, so a rollback can
// never drive counters negative.
func (s *orderService) rollbackReservations(ctx context.Context, reserved []reservedUnit) {
	for _, unit := range reserved {
		if _, err := s.ledger.ReleaseReserved(unit.sku, unit.qty); err != nil {
			s.logger(ctx, "order.rollback.failed", map[string]any{
				"sku":   unit.sku,
				"error": err.Error(),
			})
		}
	}
}

// guardTransition rejects any move the legal transition graph does not admit.
func guardTransition(from, to domain.OrderStatus) error {
	if !slices.Contains(orderStateTransitions[from], to) {
		return fmt.Errorf("%w: %s to %s", ErrOrderInvalidTransition, from, to)
	}
	return nil
}

func (s *orderService) mapProductError(productID string, err error) error {
	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) && repoErr.IsNotFound() {
		return fmt.Errorf("%w: %s", ErrProductNotFound, productID)
	}
	return err
}

func (s *orderService) mapOrderError(err error) error {
	if err == nil {
		return nil
	}
	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) {
		switch {
		case repoErr.IsNotFound():
			return fmt.Errorf("%w: %v", ErrOrderNotFound, err)
		case repoErr.IsConflict():
			return fmt.Errorf("%w: %v", ErrOrderInvalidInput, err)
		}
	}
	return err
}

// notify delivers a lifecycle notification. Failures are logged, never
// propagated: notification delivery must not fail the order operation.
func (s *orderService) notify(ctx context.Context, kind string, order domain.Order, send func() error) {
	if s.notifier == nil {
		return
	}
	if err := send(); err != nil {
		s.logger(ctx, "order.notification.failed", map[string]any{
			"orderId": order.ID,
			"kind":    kind,
			"error":   err.Error(),
		})
	}
}
