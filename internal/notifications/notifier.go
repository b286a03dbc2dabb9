package notifications

import (
	"context"

	"go.uber.org/zap"

	domain "github.com/northwind-commerce/api/internal/domain"
)

// Notifier delivers customer-facing order notifications. Calls are
// fire-and-forget from the order flow's perspective: delivery errors are
// logged by the caller and never fail the triggering operation.
type Notifier interface {
	OrderConfirmed(ctx context.Context, email string, order domain.Order) error
	OrderShipped(ctx context.Context, order domain.Order, trackingNumber string) error
	OrderCancelled(ctx context.Context, order domain.Order) error
}

// ConsoleNotifier writes notifications to the structured log. Used in local
// development and as the fallback when SMTP is not configured.
type ConsoleNotifier struct {
	logger *zap.Logger
}

// NewConsoleNotifier constructs a log-backed notifier.
func NewConsoleNotifier(logger *zap.Logger) *ConsoleNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConsoleNotifier{logger: logger.Named("notifications")}
}

// OrderConfirmed implements Notifier.
func (n *ConsoleNotifier) OrderConfirmed(_ context.Context, email string, order domain.Order) error {
	n.logger.Info("order confirmation",
		zap.String("orderId", order.ID),
		zap.String("email", email),
		zap.String("status", string(order.Status)),
		zap.Int64("total", order.Totals.Total),
	)
	return nil
}

// OrderShipped implements Notifier.
func (n *ConsoleNotifier) OrderShipped(_ context.Context, order domain.Order, trackingNumber string) error {
	n.logger.Info("order shipped",
		zap.String("orderId", order.ID),
		zap.String("email", order.CustomerEmail),
		zap.String("tracking", trackingNumber),
	)
	return nil
}

// OrderCancelled implements Notifier.
func (n *ConsoleNotifier) OrderCancelled(_ context.Context, order domain.Order) error {
	n.logger.Info("order cancelled",
		zap.String("orderId", order.ID),
		zap.String("email", order.CustomerEmail),
	)
	return nil
}
