package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	domain "github.com/northwind-commerce/api/internal/domain"
	"github.com/northwind-commerce/api/internal/repositories"
)

// OrderRepository is a map-backed order store. Save replaces the whole
// aggregate under the lock, so FindByID never observes a partial write.
type OrderRepository struct {
	mu     sync.RWMutex
	orders map[string]domain.Order
}

// NewOrderRepository constructs an empty order store.
func NewOrderRepository() *OrderRepository {
	return &OrderRepository{orders: make(map[string]domain.Order)}
}

// Save implements repositories.OrderRepository. It inserts or replaces the
// order atomically per order ID.
func (r *OrderRepository) Save(_ context.Context, order domain.Order) error {
	id := strings.TrimSpace(order.ID)
	if id == "" {
		return repositories.NewError("order.save", repositories.ErrorCodeUnknown, "order id is required", nil)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	order.ID = id
	r.orders[id] = order.Clone()
	return nil
}

// FindByID implements repositories.OrderRepository.
func (r *OrderRepository) FindByID(_ context.Context, orderID string) (domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[strings.TrimSpace(orderID)]
	if !ok {
		return domain.Order{}, repositories.NotFound("order.find", "order", orderID)
	}
	return order.Clone(), nil
}

// ListAll implements repositories.OrderRepository, newest first.
func (r *OrderRepository) ListAll(_ context.Context) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orders := make([]domain.Order, 0, len(r.orders))
	for _, order := range r.orders {
		orders = append(orders, order.Clone())
	}
	sort.Slice(orders, func(i, j int) bool {
		if orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].ID > orders[j].ID
		}
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}
