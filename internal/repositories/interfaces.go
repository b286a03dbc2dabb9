package repositories

import (
	"context"

	domain "github.com/northwind-commerce/api/internal/domain"
)

// RepositoryError wraps low-level persistence failures with categorisation used by services.
type RepositoryError interface {
	error
	IsNotFound() bool
	IsConflict() bool
}

// ProductRepository exposes read access to the product catalog.
type ProductRepository interface {
	FindByID(ctx context.Context, productID string) (domain.Product, error)
	ListAll(ctx context.Context) ([]domain.Product, error)
}

// ProductWriter seeds catalog entries. Split from ProductRepository because
// only bootstrap code writes products; the order path is read-only.
type ProductWriter interface {
	Insert(ctx context.Context, product domain.Product) error
}

// OrderRepository persists order aggregates. Save and FindByID are atomic per
// order ID: a reader never observes a partially written order.
type OrderRepository interface {
	Save(ctx context.Context, order domain.Order) error
	FindByID(ctx context.Context, orderID string) (domain.Order, error)
	ListAll(ctx context.Context) ([]domain.Order, error)
}
