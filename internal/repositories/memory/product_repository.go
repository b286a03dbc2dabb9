package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	domain "github.com/northwind-commerce/api/internal/domain"
	"github.com/northwind-commerce/api/internal/repositories"
)

// ProductRepository is a map-backed catalog store. Lookups are O(1) by ID and
// every read returns a deep copy, so callers never alias stored state.
type ProductRepository struct {
	mu       sync.RWMutex
	products map[string]domain.Product
}

// NewProductRepository constructs an empty product store.
func NewProductRepository() *ProductRepository {
	return &ProductRepository{products: make(map[string]domain.Product)}
}

// Insert implements repositories.ProductWriter.
func (r *ProductRepository) Insert(_ context.Context, product domain.Product) error {
	id := strings.TrimSpace(product.ID)
	if id == "" {
		return repositories.NewError("product.insert", repositories.ErrorCodeUnknown, "product id is required", nil)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; ok {
		return repositories.Conflict("product.insert", "product", id)
	}
	product.ID = id
	r.products[id] = product.Clone()
	return nil
}

// FindByID implements repositories.ProductRepository.
func (r *ProductRepository) FindByID(_ context.Context, productID string) (domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[strings.TrimSpace(productID)]
	if !ok {
		return domain.Product{}, repositories.NotFound("product.find", "product", productID)
	}
	return product.Clone(), nil
}

// ListAll implements repositories.ProductRepository, ordered by product ID.
func (r *ProductRepository) ListAll(_ context.Context) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	products := make([]domain.Product, 0, len(r.products))
	for _, product := range r.products {
		products = append(products, product.Clone())
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	return products, nil
}
