package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	domain "github.com/northwind-commerce/api/internal/domain"
	"github.com/northwind-commerce/api/internal/inventory"
	"github.com/northwind-commerce/api/internal/platform/httpx"
	"github.com/northwind-commerce/api/internal/repositories"
)

// StockReader is the slice of the inventory ledger the catalog endpoint reads.
type StockReader interface {
	Snapshot(sku string) (inventory.Stock, error)
}

// PricePreviewer reports the discounted unit price shown in the catalog.
type PricePreviewer interface {
	DiscountedPrice(product domain.Product) int64
}

type productResponse struct {
	ID              string `json:"id"`
	SKU             string `json:"sku"`
	Name            string `json:"name"`
	Category        string `json:"category"`
	UnitPrice       int64  `json:"unit_price"`
	DiscountedPrice int64  `json:"discounted_price"`
	OnHand          int    `json:"on_hand"`
	Reserved        int    `json:"reserved"`
	Available       int    `json:"available"`
	StockUpdatedAt  string `json:"stock_updated_at,omitempty"`
}

// ProductHandlers exposes the catalog read endpoints.
type ProductHandlers struct {
	products repositories.ProductRepository
	stocks   StockReader
	pricing  PricePreviewer
}

// NewProductHandlers constructs catalog handlers.
func NewProductHandlers(products repositories.ProductRepository, stocks StockReader, pricing PricePreviewer) *ProductHandlers {
	return &ProductHandlers{products: products, stocks: stocks, pricing: pricing}
}

// Routes registers the /products endpoints.
func (h *ProductHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/", h.listProducts)
}

func (h *ProductHandlers) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.products == nil {
		httpx.WriteError(ctx, w, httpx.NewError("catalog_unavailable", "product catalog unavailable", http.StatusServiceUnavailable))
		return
	}

	products, err := h.products.ListAll(ctx)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("catalog_error", "failed to list products", http.StatusInternalServerError))
		return
	}

	payload := make([]productResponse, 0, len(products))
	for _, product := range products {
		resp := productResponse{
			ID:        product.ID,
			SKU:       product.SKU,
			Name:      product.Name,
			Category:  string(product.Category),
			UnitPrice: product.UnitPrice,
		}
		if h.pricing != nil {
			resp.DiscountedPrice = h.pricing.DiscountedPrice(product)
		} else {
			resp.DiscountedPrice = product.UnitPrice
		}
		if h.stocks != nil {
			if stock, err := h.stocks.Snapshot(product.SKU); err == nil {
				resp.OnHand = stock.OnHand
				resp.Reserved = stock.Reserved
				resp.Available = stock.Available
				if !stock.UpdatedAt.IsZero() {
					resp.StockUpdatedAt = stock.UpdatedAt.Format(time.RFC3339)
				}
			}
		}
		payload = append(payload, resp)
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{"products": payload})
}
